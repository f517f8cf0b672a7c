package adapters

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/gjson"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// TreeFileAdapter reads and writes module-qualified JSON data trees.
type TreeFileAdapter struct{}

func NewTreeFileAdapter() TreeFileAdapter {
	return TreeFileAdapter{}
}

// ReadTree returns the document at path. A missing file is an empty tree.
func (a TreeFileAdapter) ReadTree(path string) (types.JSONValue, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return types.JSONValue("{}"), nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read data tree: " + path).
			WithCause(err)
	}
	if !gjson.ValidBytes(data) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("data tree is not valid JSON: " + path)
	}
	return types.JSONValue(data), nil
}

func (a TreeFileAdapter) WriteTree(path string, document types.JSONValue) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, document, "", "  "); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("data tree is not valid JSON").
			WithCause(err)
	}
	pretty.WriteByte('\n')
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create data directory").
				WithCause(err)
		}
	}
	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write data tree: " + path).
			WithCause(err)
	}
	return nil
}

var _ ports.TreeFilePort = TreeFileAdapter{}

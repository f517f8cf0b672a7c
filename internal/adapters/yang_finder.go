package adapters

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gnmi-yang-bridge/internal/ports"
)

// YangFinder locates YANG sources below a directory tree.
type YangFinder struct{}

func NewYangFinder() YangFinder {
	return YangFinder{}
}

func (f YangFinder) FindModels(root string) ([]string, error) {
	if root == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("models root is empty")
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipModelDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == yangExtension {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan models directory").
			WithCause(err)
	}
	sort.Strings(paths)
	return paths, nil
}

func skipModelDir(name string) bool {
	switch name {
	case ".git", "vendor", "node_modules", "testdata":
		return true
	default:
		return len(name) > 1 && name[0] == '.'
	}
}

var _ ports.ModelFinderPort = YangFinder{}

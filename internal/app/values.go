package app

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/gjson"

	"gnmi-yang-bridge/internal/types"
)

// ParsePathUpdate splits "path=value" at the first '=' outside key
// predicates. A value that is a JSON object or array is carried as JSON;
// anything else is a string left for the schema to coerce.
func ParsePathUpdate(raw string) (types.PathUpdate, error) {
	depth := 0
	split := -1
	for i, r := range raw {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth == 0 && split < 0 {
				split = i
			}
		}
	}
	if split < 0 {
		return types.PathUpdate{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("update %q must be path=value", raw))
	}
	path, err := ParsePath(raw[:split])
	if err != nil {
		return types.PathUpdate{}, err
	}
	return types.PathUpdate{Path: path, Value: ParseValue(raw[split+1:])}, nil
}

// ParsePath parses the textual wire path form.
func ParsePath(raw string) (types.WirePath, error) {
	path, err := types.ParseWirePath(raw)
	if err != nil {
		return types.WirePath{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid path %q", strings.TrimSpace(raw))).
			WithCause(err)
	}
	return path, nil
}

func ParseValue(raw string) types.Value {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if gjson.Valid(trimmed) {
			return types.JSONValue(trimmed)
		}
	}
	return types.StringValue(raw)
}

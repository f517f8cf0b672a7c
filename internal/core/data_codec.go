package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"gnmi-yang-bridge/internal/types"
)

// DataCodec converts tree nodes to and from module-qualified JSON. Member
// names carry a module prefix at the document root and wherever the module
// changes from the parent's.
type DataCodec struct {
	Schema *types.SchemaContext
	Paths  PathCodec
}

func NewDataCodec(schema *types.SchemaContext) DataCodec {
	return DataCodec{Schema: schema, Paths: NewPathCodec(schema)}
}

// ToJSON encodes node as the value addressed by id. List entries are
// wrapped in a single-element array under the qualified list name;
// containers, lists and leaves sit directly under their qualified name.
func (c DataCodec) ToJSON(id types.InstanceIdentifier, node *types.TreeNode) (types.JSONValue, error) {
	if node == nil {
		return nil, invalidData("cannot encode an empty node")
	}
	if id.IsRoot() {
		if node.Kind != types.NodeContainer {
			return nil, invalidData(fmt.Sprintf("root must be a container, got %s", node.Kind))
		}
		doc, err := c.encodeChildren(node.Children, nil)
		return types.JSONValue(doc), err
	}
	schema, err := c.Paths.SchemaNode(id)
	if err != nil {
		return nil, err
	}
	last, _ := id.Last()
	key := escapeMember(qualifiedName(schema.Module, schema.Name))
	doc := []byte("{}")
	if last.Kind == types.StepListEntry {
		if node.Kind != types.NodeListEntry {
			return nil, invalidData(fmt.Sprintf("identifier %s addresses a list entry, got %s", id, node.Kind))
		}
		entry, err := c.encodeChildren(node.Children, schema)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRawBytes(doc, key, []byte("[]")); err != nil {
			return nil, encodeFailure(err)
		}
		doc, err = sjson.SetRawBytes(doc, key+".-1", entry)
		if err != nil {
			return nil, encodeFailure(err)
		}
		return types.JSONValue(doc), nil
	}
	doc, err = c.setMember(doc, key, node, schema)
	return types.JSONValue(doc), err
}

// setMember writes node under key in doc according to its schema kind.
func (c DataCodec) setMember(doc []byte, key string, node *types.TreeNode, schema *types.SchemaNode) ([]byte, error) {
	if err := checkKind(node, schema); err != nil {
		return nil, err
	}
	var err error
	switch schema.Kind {
	case types.SchemaLeaf:
		return setScalar(doc, key, node.Value, schema.Type)
	case types.SchemaLeafList:
		if doc, err = sjson.SetRawBytes(doc, key, []byte("[]")); err != nil {
			return nil, encodeFailure(err)
		}
		for _, value := range node.Values {
			if doc, err = setScalar(doc, key+".-1", value, schema.Type); err != nil {
				return nil, err
			}
		}
		return doc, nil
	case types.SchemaList:
		if doc, err = sjson.SetRawBytes(doc, key, []byte("[]")); err != nil {
			return nil, encodeFailure(err)
		}
		for _, entry := range node.Entries {
			raw, err := c.encodeChildren(entry.Children, schema)
			if err != nil {
				return nil, err
			}
			if doc, err = sjson.SetRawBytes(doc, key+".-1", raw); err != nil {
				return nil, encodeFailure(err)
			}
		}
		return doc, nil
	default:
		raw, err := c.encodeChildren(node.Children, schema)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRawBytes(doc, key, raw); err != nil {
			return nil, encodeFailure(err)
		}
		return doc, nil
	}
}

// encodeChildren renders children as a JSON object. A nil parent is the
// document root.
func (c DataCodec) encodeChildren(children []*types.TreeNode, parent *types.SchemaNode) ([]byte, error) {
	doc := []byte("{}")
	for _, child := range children {
		schema := c.childSchema(parent, child.Module, child.Name)
		if schema == nil {
			return nil, invalidData(fmt.Sprintf("unknown element %s in %s", qualifiedName(child.Module, child.Name), nameOf(parent)))
		}
		name := schema.Name
		if parent == nil || schema.Module != parent.Module {
			name = qualifiedName(schema.Module, schema.Name)
		}
		var err error
		if doc, err = c.setMember(doc, escapeMember(name), child, schema); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (c DataCodec) childSchema(parent *types.SchemaNode, module string, name string) *types.SchemaNode {
	if parent != nil {
		if module == "" {
			if child := parent.QualifiedChild(parent.Module, name); child != nil {
				return child
			}
			return parent.Child(name)
		}
		return parent.QualifiedChild(module, name)
	}
	if module == "" {
		if candidates := c.Schema.TopLevel(name); len(candidates) == 1 {
			return candidates[0]
		}
		return nil
	}
	if schema := c.Schema.Module(module); schema != nil {
		return schema.Root.QualifiedChild(module, name)
	}
	return nil
}

// FromJSON decodes the value addressed by id. It accepts either the
// qualified wrapper produced by ToJSON or the bare content of the target.
func (c DataCodec) FromJSON(id types.InstanceIdentifier, doc types.JSONValue) (*types.TreeNode, error) {
	if !gjson.ValidBytes(doc) {
		return nil, invalidData("payload is not valid JSON")
	}
	result := gjson.ParseBytes(doc)
	if id.IsRoot() {
		if !result.IsObject() {
			return nil, invalidData("root payload must be a JSON object")
		}
		children, err := c.decodeChildren(result, nil)
		if err != nil {
			return nil, err
		}
		return &types.TreeNode{Kind: types.NodeContainer, Children: children}, nil
	}
	schema, err := c.Paths.SchemaNode(id)
	if err != nil {
		return nil, err
	}
	last, _ := id.Last()
	value := c.unwrap(result, schema, last.Kind == types.StepListEntry)
	if last.Kind == types.StepListEntry {
		if value.IsArray() {
			elements := value.Array()
			if len(elements) != 1 {
				return nil, invalidData(fmt.Sprintf("list entry payload for %s must hold exactly one entry", schema.Name))
			}
			value = elements[0]
		}
		if !value.IsObject() {
			return nil, invalidData(fmt.Sprintf("list entry payload for %s must be an object", schema.Name))
		}
		return c.decodeEntry(value, schema, last.Keys)
	}
	return c.decodeValue(value, schema)
}

// unwrap strips the single qualified member wrapping a payload.
func (c DataCodec) unwrap(result gjson.Result, schema *types.SchemaNode, entry bool) gjson.Result {
	if !result.IsObject() {
		return result
	}
	var (
		members int
		inner   gjson.Result
		matched bool
	)
	result.ForEach(func(key, value gjson.Result) bool {
		members++
		qualifier, local := types.SplitQualified(key.String())
		if local != schema.Name {
			return true
		}
		if qualifier != "" {
			if module, ok := c.Schema.ResolveModule(qualifier); !ok || module != schema.Module {
				return true
			}
		}
		inner = value
		matched = true
		return true
	})
	if members != 1 || !matched {
		return result
	}
	switch {
	case entry:
		if inner.IsArray() {
			return inner
		}
	case schema.Kind == types.SchemaContainer:
		if inner.IsObject() {
			return inner
		}
	default:
		return inner
	}
	return result
}

func (c DataCodec) decodeValue(value gjson.Result, schema *types.SchemaNode) (*types.TreeNode, error) {
	node := &types.TreeNode{Name: schema.Name, Module: schema.Module}
	switch schema.Kind {
	case types.SchemaContainer:
		if !value.IsObject() {
			return nil, invalidData(fmt.Sprintf("container %s must be a JSON object", schema.Name))
		}
		children, err := c.decodeChildren(value, schema)
		if err != nil {
			return nil, err
		}
		node.Kind = types.NodeContainer
		node.Children = children
	case types.SchemaList:
		if !value.IsArray() {
			return nil, invalidData(fmt.Sprintf("list %s must be a JSON array", schema.Name))
		}
		node.Kind = types.NodeList
		for _, element := range value.Array() {
			if !element.IsObject() {
				return nil, invalidData(fmt.Sprintf("entries of list %s must be objects", schema.Name))
			}
			entry, err := c.decodeEntry(element, schema, nil)
			if err != nil {
				return nil, err
			}
			node.Entries = append(node.Entries, entry)
		}
	case types.SchemaLeafList:
		if !value.IsArray() {
			return nil, invalidData(fmt.Sprintf("leaf-list %s must be a JSON array", schema.Name))
		}
		node.Kind = types.NodeLeafList
		for _, element := range value.Array() {
			scalar, err := decodeScalar(element, schema)
			if err != nil {
				return nil, err
			}
			node.Values = append(node.Values, scalar)
		}
	default:
		scalar, err := decodeScalar(value, schema)
		if err != nil {
			return nil, err
		}
		node.Kind = types.NodeLeaf
		node.Value = scalar
	}
	return node, nil
}

// decodeEntry builds a list entry. Keys absent from the payload are taken
// from the identifier; keys present must agree with it.
func (c DataCodec) decodeEntry(value gjson.Result, schema *types.SchemaNode, idKeys []types.KeyValue) (*types.TreeNode, error) {
	children, err := c.decodeChildren(value, schema)
	if err != nil {
		return nil, err
	}
	entry := &types.TreeNode{Kind: types.NodeListEntry, Name: schema.Name, Module: schema.Module}
	var filled []*types.TreeNode
	for _, key := range schema.Keys {
		var keyValue types.Value
		for _, child := range children {
			if child.Name == key && child.Kind == types.NodeLeaf {
				keyValue = child.Value
				break
			}
		}
		fromID, hasID := stepKey(idKeys, key)
		switch {
		case keyValue == nil && hasID:
			keyValue = fromID
			filled = append(filled, &types.TreeNode{Kind: types.NodeLeaf, Name: key, Module: schema.Module, Value: fromID})
		case keyValue == nil:
			return nil, invalidData(fmt.Sprintf("entry of list %s is missing key %s", schema.Name, key))
		case hasID && !types.ValuesEqual(keyValue, fromID):
			return nil, invalidData(fmt.Sprintf("key %s=%s does not match identifier value %s", key, keyValue, fromID))
		}
		entry.Keys = append(entry.Keys, types.KeyValue{Name: key, Value: keyValue})
	}
	entry.Children = append(filled, children...)
	return entry, nil
}

func stepKey(keys []types.KeyValue, name string) (types.Value, bool) {
	for _, kv := range keys {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return nil, false
}

// decodeChildren decodes the members of an object. A nil parent is the
// document root, where members must resolve to top-level nodes.
func (c DataCodec) decodeChildren(object gjson.Result, parent *types.SchemaNode) ([]*types.TreeNode, error) {
	var (
		children []*types.TreeNode
		failure  error
	)
	object.ForEach(func(key, value gjson.Result) bool {
		qualifier, local := types.SplitQualified(key.String())
		module := ""
		if qualifier != "" {
			resolved, ok := c.Schema.ResolveModule(qualifier)
			if !ok {
				failure = invalidData(fmt.Sprintf("unknown module %s in member %s", qualifier, key.String()))
				return false
			}
			module = resolved
		}
		schema := c.childSchema(parent, module, local)
		if schema == nil {
			failure = invalidData(fmt.Sprintf("unknown element %s in %s", key.String(), nameOf(parent)))
			return false
		}
		child, err := c.decodeValue(value, schema)
		if err != nil {
			failure = err
			return false
		}
		children = append(children, child)
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return children, nil
}

func decodeScalar(value gjson.Result, schema *types.SchemaNode) (types.Value, error) {
	var (
		out types.Value
		err error
	)
	switch {
	case schema.Type.Kind == types.ScalarEmpty && value.IsArray():
		if strings.ReplaceAll(value.Raw, " ", "") != "[null]" {
			return nil, invalidData(fmt.Sprintf("empty leaf %s must be [null]", schema.Name))
		}
		return types.BoolValue(true), nil
	case value.Type == gjson.String:
		out, err = parseScalar(schema.Type, value.Str)
	case value.Type == gjson.Number, value.Type == gjson.True, value.Type == gjson.False:
		out, err = parseScalar(schema.Type, value.Raw)
	default:
		return nil, invalidData(fmt.Sprintf("leaf %s requires a scalar value", schema.Name))
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid value for %s", schema.Name)).
			WithCause(err)
	}
	return out, nil
}

// setScalar writes value under key. Strings are quoted, numbers and
// decimals are bare literals and empty leaves encode as [null].
func setScalar(doc []byte, key string, value types.Value, scalar types.ScalarType) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch v := value.(type) {
	case types.StringValue:
		out, err = sjson.SetBytes(doc, key, string(v))
	case types.IntValue:
		out, err = sjson.SetBytes(doc, key, int64(v))
	case types.UintValue:
		out, err = sjson.SetBytes(doc, key, uint64(v))
	case types.BoolValue:
		if scalar.Kind == types.ScalarEmpty {
			if !v {
				return nil, invalidData("an empty leaf is either present or absent")
			}
			out, err = sjson.SetRawBytes(doc, key, []byte("[null]"))
		} else {
			out, err = sjson.SetBytes(doc, key, bool(v))
		}
	case types.FloatValue:
		out, err = sjson.SetBytes(doc, key, float64(v))
	case types.DecimalValue:
		out, err = sjson.SetRawBytes(doc, key, []byte(v.String()))
	default:
		return nil, unsupportedValueKind(value)
	}
	if err != nil {
		return nil, encodeFailure(err)
	}
	return out, nil
}

func checkKind(node *types.TreeNode, schema *types.SchemaNode) error {
	want := map[types.SchemaNodeKind]types.NodeKind{
		types.SchemaContainer: types.NodeContainer,
		types.SchemaList:      types.NodeList,
		types.SchemaLeaf:      types.NodeLeaf,
		types.SchemaLeafList:  types.NodeLeafList,
	}[schema.Kind]
	if node.Kind != want {
		return invalidData(fmt.Sprintf("%s %s cannot hold a %s node", schema.Kind, schema.Name, node.Kind))
	}
	return nil
}

func qualifiedName(module string, name string) string {
	if module == "" {
		return name
	}
	return module + ":" + name
}

// escapeMember protects '.' in member names from sjson path splitting.
func escapeMember(name string) string {
	return strings.ReplaceAll(name, ".", `\.`)
}

func nameOf(node *types.SchemaNode) string {
	if node == nil {
		return "root"
	}
	return node.Name
}

func invalidData(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

func encodeFailure(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to encode json").
		WithCause(err)
}

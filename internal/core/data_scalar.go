package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gnmi-yang-bridge/internal/types"
)

// FromScalar builds the leaf or leaf-list node addressed by id from a wire
// scalar. JSON payloads are decoded with FromJSON.
func (c DataCodec) FromScalar(id types.InstanceIdentifier, value types.Value) (*types.TreeNode, error) {
	if raw, ok := value.(types.JSONValue); ok {
		return c.FromJSON(id, raw)
	}
	schema, err := c.Paths.SchemaNode(id)
	if err != nil {
		return nil, err
	}
	if schema == nil || !schema.IsScalar() {
		return nil, invalidData(fmt.Sprintf("scalar value for %s requires a leaf target", id))
	}
	coerced, err := coerceScalar(schema.Type, value)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid value for %s", schema.Name)).
			WithCause(err)
	}
	node := &types.TreeNode{Name: schema.Name, Module: schema.Module}
	if schema.Kind == types.SchemaLeafList {
		node.Kind = types.NodeLeafList
		node.Values = []types.Value{coerced}
		return node, nil
	}
	node.Kind = types.NodeLeaf
	node.Value = coerced
	return node, nil
}

// ScalarUpdate turns an update of a single leaf into a merge of its parent.
// The parent must already exist in the datastore; the leaf is carried as a
// one-member object decoded against the parent.
func (c DataCodec) ScalarUpdate(id types.InstanceIdentifier, value types.Value, existingParent *types.TreeNode) (types.PendingOp, error) {
	leaf, err := c.FromScalar(id, value)
	if err != nil {
		return types.PendingOp{}, err
	}
	if leaf.Kind != types.NodeLeaf && leaf.Kind != types.NodeLeafList {
		return types.PendingOp{}, invalidData(fmt.Sprintf("scalar update for %s requires a leaf target", id))
	}
	if existingParent == nil {
		return types.PendingOp{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("update for non-existing simple value is not permitted")
	}
	parentID := id.Parent()
	var parentModule string
	if last, ok := parentID.Last(); ok {
		parentModule = last.Module
	}
	name := leaf.Name
	if leaf.Module != parentModule {
		name = qualifiedName(leaf.Module, leaf.Name)
	}
	schema, err := c.Paths.SchemaNode(id)
	if err != nil {
		return types.PendingOp{}, err
	}
	doc, err := c.setMember([]byte("{}"), escapeMember(name), leaf, schema)
	if err != nil {
		return types.PendingOp{}, err
	}
	parent, err := c.FromJSON(parentID, types.JSONValue(doc))
	if err != nil {
		return types.PendingOp{}, err
	}
	return types.PendingOp{Target: parentID, Kind: types.OpMerge, Value: parent}, nil
}

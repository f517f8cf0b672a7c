package core

import "gnmi-yang-bridge/internal/types"

// Filter prunes node to the requested data type. Config leaves survive a
// CONFIG request, non-config leaves a STATE request. Containers and lists
// that end up empty are dropped and a nil result means nothing matched.
// List entries keep their key leaves whenever other content survives.
func (c DataCodec) Filter(id types.InstanceIdentifier, node *types.TreeNode, dataType types.DataType) (*types.TreeNode, error) {
	if node == nil || dataType == types.DataTypeAll {
		return node, nil
	}
	want := dataType == types.DataTypeConfig
	if id.IsRoot() {
		var children []*types.TreeNode
		for _, child := range node.Children {
			schema := c.childSchema(nil, child.Module, child.Name)
			if schema == nil {
				continue
			}
			if kept := filterNode(child, schema, want); kept != nil {
				children = append(children, kept)
			}
		}
		if len(children) == 0 {
			return nil, nil
		}
		return &types.TreeNode{Kind: node.Kind, Children: children}, nil
	}
	schema, err := c.Paths.SchemaNode(id)
	if err != nil {
		return nil, err
	}
	if node.Kind == types.NodeListEntry {
		return filterEntry(node, schema, want), nil
	}
	return filterNode(node, schema, want), nil
}

func filterNode(node *types.TreeNode, schema *types.SchemaNode, config bool) *types.TreeNode {
	switch node.Kind {
	case types.NodeLeaf, types.NodeLeafList:
		if schema.Config != config {
			return nil
		}
		return node.Clone()
	case types.NodeList:
		out := &types.TreeNode{Kind: node.Kind, Name: node.Name, Module: node.Module}
		for _, entry := range node.Entries {
			if kept := filterEntry(entry, schema, config); kept != nil {
				out.Entries = append(out.Entries, kept)
			}
		}
		if len(out.Entries) == 0 {
			return nil
		}
		return out
	default:
		out := &types.TreeNode{Kind: node.Kind, Name: node.Name, Module: node.Module}
		out.Children = filterChildren(node.Children, schema, config)
		if len(out.Children) == 0 {
			return nil
		}
		return out
	}
}

func filterEntry(entry *types.TreeNode, schema *types.SchemaNode, config bool) *types.TreeNode {
	var (
		keys  []*types.TreeNode
		other []*types.TreeNode
	)
	for _, child := range entry.Children {
		if child.Kind == types.NodeLeaf && schema.IsKey(child.Name) {
			keys = append(keys, child.Clone())
			continue
		}
		other = append(other, child)
	}
	kept := filterChildren(other, schema, config)
	if len(kept) == 0 {
		return nil
	}
	out := &types.TreeNode{Kind: entry.Kind, Name: entry.Name, Module: entry.Module}
	out.Keys = append(out.Keys, entry.Keys...)
	out.Children = append(keys, kept...)
	return out
}

func filterChildren(children []*types.TreeNode, parent *types.SchemaNode, config bool) []*types.TreeNode {
	var out []*types.TreeNode
	for _, child := range children {
		schema := parent.QualifiedChild(child.Module, child.Name)
		if schema == nil {
			continue
		}
		if kept := filterNode(child, schema, config); kept != nil {
			out = append(out, kept)
		}
	}
	return out
}

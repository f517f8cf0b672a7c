package testutil

import "gnmi-yang-bridge/internal/types"

func Leaf(module string, name string, value types.Value) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeLeaf, Module: module, Name: name, Value: value}
}

func LeafList(module string, name string, values ...types.Value) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeLeafList, Module: module, Name: name, Values: values}
}

func Container(module string, name string, children ...*types.TreeNode) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeContainer, Module: module, Name: name, Children: children}
}

func List(module string, name string, entries ...*types.TreeNode) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeList, Module: module, Name: name, Entries: entries}
}

// Entry builds a list entry; the key leaves must be among children.
func Entry(module string, name string, keys []types.KeyValue, children ...*types.TreeNode) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeListEntry, Module: module, Name: name, Keys: keys, Children: children}
}

// InterfaceEntry is an interface list entry keyed by name.
func InterfaceEntry(name string, children ...*types.TreeNode) *types.TreeNode {
	all := append([]*types.TreeNode{Leaf(InterfacesModule, "name", types.StringValue(name))}, children...)
	return Entry(InterfacesModule, "interface", NameKey(name), all...)
}

func NameKey(name string) []types.KeyValue {
	return []types.KeyValue{{Name: "name", Value: types.StringValue(name)}}
}

// InterfacePath is the identifier of /interfaces/interface[name=name]
// followed by extra plain steps in the interfaces module.
func InterfacePath(name string, extra ...string) types.InstanceIdentifier {
	id := types.InstanceIdentifier{Steps: []types.PathStep{
		{Kind: types.StepNode, Module: InterfacesModule, Name: "interfaces"},
		{Kind: types.StepListEntry, Module: InterfacesModule, Name: "interface", Keys: NameKey(name)},
	}}
	for _, step := range extra {
		id = id.Append(types.PathStep{Kind: types.StepNode, Module: InterfacesModule, Name: step})
	}
	return id
}

// InterfaceListPath is the identifier of the keyless /interfaces/interface.
func InterfaceListPath() types.InstanceIdentifier {
	return types.InstanceIdentifier{Steps: []types.PathStep{
		{Kind: types.StepNode, Module: InterfacesModule, Name: "interfaces"},
		{Kind: types.StepNode, Module: InterfacesModule, Name: "interface"},
	}}
}

func MustPath(raw string) types.WirePath {
	path, err := types.ParseWirePath(raw)
	if err != nil {
		panic(err)
	}
	return path
}

package types

type NodeKind int

const (
	NodeContainer NodeKind = iota
	NodeList
	NodeListEntry
	NodeLeaf
	NodeLeafList
)

func (k NodeKind) String() string {
	switch k {
	case NodeList:
		return "list"
	case NodeListEntry:
		return "list-entry"
	case NodeLeaf:
		return "leaf"
	case NodeLeafList:
		return "leaf-list"
	default:
		return "container"
	}
}

// TreeNode is a schema-validated data node. Containers and list entries use
// Children, lists use Entries, leaves use Value and leaf-lists use Values.
// A list entry repeats its key leaves among its Children.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Module   string
	Value    Value
	Values   []Value
	Children []*TreeNode
	Entries  []*TreeNode
	Keys     []KeyValue
}

func (n *TreeNode) Child(name string) *TreeNode {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Member finds the child named name owned by module. An empty module on
// either side matches any owner.
func (n *TreeNode) Member(module string, name string) *TreeNode {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if sameMember(child, module, name) {
			return child
		}
	}
	return nil
}

// SetChild replaces the child with the same module and name or appends it.
func (n *TreeNode) SetChild(child *TreeNode) {
	for i, existing := range n.Children {
		if sameMember(existing, child.Module, child.Name) {
			n.Children[i] = child
			return
		}
	}
	n.Children = append(n.Children, child)
}

func (n *TreeNode) RemoveMember(module string, name string) bool {
	for i, existing := range n.Children {
		if sameMember(existing, module, name) {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

func sameMember(node *TreeNode, module string, name string) bool {
	if node.Name != name {
		return false
	}
	return module == "" || node.Module == "" || node.Module == module
}

// Entry finds the list entry carrying keys.
func (n *TreeNode) Entry(keys []KeyValue) *TreeNode {
	if n == nil {
		return nil
	}
	for _, entry := range n.Entries {
		if keysEqual(entry.Keys, keys) {
			return entry
		}
	}
	return nil
}

// SetEntry replaces the entry with matching keys or appends it.
func (n *TreeNode) SetEntry(entry *TreeNode) {
	for i, existing := range n.Entries {
		if keysEqual(existing.Keys, entry.Keys) {
			n.Entries[i] = entry
			return
		}
	}
	n.Entries = append(n.Entries, entry)
}

func (n *TreeNode) RemoveEntry(keys []KeyValue) bool {
	for i, existing := range n.Entries {
		if keysEqual(existing.Keys, keys) {
			n.Entries = append(n.Entries[:i], n.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// IsEmpty reports whether the node carries no data.
func (n *TreeNode) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case NodeLeaf:
		return n.Value == nil
	case NodeLeafList:
		return len(n.Values) == 0
	case NodeList:
		return len(n.Entries) == 0
	default:
		return len(n.Children) == 0
	}
}

// HasOnlyKeys reports whether a list entry holds nothing beyond its key
// leaves.
func (n *TreeNode) HasOnlyKeys() bool {
	for _, child := range n.Children {
		isKey := false
		for _, kv := range n.Keys {
			if kv.Name == child.Name {
				isKey = true
				break
			}
		}
		if !isKey {
			return false
		}
	}
	return true
}

func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	out := &TreeNode{
		Kind:   n.Kind,
		Name:   n.Name,
		Module: n.Module,
		Value:  n.Value,
	}
	if n.Values != nil {
		out.Values = append([]Value(nil), n.Values...)
	}
	if n.Keys != nil {
		out.Keys = append([]KeyValue(nil), n.Keys...)
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	for _, entry := range n.Entries {
		out.Entries = append(out.Entries, entry.Clone())
	}
	return out
}

// Equal compares two nodes structurally. Child and entry order matter.
func (n *TreeNode) Equal(other *TreeNode) bool {
	if n == nil || other == nil {
		return n == nil && other == nil
	}
	if n.Kind != other.Kind || n.Name != other.Name || n.Module != other.Module {
		return false
	}
	if !ValuesEqual(n.Value, other.Value) || len(n.Values) != len(other.Values) {
		return false
	}
	for i := range n.Values {
		if !ValuesEqual(n.Values[i], other.Values[i]) {
			return false
		}
	}
	if !keysEqual(n.Keys, other.Keys) || len(n.Children) != len(other.Children) || len(n.Entries) != len(other.Entries) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	for i := range n.Entries {
		if !n.Entries[i].Equal(other.Entries[i]) {
			return false
		}
	}
	return true
}

// Merge folds src into n. Leaves are overwritten, containers and entries
// merge recursively, leaf-lists take the union.
func (n *TreeNode) Merge(src *TreeNode) {
	if src == nil {
		return
	}
	switch n.Kind {
	case NodeLeaf:
		n.Value = src.Value
	case NodeLeafList:
		for _, value := range src.Values {
			if !containsValue(n.Values, value) {
				n.Values = append(n.Values, value)
			}
		}
	case NodeList:
		for _, entry := range src.Entries {
			if existing := n.Entry(entry.Keys); existing != nil {
				existing.Merge(entry)
				continue
			}
			n.Entries = append(n.Entries, entry.Clone())
		}
	default:
		for _, child := range src.Children {
			if existing := n.Member(child.Module, child.Name); existing != nil && existing.Kind == child.Kind {
				existing.Merge(child)
				continue
			}
			n.SetChild(child.Clone())
		}
	}
}

func containsValue(values []Value, value Value) bool {
	for _, existing := range values {
		if ValuesEqual(existing, value) {
			return true
		}
	}
	return false
}

func keysEqual(a []KeyValue, b []KeyValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !ValuesEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

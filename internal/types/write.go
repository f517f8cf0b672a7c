package types

type OpKind int

const (
	OpMerge OpKind = iota
	OpReplace
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	default:
		return "update"
	}
}

// PendingOp is a staged mutation owned by an open transaction. Value is nil
// for deletes.
type PendingOp struct {
	Target InstanceIdentifier
	Kind   OpKind
	Value  *TreeNode
}

// WireUpdate is one committed operation in wire form.
type WireUpdate struct {
	Kind  OpKind
	Path  WirePath
	Value JSONValue
}

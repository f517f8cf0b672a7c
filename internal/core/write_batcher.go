package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gnmi-yang-bridge/internal/types"
)

// WriteBatcher collects pending operations for one transaction and turns
// them into a minimal ordered list of wire updates at commit. A batcher is
// owned by a single caller and is not safe for concurrent use.
type WriteBatcher struct {
	codec  DataCodec
	ops    []types.PendingOp
	closed bool
}

func NewWriteBatcher(codec DataCodec) *WriteBatcher {
	return &WriteBatcher{codec: codec}
}

// Stage records op. A Replace or Delete drops every earlier op on the same
// identifier. A Merge is ignored when the latest staged op touching its
// target, an ancestor or a descendant is an identical Merge.
func (b *WriteBatcher) Stage(op types.PendingOp) error {
	if b.closed {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("write batch is already committed or rolled back")
	}
	switch op.Kind {
	case types.OpDelete:
		if op.Value != nil {
			return invalidData(fmt.Sprintf("delete of %s cannot carry a value", op.Target))
		}
	case types.OpMerge, types.OpReplace:
		if op.Value == nil {
			return invalidData(fmt.Sprintf("%s of %s requires a value", op.Kind, op.Target))
		}
	default:
		return invalidData(fmt.Sprintf("unknown operation kind %d", int(op.Kind)))
	}

	if op.Kind == types.OpMerge {
		if last, ok := b.lastOverlapping(op.Target); ok &&
			last.Kind == types.OpMerge && last.Target.Equal(op.Target) && last.Value.Equal(op.Value) {
			return nil
		}
		b.ops = append(b.ops, op)
		return nil
	}

	kept := b.ops[:0]
	for _, staged := range b.ops {
		if !staged.Target.Equal(op.Target) {
			kept = append(kept, staged)
		}
	}
	b.ops = append(kept, op)
	return nil
}

// lastOverlapping returns the most recent staged op whose target is id or
// lies above or below it.
func (b *WriteBatcher) lastOverlapping(id types.InstanceIdentifier) (types.PendingOp, bool) {
	for i := len(b.ops) - 1; i >= 0; i-- {
		staged := b.ops[i]
		if staged.Target.HasPrefix(id) || id.HasPrefix(staged.Target) {
			return staged, true
		}
	}
	return types.PendingOp{}, false
}

func (b *WriteBatcher) Merge(id types.InstanceIdentifier, node *types.TreeNode) error {
	return b.Stage(types.PendingOp{Target: id, Kind: types.OpMerge, Value: node})
}

func (b *WriteBatcher) Replace(id types.InstanceIdentifier, node *types.TreeNode) error {
	return b.Stage(types.PendingOp{Target: id, Kind: types.OpReplace, Value: node})
}

func (b *WriteBatcher) Delete(id types.InstanceIdentifier) error {
	return b.Stage(types.PendingOp{Target: id, Kind: types.OpDelete})
}

// Len returns the number of operations currently staged.
func (b *WriteBatcher) Len() int {
	return len(b.ops)
}

// Rollback discards every staged operation and closes the batch.
func (b *WriteBatcher) Rollback() {
	b.ops = nil
	b.closed = true
}

// Commit closes the batch and returns its wire updates in staging order,
// without the list prepare merges that other operations already imply.
func (b *WriteBatcher) Commit() ([]types.WireUpdate, error) {
	if b.closed {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("write batch is already committed or rolled back")
	}
	b.closed = true
	ops := eliminatePrepares(b.ops)
	b.ops = nil

	updates := make([]types.WireUpdate, 0, len(ops))
	for _, op := range ops {
		update := types.WireUpdate{Kind: op.Kind, Path: b.codec.Paths.ToPath(op.Target)}
		if op.Kind != types.OpDelete {
			doc, err := b.codec.ToJSON(op.Target, op.Value)
			if err != nil {
				return nil, err
			}
			update.Value = doc
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// eliminatePrepares drops merges that only assert list entries by key when
// every such entry is also written by another kept merge or replace.
func eliminatePrepares(ops []types.PendingOp) []types.PendingOp {
	prepares := make([][]types.InstanceIdentifier, len(ops))
	for i, op := range ops {
		prepares[i] = prepareEntries(op)
	}
	out := make([]types.PendingOp, 0, len(ops))
	for i, op := range ops {
		if prepares[i] == nil || !entriesCovered(prepares[i], ops, prepares, i) {
			out = append(out, op)
		}
	}
	return out
}

// prepareEntries returns the entry identifiers asserted by a prepare merge,
// or nil when op carries content beyond list keys.
func prepareEntries(op types.PendingOp) []types.InstanceIdentifier {
	if op.Kind != types.OpMerge || op.Value == nil {
		return nil
	}
	switch op.Value.Kind {
	case types.NodeListEntry:
		if !op.Value.HasOnlyKeys() {
			return nil
		}
		return []types.InstanceIdentifier{op.Target}
	case types.NodeList:
		if len(op.Value.Entries) == 0 {
			return nil
		}
		ids := make([]types.InstanceIdentifier, 0, len(op.Value.Entries))
		for _, entry := range op.Value.Entries {
			if !entry.HasOnlyKeys() {
				return nil
			}
			ids = append(ids, entryIdentifier(op.Target, entry))
		}
		return ids
	default:
		return nil
	}
}

// entryIdentifier turns the final list step of listID into the step of the
// given entry.
func entryIdentifier(listID types.InstanceIdentifier, entry *types.TreeNode) types.InstanceIdentifier {
	steps := append([]types.PathStep(nil), listID.Steps...)
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Kind == types.StepAugmentation {
			continue
		}
		steps[i] = types.PathStep{
			Kind:   types.StepListEntry,
			Module: steps[i].Module,
			Name:   steps[i].Name,
			Keys:   append([]types.KeyValue(nil), entry.Keys...),
		}
		break
	}
	return types.InstanceIdentifier{Steps: steps}
}

func entriesCovered(entries []types.InstanceIdentifier, ops []types.PendingOp, prepares [][]types.InstanceIdentifier, self int) bool {
	for _, entry := range entries {
		covered := false
		for j, other := range ops {
			if j == self || prepares[j] != nil || other.Kind == types.OpDelete {
				continue
			}
			if other.Target.HasPrefix(entry) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

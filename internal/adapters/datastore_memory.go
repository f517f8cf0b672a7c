package adapters

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// MemoryDataStore holds one data tree in memory. Apply works on a copy and
// swaps it in only when every operation succeeded.
type MemoryDataStore struct {
	mu   sync.RWMutex
	root *types.TreeNode
}

func NewMemoryDataStore(root *types.TreeNode) *MemoryDataStore {
	if root == nil {
		root = &types.TreeNode{Kind: types.NodeContainer}
	}
	return &MemoryDataStore{root: root.Clone()}
}

func (s *MemoryDataStore) Read(_ context.Context, id types.InstanceIdentifier) (*types.TreeNode, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node := locateNode(s.root, id.DataSteps())
	if node == nil || node.IsEmpty() {
		return nil, false, nil
	}
	return node.Clone(), true, nil
}

func (s *MemoryDataStore) Apply(ctx context.Context, ops []types.PendingOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.root.Clone()
	for _, op := range ops {
		var err error
		next, err = applyOp(next, op)
		if err != nil {
			return err
		}
	}
	s.root = next
	log.Ctx(ctx).Debug().Int("ops", len(ops)).Msg("datastore updated")
	return nil
}

// Snapshot returns a copy of the whole tree.
func (s *MemoryDataStore) Snapshot() *types.TreeNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.Clone()
}

func applyOp(root *types.TreeNode, op types.PendingOp) (*types.TreeNode, error) {
	steps := op.Target.DataSteps()
	if len(steps) == 0 {
		switch op.Kind {
		case types.OpDelete:
			return &types.TreeNode{Kind: types.NodeContainer}, nil
		case types.OpReplace:
			return op.Value.Clone(), nil
		default:
			root.Merge(op.Value)
			return root, nil
		}
	}

	last := steps[len(steps)-1]
	if op.Kind == types.OpDelete {
		parent := locateNode(root, steps[:len(steps)-1])
		if parent != nil {
			removeStep(parent, last)
		}
		return root, nil
	}
	if op.Value == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s of %s carries no value", op.Kind, op.Target))
	}

	parent := root
	for _, step := range steps[:len(steps)-1] {
		parent = ensureStep(parent, step)
	}
	placeStep(parent, last, op.Value, op.Kind == types.OpReplace)
	return root, nil
}

func locateNode(root *types.TreeNode, steps []types.PathStep) *types.TreeNode {
	current := root
	for _, step := range steps {
		child := current.Member(step.Module, step.Name)
		if child == nil {
			return nil
		}
		if step.Kind == types.StepListEntry {
			child = child.Entry(step.Keys)
			if child == nil {
				return nil
			}
		}
		current = child
	}
	return current
}

// ensureStep returns the node for step under parent, creating containers,
// lists and keyed entries on the way.
func ensureStep(parent *types.TreeNode, step types.PathStep) *types.TreeNode {
	if step.Kind != types.StepListEntry {
		child := parent.Member(step.Module, step.Name)
		if child == nil {
			child = &types.TreeNode{Kind: types.NodeContainer, Name: step.Name, Module: step.Module}
			parent.SetChild(child)
		}
		return child
	}
	list := ensureList(parent, step)
	entry := list.Entry(step.Keys)
	if entry == nil {
		entry = newEntry(step)
		list.SetEntry(entry)
	}
	return entry
}

func ensureList(parent *types.TreeNode, step types.PathStep) *types.TreeNode {
	list := parent.Member(step.Module, step.Name)
	if list == nil || list.Kind != types.NodeList {
		list = &types.TreeNode{Kind: types.NodeList, Name: step.Name, Module: step.Module}
		parent.SetChild(list)
	}
	return list
}

func newEntry(step types.PathStep) *types.TreeNode {
	entry := &types.TreeNode{
		Kind:   types.NodeListEntry,
		Name:   step.Name,
		Module: step.Module,
		Keys:   append([]types.KeyValue(nil), step.Keys...),
	}
	for _, kv := range step.Keys {
		entry.Children = append(entry.Children, &types.TreeNode{Kind: types.NodeLeaf, Name: kv.Name, Module: step.Module, Value: kv.Value})
	}
	return entry
}

func placeStep(parent *types.TreeNode, step types.PathStep, value *types.TreeNode, replace bool) {
	if step.Kind == types.StepListEntry {
		list := ensureList(parent, step)
		existing := list.Entry(step.Keys)
		if existing == nil || replace {
			list.SetEntry(value.Clone())
			return
		}
		existing.Merge(value)
		return
	}
	existing := parent.Member(step.Module, step.Name)
	if existing == nil || replace || existing.Kind != value.Kind {
		parent.SetChild(value.Clone())
		return
	}
	existing.Merge(value)
}

func removeStep(parent *types.TreeNode, step types.PathStep) {
	if step.Kind != types.StepListEntry {
		parent.RemoveMember(step.Module, step.Name)
		return
	}
	list := parent.Member(step.Module, step.Name)
	if list == nil {
		return
	}
	list.RemoveEntry(step.Keys)
	if len(list.Entries) == 0 {
		parent.RemoveMember(step.Module, step.Name)
	}
}

var _ ports.DataStorePort = (*MemoryDataStore)(nil)

package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gnmi-yang-bridge/internal/types"
)

// PathCodec converts between wire paths and instance identifiers against a
// resolved schema.
type PathCodec struct {
	Schema *types.SchemaContext
}

func NewPathCodec(schema *types.SchemaContext) PathCodec {
	return PathCodec{Schema: schema}
}

// ToIdentifier validates path against the schema. The first element selects
// the owning module; later elements that belong to another module get an
// augmentation step in front of them.
func (c PathCodec) ToIdentifier(path types.WirePath) (types.InstanceIdentifier, error) {
	if c.Schema == nil {
		return types.InstanceIdentifier{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("path codec requires a schema context")
	}
	id := types.InstanceIdentifier{}
	var node *types.SchemaNode
	for i, elem := range path.Elems {
		last := i == len(path.Elems)-1
		if i == 0 {
			top, err := c.topLevel(elem.Name)
			if err != nil {
				return types.InstanceIdentifier{}, err
			}
			node = top
		} else {
			child, err := c.child(node, elem.Name)
			if err != nil {
				return types.InstanceIdentifier{}, err
			}
			if child.Augmenting() {
				id.Steps = append(id.Steps, types.PathStep{Kind: types.StepAugmentation, Module: child.Module})
			}
			node = child
		}
		step, err := c.step(node, elem, last)
		if err != nil {
			return types.InstanceIdentifier{}, err
		}
		id.Steps = append(id.Steps, step)
	}
	return id, nil
}

// ToPath is the inverse of ToIdentifier. Augmentation steps have no wire
// form and are dropped. A name is module-qualified when its local form
// would resolve to a different node.
func (c PathCodec) ToPath(id types.InstanceIdentifier) types.WirePath {
	path := types.WirePath{}
	var node *types.SchemaNode
	for i, step := range id.DataSteps() {
		var qualify bool
		node, qualify = c.wireName(node, i == 0, step)
		elem := types.PathElement{Name: step.Name}
		if qualify {
			elem.Name = step.Module + ":" + step.Name
		}
		if len(step.Keys) > 0 {
			elem.Keys = make(map[string]string, len(step.Keys))
			for _, kv := range step.Keys {
				elem.Keys[kv.Name] = kv.Value.String()
			}
		}
		path.Elems = append(path.Elems, elem)
	}
	return path
}

// wireName looks up the schema node for step below parent and reports
// whether its unqualified name is ambiguous or shadowed by a sibling.
func (c PathCodec) wireName(parent *types.SchemaNode, first bool, step types.PathStep) (*types.SchemaNode, bool) {
	if c.Schema == nil {
		return nil, false
	}
	if first {
		var node *types.SchemaNode
		if module := c.Schema.Module(step.Module); module != nil {
			node = module.Root.QualifiedChild(step.Module, step.Name)
		}
		return node, len(c.Schema.TopLevel(step.Name)) > 1
	}
	if parent == nil {
		return nil, false
	}
	node := parent.QualifiedChild(step.Module, step.Name)
	return node, node != nil && parent.Child(step.Name) != node
}

// SchemaNode returns the schema node id addresses, or nil for the root.
func (c PathCodec) SchemaNode(id types.InstanceIdentifier) (*types.SchemaNode, error) {
	var node *types.SchemaNode
	for i, step := range id.DataSteps() {
		var next *types.SchemaNode
		if i == 0 {
			if module := c.Schema.Module(step.Module); module != nil {
				next = module.Root.QualifiedChild(step.Module, step.Name)
			}
		} else {
			next = node.QualifiedChild(step.Module, step.Name)
		}
		if next == nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("identifier %s does not match the schema", id))
		}
		node = next
	}
	return node, nil
}

func (c PathCodec) topLevel(name string) (*types.SchemaNode, error) {
	qualifier, local := types.SplitQualified(name)
	if qualifier != "" {
		moduleName, ok := c.Schema.ResolveModule(qualifier)
		if ok {
			if node := c.Schema.Module(moduleName).Root.QualifiedChild(moduleName, local); node != nil {
				return node, nil
			}
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no module exposes top-level element %s", name))
	}
	candidates := c.Schema.TopLevel(local)
	switch len(candidates) {
	case 0:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no module exposes top-level element %s", name))
	case 1:
		return candidates[0], nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("top-level element %s is ambiguous across modules", name))
	}
}

func (c PathCodec) child(parent *types.SchemaNode, name string) (*types.SchemaNode, error) {
	if parent.IsScalar() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("%s %s has no child %s", parent.Kind, parent.Name, name))
	}
	qualifier, local := types.SplitQualified(name)
	var child *types.SchemaNode
	if qualifier != "" {
		if moduleName, ok := c.Schema.ResolveModule(qualifier); ok {
			child = parent.QualifiedChild(moduleName, local)
		}
	} else {
		child = parent.Child(local)
	}
	if child == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("unknown element %s under %s", name, parent.Name))
	}
	return child, nil
}

func (c PathCodec) step(node *types.SchemaNode, elem types.PathElement, last bool) (types.PathStep, error) {
	step := types.PathStep{Kind: types.StepNode, Module: node.Module, Name: node.Name}
	for name := range elem.Keys {
		if node.Kind != types.SchemaList || !node.IsKey(name) {
			return types.PathStep{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("unknown predicate key %s for %s", name, node.Name))
		}
	}
	if node.Kind != types.SchemaList {
		return step, nil
	}
	if len(elem.Keys) == 0 {
		if !last {
			return types.PathStep{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("list %s requires key predicates", node.Name))
		}
		return step, nil
	}
	step.Kind = types.StepListEntry
	for _, key := range node.Keys {
		raw, ok := elem.Keys[key]
		if !ok {
			return types.PathStep{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("missing key %s for list %s", key, node.Name))
		}
		keyNode := node.Child(key)
		if keyNode == nil {
			return types.PathStep{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("list %s declares key %s without a leaf", node.Name, key))
		}
		value, err := parseScalar(keyNode.Type, raw)
		if err != nil {
			return types.PathStep{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid key %s for list %s", key, node.Name)).
				WithCause(err)
		}
		step.Keys = append(step.Keys, types.KeyValue{Name: key, Value: value})
	}
	return step, nil
}

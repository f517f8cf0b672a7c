package types

import (
	"sort"
	"strings"
)

// SchemaSource is one YANG source handed to the schema compiler. Key is the
// source identity used for diagnostics (name@version).
type SchemaSource struct {
	Key  string
	Name string
	Body string
}

type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarInt
	ScalarUint
	ScalarBool
	ScalarDecimal
	ScalarEmpty
	ScalarEnum
	ScalarIdentityRef
	ScalarUnion
	ScalarBinary
	ScalarBits
	ScalarLeafref
)

// ScalarType describes the value space of a leaf or leaf-list.
type ScalarType struct {
	Kind           ScalarKind
	Bits           int
	FractionDigits int
	Members        []ScalarType
	Enum           []string
	// Path is the unresolved leafref path; compilers replace leafref types
	// with their target type before building a SchemaContext.
	Path string
}

type SchemaNodeKind int

const (
	SchemaContainer SchemaNodeKind = iota
	SchemaList
	SchemaLeaf
	SchemaLeafList
)

func (k SchemaNodeKind) String() string {
	switch k {
	case SchemaList:
		return "list"
	case SchemaLeaf:
		return "leaf"
	case SchemaLeafList:
		return "leaf-list"
	default:
		return "container"
	}
}

// SchemaNode is one data node of a compiled module. Choice and case layers
// are flattened away.
type SchemaNode struct {
	Name   string
	Module string
	Kind   SchemaNodeKind
	Keys   []string
	Type   ScalarType
	Config bool
	Parent *SchemaNode

	children  []*SchemaNode
	byName    map[string]*SchemaNode
	qualified map[string]*SchemaNode
}

func NewSchemaNode(name string, module string, kind SchemaNodeKind) *SchemaNode {
	return &SchemaNode{
		Name:      name,
		Module:    module,
		Kind:      kind,
		Config:    true,
		byName:    map[string]*SchemaNode{},
		qualified: map[string]*SchemaNode{},
	}
}

// AddChild attaches child and returns it. The first child registered under
// a local name wins unqualified lookups.
func (n *SchemaNode) AddChild(child *SchemaNode) *SchemaNode {
	child.Parent = n
	n.children = append(n.children, child)
	if _, ok := n.byName[child.Name]; !ok {
		n.byName[child.Name] = child
	}
	n.qualified[child.Module+":"+child.Name] = child
	return child
}

func (n *SchemaNode) Child(name string) *SchemaNode {
	if n == nil {
		return nil
	}
	return n.byName[name]
}

func (n *SchemaNode) QualifiedChild(module string, name string) *SchemaNode {
	if n == nil {
		return nil
	}
	return n.qualified[module+":"+name]
}

func (n *SchemaNode) Children() []*SchemaNode {
	return n.children
}

func (n *SchemaNode) IsKey(name string) bool {
	for _, key := range n.Keys {
		if key == name {
			return true
		}
	}
	return false
}

// Augmenting reports whether the node was added to its parent by another
// module.
func (n *SchemaNode) Augmenting() bool {
	return n.Parent != nil && n.Parent.Module != "" && n.Parent.Module != n.Module
}

// IsScalar reports whether the node holds values rather than children.
func (n *SchemaNode) IsScalar() bool {
	return n.Kind == SchemaLeaf || n.Kind == SchemaLeafList
}

// ModuleSchema is a compiled module. Root is a synthetic container whose
// children are the module's top-level data nodes.
type ModuleSchema struct {
	Name      string
	Prefix    string
	Namespace string
	Revision  string
	SemVer    string // openconfig-version, when declared
	Root      *SchemaNode
}

// SchemaContext is an immutable set of compiled modules. It is safe for
// concurrent readers once constructed.
type SchemaContext struct {
	modules  map[string]*ModuleSchema
	names    []string
	prefixes map[string]string
}

func NewSchemaContext(modules ...*ModuleSchema) *SchemaContext {
	ctx := &SchemaContext{
		modules:  map[string]*ModuleSchema{},
		prefixes: map[string]string{},
	}
	for _, module := range modules {
		if module.Root == nil {
			module.Root = NewSchemaNode("", module.Name, SchemaContainer)
		}
		ctx.modules[module.Name] = module
		if module.Prefix != "" {
			ctx.prefixes[module.Prefix] = module.Name
		}
	}
	for name := range ctx.modules {
		ctx.names = append(ctx.names, name)
	}
	sort.Strings(ctx.names)
	return ctx
}

// Modules returns the modules sorted by name.
func (c *SchemaContext) Modules() []*ModuleSchema {
	out := make([]*ModuleSchema, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.modules[name])
	}
	return out
}

func (c *SchemaContext) ModuleNames() []string {
	return append([]string(nil), c.names...)
}

func (c *SchemaContext) Module(name string) *ModuleSchema {
	return c.modules[name]
}

// ResolveModule maps a module name or prefix to a module name.
func (c *SchemaContext) ResolveModule(qualifier string) (string, bool) {
	if _, ok := c.modules[qualifier]; ok {
		return qualifier, true
	}
	name, ok := c.prefixes[qualifier]
	return name, ok
}

// TopLevel returns every top-level node named name, in module order.
func (c *SchemaContext) TopLevel(name string) []*SchemaNode {
	var out []*SchemaNode
	for _, module := range c.Modules() {
		if node := module.Root.QualifiedChild(module.Name, name); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// TopLevelNodes returns the top-level nodes of all modules, in module order.
func (c *SchemaContext) TopLevelNodes() []*SchemaNode {
	var out []*SchemaNode
	for _, module := range c.Modules() {
		for _, child := range module.Root.Children() {
			if child.Module == module.Name {
				out = append(out, child)
			}
		}
	}
	return out
}

// SplitQualified splits "module:name" into its parts. Unqualified names
// return an empty module.
func SplitQualified(name string) (string, string) {
	if idx := strings.Index(name, ":"); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

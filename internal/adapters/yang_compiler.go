package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/hashicorp/go-multierror"
	"github.com/openconfig/goyang/pkg/yang"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// unattributedSource collects compiler diagnostics that name no source.
const unattributedSource = "schema"

// YangCompiler implements SchemaCompilerPort with goyang. Parsed headers
// are cached by source content.
type YangCompiler struct {
	mu      sync.Mutex
	headers map[string]types.ModuleHeader
}

func NewYangCompiler() *YangCompiler {
	return &YangCompiler{headers: map[string]types.ModuleHeader{}}
}

func (c *YangCompiler) Inspect(source types.SchemaSource) (types.ModuleHeader, error) {
	digest := sourceDigest(source)
	c.mu.Lock()
	header, ok := c.headers[digest]
	c.mu.Unlock()
	if ok {
		return header, nil
	}

	statements, err := yang.Parse(source.Body, source.Key)
	if err != nil {
		return types.ModuleHeader{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse YANG source " + source.Key).
			WithCause(err)
	}
	if len(statements) != 1 {
		return types.ModuleHeader{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("YANG source %s must hold exactly one module, found %d statements", source.Key, len(statements)))
	}
	header, err = moduleHeader(statements[0])
	if err != nil {
		return types.ModuleHeader{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid YANG source " + source.Key).
			WithCause(err)
	}

	c.mu.Lock()
	c.headers[digest] = header
	c.mu.Unlock()
	return header, nil
}

func moduleHeader(stmt *yang.Statement) (types.ModuleHeader, error) {
	header := types.ModuleHeader{Name: stmt.Argument}
	switch stmt.Keyword {
	case "module":
	case "submodule":
		header.Submodule = true
	default:
		return header, fmt.Errorf("unexpected top-level statement %q", stmt.Keyword)
	}
	if header.Name == "" {
		return header, fmt.Errorf("%s statement has no name", stmt.Keyword)
	}
	for _, sub := range stmt.SubStatements() {
		switch sub.Keyword {
		case "import":
			header.Imports = append(header.Imports, dependency(sub))
		case "include":
			header.Includes = append(header.Includes, dependency(sub))
		case "belongs-to":
			header.BelongsTo = sub.Argument
		case "revision":
			if sub.Argument > header.Revision {
				header.Revision = sub.Argument
			}
		default:
			if strings.HasSuffix(sub.Keyword, ":openconfig-version") {
				header.SemVer = sub.Argument
			}
		}
	}
	return header, nil
}

// dependency turns an import or include into a capability, pinned when a
// revision-date is given.
func dependency(stmt *yang.Statement) types.Capability {
	capability := types.Capability{Name: stmt.Argument}
	for _, sub := range stmt.SubStatements() {
		if sub.Keyword == "revision-date" {
			capability.Version = types.Revision(sub.Argument)
		}
	}
	return capability
}

func sourceDigest(source types.SchemaSource) string {
	sum := sha256.Sum256([]byte(source.Key + "\x00" + source.Body))
	return hex.EncodeToString(sum[:])
}

// Compile parses and processes all sources together. Diagnostics are keyed
// by the source they point at.
func (c *YangCompiler) Compile(ctx context.Context, sources []types.SchemaSource) (*types.SchemaContext, map[string]error) {
	modules := yang.NewModules()
	keys := make([]string, 0, len(sources))
	diagnostics := map[string]*multierror.Error{}

	for _, source := range sources {
		keys = append(keys, source.Key)
		if err := modules.Parse(source.Body, source.Key); err != nil {
			diagnostics[source.Key] = appendDiagnostic(diagnostics[source.Key], err)
		}
	}
	if len(diagnostics) > 0 {
		return nil, flattenDiagnostics(diagnostics)
	}
	for _, err := range modules.Process() {
		key := attributeDiagnostic(err, keys)
		diagnostics[key] = appendDiagnostic(diagnostics[key], err)
	}
	if len(diagnostics) > 0 {
		return nil, flattenDiagnostics(diagnostics)
	}

	var schemas []*types.ModuleSchema
	seen := map[string]bool{}
	for _, name := range sortedModuleNames(modules) {
		module := modules.Modules[name]
		if seen[module.Name] {
			continue
		}
		seen[module.Name] = true
		entry := yang.ToEntry(module)
		for _, err := range entry.Errors {
			key := attributeDiagnostic(err, keys)
			diagnostics[key] = appendDiagnostic(diagnostics[key], err)
		}
		schemas = append(schemas, moduleSchema(module, entry))
	}
	if len(diagnostics) > 0 {
		return nil, flattenDiagnostics(diagnostics)
	}

	log.Ctx(ctx).Debug().
		Int("sources", len(sources)).
		Int("modules", len(schemas)).
		Msg("yang sources compiled")
	return types.NewSchemaContext(schemas...), nil
}

func sortedModuleNames(modules *yang.Modules) []string {
	names := make([]string, 0, len(modules.Modules))
	for name := range modules.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func appendDiagnostic(existing *multierror.Error, err error) *multierror.Error {
	merged := multierror.Append(existing, err)
	merged.ErrorFormat = func(errs []error) string {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, e.Error())
		}
		return strings.Join(messages, "; ")
	}
	return merged
}

func flattenDiagnostics(diagnostics map[string]*multierror.Error) map[string]error {
	out := make(map[string]error, len(diagnostics))
	for key, merged := range diagnostics {
		if err := merged.ErrorOrNil(); err != nil {
			out[key] = err
		}
	}
	return out
}

// attributeDiagnostic finds the source a goyang error refers to. Errors
// are prefixed with the name the source was parsed under.
func attributeDiagnostic(err error, keys []string) string {
	message := err.Error()
	if prefix, _, ok := strings.Cut(message, ":"); ok {
		for _, key := range keys {
			if key == prefix {
				return key
			}
		}
	}
	best := ""
	for _, key := range keys {
		if strings.Contains(message, key) && len(key) > len(best) {
			best = key
		}
	}
	if best != "" {
		return best
	}
	return unattributedSource
}

func moduleSchema(module *yang.Module, entry *yang.Entry) *types.ModuleSchema {
	schema := &types.ModuleSchema{
		Name:     module.Name,
		Revision: module.Current(),
		Root:     types.NewSchemaNode("", module.Name, types.SchemaContainer),
	}
	if module.Prefix != nil {
		schema.Prefix = module.Prefix.Name
	}
	if module.Namespace != nil {
		schema.Namespace = module.Namespace.Name
	}
	for _, ext := range module.Extensions {
		if strings.HasSuffix(ext.Keyword, ":openconfig-version") {
			schema.SemVer = ext.Argument
		}
	}
	addEntryChildren(schema.Root, entry, module.Name)
	return schema
}

// addEntryChildren converts the data children of entry. Choice and case
// levels have no data node of their own and are flattened.
func addEntryChildren(parent *types.SchemaNode, entry *yang.Entry, module string) {
	for _, name := range sortedDir(entry) {
		child := entry.Dir[name]
		if child.RPC != nil || child.Kind == yang.NotificationEntry {
			continue
		}
		if child.IsChoice() || child.IsCase() {
			addEntryChildren(parent, child, module)
			continue
		}
		if node := schemaNode(child, module); node != nil {
			parent.AddChild(node)
		}
	}
}

func sortedDir(entry *yang.Entry) []string {
	names := make([]string, 0, len(entry.Dir))
	for name := range entry.Dir {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func schemaNode(entry *yang.Entry, parentModule string) *types.SchemaNode {
	module, err := entry.InstantiatingModule()
	if err != nil || module == "" {
		module = parentModule
	}
	var node *types.SchemaNode
	switch {
	case entry.IsList():
		node = types.NewSchemaNode(entry.Name, module, types.SchemaList)
		node.Keys = strings.Fields(entry.Key)
	case entry.IsLeafList():
		node = types.NewSchemaNode(entry.Name, module, types.SchemaLeafList)
		node.Type = scalarType(entry, entry.Type, 0)
	case entry.IsLeaf():
		node = types.NewSchemaNode(entry.Name, module, types.SchemaLeaf)
		node.Type = scalarType(entry, entry.Type, 0)
	case entry.IsContainer():
		node = types.NewSchemaNode(entry.Name, module, types.SchemaContainer)
	default:
		return nil
	}
	node.Config = !entry.ReadOnly()
	if !node.IsScalar() {
		addEntryChildren(node, entry, module)
	}
	return node
}

var leafrefPredicate = regexp.MustCompile(`\[[^\]]*\]`)

// maxLeafrefDepth bounds chains of leafrefs pointing at leafrefs.
const maxLeafrefDepth = 8

func scalarType(entry *yang.Entry, t *yang.YangType, depth int) types.ScalarType {
	if t == nil {
		return types.ScalarType{Kind: types.ScalarString}
	}
	switch t.Kind {
	case yang.Yint8:
		return types.ScalarType{Kind: types.ScalarInt, Bits: 8}
	case yang.Yint16:
		return types.ScalarType{Kind: types.ScalarInt, Bits: 16}
	case yang.Yint32:
		return types.ScalarType{Kind: types.ScalarInt, Bits: 32}
	case yang.Yint64:
		return types.ScalarType{Kind: types.ScalarInt, Bits: 64}
	case yang.Yuint8:
		return types.ScalarType{Kind: types.ScalarUint, Bits: 8}
	case yang.Yuint16:
		return types.ScalarType{Kind: types.ScalarUint, Bits: 16}
	case yang.Yuint32:
		return types.ScalarType{Kind: types.ScalarUint, Bits: 32}
	case yang.Yuint64:
		return types.ScalarType{Kind: types.ScalarUint, Bits: 64}
	case yang.Ybool:
		return types.ScalarType{Kind: types.ScalarBool}
	case yang.Yempty:
		return types.ScalarType{Kind: types.ScalarEmpty}
	case yang.Ydecimal64:
		return types.ScalarType{Kind: types.ScalarDecimal, FractionDigits: t.FractionDigits}
	case yang.Yenum:
		scalar := types.ScalarType{Kind: types.ScalarEnum}
		if t.Enum != nil {
			scalar.Enum = t.Enum.Names()
		}
		return scalar
	case yang.Yidentityref:
		return types.ScalarType{Kind: types.ScalarIdentityRef}
	case yang.Ybinary:
		return types.ScalarType{Kind: types.ScalarBinary}
	case yang.Ybits:
		return types.ScalarType{Kind: types.ScalarBits}
	case yang.Yunion:
		scalar := types.ScalarType{Kind: types.ScalarUnion}
		for _, member := range t.Type {
			scalar.Members = append(scalar.Members, scalarType(entry, member, depth))
		}
		return scalar
	case yang.Yleafref:
		if depth < maxLeafrefDepth {
			target := entry.Find(leafrefPredicate.ReplaceAllString(t.Path, ""))
			if target != nil && target != entry && target.Type != nil {
				resolved := scalarType(target, target.Type, depth+1)
				resolved.Path = t.Path
				return resolved
			}
		}
		return types.ScalarType{Kind: types.ScalarLeafref, Path: t.Path}
	default:
		return types.ScalarType{Kind: types.ScalarString}
	}
}

var _ ports.SchemaCompilerPort = (*YangCompiler)(nil)

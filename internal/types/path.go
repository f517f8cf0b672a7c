package types

import (
	"fmt"
	"sort"
	"strings"
)

// PathElement is one unvalidated wire path segment.
type PathElement struct {
	Name string
	Keys map[string]string
}

// WirePath is a gNMI-style path. It carries no schema meaning by itself.
type WirePath struct {
	Origin string
	Elems  []PathElement
}

func (p WirePath) String() string {
	if len(p.Elems) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, elem := range p.Elems {
		b.WriteByte('/')
		b.WriteString(elem.Name)
		names := make([]string, 0, len(elem.Keys))
		for name := range elem.Keys {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "[%s=%s]", name, escapeKeyValue(elem.Keys[name]))
		}
	}
	return b.String()
}

func escapeKeyValue(value string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(value)
}

// ParseWirePath parses the textual form "/a/b[k=v]/c". Key values may
// contain '/' and escape ']' with a backslash.
func ParseWirePath(raw string) (WirePath, error) {
	text := strings.TrimSpace(raw)
	path := WirePath{}
	if text == "" || text == "/" {
		return path, nil
	}
	text = strings.TrimPrefix(text, "/")
	var (
		elem    *PathElement
		name    strings.Builder
		buf     strings.Builder
		inKey   bool
		escaped bool
	)
	flush := func() error {
		if elem == nil {
			if name.Len() == 0 {
				return fmt.Errorf("empty path element in %q", raw)
			}
			path.Elems = append(path.Elems, PathElement{Name: name.String()})
		} else {
			path.Elems = append(path.Elems, *elem)
		}
		elem = nil
		name.Reset()
		return nil
	}
	for _, r := range text {
		switch {
		case escaped:
			buf.WriteRune(r)
			escaped = false
		case inKey && r == '\\':
			escaped = true
		case inKey && r == ']':
			key, value, ok := strings.Cut(buf.String(), "=")
			if !ok || key == "" {
				return WirePath{}, fmt.Errorf("invalid key predicate %q in %q", buf.String(), raw)
			}
			elem.Keys[key] = value
			buf.Reset()
			inKey = false
		case inKey:
			buf.WriteRune(r)
		case r == '[':
			if elem == nil {
				if name.Len() == 0 {
					return WirePath{}, fmt.Errorf("key predicate without element in %q", raw)
				}
				elem = &PathElement{Name: name.String(), Keys: map[string]string{}}
			}
			inKey = true
		case r == '/':
			if err := flush(); err != nil {
				return WirePath{}, err
			}
		default:
			if elem != nil {
				return WirePath{}, fmt.Errorf("unexpected %q after key predicate in %q", r, raw)
			}
			name.WriteRune(r)
		}
	}
	if inKey {
		return WirePath{}, fmt.Errorf("unterminated key predicate in %q", raw)
	}
	if err := flush(); err != nil {
		return WirePath{}, err
	}
	return path, nil
}

type StepKind int

const (
	StepNode StepKind = iota
	StepListEntry
	StepAugmentation
)

// KeyValue is a typed list key.
type KeyValue struct {
	Name  string
	Value Value
}

// PathStep is one step of an InstanceIdentifier. Augmentation steps carry
// only the augmenting module.
type PathStep struct {
	Kind   StepKind
	Module string
	Name   string
	Keys   []KeyValue
}

func (s PathStep) Equal(other PathStep) bool {
	if s.Kind != other.Kind || s.Module != other.Module || s.Name != other.Name || len(s.Keys) != len(other.Keys) {
		return false
	}
	for i := range s.Keys {
		if s.Keys[i].Name != other.Keys[i].Name || !ValuesEqual(s.Keys[i].Value, other.Keys[i].Value) {
			return false
		}
	}
	return true
}

// Key returns the value of the named key.
func (s PathStep) Key(name string) (Value, bool) {
	for _, kv := range s.Keys {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return nil, false
}

// InstanceIdentifier is a schema-validated path into the data tree. The
// zero value addresses the root.
type InstanceIdentifier struct {
	Steps []PathStep
}

func (id InstanceIdentifier) IsRoot() bool {
	return len(id.DataSteps()) == 0
}

// DataSteps returns the steps without augmentation boundaries.
func (id InstanceIdentifier) DataSteps() []PathStep {
	out := make([]PathStep, 0, len(id.Steps))
	for _, step := range id.Steps {
		if step.Kind != StepAugmentation {
			out = append(out, step)
		}
	}
	return out
}

// Last returns the final data step.
func (id InstanceIdentifier) Last() (PathStep, bool) {
	for i := len(id.Steps) - 1; i >= 0; i-- {
		if id.Steps[i].Kind != StepAugmentation {
			return id.Steps[i], true
		}
	}
	return PathStep{}, false
}

// Parent drops the final data step and the augmentation boundary that may
// precede it.
func (id InstanceIdentifier) Parent() InstanceIdentifier {
	end := len(id.Steps)
	for end > 0 && id.Steps[end-1].Kind == StepAugmentation {
		end--
	}
	if end > 0 {
		end--
	}
	for end > 0 && id.Steps[end-1].Kind == StepAugmentation {
		end--
	}
	return InstanceIdentifier{Steps: append([]PathStep(nil), id.Steps[:end]...)}
}

// Append returns a copy of id extended with steps.
func (id InstanceIdentifier) Append(steps ...PathStep) InstanceIdentifier {
	out := make([]PathStep, 0, len(id.Steps)+len(steps))
	out = append(out, id.Steps...)
	out = append(out, steps...)
	return InstanceIdentifier{Steps: out}
}

func (id InstanceIdentifier) Equal(other InstanceIdentifier) bool {
	if len(id.Steps) != len(other.Steps) {
		return false
	}
	for i := range id.Steps {
		if !id.Steps[i].Equal(other.Steps[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses id or one of its ancestors.
// Augmentation steps are ignored.
func (id InstanceIdentifier) HasPrefix(prefix InstanceIdentifier) bool {
	steps := id.DataSteps()
	want := prefix.DataSteps()
	if len(want) > len(steps) {
		return false
	}
	for i := range want {
		if !steps[i].Equal(want[i]) {
			return false
		}
	}
	return true
}

// String renders a canonical form; module names appear where ownership
// changes.
func (id InstanceIdentifier) String() string {
	if len(id.Steps) == 0 {
		return "/"
	}
	var b strings.Builder
	module := ""
	for _, step := range id.Steps {
		if step.Kind == StepAugmentation {
			fmt.Fprintf(&b, "/(%s)", step.Module)
			continue
		}
		b.WriteByte('/')
		if step.Module != module {
			b.WriteString(step.Module)
			b.WriteByte(':')
			module = step.Module
		}
		b.WriteString(step.Name)
		for _, kv := range step.Keys {
			fmt.Fprintf(&b, "[%s=%s]", kv.Name, escapeKeyValue(kv.Value.String()))
		}
	}
	return b.String()
}

package types

import "fmt"

// VersionKind names the discipline a version string follows.
type VersionKind int

const (
	VersionNone VersionKind = iota
	VersionSemVer
	VersionRevision
)

func (k VersionKind) String() string {
	switch k {
	case VersionSemVer:
		return "semver"
	case VersionRevision:
		return "revision"
	default:
		return "none"
	}
}

// Version is a module version tagged with its discipline. A versionless
// model may still carry an opaque Value that matched neither grammar.
type Version struct {
	Kind  VersionKind
	Value string
}

func SemVer(value string) Version {
	return Version{Kind: VersionSemVer, Value: value}
}

func Revision(value string) Version {
	return Version{Kind: VersionRevision, Value: value}
}

func NoVersion() Version {
	return Version{}
}

func (v Version) IsNone() bool {
	return v.Kind == VersionNone && v.Value == ""
}

func (v Version) String() string {
	return v.Value
}

// Capability is a (module, version) pair announced by a device.
type Capability struct {
	Name    string
	Version Version
}

// Key is the stable identity used for deduplication and sorting.
func (c Capability) Key() string {
	if c.Version.Value == "" {
		return c.Name
	}
	return fmt.Sprintf("%s@%s", c.Name, c.Version.Value)
}

func (c Capability) String() string {
	return c.Key()
}

// StoredModel is a YANG source body held by a model store.
type StoredModel struct {
	Name    string
	Version Version
	Body    string
}

// Key identifies the stored model as a compilation source.
func (m StoredModel) Key() string {
	return Capability{Name: m.Name, Version: m.Version}.Key()
}

// ModuleHeader is what a source declares about itself before compilation.
type ModuleHeader struct {
	Name      string
	Submodule bool
	BelongsTo string
	Revision  string
	SemVer    string
	Imports   []Capability
	Includes  []Capability
}

// Dependencies returns imports followed by includes.
func (h ModuleHeader) Dependencies() []Capability {
	deps := make([]Capability, 0, len(h.Imports)+len(h.Includes))
	deps = append(deps, h.Imports...)
	deps = append(deps, h.Includes...)
	return deps
}

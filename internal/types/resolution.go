package types

import (
	"fmt"
	"sort"
	"strings"
)

// ResolutionError aggregates every problem found while resolving a
// capability set. At least one field is non-empty.
type ResolutionError struct {
	Missing []Capability
	Syntax  map[string]error
}

func (e *ResolutionError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		names := make([]string, 0, len(e.Missing))
		for _, capability := range e.Missing {
			names = append(names, capability.Key())
		}
		parts = append(parts, fmt.Sprintf("missing models: %s", strings.Join(names, ", ")))
	}
	if len(e.Syntax) > 0 {
		parts = append(parts, fmt.Sprintf("syntax errors in: %s", strings.Join(e.SyntaxSources(), ", ")))
	}
	return "schema resolution failed: " + strings.Join(parts, "; ")
}

// SyntaxSources returns the failing source identities, sorted.
func (e *ResolutionError) SyntaxSources() []string {
	sources := make([]string, 0, len(e.Syntax))
	for source := range e.Syntax {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Empty reports whether nothing was recorded.
func (e *ResolutionError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Syntax) == 0
}

// ResolutionReport is the operator-facing record of a resolution attempt.
type ResolutionReport struct {
	Succeeded bool               `yaml:"succeeded"`
	Modules   []ReportModule     `yaml:"modules,omitempty"`
	Missing   []string           `yaml:"missing,omitempty"`
	Syntax    []ReportDiagnostic `yaml:"syntax_errors,omitempty"`
}

type ReportModule struct {
	Name      string `yaml:"name"`
	Revision  string `yaml:"revision,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

type ReportDiagnostic struct {
	Source  string `yaml:"source"`
	Message string `yaml:"message"`
}

// NewResolutionReport builds a report from a resolution outcome.
func NewResolutionReport(schema *SchemaContext, failure *ResolutionError) ResolutionReport {
	report := ResolutionReport{}
	if failure != nil {
		for _, capability := range failure.Missing {
			report.Missing = append(report.Missing, capability.Key())
		}
		for _, source := range failure.SyntaxSources() {
			report.Syntax = append(report.Syntax, ReportDiagnostic{
				Source:  source,
				Message: failure.Syntax[source].Error(),
			})
		}
		return report
	}
	report.Succeeded = schema != nil
	if schema != nil {
		for _, module := range schema.Modules() {
			report.Modules = append(report.Modules, ReportModule{
				Name:      module.Name,
				Revision:  module.Revision,
				Namespace: module.Namespace,
			})
		}
	}
	return report
}

package app

import "gnmi-yang-bridge/internal/types"

// CapabilityInput names capabilities by file, inline name@version strings
// or both.
type CapabilityInput struct {
	File   string
	Inline []string
}

type ResolveRequest struct {
	Config       Config
	Capabilities CapabilityInput
	ReportPath   string
}

type ResolveResult struct {
	Schema *types.SchemaContext
	Report types.ResolutionReport
}

type ValidateRequest struct {
	Config       Config
	Capabilities CapabilityInput
}

type ValidateResult struct {
	Capabilities []types.Capability
	Models       int
}

type InspectRequest struct {
	ReportPath string
}

type InspectResult struct {
	Report types.ResolutionReport
}

type ImportModelsRequest struct {
	Config Config
	Root   string
}

type ImportModelsResult struct {
	Imported []types.StoredModel
	Skipped  []string
}

type AddModelRequest struct {
	Config  Config
	Path    string
	Version string
}

type SessionRequest struct {
	Config       Config
	Capabilities CapabilityInput
	DataPath     string
}

package ports

import "gnmi-yang-bridge/internal/types"

type CapabilitySourcePort interface {
	LoadCapabilities(path string) ([]types.Capability, error)
}

type ReportPort interface {
	WriteReport(path string, report types.ResolutionReport) error
	ReadReport(path string) (types.ResolutionReport, error)
}

type TreeFilePort interface {
	ReadTree(path string) (types.JSONValue, error)
	WriteTree(path string, document types.JSONValue) error
}

type ModelFinderPort interface {
	FindModels(root string) ([]string, error)
}

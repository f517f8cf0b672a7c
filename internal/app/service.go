package app

import (
	"time"

	"gnmi-yang-bridge/internal/adapters"
	"gnmi-yang-bridge/internal/ports"
)

type Service struct {
	Compiler     ports.SchemaCompilerPort
	Capabilities ports.CapabilitySourcePort
	Reports      ports.ReportPort
	Trees        ports.TreeFilePort
	Finder       ports.ModelFinderPort
	Clock        func() time.Time
}

func NewService() Service {
	return Service{
		Compiler:     adapters.NewYangCompiler(),
		Capabilities: adapters.NewCapabilityFileAdapter(),
		Reports:      adapters.NewReportFileAdapter(),
		Trees:        adapters.NewTreeFileAdapter(),
		Finder:       adapters.NewYangFinder(),
		Clock:        time.Now,
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

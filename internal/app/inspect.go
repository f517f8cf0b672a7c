package app

import "gnmi-yang-bridge/internal/shared"

func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	path, err := shared.RequireValue(req.ReportPath, "report path")
	if err != nil {
		return InspectResult{}, err
	}
	report, err := s.Reports.ReadReport(path)
	if err != nil {
		return InspectResult{}, err
	}
	return InspectResult{Report: report}, nil
}

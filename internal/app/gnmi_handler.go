package app

import (
	"context"

	"github.com/openconfig/gnmi/proto/gnmi"

	"gnmi-yang-bridge/internal/adapters"
)

// GNMIHandler serves gNMI Capabilities, Get and Set messages through a
// Mediator.
type GNMIHandler struct {
	Mediator  *Mediator
	Converter adapters.GNMIConverter
}

func NewGNMIHandler(mediator *Mediator) GNMIHandler {
	return GNMIHandler{Mediator: mediator, Converter: adapters.NewGNMIConverter()}
}

func (h GNMIHandler) Capabilities(_ context.Context, _ *gnmi.CapabilityRequest) (*gnmi.CapabilityResponse, error) {
	return h.Converter.CapabilitiesToProto(h.Mediator.Capabilities()), nil
}

func (h GNMIHandler) Get(ctx context.Context, req *gnmi.GetRequest) (*gnmi.GetResponse, error) {
	request, err := h.Converter.GetRequestFromProto(req)
	if err != nil {
		return nil, err
	}
	resp, err := h.Mediator.Get(ctx, request)
	if err != nil {
		return nil, err
	}
	return h.Converter.GetResponseToProto(resp), nil
}

func (h GNMIHandler) Set(ctx context.Context, req *gnmi.SetRequest) (*gnmi.SetResponse, error) {
	request, err := h.Converter.SetRequestFromProto(req)
	if err != nil {
		return nil, err
	}
	resp, err := h.Mediator.Set(ctx, request)
	if err != nil {
		return nil, err
	}
	return h.Converter.SetResponseToProto(resp), nil
}

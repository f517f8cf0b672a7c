package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/openconfig/gnmi/proto/gnmi"

	"gnmi-yang-bridge/internal/policies"
	"gnmi-yang-bridge/internal/types"
)

// GNMIVersion is reported in capability responses.
const GNMIVersion = "0.10.0"

// GNMIConverter maps gNMI protobuf messages to the wire types used by the
// mediation service and back.
type GNMIConverter struct{}

func NewGNMIConverter() GNMIConverter {
	return GNMIConverter{}
}

// PathFromProto joins prefix and path into one wire path.
func (GNMIConverter) PathFromProto(prefix *gnmi.Path, path *gnmi.Path) types.WirePath {
	out := types.WirePath{}
	for _, part := range []*gnmi.Path{prefix, path} {
		if part == nil {
			continue
		}
		if part.GetOrigin() != "" {
			out.Origin = part.GetOrigin()
		}
		for _, elem := range part.GetElem() {
			element := types.PathElement{Name: elem.GetName()}
			if len(elem.GetKey()) > 0 {
				element.Keys = make(map[string]string, len(elem.GetKey()))
				for name, value := range elem.GetKey() {
					element.Keys[name] = value
				}
			}
			out.Elems = append(out.Elems, element)
		}
	}
	return out
}

func (GNMIConverter) PathToProto(path types.WirePath) *gnmi.Path {
	out := &gnmi.Path{Origin: path.Origin}
	for _, elem := range path.Elems {
		element := &gnmi.PathElem{Name: elem.Name}
		if len(elem.Keys) > 0 {
			element.Key = make(map[string]string, len(elem.Keys))
			for name, value := range elem.Keys {
				element.Key[name] = value
			}
		}
		out.Elem = append(out.Elem, element)
	}
	return out
}

// ValueFromProto maps a typed value onto the closed set of supported value
// kinds.
func (GNMIConverter) ValueFromProto(value *gnmi.TypedValue) (types.Value, error) {
	switch v := value.GetValue().(type) {
	case *gnmi.TypedValue_StringVal:
		return types.StringValue(v.StringVal), nil
	case *gnmi.TypedValue_AsciiVal:
		return types.StringValue(v.AsciiVal), nil
	case *gnmi.TypedValue_IntVal:
		return types.IntValue(v.IntVal), nil
	case *gnmi.TypedValue_UintVal:
		return types.UintValue(v.UintVal), nil
	case *gnmi.TypedValue_BoolVal:
		return types.BoolValue(v.BoolVal), nil
	case *gnmi.TypedValue_DoubleVal:
		return types.FloatValue(v.DoubleVal), nil
	case *gnmi.TypedValue_FloatVal:
		return types.FloatValue(v.FloatVal), nil
	case *gnmi.TypedValue_DecimalVal:
		return types.DecimalValue{Digits: v.DecimalVal.GetDigits(), Precision: v.DecimalVal.GetPrecision()}, nil
	case *gnmi.TypedValue_JsonIetfVal:
		return types.JSONValue(v.JsonIetfVal), nil
	case *gnmi.TypedValue_JsonVal:
		return types.JSONValue(v.JsonVal), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported value kind %T", v))
	}
}

func (GNMIConverter) JSONToProto(value types.JSONValue) *gnmi.TypedValue {
	return &gnmi.TypedValue{Value: &gnmi.TypedValue_JsonIetfVal{JsonIetfVal: []byte(value)}}
}

func (c GNMIConverter) GetRequestFromProto(req *gnmi.GetRequest) (types.GetRequest, error) {
	switch req.GetEncoding() {
	case gnmi.Encoding_JSON, gnmi.Encoding_JSON_IETF:
	default:
		return types.GetRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported encoding " + req.GetEncoding().String())
	}
	out := types.GetRequest{}
	switch req.GetType() {
	case gnmi.GetRequest_CONFIG:
		out.DataType = types.DataTypeConfig
	case gnmi.GetRequest_STATE, gnmi.GetRequest_OPERATIONAL:
		out.DataType = types.DataTypeState
	default:
		out.DataType = types.DataTypeAll
	}
	for _, path := range req.GetPath() {
		out.Paths = append(out.Paths, c.PathFromProto(req.GetPrefix(), path))
	}
	if len(out.Paths) == 0 {
		out.Paths = append(out.Paths, c.PathFromProto(req.GetPrefix(), nil))
	}
	return out, nil
}

// GetResponseToProto emits one notification per returned path.
func (c GNMIConverter) GetResponseToProto(resp types.GetResponse) *gnmi.GetResponse {
	out := &gnmi.GetResponse{}
	for _, value := range resp.Values {
		out.Notification = append(out.Notification, &gnmi.Notification{
			Timestamp: value.Timestamp.UnixNano(),
			Update: []*gnmi.Update{{
				Path: c.PathToProto(value.Path),
				Val:  c.JSONToProto(value.Value),
			}},
		})
	}
	return out
}

func (c GNMIConverter) SetRequestFromProto(req *gnmi.SetRequest) (types.SetRequest, error) {
	out := types.SetRequest{}
	for _, path := range req.GetDelete() {
		out.Deletes = append(out.Deletes, c.PathFromProto(req.GetPrefix(), path))
	}
	replaces, err := c.updatesFromProto(req.GetPrefix(), req.GetReplace())
	if err != nil {
		return types.SetRequest{}, err
	}
	updates, err := c.updatesFromProto(req.GetPrefix(), req.GetUpdate())
	if err != nil {
		return types.SetRequest{}, err
	}
	out.Replaces = replaces
	out.Updates = updates
	return out, nil
}

func (c GNMIConverter) updatesFromProto(prefix *gnmi.Path, updates []*gnmi.Update) ([]types.PathUpdate, error) {
	out := make([]types.PathUpdate, 0, len(updates))
	for _, update := range updates {
		value, err := c.ValueFromProto(update.GetVal())
		if err != nil {
			return nil, err
		}
		out = append(out, types.PathUpdate{Path: c.PathFromProto(prefix, update.GetPath()), Value: value})
	}
	return out, nil
}

func (c GNMIConverter) SetResponseToProto(resp types.SetResponse) *gnmi.SetResponse {
	out := &gnmi.SetResponse{Timestamp: resp.Timestamp.UnixNano()}
	for _, result := range resp.Results {
		out.Response = append(out.Response, &gnmi.UpdateResult{
			Path: c.PathToProto(result.Path),
			Op:   operationToProto(result.Kind),
		})
	}
	return out
}

func operationToProto(kind types.OpKind) gnmi.UpdateResult_Operation {
	switch kind {
	case types.OpDelete:
		return gnmi.UpdateResult_DELETE
	case types.OpReplace:
		return gnmi.UpdateResult_REPLACE
	default:
		return gnmi.UpdateResult_UPDATE
	}
}

func (GNMIConverter) CapabilitiesToProto(capabilities []types.Capability) *gnmi.CapabilityResponse {
	out := &gnmi.CapabilityResponse{
		SupportedEncodings: []gnmi.Encoding{gnmi.Encoding_JSON_IETF, gnmi.Encoding_JSON},
		GNMIVersion:        GNMIVersion,
	}
	for _, capability := range capabilities {
		out.SupportedModels = append(out.SupportedModels, &gnmi.ModelData{
			Name:    capability.Name,
			Version: capability.Version.Value,
		})
	}
	return out
}

// CapabilitiesFromProto reads the models a device announces.
func (GNMIConverter) CapabilitiesFromProto(resp *gnmi.CapabilityResponse) []types.Capability {
	out := make([]types.Capability, 0, len(resp.GetSupportedModels()))
	for _, model := range resp.GetSupportedModels() {
		out = append(out, types.Capability{
			Name:    model.GetName(),
			Version: policies.ClassifyVersion(model.GetVersion()),
		})
	}
	return out
}

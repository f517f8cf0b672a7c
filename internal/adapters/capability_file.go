package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/protobuf/encoding/protojson"
	"gopkg.in/yaml.v3"

	"gnmi-yang-bridge/internal/policies"
	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

type capabilityFile struct {
	Capabilities []capabilityEntry `yaml:"capabilities"`
}

type capabilityEntry struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// CapabilityFileAdapter loads announced capabilities from a YAML list or
// from a gNMI CapabilityResponse saved as JSON.
type CapabilityFileAdapter struct {
	converter GNMIConverter
}

func NewCapabilityFileAdapter() CapabilityFileAdapter {
	return CapabilityFileAdapter{converter: NewGNMIConverter()}
}

func (a CapabilityFileAdapter) LoadCapabilities(path string) ([]types.Capability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("capability file not found: " + path).
			WithCause(err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var resp gnmi.CapabilityResponse
		if err := protojson.Unmarshal(data, &resp); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to parse capability response: " + path).
				WithCause(err)
		}
		return a.converter.CapabilitiesFromProto(&resp), nil
	}

	var file capabilityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse capability file: " + path).
			WithCause(err)
	}
	out := make([]types.Capability, 0, len(file.Capabilities))
	for _, entry := range file.Capabilities {
		out = append(out, types.Capability{
			Name:    strings.TrimSpace(entry.Name),
			Version: policies.ClassifyVersion(strings.TrimSpace(entry.Version)),
		})
	}
	return out, nil
}

var _ ports.CapabilitySourcePort = CapabilityFileAdapter{}

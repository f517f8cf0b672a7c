// Package testutil builds schemas and trees shared by package tests.
package testutil

import "gnmi-yang-bridge/internal/types"

const (
	InterfacesModule = "openconfig-interfaces"
	EthernetModule   = "openconfig-if-ethernet"
	PlatformModule   = "openconfig-platform"
	SystemModule     = "example-system"
)

var (
	stringType = types.ScalarType{Kind: types.ScalarString}
	boolType   = types.ScalarType{Kind: types.ScalarBool}
	uint16Type = types.ScalarType{Kind: types.ScalarUint, Bits: 16}
	uint32Type = types.ScalarType{Kind: types.ScalarUint, Bits: 32}
	uint64Type = types.ScalarType{Kind: types.ScalarUint, Bits: 64}
)

func leaf(parent *types.SchemaNode, name string, scalar types.ScalarType) *types.SchemaNode {
	node := types.NewSchemaNode(name, parent.Module, types.SchemaLeaf)
	node.Type = scalar
	node.Config = parent.Config
	return parent.AddChild(node)
}

func container(parent *types.SchemaNode, module string, name string) *types.SchemaNode {
	node := types.NewSchemaNode(name, module, types.SchemaContainer)
	node.Config = parent.Config
	return parent.AddChild(node)
}

func list(parent *types.SchemaNode, name string, keys ...string) *types.SchemaNode {
	node := types.NewSchemaNode(name, parent.Module, types.SchemaList)
	node.Keys = keys
	node.Config = parent.Config
	return parent.AddChild(node)
}

// InterfacesSchema returns a trimmed openconfig-interfaces model with an
// ethernet augmentation, a platform model and a small system model.
func InterfacesSchema() *types.SchemaContext {
	ifModule := &types.ModuleSchema{Name: InterfacesModule, Prefix: "oc-if", Namespace: "http://openconfig.net/yang/interfaces", Revision: "2021-04-06"}
	ifModule.Root = types.NewSchemaNode("", InterfacesModule, types.SchemaContainer)
	interfaces := container(ifModule.Root, InterfacesModule, "interfaces")
	iface := list(interfaces, "interface", "name")
	leaf(iface, "name", stringType)
	config := container(iface, InterfacesModule, "config")
	leaf(config, "name", stringType)
	leaf(config, "type", types.ScalarType{Kind: types.ScalarIdentityRef})
	leaf(config, "mtu", uint16Type)
	leaf(config, "description", stringType)
	leaf(config, "enabled", boolType)
	leaf(config, "loopback-mode", boolType)
	state := container(iface, InterfacesModule, "state")
	state.Config = false
	leaf(state, "name", stringType)
	leaf(state, "oper-status", types.ScalarType{Kind: types.ScalarEnum, Enum: []string{"UP", "DOWN", "TESTING"}})
	counters := container(state, InterfacesModule, "counters")
	leaf(counters, "in-octets", uint64Type)
	subinterfaces := container(iface, InterfacesModule, "subinterfaces")
	subinterface := list(subinterfaces, "subinterface", "index")
	leaf(subinterface, "index", uint32Type)
	subConfig := container(subinterface, InterfacesModule, "config")
	leaf(subConfig, "index", uint32Type)
	leaf(subConfig, "description", stringType)

	ethModule := &types.ModuleSchema{Name: EthernetModule, Prefix: "eth", Namespace: "http://openconfig.net/yang/interfaces/ethernet", Revision: "2022-04-20"}
	ethernet := container(iface, EthernetModule, "ethernet")
	ethConfig := container(ethernet, EthernetModule, "config")
	leaf(ethConfig, "mac-address", stringType)
	leaf(ethConfig, "duplex-mode", types.ScalarType{Kind: types.ScalarEnum, Enum: []string{"FULL", "HALF"}})
	leaf(ethConfig, "port-speed", types.ScalarType{Kind: types.ScalarIdentityRef})

	platformModule := &types.ModuleSchema{Name: PlatformModule, Prefix: "oc-platform", Namespace: "http://openconfig.net/yang/platform", Revision: "2023-02-13"}
	platformModule.Root = types.NewSchemaNode("", PlatformModule, types.SchemaContainer)
	components := container(platformModule.Root, PlatformModule, "components")
	component := list(components, "component", "name")
	leaf(component, "name", stringType)
	componentConfig := container(component, PlatformModule, "config")
	leaf(componentConfig, "name", stringType)
	componentState := container(component, PlatformModule, "state")
	componentState.Config = false
	temperature := container(componentState, PlatformModule, "temperature")
	leaf(temperature, "instant", types.ScalarType{Kind: types.ScalarDecimal, FractionDigits: 1})

	systemModule := &types.ModuleSchema{Name: SystemModule, Prefix: "sys", Namespace: "urn:example:system", Revision: "2024-01-01"}
	systemModule.Root = types.NewSchemaNode("", SystemModule, types.SchemaContainer)
	system := container(systemModule.Root, SystemModule, "system")
	leaf(system, "hostname", stringType)
	dns := types.NewSchemaNode("dns-servers", SystemModule, types.SchemaLeafList)
	dns.Type = stringType
	system.AddChild(dns)
	leaf(system, "offset", types.ScalarType{Kind: types.ScalarInt, Bits: 16})
	leaf(system, "ratio", types.ScalarType{Kind: types.ScalarDecimal, FractionDigits: 2})
	leaf(system, "tracing", types.ScalarType{Kind: types.ScalarEmpty})
	leaf(system, "level", types.ScalarType{Kind: types.ScalarUnion, Members: []types.ScalarType{
		{Kind: types.ScalarUint, Bits: 8},
		{Kind: types.ScalarEnum, Enum: []string{"low", "high"}},
	}})

	return types.NewSchemaContext(ifModule, ethModule, platformModule, systemModule)
}

const (
	AlphaModule = "mod-a"
	BetaModule  = "mod-b"
)

// CollidingSchema returns two modules that both expose a top-level system
// container. mod-b also augments mod-a's top container with a cfg node that
// shares its local name with mod-a's own cfg.
func CollidingSchema() *types.SchemaContext {
	alpha := &types.ModuleSchema{Name: AlphaModule, Prefix: "a", Namespace: "urn:example:a", Revision: "2024-01-01"}
	alpha.Root = types.NewSchemaNode("", AlphaModule, types.SchemaContainer)
	leaf(container(alpha.Root, AlphaModule, "system"), "host", stringType)
	top := container(alpha.Root, AlphaModule, "top")
	leaf(container(top, AlphaModule, "cfg"), "native", stringType)

	beta := &types.ModuleSchema{Name: BetaModule, Prefix: "b", Namespace: "urn:example:b", Revision: "2024-02-01"}
	beta.Root = types.NewSchemaNode("", BetaModule, types.SchemaContainer)
	leaf(container(beta.Root, BetaModule, "system"), "host", stringType)
	leaf(container(top, BetaModule, "cfg"), "augmented", stringType)

	return types.NewSchemaContext(alpha, beta)
}

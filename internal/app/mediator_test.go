package app

import (
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnmi-yang-bridge/internal/adapters"
	"gnmi-yang-bridge/internal/testutil"
	"gnmi-yang-bridge/internal/types"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seededTree() *types.TreeNode {
	eth0 := testutil.InterfaceEntry("eth0",
		testutil.Container(testutil.InterfacesModule, "config",
			testutil.Leaf(testutil.InterfacesModule, "name", types.StringValue("eth0")),
			testutil.Leaf(testutil.InterfacesModule, "mtu", types.UintValue(1500)),
		),
		testutil.Container(testutil.InterfacesModule, "state",
			testutil.Leaf(testutil.InterfacesModule, "oper-status", types.StringValue("UP")),
		),
	)
	return testutil.Container("", "",
		testutil.Container(testutil.InterfacesModule, "interfaces",
			testutil.List(testutil.InterfacesModule, "interface", eth0),
		),
	)
}

func newTestMediator(t *testing.T) (*Mediator, *adapters.MemoryDataStore) {
	t.Helper()
	store := adapters.NewMemoryDataStore(seededTree())
	mediator := NewMediator(testutil.InterfacesSchema(), store)
	mediator.Clock = func() time.Time { return fixedTime }
	return mediator, store
}

func TestMediatorGetLeaf(t *testing.T) {
	mediator, _ := newTestMediator(t)

	resp, err := mediator.Get(t.Context(), types.GetRequest{
		Paths: []types.WirePath{testutil.MustPath("/interfaces/interface[name=eth0]/config/mtu")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Values, 1)
	assert.JSONEq(t, `{"openconfig-interfaces:mtu":1500}`, string(resp.Values[0].Value))
	if diff := cmp.Diff(fixedTime, resp.Values[0].Timestamp); diff != "" {
		t.Fatalf("unexpected timestamp (-want +got):\n%s", diff)
	}
}

func TestMediatorGetFiltersByDataType(t *testing.T) {
	mediator, _ := newTestMediator(t)
	path := testutil.MustPath("/interfaces/interface[name=eth0]")

	config, err := mediator.Get(t.Context(), types.GetRequest{Paths: []types.WirePath{path}, DataType: types.DataTypeConfig})
	require.NoError(t, err)
	require.Len(t, config.Values, 1)
	assert.JSONEq(t,
		`{"openconfig-interfaces:interface":[{"name":"eth0","config":{"name":"eth0","mtu":1500}}]}`,
		string(config.Values[0].Value))

	state, err := mediator.Get(t.Context(), types.GetRequest{Paths: []types.WirePath{path}, DataType: types.DataTypeState})
	require.NoError(t, err)
	require.Len(t, state.Values, 1)
	assert.JSONEq(t,
		`{"openconfig-interfaces:interface":[{"name":"eth0","state":{"oper-status":"UP"}}]}`,
		string(state.Values[0].Value))
}

func TestMediatorGetRecordsUnresolvedPaths(t *testing.T) {
	mediator, _ := newTestMediator(t)

	resp, err := mediator.Get(t.Context(), types.GetRequest{Paths: []types.WirePath{
		testutil.MustPath("/interfaces/bogus"),
		testutil.MustPath("/interfaces/interface[name=eth0]/config/name"),
		testutil.MustPath("/interfaces/interface[name=eth9]/config"),
	}})
	require.NoError(t, err)
	require.Len(t, resp.Values, 1)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "/interfaces/bogus", resp.Errors[0].Path.String())
}

func TestMediatorGetNothingFound(t *testing.T) {
	mediator, _ := newTestMediator(t)

	_, err := mediator.Get(t.Context(), types.GetRequest{
		Paths: []types.WirePath{testutil.MustPath("/system/hostname")},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestMediatorSetScalarUpdate(t *testing.T) {
	mediator, store := newTestMediator(t)
	path := testutil.MustPath("/interfaces/interface[name=eth0]/config/mtu")

	resp, err := mediator.Set(t.Context(), types.SetRequest{
		Updates: []types.PathUpdate{{Path: path, Value: types.StringValue("9000")}},
	})
	require.NoError(t, err)
	if diff := cmp.Diff([]types.OpResult{{Path: path, Kind: types.OpMerge}}, resp.Results); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
	require.Len(t, resp.Committed, 1)
	assert.Equal(t, "/interfaces/interface[name=eth0]/config", resp.Committed[0].Path.String())
	assert.Equal(t, fixedTime, resp.Timestamp)

	mtu, found, err := store.Read(t.Context(), testutil.InterfacePath("eth0", "config", "mtu"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.UintValue(9000), mtu.Value)
	name, found, err := store.Read(t.Context(), testutil.InterfacePath("eth0", "config", "name"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.StringValue("eth0"), name.Value)
}

func TestMediatorSetScalarUpdateWithoutParent(t *testing.T) {
	mediator, store := newTestMediator(t)
	before := store.Snapshot()

	_, err := mediator.Set(t.Context(), types.SetRequest{
		Updates: []types.PathUpdate{{
			Path:  testutil.MustPath("/interfaces/interface[name=eth1]/config/mtu"),
			Value: types.UintValue(9000),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.True(t, before.Equal(store.Snapshot()))
}

func TestMediatorSetOrdersDeletesReplacesUpdates(t *testing.T) {
	mediator, store := newTestMediator(t)

	resp, err := mediator.Set(t.Context(), types.SetRequest{
		Updates: []types.PathUpdate{{
			Path:  testutil.MustPath("/interfaces/interface[name=eth1]/config"),
			Value: types.JSONValue(`{"openconfig-interfaces:config":{"name":"eth1","enabled":true}}`),
		}},
		Replaces: []types.PathUpdate{{
			Path:  testutil.MustPath("/interfaces/interface[name=eth1]/config/description"),
			Value: types.StringValue("spare"),
		}},
		Deletes: []types.WirePath{testutil.MustPath("/interfaces/interface[name=eth0]/state")},
	})
	require.NoError(t, err)
	kinds := make([]types.OpKind, 0, len(resp.Results))
	for _, result := range resp.Results {
		kinds = append(kinds, result.Kind)
	}
	if diff := cmp.Diff([]types.OpKind{types.OpDelete, types.OpReplace, types.OpMerge}, kinds); diff != "" {
		t.Fatalf("unexpected result order (-want +got):\n%s", diff)
	}

	_, found, err := store.Read(t.Context(), testutil.InterfacePath("eth0", "state"))
	require.NoError(t, err)
	assert.False(t, found)

	config, found, err := store.Read(t.Context(), testutil.InterfacePath("eth1", "config"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.StringValue("spare"), config.Child("description").Value)
	assert.Equal(t, types.BoolValue(true), config.Child("enabled").Value)
}

func TestMediatorSetUnresolvedPathAppliesNothing(t *testing.T) {
	mediator, store := newTestMediator(t)
	before := store.Snapshot()

	_, err := mediator.Set(t.Context(), types.SetRequest{
		Deletes: []types.WirePath{testutil.MustPath("/interfaces/interface[name=eth0]/state")},
		Updates: []types.PathUpdate{{Path: testutil.MustPath("/interfaces/nope"), Value: types.StringValue("x")}},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.True(t, before.Equal(store.Snapshot()))
}

func TestMediatorSetInvalidValueAppliesNothing(t *testing.T) {
	mediator, store := newTestMediator(t)
	before := store.Snapshot()

	_, err := mediator.Set(t.Context(), types.SetRequest{
		Deletes: []types.WirePath{testutil.MustPath("/interfaces/interface[name=eth0]/state")},
		Replaces: []types.PathUpdate{{
			Path:  testutil.MustPath("/interfaces/interface[name=eth0]/config/mtu"),
			Value: types.StringValue("not-a-number"),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.True(t, before.Equal(store.Snapshot()))
}

func TestMediatorCapabilities(t *testing.T) {
	mediator, _ := newTestMediator(t)

	got := mediator.Capabilities()
	want := []types.Capability{
		{Name: testutil.SystemModule, Version: types.Revision("2024-01-01")},
		{Name: testutil.EthernetModule, Version: types.Revision("2022-04-20")},
		{Name: testutil.InterfacesModule, Version: types.Revision("2021-04-06")},
		{Name: testutil.PlatformModule, Version: types.Revision("2023-02-13")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected capabilities (-want +got):\n%s", diff)
	}
}

func TestMediatorCapabilitiesPreferSemVer(t *testing.T) {
	schema := types.NewSchemaContext(
		&types.ModuleSchema{Name: "openconfig-interfaces", Revision: "2023-02-06", SemVer: "3.0.0"},
		&types.ModuleSchema{Name: "example-system", Revision: "2023-05-01"},
		&types.ModuleSchema{Name: "bare"},
	)
	mediator := NewMediator(schema, adapters.NewMemoryDataStore(nil))

	want := []types.Capability{
		{Name: "bare", Version: types.NoVersion()},
		{Name: "example-system", Version: types.Revision("2023-05-01")},
		{Name: "openconfig-interfaces", Version: types.SemVer("3.0.0")},
	}
	if diff := cmp.Diff(want, mediator.Capabilities()); diff != "" {
		t.Fatalf("unexpected capabilities (-want +got):\n%s", diff)
	}
}

func TestMediatorSetOnCollidingNames(t *testing.T) {
	store := adapters.NewMemoryDataStore(nil)
	mediator := NewMediator(testutil.CollidingSchema(), store)
	mediator.Clock = func() time.Time { return fixedTime }

	resp, err := mediator.Set(t.Context(), types.SetRequest{
		Replaces: []types.PathUpdate{
			{Path: testutil.MustPath("/top/mod-b:cfg/augmented"), Value: types.StringValue("b")},
			{Path: testutil.MustPath("/top/cfg/native"), Value: types.StringValue("a")},
			{Path: testutil.MustPath("/mod-a:system/host"), Value: types.StringValue("edge-1")},
		},
	})
	require.NoError(t, err)
	paths := make([]string, 0, len(resp.Committed))
	for _, update := range resp.Committed {
		paths = append(paths, update.Path.String())
	}
	if diff := cmp.Diff([]string{"/top/mod-b:cfg/augmented", "/top/cfg/native", "/mod-a:system/host"}, paths); diff != "" {
		t.Fatalf("unexpected committed paths (-want +got):\n%s", diff)
	}

	top, found, err := store.Read(t.Context(), types.InstanceIdentifier{Steps: []types.PathStep{
		{Kind: types.StepNode, Module: testutil.AlphaModule, Name: "top"},
	}})
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, top.Children, 2)
	assert.Equal(t, types.StringValue("b"), top.Member(testutil.BetaModule, "cfg").Child("augmented").Value)
	assert.Equal(t, types.StringValue("a"), top.Member(testutil.AlphaModule, "cfg").Child("native").Value)

	system, found, err := store.Read(t.Context(), types.InstanceIdentifier{Steps: []types.PathStep{
		{Kind: types.StepNode, Module: testutil.AlphaModule, Name: "system"},
	}})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.StringValue("edge-1"), system.Child("host").Value)
}

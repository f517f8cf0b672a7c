package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnmi-yang-bridge/internal/testutil"
	"gnmi-yang-bridge/internal/types"
)

func seededDataStore() *MemoryDataStore {
	return NewMemoryDataStore(testutil.Container("", "",
		testutil.Container(testutil.InterfacesModule, "interfaces",
			testutil.List(testutil.InterfacesModule, "interface",
				testutil.InterfaceEntry("eth0", testutil.Container(testutil.InterfacesModule, "config",
					testutil.Leaf(testutil.InterfacesModule, "mtu", types.UintValue(1500)),
					testutil.Leaf(testutil.InterfacesModule, "description", types.StringValue("uplink")),
				)),
			),
		),
	))
}

func TestMemoryDataStoreRead(t *testing.T) {
	store := seededDataStore()

	node, found, err := store.Read(t.Context(), testutil.InterfacePath("eth0", "config", "mtu"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.UintValue(1500), node.Value)

	_, found, err = store.Read(t.Context(), testutil.InterfacePath("eth9"))
	require.NoError(t, err)
	assert.False(t, found)

	list, found, err := store.Read(t.Context(), testutil.InterfaceListPath())
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, list.Entries, 1)

	node.Value = types.UintValue(1)
	again, _, err := store.Read(t.Context(), testutil.InterfacePath("eth0", "config", "mtu"))
	require.NoError(t, err)
	assert.Equal(t, types.UintValue(1500), again.Value, "reads return copies")
}

func TestMemoryDataStoreApply(t *testing.T) {
	store := seededDataStore()
	ctx := t.Context()

	err := store.Apply(ctx, []types.PendingOp{
		{
			Target: testutil.InterfacePath("eth0", "config"),
			Kind:   types.OpMerge,
			Value: testutil.Container(testutil.InterfacesModule, "config",
				testutil.Leaf(testutil.InterfacesModule, "mtu", types.UintValue(9000)),
			),
		},
		{
			Target: testutil.InterfacePath("eth1", "config"),
			Kind:   types.OpReplace,
			Value: testutil.Container(testutil.InterfacesModule, "config",
				testutil.Leaf(testutil.InterfacesModule, "name", types.StringValue("eth1")),
			),
		},
	})
	require.NoError(t, err)

	config, found, err := store.Read(ctx, testutil.InterfacePath("eth0", "config"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.UintValue(9000), config.Child("mtu").Value)
	assert.Equal(t, types.StringValue("uplink"), config.Child("description").Value, "merge keeps siblings")

	created, found, err := store.Read(ctx, testutil.InterfacePath("eth1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.StringValue("eth1"), created.Child("name").Value, "created entries carry key leaves")

	require.NoError(t, store.Apply(ctx, []types.PendingOp{
		{Target: testutil.InterfacePath("eth0", "config", "description"), Kind: types.OpDelete},
		{Target: testutil.InterfacePath("eth1"), Kind: types.OpDelete},
	}))
	config, _, err = store.Read(ctx, testutil.InterfacePath("eth0", "config"))
	require.NoError(t, err)
	assert.Nil(t, config.Child("description"))
	_, found, err = store.Read(ctx, testutil.InterfacePath("eth1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryDataStoreApplyIsAtomic(t *testing.T) {
	store := seededDataStore()
	before := store.Snapshot()

	err := store.Apply(t.Context(), []types.PendingOp{
		{Target: testutil.InterfacePath("eth0"), Kind: types.OpDelete},
		{Target: testutil.InterfacePath("eth1", "config"), Kind: types.OpMerge},
	})
	require.Error(t, err)
	assert.True(t, before.Equal(store.Snapshot()), "failed apply leaves the tree untouched")
}

func TestMemoryDataStoreSeparatesAugmentedSiblings(t *testing.T) {
	store := NewMemoryDataStore(nil)
	ctx := t.Context()
	native := types.InstanceIdentifier{Steps: []types.PathStep{
		{Kind: types.StepNode, Module: testutil.AlphaModule, Name: "top"},
		{Kind: types.StepNode, Module: testutil.AlphaModule, Name: "cfg"},
	}}
	augmented := types.InstanceIdentifier{Steps: []types.PathStep{
		{Kind: types.StepNode, Module: testutil.AlphaModule, Name: "top"},
		{Kind: types.StepAugmentation, Module: testutil.BetaModule},
		{Kind: types.StepNode, Module: testutil.BetaModule, Name: "cfg"},
	}}

	require.NoError(t, store.Apply(ctx, []types.PendingOp{
		{Target: native, Kind: types.OpMerge, Value: testutil.Container(testutil.AlphaModule, "cfg",
			testutil.Leaf(testutil.AlphaModule, "native", types.StringValue("a")))},
		{Target: augmented, Kind: types.OpMerge, Value: testutil.Container(testutil.BetaModule, "cfg",
			testutil.Leaf(testutil.BetaModule, "augmented", types.StringValue("b")))},
	}))

	top, found, err := store.Read(ctx, types.InstanceIdentifier{Steps: native.Steps[:1]})
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, top.Children, 2)

	node, found, err := store.Read(ctx, augmented)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testutil.BetaModule, node.Module)
	assert.Nil(t, node.Child("native"))

	require.NoError(t, store.Apply(ctx, []types.PendingOp{{Target: augmented, Kind: types.OpDelete}}))
	node, found, err = store.Read(ctx, native)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.StringValue("a"), node.Child("native").Value)
	_, found, err = store.Read(ctx, augmented)
	require.NoError(t, err)
	assert.False(t, found)
}

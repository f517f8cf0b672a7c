package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNodeMemberMatchesOwningModule(t *testing.T) {
	parent := &TreeNode{Kind: NodeContainer, Name: "top", Module: "mod-a"}
	parent.SetChild(&TreeNode{Kind: NodeContainer, Name: "cfg", Module: "mod-a"})
	parent.SetChild(&TreeNode{Kind: NodeContainer, Name: "cfg", Module: "mod-b"})
	require.Len(t, parent.Children, 2)

	assert.Equal(t, "mod-b", parent.Member("mod-b", "cfg").Module)
	assert.Equal(t, "mod-a", parent.Member("", "cfg").Module)

	parent.Merge(&TreeNode{Kind: NodeContainer, Children: []*TreeNode{
		{Kind: NodeContainer, Name: "cfg", Module: "mod-b", Children: []*TreeNode{
			{Kind: NodeLeaf, Name: "x", Module: "mod-b", Value: StringValue("b")},
		}},
	}})
	assert.Empty(t, parent.Member("mod-a", "cfg").Children)
	assert.Len(t, parent.Member("mod-b", "cfg").Children, 1)

	assert.True(t, parent.RemoveMember("mod-b", "cfg"))
	require.Len(t, parent.Children, 1)
	assert.Equal(t, "mod-a", parent.Children[0].Module)
}

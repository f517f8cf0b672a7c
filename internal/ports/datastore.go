package ports

import (
	"context"

	"gnmi-yang-bridge/internal/types"
)

type DataStorePort interface {
	Read(ctx context.Context, id types.InstanceIdentifier) (*types.TreeNode, bool, error)
	// Apply executes ops in order as a single atomic change.
	Apply(ctx context.Context, ops []types.PendingOp) error
}

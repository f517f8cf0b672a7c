package ports

import (
	"context"

	"gnmi-yang-bridge/internal/types"
)

// ModelStorePort is keyed storage of YANG sources by name and version.
type ModelStorePort interface {
	AddModel(ctx context.Context, model types.StoredModel) error
	// ReadModel looks a model up by name alone and fails with
	// FailedPrecondition when more than one version is stored.
	ReadModel(ctx context.Context, name string) (types.StoredModel, bool, error)
	ReadModelVersion(ctx context.Context, name string, version types.Version) (types.StoredModel, bool, error)
	ListVersions(ctx context.Context, name string) ([]types.StoredModel, error)
	ListModels(ctx context.Context) ([]types.StoredModel, error)
	DeleteModel(ctx context.Context, name string, version types.Version) error
}

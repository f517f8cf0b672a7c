package ports

import (
	"context"

	"gnmi-yang-bridge/internal/types"
)

// SchemaCompilerPort turns YANG sources into a SchemaContext.
type SchemaCompilerPort interface {
	// Inspect reads the module header of a single source without
	// compiling it.
	Inspect(source types.SchemaSource) (types.ModuleHeader, error)
	// Compile builds a SchemaContext or returns diagnostics keyed by
	// source identity.
	Compile(ctx context.Context, sources []types.SchemaSource) (*types.SchemaContext, map[string]error)
}

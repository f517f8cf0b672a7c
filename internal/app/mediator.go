package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/core"
	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// Mediator serves Get and Set for one resolved schema over a datastore.
type Mediator struct {
	Schema *types.SchemaContext
	Codec  core.DataCodec
	Store  ports.DataStorePort
	Clock  func() time.Time
}

func NewMediator(schema *types.SchemaContext, store ports.DataStorePort) *Mediator {
	return &Mediator{
		Schema: schema,
		Codec:  core.NewDataCodec(schema),
		Store:  store,
		Clock:  time.Now,
	}
}

func (m *Mediator) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock()
}

// Capabilities reports the modules of the resolved schema. A module's
// openconfig-version takes precedence over its revision.
func (m *Mediator) Capabilities() []types.Capability {
	modules := m.Schema.Modules()
	capabilities := make([]types.Capability, 0, len(modules))
	for _, module := range modules {
		version := types.NoVersion()
		switch {
		case module.SemVer != "":
			version = types.SemVer(module.SemVer)
		case module.Revision != "":
			version = types.Revision(module.Revision)
		}
		capabilities = append(capabilities, types.Capability{Name: module.Name, Version: version})
	}
	return capabilities
}

// Get reads every requested path. Paths that do not resolve are recorded in
// the response and skipped; paths without data are omitted. When no path
// yields data the partial response is returned with a NotFound error.
func (m *Mediator) Get(ctx context.Context, req types.GetRequest) (types.GetResponse, error) {
	paths := req.Paths
	if len(paths) == 0 {
		paths = []types.WirePath{{}}
	}
	timestamp := m.now()
	resp := types.GetResponse{}
	for _, path := range paths {
		id, err := m.Codec.Paths.ToIdentifier(path)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", path.String()).Msg("skipping unresolved path")
			resp.Errors = append(resp.Errors, types.PathFailure{Path: path, Err: err})
			continue
		}
		node, found, err := m.Store.Read(ctx, id)
		if err != nil {
			return types.GetResponse{}, err
		}
		if !found {
			continue
		}
		node, err = m.Codec.Filter(id, node, req.DataType)
		if err != nil {
			return types.GetResponse{}, err
		}
		if node == nil {
			continue
		}
		doc, err := m.Codec.ToJSON(id, node)
		if err != nil {
			return types.GetResponse{}, err
		}
		resp.Values = append(resp.Values, types.PathValue{Path: path, Value: doc, Timestamp: timestamp})
	}
	log.Ctx(ctx).Debug().
		Int("paths", len(paths)).
		Int("values", len(resp.Values)).
		Str("type", req.DataType.String()).
		Msg("get served")
	if len(resp.Values) == 0 {
		return resp, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no data found for the requested paths")
	}
	return resp, nil
}

type setOperation struct {
	path  types.WirePath
	id    types.InstanceIdentifier
	kind  types.OpKind
	value types.Value
}

// Set applies deletes, then replaces, then updates as one transaction.
// Any failure before the datastore write leaves the datastore untouched.
func (m *Mediator) Set(ctx context.Context, req types.SetRequest) (types.SetResponse, error) {
	operations, err := m.resolveSet(req)
	if err != nil {
		return types.SetResponse{}, err
	}

	batch := core.NewWriteBatcher(m.Codec)
	for _, op := range operations {
		if err := m.stage(ctx, batch, op); err != nil {
			batch.Rollback()
			return types.SetResponse{}, err
		}
	}
	committed, err := batch.Commit()
	if err != nil {
		return types.SetResponse{}, err
	}
	pending, err := m.decodeCommitted(committed)
	if err != nil {
		return types.SetResponse{}, err
	}
	if err := m.Store.Apply(ctx, pending); err != nil {
		return types.SetResponse{}, err
	}

	resp := types.SetResponse{Committed: committed, Timestamp: m.now()}
	for _, op := range operations {
		resp.Results = append(resp.Results, types.OpResult{Path: op.path, Kind: op.kind})
	}
	log.Ctx(ctx).Debug().
		Int("requested", len(operations)).
		Int("committed", len(committed)).
		Msg("set applied")
	return resp, nil
}

func (m *Mediator) resolveSet(req types.SetRequest) ([]setOperation, error) {
	operations := make([]setOperation, 0, len(req.Deletes)+len(req.Replaces)+len(req.Updates))
	add := func(path types.WirePath, kind types.OpKind, value types.Value) error {
		id, err := m.Codec.Paths.ToIdentifier(path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("path %s does not resolve", path)).
				WithCause(err)
		}
		operations = append(operations, setOperation{path: path, id: id, kind: kind, value: value})
		return nil
	}
	for _, path := range req.Deletes {
		if err := add(path, types.OpDelete, nil); err != nil {
			return nil, err
		}
	}
	for _, update := range req.Replaces {
		if err := add(update.Path, types.OpReplace, update.Value); err != nil {
			return nil, err
		}
	}
	for _, update := range req.Updates {
		if err := add(update.Path, types.OpMerge, update.Value); err != nil {
			return nil, err
		}
	}
	return operations, nil
}

func (m *Mediator) stage(ctx context.Context, batch *core.WriteBatcher, op setOperation) error {
	if op.kind == types.OpDelete {
		return batch.Delete(op.id)
	}
	if op.value == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s of %s carries no value", op.kind, op.path))
	}
	if _, isJSON := op.value.(types.JSONValue); op.kind == types.OpMerge && !isJSON {
		parent, _, err := m.Store.Read(ctx, op.id.Parent())
		if err != nil {
			return err
		}
		pending, err := m.Codec.ScalarUpdate(op.id, op.value, parent)
		if err != nil {
			return err
		}
		return batch.Stage(pending)
	}
	node, err := m.Codec.FromScalar(op.id, op.value)
	if err != nil {
		return err
	}
	return batch.Stage(types.PendingOp{Target: op.id, Kind: op.kind, Value: node})
}

func (m *Mediator) decodeCommitted(committed []types.WireUpdate) ([]types.PendingOp, error) {
	pending := make([]types.PendingOp, 0, len(committed))
	for _, update := range committed {
		id, err := m.Codec.Paths.ToIdentifier(update.Path)
		if err != nil {
			return nil, err
		}
		op := types.PendingOp{Target: id, Kind: update.Kind}
		if update.Kind != types.OpDelete {
			op.Value, err = m.Codec.FromJSON(id, update.Value)
			if err != nil {
				return nil, err
			}
		}
		pending = append(pending, op)
	}
	return pending, nil
}

package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/adapters"
	"gnmi-yang-bridge/internal/core"
	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/shared"
	"gnmi-yang-bridge/internal/types"
)

// Session is a resolved schema bound to a datastore loaded from a JSON
// tree file.
type Session struct {
	*Mediator
	Data     *adapters.MemoryDataStore
	dataPath string
	trees    ports.TreeFilePort
}

// OpenSession resolves the capability set and loads the data tree. A
// missing data file starts an empty datastore.
func (s Service) OpenSession(ctx context.Context, req SessionRequest) (*Session, error) {
	resolved, err := s.Resolve(ctx, ResolveRequest{Config: req.Config, Capabilities: req.Capabilities})
	if err != nil {
		return nil, err
	}
	dataPath, err := shared.RequireValue(req.DataPath, "data file")
	if err != nil {
		return nil, err
	}
	doc, err := s.Trees.ReadTree(dataPath)
	if err != nil {
		return nil, err
	}
	root, err := core.NewDataCodec(resolved.Schema).FromJSON(types.InstanceIdentifier{}, doc)
	if err != nil {
		return nil, err
	}
	data := adapters.NewMemoryDataStore(root)
	mediator := NewMediator(resolved.Schema, data)
	mediator.Clock = s.now
	log.Ctx(ctx).Debug().
		Str("path", dataPath).
		Int("modules", len(resolved.Schema.ModuleNames())).
		Msg("session opened")
	return &Session{Mediator: mediator, Data: data, dataPath: dataPath, trees: s.Trees}, nil
}

// Save writes the current datastore back to the session's data file.
func (s *Session) Save(ctx context.Context) error {
	doc, err := s.Codec.ToJSON(types.InstanceIdentifier{}, s.Data.Snapshot())
	if err != nil {
		return err
	}
	if err := s.trees.WriteTree(s.dataPath, doc); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("path", s.dataPath).Msg("session saved")
	return nil
}

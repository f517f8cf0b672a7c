package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/hashicorp/go-multierror"

	"gnmi-yang-bridge/internal/core"
	"gnmi-yang-bridge/internal/types"
)

// Validate checks a capability set and every model in the store without
// compiling. Each stored body must parse and declare the name it is
// stored under.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	capabilities, err := s.loadCapabilities(req.Capabilities)
	if err != nil {
		return ValidateResult{}, err
	}
	capabilities, err = core.ValidateCapabilities(ctx, capabilities)
	if err != nil {
		return ValidateResult{}, err
	}

	store, closeStore, err := OpenModelStore(req.Config)
	if err != nil {
		return ValidateResult{}, err
	}
	defer closeStore()
	models, err := store.ListModels(ctx)
	if err != nil {
		return ValidateResult{}, err
	}

	var problems *multierror.Error
	for _, model := range models {
		header, err := s.Compiler.Inspect(types.SchemaSource{Key: model.Key(), Name: model.Name, Body: model.Body})
		if err != nil {
			problems = multierror.Append(problems, err)
			continue
		}
		if header.Name != model.Name {
			problems = multierror.Append(problems, fmt.Errorf("%s declares module %s", model.Key(), header.Name))
		}
	}
	if err := problems.ErrorOrNil(); err != nil {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%d stored models are invalid", len(problems.Errors))).
			WithCause(err)
	}
	return ValidateResult{Capabilities: capabilities, Models: len(models)}, nil
}

package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"gnmi-yang-bridge/internal/adapters"
	"gnmi-yang-bridge/internal/ports"
)

// DefaultWorkers bounds parallel model lookups during resolution.
const DefaultWorkers = 4

// Config selects the model store and tunes resolution. A StorePath selects
// the SQLite store; otherwise ModelsDirs are served as layered directories.
type Config struct {
	ModelsDirs       []string
	StorePath        string
	Workers          int
	SemVerCompatible bool
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ModelsDirs,
			validation.Required.When(strings.TrimSpace(c.StorePath) == "").Error("models directories or a store path are required"),
			validation.Each(validation.Required),
		),
		validation.Field(&c.Workers, validation.Min(1), validation.Max(64)),
	)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid configuration: " + err.Error()).
			WithCause(err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// OpenModelStore opens the store c selects. The returned close function
// releases it.
func OpenModelStore(c Config) (ports.ModelStorePort, func() error, error) {
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	if path := strings.TrimSpace(c.StorePath); path != "" {
		store, err := adapters.OpenSQLiteModelStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	store, err := adapters.NewDirModelStore(c.ModelsDirs...)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error { return nil }, nil
}

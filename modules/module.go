package modules

import (
	"context"
	"errors"
	"fmt"

	"resultflow/items"
)

var (
	ErrDisabled      = errors.New("module is disabled")
	ErrInvalidConfig = errors.New("invalid module configuration")
)

// Ownership declares whether a module may hand out the same item instance
// for more than one query.
type Ownership int

const (
	// OwnershipFresh modules build every item anew per query.
	OwnershipFresh Ownership = iota
	// OwnershipShared modules may re-return cached, immutable item instances.
	// Such an item lives as long as its longest holder.
	OwnershipShared
)

func (o Ownership) String() string {
	if o == OwnershipShared {
		return "shared"
	}
	return "fresh"
}

// Module defines the interface that every result provider must implement.
// ProcessQuery is a pure function of the last applied configuration and the
// query text; a disabled or unconfigured module returns ErrDisabled.
type Module interface {
	Name() string
	Enabled() bool
	DefaultIconPath() string
	Ownership() Ownership
	ProcessQuery(ctx context.Context, query string) ([]items.Item, error)
}

// ConfigError rejects one configuration value of a module.
type ConfigError struct {
	Module string
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", e.Module, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

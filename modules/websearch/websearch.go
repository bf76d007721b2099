// Package websearch turns "<trigger><term>" queries into a single item that
// opens the matching search engine with the term filled in.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"resultflow/actions"
	"resultflow/items"
	"resultflow/modules"
)

const moduleName = "Websearch"

// Config is the configuration snapshot applied by Configure.
type Config struct {
	Enabled  bool
	IconPath string
	Engines  []Engine
}

type snapshot struct {
	enabled  bool
	iconPath string
	engines  []Engine
}

// Extension is the web-search module. It starts unconfigured and therefore
// disabled.
type Extension struct {
	opener actions.Opener
	state  atomic.Pointer[snapshot]
	logger *slog.Logger
}

var _ modules.Module = (*Extension)(nil)

func NewExtension(opener actions.Opener, logger *slog.Logger) *Extension {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extension{opener: opener, logger: logger}
}

func (e *Extension) Name() string {
	return moduleName
}

func (e *Extension) Enabled() bool {
	snap := e.state.Load()
	return snap != nil && snap.enabled
}

func (e *Extension) DefaultIconPath() string {
	if snap := e.state.Load(); snap != nil {
		return snap.iconPath
	}
	return ""
}

func (e *Extension) Ownership() modules.Ownership {
	return modules.OwnershipFresh
}

// Engines returns a copy of the configured engines.
func (e *Extension) Engines() []Engine {
	snap := e.state.Load()
	if snap == nil {
		return nil
	}
	return append([]Engine(nil), snap.engines...)
}

// Configure validates cfg and swaps it in as the new snapshot. Engines that
// fail validation or reuse a trigger are kept but disabled, and the
// returned error joins every rejection.
func (e *Extension) Configure(cfg Config) error {
	var errs []error
	engines := make([]Engine, len(cfg.Engines))
	seen := make(map[string]string, len(cfg.Engines))

	for i, eng := range cfg.Engines {
		if err := eng.validate(); err != nil {
			errs = append(errs, err)
			eng.Enabled = false
		} else if other, dup := seen[eng.Trigger]; dup && eng.Enabled {
			errs = append(errs, &modules.ConfigError{
				Module: moduleName,
				Field:  eng.Name + ".trigger",
				Value:  eng.Trigger,
				Reason: fmt.Sprintf("already used by %s", other),
			})
			eng.Enabled = false
		} else if eng.Enabled {
			seen[eng.Trigger] = eng.Name
		}
		engines[i] = eng
	}

	e.state.Store(&snapshot{
		enabled:  cfg.Enabled,
		iconPath: cfg.IconPath,
		engines:  engines,
	})
	return errors.Join(errs...)
}

func (e *Extension) ProcessQuery(ctx context.Context, query string) ([]items.Item, error) {
	snap := e.state.Load()
	if snap == nil || !snap.enabled {
		return nil, modules.ErrDisabled
	}

	var results []items.Item
	for _, eng := range snap.engines {
		if !eng.Enabled {
			continue
		}
		term, ok := eng.match(query)
		if !ok {
			continue
		}

		item, err := e.buildItem(eng, term, snap.iconPath)
		if err != nil {
			e.logger.Warn("websearch: could not build item", "engine", eng.Name, "term", term, "error", err)
			continue
		}
		results = append(results, item)
	}
	return results, nil
}

func (e *Extension) buildItem(eng Engine, term, fallbackIcon string) (items.Item, error) {
	target := ResolveURL(eng.URL, term)
	action, err := actions.NewOpenURL(target, e.opener)
	if err != nil {
		return nil, err
	}

	iconPath := eng.IconPath
	if strings.TrimSpace(iconPath) == "" {
		iconPath = fallbackIcon
	}

	item, err := items.NewStandard().
		Name(fmt.Sprintf("Search '%s' with %s", term, eng.Name)).
		Info(target).
		Icon(items.Icon{Path: iconPath}).
		Action(action).
		Build()
	if err != nil {
		return nil, err
	}
	return item, nil
}

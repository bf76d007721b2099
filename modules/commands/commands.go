// Package commands offers user-defined shell commands as result items.
// Items are immutable and cached, so the same instance is handed out for
// repeated queries until the module is reconfigured.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/shlex"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/patrickmn/go-cache"

	"resultflow/actions"
	"resultflow/items"
	"resultflow/modules"
)

const (
	moduleName      = "Commands"
	defaultIconPath = "https://img.icons8.com/badges/100/console.png"
	itemCacheTTL    = 30 * time.Minute
)

// Command is one configured entry.
type Command struct {
	Name        string
	CommandLine string
	Description string
	IconPath    string
}

// Config is the configuration snapshot applied by Configure.
type Config struct {
	Enabled  bool
	IconPath string
	Commands []Command
}

type snapshot struct {
	generation uint64
	enabled    bool
	iconPath   string
	commands   []Command
	names      []string
	byName     map[string]Command
}

type Module struct {
	launcher   actions.Launcher
	clipboard  actions.Clipboard
	state      atomic.Pointer[snapshot]
	generation atomic.Uint64
	cache      *cache.Cache
	logger     *slog.Logger
}

var _ modules.Module = (*Module)(nil)

func New(launcher actions.Launcher, clipboard actions.Clipboard, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{
		launcher:  launcher,
		clipboard: clipboard,
		cache:     cache.New(itemCacheTTL, itemCacheTTL*2),
		logger:    logger,
	}
}

func (m *Module) Name() string {
	return moduleName
}

func (m *Module) Enabled() bool {
	snap := m.state.Load()
	return snap != nil && snap.enabled
}

func (m *Module) DefaultIconPath() string {
	if snap := m.state.Load(); snap != nil && snap.iconPath != "" {
		return snap.iconPath
	}
	return defaultIconPath
}

func (m *Module) Ownership() modules.Ownership {
	return modules.OwnershipShared
}

// Commands returns the commands that passed validation.
func (m *Module) Commands() []Command {
	snap := m.state.Load()
	if snap == nil {
		return nil
	}
	return append([]Command(nil), snap.commands...)
}

// Configure validates cfg, drops the entries it rejects and discards every
// cached item built from the previous configuration.
func (m *Module) Configure(cfg Config) error {
	var errs []error
	snap := &snapshot{
		generation: m.generation.Add(1),
		enabled:    cfg.Enabled,
		iconPath:   cfg.IconPath,
		byName:     make(map[string]Command, len(cfg.Commands)),
	}

	for _, cmd := range cfg.Commands {
		if err := validate(cmd); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := snap.byName[cmd.Name]; dup {
			errs = append(errs, &modules.ConfigError{Module: moduleName, Field: "name", Value: cmd.Name, Reason: "duplicate command name"})
			continue
		}
		snap.byName[cmd.Name] = cmd
		snap.names = append(snap.names, cmd.Name)
		snap.commands = append(snap.commands, cmd)
	}

	m.state.Store(snap)
	m.cache.Flush()
	return errors.Join(errs...)
}

func validate(cmd Command) error {
	if strings.TrimSpace(cmd.Name) == "" {
		return &modules.ConfigError{Module: moduleName, Field: "name", Value: cmd.Name, Reason: "must not be empty"}
	}
	args, err := shlex.Split(cmd.CommandLine)
	if err != nil {
		return &modules.ConfigError{Module: moduleName, Field: cmd.Name + ".command", Value: cmd.CommandLine, Reason: err.Error()}
	}
	if len(args) == 0 {
		return &modules.ConfigError{Module: moduleName, Field: cmd.Name + ".command", Value: cmd.CommandLine, Reason: "must not be empty"}
	}
	return nil
}

// ProcessQuery returns every command whose name fuzzily contains the query,
// in configuration order.
func (m *Module) ProcessQuery(ctx context.Context, query string) ([]items.Item, error) {
	snap := m.state.Load()
	if snap == nil || !snap.enabled {
		return nil, modules.ErrDisabled
	}

	term := strings.TrimSpace(query)
	if term == "" {
		return nil, nil
	}

	var results []items.Item
	for _, name := range fuzzy.FindNormalizedFold(term, snap.names) {
		item, err := m.itemFor(snap, snap.byName[name])
		if err != nil {
			m.logger.Warn("commands: could not build item", "command", name, "error", err)
			continue
		}
		results = append(results, item)
	}
	return results, nil
}

func cacheKey(generation uint64, name string) string {
	return fmt.Sprintf("%d/%s", generation, name)
}

func (m *Module) itemFor(snap *snapshot, cmd Command) (items.Item, error) {
	key := cacheKey(snap.generation, cmd.Name)
	if cached, found := m.cache.Get(key); found {
		return cached.(items.Item), nil
	}

	item, err := m.buildItem(snap, cmd)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, item, cache.DefaultExpiration)
	return item, nil
}

func (m *Module) buildItem(snap *snapshot, cmd Command) (items.Item, error) {
	primary, err := actions.NewRunCommand(cmd.CommandLine, m.launcher)
	if err != nil {
		return nil, err
	}

	iconPath := cmd.IconPath
	if iconPath == "" {
		iconPath = snap.iconPath
	}
	if iconPath == "" {
		iconPath = defaultIconPath
	}
	icon := items.Icon{Path: iconPath}

	info := cmd.Description
	if info == "" {
		info = cmd.CommandLine
	}

	// Values only: children must not reach back into the module's state.
	commandLine := cmd.CommandLine
	launcher, clipboard := m.launcher, m.clipboard
	children := func() []items.Item {
		var out []items.Item
		if run, err := actions.NewRunCommand(commandLine, launcher); err == nil {
			if child, err := items.NewStandard().Name("Run").Info(commandLine).Icon(icon).Action(run).Build(); err == nil {
				out = append(out, child)
			}
		}
		if cp, err := actions.NewCopyToClipboard(commandLine, clipboard); err == nil {
			if child, err := items.NewStandard().Name("Copy command line").Info(commandLine).Icon(icon).Action(cp).Build(); err == nil {
				out = append(out, child)
			}
		}
		return out
	}

	group, err := items.NewGroup().
		Name(cmd.Name).
		Info(info).
		Icon(icon).
		Action(primary).
		Children(children).
		Build()
	if err != nil {
		return nil, err
	}
	return group, nil
}

package main

import (
	"log/slog"
	"path/filepath"

	"resultflow/actions"
	"resultflow/config"
	"resultflow/items"
	"resultflow/modules"
	"resultflow/modules/calculator"
	"resultflow/modules/commands"
	"resultflow/modules/websearch"
	"resultflow/session"
	"resultflow/system"
)

const (
	defaultModuleIcon = "https://img.icons8.com/badges/100/decision.png"
	noResultsIconPath = "https://img.icons8.com/badges/100/decision.png"
	websearchIcon     = "https://img.icons8.com/badges/100/search.png"
)

// app wires the modules, the session and the icon resolver together.
type app struct {
	registry   *session.Registry
	session    *session.Session
	websearch  *websearch.Extension
	calculator *calculator.CalculatorModule
	commands   *commands.Module
	icons      *system.IconResolver
	logger     *slog.Logger
}

func newApp(cfg *config.Config, configPath string, fx actions.Effects, window session.Window, logger *slog.Logger) (*app, error) {
	a := &app{
		registry:   session.NewRegistry(),
		websearch:  websearch.NewExtension(fx.Opener, logger),
		calculator: calculator.NewCalculatorModule(fx.Clipboard, logger),
		commands:   commands.New(fx.Launcher, fx.Clipboard, logger),
		icons: &system.IconResolver{
			Default: items.Icon{Path: defaultModuleIcon},
			Dirs:    []string{filepath.Dir(configPath)},
		},
		logger: logger,
	}

	// Registration order is display order.
	for _, m := range []modules.Module{a.websearch, a.calculator, a.commands} {
		if err := a.registry.Register(m); err != nil {
			return nil, err
		}
	}

	a.session = session.New(a.registry,
		session.WithWindow(window),
		session.WithTimeout(cfg.Server.Timeout()),
		session.WithLogger(logger),
	)
	a.apply(cfg)
	return a, nil
}

// apply reconfigures every module. Rejected values are logged; the module
// keeps running with them disabled.
func (a *app) apply(cfg *config.Config) {
	ws := cfg.WebsearchModule()
	if ws.IconPath == "" {
		ws.IconPath = websearchIcon
	}
	if err := a.websearch.Configure(ws); err != nil {
		a.logger.Warn("websearch configuration rejected", "error", err)
	}
	if err := a.calculator.Configure(cfg.CalculatorModule()); err != nil {
		a.logger.Warn("calculator configuration rejected", "error", err)
	}
	if err := a.commands.Configure(cfg.CommandsModule()); err != nil {
		a.logger.Warn("commands configuration rejected", "error", err)
	}

	for _, m := range a.registry.Modules() {
		a.logger.Debug("module configured", "module", m.Name(), "enabled", m.Enabled(), "ownership", m.Ownership())
	}
}

func systemEffects(logger *slog.Logger) actions.Effects {
	return actions.Effects{
		Opener:    system.NewBrowserOpener(),
		Launcher:  system.NewProcessLauncher(logger),
		Clipboard: system.SystemClipboard{},
	}
}

// Package app wires the configuration core together: logger, settings
// store, HCL model, behavior registry, local-ID table, runtime keymap,
// layout catalog, and the studio service on its websocket endpoint.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/behaviors"
	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/hclconf"
	"github.com/keebforge/keycore/internal/localid"
	"github.com/keebforge/keycore/internal/memsettings"
	"github.com/keebforge/keycore/internal/settings"
	"github.com/keebforge/keycore/internal/sqlitesettings"
	"github.com/keebforge/keycore/internal/studio"
	"github.com/keebforge/keycore/internal/transport/ws"
)

// App encapsulates one daemon instance: its logger, collaborators, and the
// studio transport.
type App struct {
	logger   *slog.Logger
	cfg      Config
	registry *behavior.Registry
	ids      *localid.Map
	server   *ws.Server
	closers  []io.Closer
}

// NewApp builds a fully initialized instance. Startup order matters:
// the registry is complete before ID assignment runs, and ID assignment
// finishes before the studio service becomes constructible.
func NewApp(outW io.Writer, cfg Config, mods ...behavior.Module) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	a := &App{logger: logger, cfg: cfg}

	store, err := a.openSettings(ctx)
	if err != nil {
		return nil, err
	}

	model, err := hclconf.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.Debug("Configuration model loaded.",
		"layers", len(model.Layers), "layouts", len(model.Layouts))

	a.registry = behavior.NewRegistry()
	if len(mods) == 0 {
		mods = []behavior.Module{behaviors.Module{}}
	}
	for _, mod := range mods {
		mod.Register(a.registry)
	}
	a.registry.LogDuplicateNames(ctx)
	logger.Debug("Behavior registry populated.", "count", len(a.registry.Entries()))

	a.ids = localid.NewMap(a.registry)
	assigner, err := localid.NewAssigner(localid.Scheme(cfg.IDScheme), store)
	if err != nil {
		return nil, err
	}
	if err := assigner.Assign(ctx, a.ids); err != nil {
		return nil, fmt.Errorf("assign behavior local ids: %w", err)
	}
	logger.Debug("Behavior local ids assigned.", "scheme", cfg.IDScheme)

	catalog, err := buildCatalog(ctx, model, store)
	if err != nil {
		return nil, err
	}

	validator := behavior.NewValidator(a.registry, behavior.Options{
		LayerCount:         len(model.Layers),
		FullConsumerUsages: cfg.FullConsumerUsages,
		DisableMetadata:    cfg.DisableParamValidation,
	})

	km := buildKeymap(ctx, model, validator, catalog.MaxKeyCount())

	notifier := ws.NewNotifier()
	svc := studio.New(a.ids, validator, km, catalog, notifier.Notify)
	a.server = ws.NewServer(svc, notifier)

	return a, nil
}

// openSettings picks the store the configuration asks for: SQLite when a
// database path is set, in-memory otherwise.
func (a *App) openSettings(ctx context.Context) (settings.Store, error) {
	if a.cfg.SettingsDB == "" {
		a.logger.Warn("No settings database configured; persisted state will not survive restarts.")
		return memsettings.New(), nil
	}

	store, err := sqlitesettings.Open(ctx, a.cfg.SettingsDB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store)
	return store, nil
}

// Registry exposes the populated registry, primarily for tests.
func (a *App) Registry() *behavior.Registry {
	return a.registry
}

// IDs exposes the assigned local-ID table, primarily for tests.
func (a *App) IDs() *localid.Map {
	return a.ids
}

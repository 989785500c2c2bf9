// Package app assembles a draw controller from configuration: catalog,
// storage backend, messages, catalog hot reload and scheduled resets.
package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/config"
	"github.com/xtding233/prize-gacha/internal/inventory"
	"github.com/xtding233/prize-gacha/internal/locale"
	"github.com/xtding233/prize-gacha/internal/machine"
	"github.com/xtding233/prize-gacha/internal/schedule"
)

// App owns the controller and everything that feeds it.
type App struct {
	Ctl      *machine.Controller
	Messages *locale.Messages

	cfg     *config.Config
	log     *slog.Logger
	loader  *catalog.Loader
	kv      inventory.Storage
	closeKV func() error
	watcher *catalog.FileWatcher
	cron    *cron.Cron
}

// New builds the controller. Nothing runs in the background until Start.
func New(cfg *config.Config, log *slog.Logger, opts machine.Options) (*App, error) {
	a := &App{cfg: cfg, log: log, closeKV: func() error { return nil }}

	var fsys fs.FS = catalog.Builtin
	if cfg.Catalog.Dir != "" {
		fsys = os.DirFS(cfg.Catalog.Dir)
	}
	a.loader = catalog.NewLoader(fsys)
	cat, err := a.loader.Load(cfg.Catalog.Campaign, cfg.Catalog.Variant)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if err := a.openStorage(); err != nil {
		return nil, err
	}

	lang := cfg.Locale
	if lang == "" {
		lang = cat.Locale
	}
	if a.Messages, err = locale.New(lang); err != nil {
		_ = a.closeKV()
		return nil, err
	}

	if opts.Log == nil {
		opts.Log = log
	}
	a.Ctl = machine.New(cat, inventory.NewStore(a.kv, cat, log), a.Messages, opts)
	log.Info("controller ready",
		slog.String("campaign", cfg.Catalog.Campaign),
		slog.String("variant", cfg.Catalog.Variant),
		slog.String("version", cat.Version),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("locale", a.Messages.Lang()))
	return a, nil
}

func (a *App) openStorage() error {
	switch a.cfg.Storage.Driver {
	case "memory":
		a.kv = inventory.NewMemoryStorage()
	case "file":
		fsStore, err := inventory.NewFileStorage(a.cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open file storage: %w", err)
		}
		a.kv = fsStore
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(a.cfg.Storage.Path), 0o755); err != nil {
			return fmt.Errorf("open sqlite storage: %w", err)
		}
		db, err := inventory.OpenSQLite(a.cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open sqlite storage: %w", err)
		}
		a.kv, a.closeKV = db, db.Close
	default:
		return fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
	return nil
}

// Start begins catalog watching (only for on-disk catalogs) and the reset
// schedule, when configured.
func (a *App) Start() error {
	if a.cfg.Catalog.Dir != "" {
		a.watcher = catalog.NewFileWatcher(a.cfg.Catalog.Dir, a.cfg.Catalog.WatchInterval, a.Reload)
		a.watcher.Start()
	}
	if a.cfg.Reset.Cron != "" {
		c, err := schedule.Start(a.cfg.Reset.Cron, schedule.NewResetJob(a.Ctl, a.log))
		if err != nil {
			return err
		}
		a.cron = c
		a.log.Info("reset schedule active", slog.String("cron", a.cfg.Reset.Cron))
	}
	return nil
}

// Reload re-reads the catalog and stages it on the controller. The running
// session keeps its catalog until the next reset. A broken file is logged and
// ignored.
func (a *App) Reload(changed string) {
	a.loader.Invalidate()
	cat, err := a.loader.Load(a.cfg.Catalog.Campaign, a.cfg.Catalog.Variant)
	if err != nil {
		a.log.Warn("catalog reload rejected", slog.String("file", changed), slog.Any("err", err))
		return
	}
	a.Ctl.StageCatalog(cat, inventory.NewStore(a.kv, cat, a.log))
}

// Close stops background work and releases the storage backend.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	return a.closeKV()
}

// Package app is the composition root: it wires configuration, storage,
// the archive client, every provider's API client and upserter, the
// enrichment engine, the batch orchestrator, the HTTP server, and the
// cron scheduler into one App value, grounded on the teacher's
// internal/app/app.go New/Close lifecycle (staged init* methods, a single
// Close that tears components down in reverse dependency order).
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atscrawl/internal/archive"
	"github.com/ternarybob/atscrawl/internal/common"
	"github.com/ternarybob/atscrawl/internal/enrich"
	"github.com/ternarybob/atscrawl/internal/normalize"
	"github.com/ternarybob/atscrawl/internal/orchestrator"
	"github.com/ternarybob/atscrawl/internal/provider"
	"github.com/ternarybob/atscrawl/internal/providerapi"
	"github.com/ternarybob/atscrawl/internal/scheduler"
	"github.com/ternarybob/atscrawl/internal/server"
	"github.com/ternarybob/atscrawl/internal/storage/sqlite"
)

// App holds every long-lived component of the ingestion pipeline.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Store         *sqlite.Store
	ArchiveClient *archive.Client
	EnrichEngine  *enrich.Engine
	Orchestrator  *orchestrator.Orchestrator
	Server        *server.Server
	Scheduler     *scheduler.Service
}

// New builds the App with every component wired in dependency order:
// storage, then the archive client, the enrichment engine, and the
// per-provider API clients and upserters, then the orchestrator that ties them all
// into the six-step batch algorithm, then the HTTP server and the cron
// scheduler that both drive it.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if err := a.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a.initArchiveClient()
	a.EnrichEngine = enrich.NewEngine(a.Store.DB(), a.Logger)

	fetchers, upserters := a.buildProviderCollaborators()

	a.Orchestrator = orchestrator.New(
		a.ArchiveClient,
		fetchers,
		upserters,
		a.Store,
		a.EnrichEngine,
		&cfg.Crawl,
		cfg.Archive.FallbackCollection,
		a.Logger,
	)

	handlers := server.NewHandlers(a.Orchestrator, a.Store, a.EnrichEngine, a.Logger)
	a.Server = server.New(handlers, cfg.Server.Host, cfg.Server.Port, a.Logger)

	a.Scheduler = scheduler.NewService(a.Orchestrator, a.Logger)

	a.Logger.Info().
		Str("environment", cfg.Environment).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("application initialization complete")

	return a, nil
}

func (a *App) initStorage() error {
	store, err := sqlite.New(a.Logger, &a.Config.Storage.SQLite)
	if err != nil {
		return err
	}
	a.Store = store
	a.Logger.Info().
		Str("path", a.Config.Storage.SQLite.Path).
		Bool("wal_mode", a.Config.Storage.SQLite.WALMode).
		Msg("storage layer initialized")
	return nil
}

func (a *App) initArchiveClient() {
	a.ArchiveClient = archive.NewClient(a.Config.Archive.BaseURL, a.Logger)
	a.Logger.Info().
		Str("base_url", a.Config.Archive.BaseURL).
		Str("fallback_collection", a.Config.Archive.FallbackCollection).
		Msg("archive client initialized")
}

// buildProviderCollaborators constructs every provider's API client and
// upserter. All four providers (Ashby, Greenhouse, Workable, Lever) get
// entries, even though Lever is excluded from provider.All() and never
// drives discovery on its own — see internal/orchestrator.New's doc
// comment.
func (a *App) buildProviderCollaborators() (map[provider.Provider]orchestrator.Fetcher, map[provider.Provider]normalize.Upserter) {
	db := a.Store.DB()

	fetchers := map[provider.Provider]orchestrator.Fetcher{
		provider.Ashby:      providerapi.NewAshbyClient(),
		provider.Greenhouse: providerapi.NewGreenhouseClient(),
		provider.Workable:   providerapi.NewWorkableClient(),
		provider.Lever:      providerapi.NewLeverClient(),
	}
	upserters := map[provider.Provider]normalize.Upserter{
		provider.Ashby:      normalize.NewAshbyUpserter(db),
		provider.Greenhouse: normalize.NewGreenhouseUpserter(db),
		provider.Workable:   normalize.NewWorkableUpserter(db),
		provider.Lever:      normalize.NewLeverUpserter(db),
	}
	return fetchers, upserters
}

// Start brings up the HTTP server and, if enabled, the cron scheduler.
// The HTTP server runs in the caller's goroutine and blocks until Shutdown
// is called from another goroutine.
func (a *App) Start() error {
	if a.Config.Scheduler.Enabled {
		if err := a.Scheduler.Start(a.Config.Scheduler.CronExpr); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	return a.Server.Start()
}

// Close tears the application down in reverse dependency order.
func (a *App) Close() error {
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to stop scheduler")
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("storage closed")
	}
	return nil
}

package core

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"imagedeck/internal/backend"
	"imagedeck/internal/config"
	"imagedeck/internal/db"
	"imagedeck/internal/gallery"
	"imagedeck/internal/jobs"
	"imagedeck/internal/store"
	"imagedeck/internal/thumbs"
	"imagedeck/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	version    string
	config     *config.Config
	db         *sql.DB
	store      *store.Store
	hub        *websocket.Hub
	backend    *backend.Client
	gallery    *gallery.Coordinator
	thumbs     *thumbs.Cache
	jobManager *jobs.JobManager
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, running migrations,
// and wiring the backend client and gallery coordinator together.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid schema. Close the DB
		// connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	app, err := NewApp(version, cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	log.Println("Core application setup complete.")
	return app, nil
}

// NewApp assembles an App from an already-loaded configuration and an
// already-migrated database. The server entrypoint and the test helpers
// both build on this.
func NewApp(version string, cfg *config.Config, database *sql.DB) (*App, error) {
	hub := websocket.NewHub()
	go hub.Run()

	client := backend.New(cfg.Backend.URL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)

	opts := gallery.Options{
		PollInterval:       time.Duration(cfg.Sync.PollIntervalMs) * time.Millisecond,
		CompletionDebounce: time.Duration(cfg.Sync.CompletionDebounceMs) * time.Millisecond,
		IdleResync:         time.Duration(cfg.Sync.IdleResyncSeconds) * time.Second,
		PageSize:           cfg.Sync.PageSize,
	}

	cacheDir := cfg.Cache.Path
	if cacheDir == "" {
		cacheDir = ".thumbs"
	}
	thumbCache, err := thumbs.New(cacheDir, client)
	if err != nil {
		return nil, err
	}

	app := &App{
		version: version,
		config:  cfg,
		db:      database,
		store:   store.New(database),
		hub:     hub,
		backend: client,
		gallery: gallery.New(client, hub, opts),
		thumbs:  thumbCache,
	}
	app.jobManager = jobs.NewManager(app)
	return app, nil
}

func (a *App) Version() string               { return a.version }
func (a *App) Config() *config.Config        { return a.config }
func (a *App) DB() *sql.DB                   { return a.db }
func (a *App) Store() *store.Store           { return a.store }
func (a *App) WsHub() *websocket.Hub         { return a.hub }
func (a *App) Backend() *backend.Client      { return a.backend }
func (a *App) Gallery() *gallery.Coordinator { return a.gallery }
func (a *App) Thumbs() *thumbs.Cache         { return a.thumbs }
func (a *App) JobManager() *jobs.JobManager  { return a.jobManager }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.gallery != nil {
		a.gallery.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}

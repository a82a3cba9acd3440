package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lcalzada-xor/blemap/internal/adapters/history"
	"github.com/lcalzada-xor/blemap/internal/adapters/resolver"
	"github.com/lcalzada-xor/blemap/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/blemap/internal/adapters/web/server"
	"github.com/lcalzada-xor/blemap/internal/config"
	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
	"github.com/lcalzada-xor/blemap/internal/core/services/auth"
	"github.com/lcalzada-xor/blemap/internal/core/services/registry"
	"github.com/lcalzada-xor/blemap/internal/core/services/tracker"
	"github.com/lcalzada-xor/blemap/internal/mock"
	"github.com/lcalzada-xor/blemap/internal/telemetry"
)

// historySweepInterval is how often expired unnamed history entries are
// dropped. The retention window itself lives in the history package.
const historySweepInterval = 24 * time.Hour

// Application wires the tracker core to its adapters. It acts as the
// facade for the entire system.
type Application struct {
	Config      *config.Config
	Tracker     *tracker.TrackerService
	WebServer   *webserver.Server
	History     *history.FileStore
	Store       *storage.SQLiteAdapter
	AuthService *auth.AuthService
	mockRunner  func(ctx context.Context)
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}
	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init system storage: %w", err)
	}
	app.Store = store

	app.History = history.NewFileStore(app.Config.HistoryPath)

	var nameResolver ports.NameResolver
	if app.Config.ResolverAddr != "" {
		nameResolver = resolver.NewGATTResolver(app.Config.ResolverAddr)
	}

	devRegistry := registry.NewDeviceRegistry(app.History, nameResolver, app.Config.ResolveTimeout)
	app.Tracker = tracker.NewTrackerService(devRegistry, store)

	app.AuthService = auth.NewAuthService(store)
	if err := app.ensureDefaultAdmin(); err != nil {
		log.Printf("Warning: could not ensure default admin: %v", err)
	}

	app.WebServer = webserver.NewServer(app.Config.Addr, app.Config.StaticDir, app.Tracker, app.AuthService)
	app.Tracker.SetUpdateHook(app.WebServer.BroadcastDevice)

	if app.Config.MockMode {
		app.mockRunner = app.runMockListeners
		log.Println("Mock Mode Active: simulating edge listeners")
	}

	return nil
}

// ensureDefaultAdmin creates an initial admin account on an empty user
// table so a fresh deployment can be logged into.
func (app *Application) ensureDefaultAdmin() error {
	ctx := context.Background()
	count, err := app.Store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("BLEMAP_ADMIN_PASSWORD")
	if password == "" {
		password = uuid.NewString()
		log.Printf("Generated admin password: %s (set BLEMAP_ADMIN_PASSWORD to control it)", password)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return app.Store.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now(),
	})
}

// Run starts the web server and the background maintenance loops, blocking
// until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.WebServer.Run(gctx)
	})

	g.Go(func() error {
		app.runHistorySweeper(gctx)
		return nil
	})

	g.Go(func() error {
		app.runEvictor(gctx)
		return nil
	})

	if app.mockRunner != nil {
		g.Go(func() error {
			app.mockRunner(gctx)
			return nil
		})
	}

	err := g.Wait()
	if closeErr := app.Store.Close(); closeErr != nil {
		log.Printf("Storage close error: %v", closeErr)
	}
	return err
}

func (app *Application) runHistorySweeper(ctx context.Context) {
	ticker := time.NewTicker(historySweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped := app.History.Sweep(time.Now().UnixMilli())
			if dropped > 0 {
				log.Printf("History sweep dropped %d expired entries", dropped)
			}
		}
	}
}

// runEvictor drops stale devices on a timer, independent of ingestion.
func (app *Application) runEvictor(ctx context.Context) {
	ticker := time.NewTicker(app.Config.EvictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.Tracker.EvictStale(ctx)
		}
	}
}

// runMockListeners feeds the tracker with simulated batches, one generator
// per fake listener.
func (app *Application) runMockListeners(ctx context.Context) {
	for i := 0; i < app.Config.MockListeners; i++ {
		gen := mock.NewGenerator(int64(i)+1, 20)
		listener := mock.ListenerMAC(i)
		go func() {
			ticker := time.NewTicker(5 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := app.Tracker.IngestBatch(ctx, gen.NextBatch(10), listener); err != nil {
						log.Printf("Mock ingest error: %v", err)
					}
				}
			}
		}()
	}
	<-ctx.Done()
}

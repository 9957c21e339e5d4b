package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/ctxbroker/internal/config"
	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/providers/directory"
	"github.com/sandevgo/ctxbroker/internal/providers/llm"
	"github.com/sandevgo/ctxbroker/internal/service/agent"
	"github.com/sandevgo/ctxbroker/internal/service/broker"
	"github.com/sandevgo/ctxbroker/internal/service/command"
	"github.com/sandevgo/ctxbroker/internal/service/contextstore"
	"github.com/sandevgo/ctxbroker/internal/service/extractor"
	"github.com/sandevgo/ctxbroker/internal/service/facade"
	"github.com/sandevgo/ctxbroker/internal/storage/snapshot"
	"github.com/sandevgo/ctxbroker/internal/storage/sqlite"
	"github.com/sandevgo/ctxbroker/internal/transport/cli"
	"github.com/sandevgo/ctxbroker/internal/transport/telegram"
	"github.com/sandevgo/ctxbroker/pkg/log"
	"github.com/sandevgo/ctxbroker/pkg/srv"
)

// app holds the wired core shared by every subcommand.
type app struct {
	cfg      *config.AppConfig
	registry *directory.Registry
	store    *contextstore.Store
	facade   *facade.Facade
	router   *command.Router

	// closers release storage when the process ends.
	closers []srv.Service
}

func newApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	cfg, err := config.ParseAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}

	a := &app{cfg: cfg}

	// 1. Snapshot storage
	snapshots, err := a.initSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Directory
	a.registry, err = openRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 3. Context store
	ext := extractor.NewDefault()
	opts := []contextstore.Option{contextstore.WithCapacity(cfg.HistorySize)}
	if snapshots != nil {
		opts = append(opts, contextstore.WithSnapshotStore(snapshots))
	}
	a.store = contextstore.New(ctx, ext, opts...)

	// 4. Broker and facade
	runner := agent.NewRunner(cfg.ExternalAgentTimeout)
	b := broker.New(a.store, a.registry, runner, llm.NewProvider())
	a.facade = facade.New(a.store, b, ext, a.registry, runner)

	// 5. Chat commands
	a.router = command.New(command.NewCommands(a.facade, a.registry))

	return a, nil
}

func openRegistry(ctx context.Context, cfg *config.AppConfig) (*directory.Registry, error) {
	reg := directory.NewRegistry(directory.NewFileStorage(cfg.GetDirectoryPath(), cfg.DirectoryWatchInterval))
	if err := reg.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	return reg, nil
}

func (a *app) initSnapshots(ctx context.Context) (core.SnapshotStore, error) {
	switch a.cfg.Persistence {
	case config.PersistenceJSON:
		return snapshot.NewFileStore(a.cfg.GetContextSnapshotPath()), nil
	case config.PersistenceSQLite:
		db, err := sqlite.NewDB(ctx, a.cfg.GetDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.closers = append(a.closers, srv.NewCleanup(db.Close))
		return sqlite.NewSnapshotStore(db), nil
	default:
		return nil, nil
	}
}

// close runs the storage cleanups for one-shot commands that never enter
// the service lifecycle.
func (a *app) close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("failed to close storage")
		}
	}
}

// defaultUser is the user id for requests that do not name one.
func (a *app) defaultUser(userID string) string {
	if userID != "" {
		return userID
	}
	return a.cfg.DefaultUserID
}

func NewServices(ctx context.Context, stop context.CancelFunc) []srv.Service {
	logger := log.FromCtx(ctx)

	a, err := newApp(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	services := make([]srv.Service, 0, len(a.closers)+3)
	services = append(services, a.closers...)

	// Directory hot reload
	services = append(services, srv.NewBackground(a.watchDirectory))

	// Transports
	transports, err := initTransports(ctx, a, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Warn().Msg("no transport enabled, set ENABLE_CLI or ENABLE_TELEGRAM")
	}
	services = append(services, transports...)

	return services
}

func (a *app) watchDirectory(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	updates, err := a.registry.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	for cat := range updates {
		logger.Info().
			Int("agents", len(cat.Agents)).
			Int("llms", len(cat.LLMs)).
			Msg("directory reloaded")
	}
	return nil
}

func initTransports(ctx context.Context, a *app, stop context.CancelFunc) ([]srv.Service, error) {
	var services []srv.Service

	// Terminal chat
	if a.cfg.EnableCLI {
		rl, err := cli.NewReadLine(a.cfg.GetRuntimePath(), a.router, a.facade, a.cfg.EnhanceContext, stop)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	// Telegram Bot
	if a.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.router, a.facade, a.cfg.EnhanceContext)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

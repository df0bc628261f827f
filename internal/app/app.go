package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/LoanAdvisor/internal/advice"
	"github.com/markdave123-py/LoanAdvisor/internal/api/handlers"
	"github.com/markdave123-py/LoanAdvisor/internal/config"
	"github.com/markdave123-py/LoanAdvisor/internal/core"
	db "github.com/markdave123-py/LoanAdvisor/internal/core/database"
	"github.com/markdave123-py/LoanAdvisor/internal/core/llm"
	objectclient "github.com/markdave123-py/LoanAdvisor/internal/core/object-client"
	"github.com/markdave123-py/LoanAdvisor/internal/services"
	"github.com/markdave123-py/LoanAdvisor/internal/session"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

type App struct {
	DBClient core.DbClient
	Sessions session.Store
	Server   *Server

	logger  *zap.Logger
	closers []func() error
}

// Deps are the external collaborators of the service. Archive may be nil.
type Deps struct {
	DB      core.DbClient
	LLM     core.LLMProvider
	Archive core.ObjectClient
}

// NewApp connects to the database, the inference provider and, when
// configured, the advice archive, then wires the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready", zap.String("driver", cfg.DatabaseDriver))

	provider, closeProvider, err := llm.NewProvider(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	logger.Info("inference provider ready", zap.String("provider", cfg.InferenceProvider))

	deps := Deps{DB: dbClient, LLM: provider}
	if cfg.ArchiveBucket != "" {
		objClient, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			_ = closeProvider()
			_ = dbClient.Close()
			return nil, fmt.Errorf("advice archive: %w", err)
		}
		deps.Archive = objClient
		logger.Info("advice archive enabled", zap.String("bucket", cfg.ArchiveBucket))
	}

	a, err := Build(cfg, logger, deps)
	if err != nil {
		_ = closeProvider()
		_ = dbClient.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeProvider, dbClient.Close)
	return a, nil
}

// Build wires services, handlers and routes around already connected
// dependencies.
func Build(cfg *config.Config, logger *zap.Logger, deps Deps) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := session.NewStore(cfg.SessionStore, deps.DB)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(store, cfg.SessionSecret, cfg.SessionTTL, logger)
	if err != nil {
		return nil, err
	}

	render, err := handlers.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	advisor := advice.NewAdvisor(deps.LLM, logger.Named("advisor"))
	users := services.NewUserService(deps.DB)
	apps := services.NewApplicationService(deps.DB, advisor, logger, cfg.StrictOwnership)
	if deps.Archive != nil {
		apps.WithArchive(deps.Archive, cfg.ArchiveBucket)
	}
	chat := services.NewChatService(deps.DB, advisor, logger)

	appHandler := handlers.NewApplicationHandler(apps, chat, render, logger)
	server := NewServer(cfg, logger, routes{
		auth:     handlers.NewAuthHandler(users, apps, sessions, render, logger),
		apps:     appHandler,
		chat:     handlers.NewChatHandler(appHandler, chat, logger),
		render:   render,
		sessions: sessions,
	})

	return &App{DBClient: deps.DB, Sessions: store, Server: server, logger: logger}, nil
}

// Run serves HTTP and sweeps expired sessions until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.Server.Start)
	g.Go(func() error {
		return session.RunSweeper(gctx, a.Sessions, sweepInterval, a.logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

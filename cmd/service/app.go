// cmd/service/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"gibwerk/internal/auth"
	"gibwerk/internal/config"
	"gibwerk/internal/database"
	"gibwerk/internal/github"
	"gibwerk/internal/llm"
	"gibwerk/internal/lock"
	"gibwerk/internal/notion"
	"gibwerk/internal/syncer"
	"gibwerk/internal/vcs"
)

// app holds the wired components shared by the serve and sync commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *syncer.Service
	notion *notion.Client
	tokens *auth.TokenIssuer

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func bootstrap(ctx context.Context) (*app, error) {
	// 1. Initialize structured logger
	logger, logLevel := newLogger()

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "git_backend", cfg.GitBackend, "llm_provider", cfg.LLMProvider)

	a := &app{cfg: cfg, logger: logger}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	// 3. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, dbpool.Close)
	if err := dbpool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	logger.Info("Database connection established")

	if err := runMigrations(cfg.MigrationsPath, cfg.DBURL); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 4. Initialize application components
	llmClient, err := llm.New(ctx, llm.Config{
		Provider:  llm.Provider(cfg.LLMProvider),
		Model:     cfg.LLMModel,
		APIKey:    cfg.LLMAPIKey,
		BaseURL:   cfg.LLMBaseURL,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	ghClient, err := github.NewClient(&http.Client{Timeout: 30 * time.Second}, cfg.GithubAPIURL, cfg.GithubDiffConcurrency, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	locker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer, ok := locker.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func() { _ = closer.Close() })
	}

	a.svc = syncer.NewService(
		database.NewStore(dbpool),
		newReader(cfg, logger),
		ghClient,
		llmClient,
		locker,
		logger,
		syncer.Options{
			LogMaxCount:            cfg.GitLogMaxCount,
			DiffConcurrency:        cfg.GithubDiffConcurrency,
			DefaultRepositoryLabel: cfg.DefaultRepositoryLabel,
		},
	)
	a.notion = notion.NewClient(nil, "", cfg.NotionAPIKey, cfg.NotionDatabaseID, logger)
	a.tokens = auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	ready = true
	return a, nil
}

func newReader(cfg *config.Config, logger *slog.Logger) syncer.Reader {
	if cfg.GitBackend == "gogit" {
		return vcs.NewGoGitReader(logger)
	}
	return vcs.NewExecReader(logger)
}

// newLocker shares daily summary locks through Redis when REDIS_ADDR is set.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lock.Locker, error) {
	if cfg.RedisAddr == "" {
		return lock.NewKeyedMutex(), nil
	}
	locker, err := lock.NewRedisLocker(ctx, cfg.RedisAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Using Redis for daily summary locks", "addr", cfg.RedisAddr)
	return locker, nil
}

func newLogger() (*slog.Logger, *slog.LevelVar) {
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, logLevel
}

func runMigrations(sourceURL, dbURL string) error {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}

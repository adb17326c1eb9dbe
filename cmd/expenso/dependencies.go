package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expenso-app/expenso/internal/domain/expense"
	"github.com/expenso-app/expenso/internal/domain/insights"
	"github.com/expenso-app/expenso/internal/domain/statement/parser"
	"github.com/expenso-app/expenso/internal/domain/statement/service"
	"github.com/expenso-app/expenso/pkg/config"
	"github.com/expenso-app/expenso/pkg/db"
)

// dependencies holds everything a command needs.
type dependencies struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool
	ImportSvc *service.ImportService
	Analyzer  *insights.Analyzer
}

// initDependencies loads config, connects the database and wires services.
func initDependencies(ctx context.Context) (*dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	pool, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	exclusions := append(parser.DefaultExclusions(), cfg.Import.ExtraExclusionKeywords...)
	repo := expense.NewPostgresRepository(pool)

	return &dependencies{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		ImportSvc: service.NewImportService(repo, exclusions, logger),
		Analyzer:  insights.NewAnalyzer(insights.NewPostgresRepository(pool), logger),
	}, nil
}

// Close releases held resources.
func (d *dependencies) Close() {
	d.Pool.Close()
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

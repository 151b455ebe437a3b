package main

import (
	"context"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/honeycarbs/tenuretrack/internal/app"
	"github.com/honeycarbs/tenuretrack/internal/config"
	"github.com/honeycarbs/tenuretrack/internal/mcp"
	mcptools "github.com/honeycarbs/tenuretrack/internal/mcp/tools"
	"github.com/honeycarbs/tenuretrack/internal/scheduler"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
	"github.com/honeycarbs/tenuretrack/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	res, err := app.InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}
	defaults := app.DefaultRunParams(cfg)

	srv := mcp.NewServer(logger, cfg,
		mcptools.WithRunPipeline(res.Pipeline, defaults),
		mcptools.WithListingSets(res.Store),
		mcptools.WithJobRecords(res.Store),
		mcptools.WithSheetsExport(res.Sheets, res.Store),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)
	g.Go(func() error {
		return shutdown.Graceful(gctx, srv, 10*time.Second, logger)
	})

	if cfg.Schedule != "" {
		sched, err := scheduler.New(res.Pipeline, cfg.Schedule, defaults, logger)
		if err != nil {
			logger.Error("failed to create scheduler", "err", err)
			os.Exit(1)
		}
		if err := sched.Start(gctx); err != nil {
			logger.Error("failed to start scheduler", "err", err)
			os.Exit(1)
		}
		g.Go(func() error {
			<-gctx.Done()
			sched.Stop()
			return nil
		})
	}

	logger.Info("MCP server initialized and starting", "addr", cfg.Addr(), "data_dir", cfg.DataDir, "schedule", cfg.Schedule)

	if err := g.Wait(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("MCP server stopped")
}

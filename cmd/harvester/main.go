// Command harvester runs one pipeline pass from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/honeycarbs/tenuretrack/internal/app"
	"github.com/honeycarbs/tenuretrack/internal/config"
	"github.com/honeycarbs/tenuretrack/internal/domain/pipeline"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
	"github.com/honeycarbs/tenuretrack/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := app.DefaultRunParams(cfg)

	fs := flag.NewFlagSet("harvester", flag.ExitOnError)
	fs.TextVar(&params.Mode, "mode", params.Mode, "run mode: urls, details, full, or reextract")
	fs.StringVar(&params.Keywords, "keywords", params.Keywords, "space separated search keywords")
	fs.IntVar(&params.MaxPages, "max-pages", params.MaxPages, "number of result pages to walk")
	fs.TextVar(&params.MaxJobs, "max-jobs", params.MaxJobs, "positive integer or unlimited")
	fs.TextVar(&params.Scope, "scope", params.Scope, "process new listings only (new) or every current listing (all)")
	fs.BoolVar(&params.Debug, "debug", params.Debug, "persist raw search page snapshots")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for listing sets, documents, and exports")
	jsonOut := fs.Bool("json", false, "print the run summary as JSON")
	_ = fs.Parse(os.Args[1:])

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, params, *jsonOut, logger); err != nil {
		logger.Error("harvest failed", "err", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, params pipeline.RunParams, jsonOut bool, logger *logging.Logger) error {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	res, err := app.InitializeResources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	result, err := res.Pipeline.Run(ctx, params)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if jsonOut {
		result.Records = nil
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
	} else {
		fmt.Printf("run %s (%s): collected=%d new=%d processed=%d failed=%d partial=%t\n",
			result.RunID, result.Mode, result.Collected, result.New, result.Processed, result.Failed, result.Partial)
		if result.Mode.ProcessesDetails() {
			fmt.Printf("records written to %s\n", res.Store.CSVPath())
		}
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}

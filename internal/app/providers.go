// Package app assembles the harvesting pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/honeycarbs/tenuretrack/internal/config"
	"github.com/honeycarbs/tenuretrack/internal/domain/detail"
	"github.com/honeycarbs/tenuretrack/internal/domain/extract"
	"github.com/honeycarbs/tenuretrack/internal/domain/extract/llm"
	"github.com/honeycarbs/tenuretrack/internal/domain/listing"
	"github.com/honeycarbs/tenuretrack/internal/domain/pipeline"
	"github.com/honeycarbs/tenuretrack/internal/domain/tracker"
	"github.com/honeycarbs/tenuretrack/internal/export"
	"github.com/honeycarbs/tenuretrack/internal/storage/filestore"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
	"github.com/honeycarbs/tenuretrack/pkg/ollama"
	"github.com/honeycarbs/tenuretrack/pkg/sheets"
)

// Resources is everything the entry points need after wiring
type Resources struct {
	Pipeline *pipeline.Service
	Store    *filestore.Store
	Sheets   *export.SheetsExporter
}

// DefaultRunParams maps configured crawl defaults to run parameters
func DefaultRunParams(cfg config.Config) pipeline.RunParams {
	return pipeline.RunParams{
		Mode:     cfg.Crawl.Mode,
		Keywords: cfg.Crawl.Keywords,
		MaxPages: cfg.Crawl.MaxPages,
		MaxJobs:  cfg.Crawl.MaxJobs,
		Scope:    cfg.Crawl.Scope,
		Debug:    cfg.Crawl.Debug,
	}
}

// provideJrecinConfig extracts search site settings from main config
func provideJrecinConfig(cfg config.Config) jrecin.Config {
	return jrecin.Config{
		BaseURL:    cfg.Crawl.BaseURL,
		SearchPath: cfg.Crawl.SearchPath,
		UserAgent:  cfg.Crawl.UserAgent,
		Timeout:    cfg.Crawl.RequestTimeout,
	}
}

func provideFileStore(cfg config.Config) (*filestore.Store, error) {
	return filestore.New(cfg.DataDir)
}

func provideListingParser(client *jrecin.Client) (*listing.Parser, error) {
	return listing.NewParser(client.BaseURL())
}

func provideCollector(cfg config.Config, client *jrecin.Client, parser *listing.Parser, store *filestore.Store, logger *logging.Logger) (*listing.Collector, error) {
	return listing.NewCollector(client, parser, store, logger, listing.WithPageDelay(cfg.Crawl.PageDelay))
}

func provideFetcher(cfg config.Config, client *jrecin.Client, store *filestore.Store, logger *logging.Logger) (*detail.Fetcher, error) {
	return detail.NewFetcher(client, store, logger, detail.WithDelay(cfg.Crawl.DetailDelay))
}

// provideExtractor picks the rule-based extractor or the generation-service one
func provideExtractor(cfg config.Config, logger *logging.Logger) (extract.Extractor, error) {
	switch cfg.Extractor.Kind {
	case config.ExtractorLLM:
		client, err := ollama.NewClient(ollama.Config{
			BaseURL:    cfg.Ollama.URL,
			Model:      cfg.Ollama.Model,
			HTTPClient: &http.Client{Timeout: cfg.Ollama.Timeout},
			MaxRetries: cfg.Ollama.MaxRetries,
			RetryDelay: cfg.Ollama.RetryDelay,
		})
		if err != nil {
			return nil, fmt.Errorf("app: ollama client: %w", err)
		}
		e, err := llm.New(client, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using llm extractor", "model", client.Model())
		return e, nil
	default:
		return extract.NewRuleExtractor(logger), nil
	}
}

func provideCSVExporter(store *filestore.Store) (*export.CSVExporter, error) {
	return export.NewCSVExporter(store.CSVPath())
}

// provideSheetsExporter returns an unconfigured exporter when no
// credentials are set, so the tool can report that instead of failing wiring
func provideSheetsExporter(ctx context.Context, cfg config.Config, logger *logging.Logger) (*export.SheetsExporter, error) {
	target := export.SheetTarget{SpreadsheetID: cfg.Sheets.SpreadsheetID, Tab: cfg.Sheets.Tab}
	if !cfg.Sheets.Enabled() {
		return export.NewSheetsExporter(nil, target), nil
	}

	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.Sheets.CredentialsPath})
	if err != nil {
		return nil, fmt.Errorf("app: sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.Sheets.SpreadsheetID)
	return export.NewSheetsExporter(client, target), nil
}

// provideExporters always writes the CSV; the Sheets tab is refreshed after
// each run only when a default spreadsheet is configured
func provideExporters(cfg config.Config, csv *export.CSVExporter, sh *export.SheetsExporter) []export.Exporter {
	exporters := []export.Exporter{csv}
	if sh.Configured() && cfg.Sheets.SpreadsheetID != "" {
		exporters = append(exporters, sh)
	}
	return exporters
}

func providePipeline(
	collector *listing.Collector,
	tr *tracker.Tracker,
	fetcher *detail.Fetcher,
	client *jrecin.Client,
	extractor extract.Extractor,
	store *filestore.Store,
	exporters []export.Exporter,
	logger *logging.Logger,
) (*pipeline.Service, error) {
	return pipeline.NewService(
		pipeline.WithCollector(collector),
		pipeline.WithTracker(tr),
		pipeline.WithFetcher(fetcher),
		pipeline.WithSessions(client),
		pipeline.WithExtractor(extractor),
		pipeline.WithStore(store),
		pipeline.WithExporters(exporters...),
		pipeline.WithLogger(logger),
	)
}

func newResources(svc *pipeline.Service, store *filestore.Store, sh *export.SheetsExporter) *Resources {
	return &Resources{Pipeline: svc, Store: store, Sheets: sh}
}

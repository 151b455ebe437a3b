//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/tenuretrack/internal/config"
	"github.com/honeycarbs/tenuretrack/internal/domain/tracker"
	"github.com/honeycarbs/tenuretrack/internal/storage/filestore"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// InitializeResources creates Resources with the pipeline wired up
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, error) {
	wire.Build(
		// Infrastructure
		provideJrecinConfig,
		jrecin.NewClient,
		provideFileStore,
		wire.Bind(new(tracker.ListingStore), new(*filestore.Store)),

		// Stages
		provideListingParser,
		provideCollector,
		tracker.New,
		provideFetcher,
		provideExtractor,

		// Exports
		provideCSVExporter,
		provideSheetsExporter,
		provideExporters,

		providePipeline,
		newResources,
	)

	return &Resources{}, nil
}

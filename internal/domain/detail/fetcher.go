package detail

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/ctxutil"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

const defaultDelay = time.Second

// PageClient retrieves a detail page within a session
type PageClient interface {
	Fetch(ctx context.Context, s *jrecin.Session, url string) ([]byte, error)
}

// DocumentStore keeps raw detail documents
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc domain.DetailDocument) error
}

// Option configures Fetcher
type Option func(*Fetcher)

// WithDelay overrides the pause between detail requests
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// WithSleep replaces the context-aware sleeper
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// Fetcher retrieves and persists detail documents one at a time
type Fetcher struct {
	client PageClient
	store  DocumentStore
	logger *logging.Logger
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetcher builds a detail fetcher
func NewFetcher(client PageClient, store DocumentStore, logger *logging.Logger, opts ...Option) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("detail.Fetcher: page client is required")
	}
	if store == nil {
		return nil, fmt.Errorf("detail.Fetcher: document store is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	f := &Fetcher{
		client: client,
		store:  store,
		logger: logger,
		delay:  defaultDelay,
		sleep:  ctxutil.Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch issues one request for the listing's detail page and stores the raw
// document before returning it. A failed request is not retried.
func (f *Fetcher) Fetch(ctx context.Context, s *jrecin.Session, listing domain.ListingReference) (domain.DetailDocument, error) {
	if !listing.HasID() {
		return domain.DetailDocument{}, fmt.Errorf("detail: listing %q has no job id", listing.URL)
	}

	body, err := f.client.Fetch(ctx, s, listing.URL)
	if err != nil {
		f.logger.Warn("detail fetch failed", "job_id", listing.JobID, "url", listing.URL, "error", err)
		return domain.DetailDocument{}, fmt.Errorf("detail: fetch %s: %w", listing.JobID, err)
	}

	doc := domain.DetailDocument{
		JobID:     listing.JobID,
		SourceURL: listing.URL,
		Body:      body,
	}

	if err := f.store.SaveDocument(ctx, doc); err != nil {
		f.logger.Warn("store detail document failed", "job_id", listing.JobID, "error", err)
	} else {
		f.logger.Debug("detail document stored", "job_id", listing.JobID, "bytes", len(body))
	}

	return doc, nil
}

// Pause waits the inter-request delay. Callers skip it after the last
// listing of a batch.
func (f *Fetcher) Pause(ctx context.Context) error {
	return f.sleep(ctx, f.delay)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/domain/extract"
	"github.com/honeycarbs/tenuretrack/internal/domain/listing"
	"github.com/honeycarbs/tenuretrack/internal/export"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// Collector runs pagination for one session
type Collector interface {
	Collect(ctx context.Context, params listing.CollectParams) (listing.CollectResult, error)
}

// Tracker computes the newly observed subset and rotates history
type Tracker interface {
	Diff(ctx context.Context, current domain.ListingSet) (domain.ListingSet, error)
}

// Fetcher retrieves detail documents with a fixed pause between them
type Fetcher interface {
	Fetch(ctx context.Context, s *jrecin.Session, l domain.ListingReference) (domain.DetailDocument, error)
	Pause(ctx context.Context) error
}

// Sessions opens a fresh request session per run
type Sessions interface {
	NewSession() (*jrecin.Session, error)
}

// Store is the persistence the orchestrator reads and writes directly
type Store interface {
	LoadListingSet(ctx context.Context, kind domain.ListingSetKind) (domain.ListingSet, error)
	LoadDocument(ctx context.Context, jobID string) (domain.DetailDocument, error)
	ListDocuments(ctx context.Context) ([]string, error)
	SaveRecord(ctx context.Context, rec domain.JobRecord) error
	SaveRecords(ctx context.Context, recs []domain.JobRecord) error
}

// RunParams configure one pipeline run
type RunParams struct {
	Mode     domain.RunMode
	Keywords string
	MaxPages int
	MaxJobs  domain.JobCap
	Scope    domain.Scope
	Debug    bool
}

// RunResult summarizes one run
type RunResult struct {
	RunID      string             `json:"run_id"`
	Mode       domain.RunMode     `json:"mode"`
	Collected  int                `json:"collected"`
	New        int                `json:"new"`
	Processed  int                `json:"processed"`
	Failed     int                `json:"failed"`
	Partial    bool               `json:"partial"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Records    []domain.JobRecord `json:"records,omitempty"`
}

// Option configures Service
type Option func(*config)

type config struct {
	collector Collector
	tracker   Tracker
	fetcher   Fetcher
	sessions  Sessions
	extractor extract.Extractor
	store     Store
	exporters []export.Exporter
	logger    *logging.Logger
	clock     func() time.Time
	newID     func() string
}

// WithCollector sets the pagination driver
func WithCollector(c Collector) Option {
	return func(cfg *config) {
		cfg.collector = c
	}
}

// WithTracker sets the diff tracker
func WithTracker(t Tracker) Option {
	return func(cfg *config) {
		cfg.tracker = t
	}
}

// WithFetcher sets the detail fetcher
func WithFetcher(f Fetcher) Option {
	return func(cfg *config) {
		cfg.fetcher = f
	}
}

// WithSessions sets the session factory
func WithSessions(s Sessions) Option {
	return func(cfg *config) {
		cfg.sessions = s
	}
}

// WithExtractor sets the field extractor
func WithExtractor(e extract.Extractor) Option {
	return func(cfg *config) {
		cfg.extractor = e
	}
}

// WithStore sets the artifact store
func WithStore(s Store) Option {
	return func(cfg *config) {
		cfg.store = s
	}
}

// WithExporters sets the tabular exporters run after detail processing
func WithExporters(exporters ...export.Exporter) Option {
	return func(cfg *config) {
		cfg.exporters = exporters
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}

// WithIDGenerator sets how run ids are minted
func WithIDGenerator(newID func() string) Option {
	return func(cfg *config) {
		cfg.newID = newID
	}
}

// Service sequences collection, diffing, detail processing and export.
// Runs are serialized; a run requested while another is active fails with
// domain.ErrRunInProgress.
type Service struct {
	collector Collector
	tracker   Tracker
	fetcher   Fetcher
	sessions  Sessions
	extractor extract.Extractor
	store     Store
	exporters []export.Exporter
	logger    *logging.Logger
	clock     func() time.Time
	newID     func() string

	running sync.Mutex
}

// NewService builds Service from options
func NewService(opts ...Option) (*Service, error) {
	cfg := &config{
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch {
	case cfg.collector == nil:
		return nil, fmt.Errorf("pipeline.Service: collector is required")
	case cfg.tracker == nil:
		return nil, fmt.Errorf("pipeline.Service: tracker is required")
	case cfg.fetcher == nil:
		return nil, fmt.Errorf("pipeline.Service: fetcher is required")
	case cfg.sessions == nil:
		return nil, fmt.Errorf("pipeline.Service: session factory is required")
	case cfg.extractor == nil:
		return nil, fmt.Errorf("pipeline.Service: extractor is required")
	case cfg.store == nil:
		return nil, fmt.Errorf("pipeline.Service: store is required")
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	return &Service{
		collector: cfg.collector,
		tracker:   cfg.tracker,
		fetcher:   cfg.fetcher,
		sessions:  cfg.sessions,
		extractor: cfg.extractor,
		store:     cfg.store,
		exporters: cfg.exporters,
		logger:    cfg.logger,
		clock:     cfg.clock,
		newID:     cfg.newID,
	}, nil
}

// Run executes one pipeline pass for params.Mode
func (s *Service) Run(ctx context.Context, params RunParams) (RunResult, error) {
	if !s.running.TryLock() {
		return RunResult{}, domain.ErrRunInProgress
	}
	defer s.running.Unlock()

	if params.Mode == "" {
		params.Mode = domain.RunModeFull
	}
	if params.Scope == "" {
		params.Scope = domain.ScopeNew
	}
	if params.Mode.Collects() && params.MaxPages < 1 {
		return RunResult{}, fmt.Errorf("pipeline: max pages must be >= 1, got %d", params.MaxPages)
	}

	result := RunResult{
		RunID:     s.newID(),
		Mode:      params.Mode,
		StartedAt: s.clock(),
	}
	log := s.logger.With("run_id", result.RunID, "mode", string(params.Mode))
	log.Info("run started", "keywords", params.Keywords, "max_pages", params.MaxPages, "max_jobs", int(params.MaxJobs), "scope", string(params.Scope))

	err := s.run(ctx, log, params, &result)
	result.FinishedAt = s.clock()

	if err != nil {
		log.Error("run failed", "error", err, "processed", result.Processed, "failed", result.Failed)
		return result, err
	}
	log.Info("run finished",
		"collected", result.Collected,
		"new", result.New,
		"processed", result.Processed,
		"failed", result.Failed,
		"partial", result.Partial,
		"elapsed", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, log *logging.Logger, params RunParams, result *RunResult) error {
	if params.Mode == domain.RunModeReextract {
		return s.reextract(ctx, log, params.MaxJobs, result)
	}

	session, err := s.sessions.NewSession()
	if err != nil {
		return fmt.Errorf("pipeline: open session: %w", err)
	}

	var pending domain.ListingSet
	if params.Mode.Collects() {
		current, fresh, err := s.collect(ctx, log, session, params, result)
		if err != nil {
			return err
		}
		if !params.Mode.ProcessesDetails() {
			return nil
		}
		pending = fresh
		if params.Scope == domain.ScopeAll {
			pending = current
		}
	} else {
		pending, err = s.loadPending(ctx, log, params.Scope)
		if err != nil {
			return err
		}
	}

	pending = params.MaxJobs.Apply(pending)
	if len(pending) == 0 {
		log.Info("no listings to process")
	}

	records, procErr := s.process(ctx, log, session, pending, result)
	return errors.Join(procErr, s.finish(ctx, log, records, result))
}

func (s *Service) collect(
	ctx context.Context,
	log *logging.Logger,
	session *jrecin.Session,
	params RunParams,
	result *RunResult,
) (current, fresh domain.ListingSet, err error) {
	collected, err := s.collector.Collect(ctx, listing.CollectParams{
		Session:  session,
		Keywords: params.Keywords,
		MaxPages: params.MaxPages,
		Debug:    params.Debug,
	})
	if err != nil {
		return nil, nil, err
	}

	result.Partial = collected.Partial
	if collected.Partial {
		log.Warn("pagination ended early; diffing partial results", "pages", collected.Pages)
	}

	current = listing.Dedupe(collected.Listings)
	result.Collected = len(current)

	fresh, err = s.tracker.Diff(ctx, current)
	if err != nil {
		if fresh == nil {
			return nil, nil, fmt.Errorf("pipeline: diff: %w", err)
		}
		log.Warn("listing history not fully persisted", "error", err)
	}
	result.New = len(fresh)

	return current, fresh, nil
}

// loadPending picks the listing file a details-only run works from
func (s *Service) loadPending(ctx context.Context, log *logging.Logger, scope domain.Scope) (domain.ListingSet, error) {
	if scope == domain.ScopeNew {
		set, err := s.store.LoadListingSet(ctx, domain.ListingSetNew)
		if err == nil {
			return set, nil
		}
		if !errors.Is(err, domain.ErrListingSetNotFound) {
			return nil, err
		}
		log.Warn("no new-listings file, falling back to all listings")
	}

	set, err := s.store.LoadListingSet(ctx, domain.ListingSetAll)
	if errors.Is(err, domain.ErrListingSetNotFound) {
		return nil, domain.ErrNoListingFile
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) process(
	ctx context.Context,
	log *logging.Logger,
	session *jrecin.Session,
	pending domain.ListingSet,
	result *RunResult,
) ([]domain.JobRecord, error) {
	records := make([]domain.JobRecord, 0, len(pending))

	for i, l := range pending {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		itemLog := log.With("job_id", l.JobID, "item", i+1, "of", len(pending))

		if rec, ok := s.processOne(ctx, itemLog, session, l); ok {
			records = append(records, rec)
			result.Processed++
		} else {
			result.Failed++
		}

		if i < len(pending)-1 {
			if err := s.fetcher.Pause(ctx); err != nil {
				return records, err
			}
		}
	}

	return records, nil
}

func (s *Service) processOne(ctx context.Context, log *logging.Logger, session *jrecin.Session, l domain.ListingReference) (domain.JobRecord, bool) {
	doc, err := s.fetcher.Fetch(ctx, session, l)
	if err != nil {
		log.Warn("skipping listing: fetch failed", "error", err)
		return domain.JobRecord{}, false
	}
	return s.extractOne(ctx, log, doc)
}

func (s *Service) extractOne(ctx context.Context, log *logging.Logger, doc domain.DetailDocument) (domain.JobRecord, bool) {
	rec, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		log.Warn("skipping listing: extraction failed", "error", err)
		return domain.JobRecord{}, false
	}
	if err := s.store.SaveRecord(ctx, rec); err != nil {
		log.Warn("record not persisted", "error", err)
	}
	return rec, true
}

// reextract rebuilds records from stored documents without network access
func (s *Service) reextract(ctx context.Context, log *logging.Logger, limit domain.JobCap, result *RunResult) error {
	ids, err := s.store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && int(limit) < len(ids) {
		ids = ids[:limit]
	}

	records := make([]domain.JobRecord, 0, len(ids))
	var procErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			procErr = err
			break
		}
		itemLog := log.With("job_id", id)

		doc, err := s.store.LoadDocument(ctx, id)
		if err != nil {
			itemLog.Warn("skipping document: load failed", "error", err)
			result.Failed++
			continue
		}
		if rec, ok := s.extractOne(ctx, itemLog, doc); ok {
			records = append(records, rec)
			result.Processed++
		} else {
			result.Failed++
		}
	}

	return errors.Join(procErr, s.finish(ctx, log, records, result))
}

// finish writes the aggregate record file and runs every exporter. It runs
// even when the run was cancelled so completed work is not lost.
func (s *Service) finish(ctx context.Context, log *logging.Logger, records []domain.JobRecord, result *RunResult) error {
	ctx = context.WithoutCancel(ctx)
	result.Records = records

	var errs []error
	if err := s.store.SaveRecords(ctx, records); err != nil {
		errs = append(errs, err)
	}
	for _, e := range s.exporters {
		if err := e.Export(ctx, records); err != nil {
			log.Error("export failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

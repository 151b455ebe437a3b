package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/ctxutil"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

const defaultPageDelay = 2 * time.Second

// SearchClient issues session-scoped search requests
type SearchClient interface {
	Bootstrap(ctx context.Context, s *jrecin.Session) ([]byte, error)
	Search(ctx context.Context, s *jrecin.Session, params jrecin.SearchParams) ([]byte, error)
}

// SnapshotStore keeps per-page diagnostic artifacts
type SnapshotStore interface {
	SaveLandingPage(ctx context.Context, body []byte) error
	SaveSearchPage(ctx context.Context, page int, body []byte) error
	SaveParsedPage(ctx context.Context, result domain.PageParseResult) error
}

// CollectParams configure one pagination pass
type CollectParams struct {
	Session  *jrecin.Session
	Keywords string
	MaxPages int
	// Debug additionally persists the landing page and raw result pages
	Debug bool
}

// CollectResult is the raw, not yet deduplicated, listing aggregate
type CollectResult struct {
	Listings []domain.ListingReference
	Pages    int
	// Partial is set when a request failure cut pagination short
	Partial bool
}

// Option configures Collector
type Option func(*Collector)

// WithPageDelay overrides the wait between successive pages
func WithPageDelay(d time.Duration) Option {
	return func(c *Collector) {
		c.pageDelay = d
	}
}

// WithSleep replaces the context-aware sleeper
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Collector) {
		c.sleep = sleep
	}
}

// Collector drives paginated search requests
type Collector struct {
	client    SearchClient
	parser    *Parser
	store     SnapshotStore
	logger    *logging.Logger
	pageDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewCollector builds a pagination driver
func NewCollector(client SearchClient, parser *Parser, store SnapshotStore, logger *logging.Logger, opts ...Option) (*Collector, error) {
	if client == nil {
		return nil, fmt.Errorf("listing.Collector: search client is required")
	}
	if parser == nil {
		return nil, fmt.Errorf("listing.Collector: parser is required")
	}
	if store == nil {
		return nil, fmt.Errorf("listing.Collector: snapshot store is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Collector{
		client:    client,
		parser:    parser,
		store:     store,
		logger:    logger,
		pageDelay: defaultPageDelay,
		sleep:     ctxutil.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Collect walks result pages from 1 up to MaxPages. It stops early when a
// page reports no continuation or a request fails; in the latter case the
// listings gathered so far are returned with Partial set. Failing to open the
// session on page 1 is returned as domain.ErrSessionBootstrap.
func (c *Collector) Collect(ctx context.Context, params CollectParams) (CollectResult, error) {
	if params.MaxPages < 1 {
		return CollectResult{}, fmt.Errorf("listing: max pages must be >= 1, got %d", params.MaxPages)
	}

	landing, err := c.client.Bootstrap(ctx, params.Session)
	if err != nil {
		return CollectResult{}, fmt.Errorf("%w: %w", domain.ErrSessionBootstrap, err)
	}
	if params.Debug {
		if err := c.store.SaveLandingPage(ctx, landing); err != nil {
			c.logger.Warn("save landing page failed", "error", err)
		}
	}

	var result CollectResult
	for page := 1; page <= params.MaxPages; page++ {
		body, err := c.client.Search(ctx, params.Session, jrecin.SearchParams{
			Keywords: params.Keywords,
			Page:     page,
		})
		if err != nil {
			if ctx.Err() != nil {
				result.Partial = true
				return result, ctx.Err()
			}
			if page == 1 {
				return CollectResult{}, fmt.Errorf("%w: first search page: %w", domain.ErrSessionBootstrap, err)
			}
			c.logger.Warn("search request failed, stopping pagination", "page", page, "error", err)
			result.Partial = true
			break
		}

		if params.Debug {
			if err := c.store.SaveSearchPage(ctx, page, body); err != nil {
				c.logger.Warn("save search page failed", "page", page, "error", err)
			}
		}

		parsed, err := c.parser.Parse(body, page)
		if err != nil {
			c.logger.Warn("parse search page failed, stopping pagination", "page", page, "error", err)
			result.Partial = true
			break
		}
		if err := c.store.SaveParsedPage(ctx, parsed); err != nil {
			c.logger.Warn("save parsed page failed", "page", page, "error", err)
		}

		result.Pages = page
		result.Listings = append(result.Listings, parsed.Listings...)
		c.logger.Info("page parsed", "page", page, "listings", len(parsed.Listings), "has_next", parsed.HasNext)

		if !parsed.HasNext {
			break
		}

		if page < params.MaxPages {
			if err := c.sleep(ctx, c.pageDelay); err != nil {
				result.Partial = true
				return result, err
			}
		}
	}

	return result, nil
}

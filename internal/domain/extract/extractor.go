package extract

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// Extractor turns one detail document into a JobRecord
type Extractor interface {
	Extract(ctx context.Context, doc domain.DetailDocument) (domain.JobRecord, error)
}

var _ Extractor = (*RuleExtractor)(nil)

// Option configures RuleExtractor
type Option func(*RuleExtractor)

// WithClock sets the clock is_active is evaluated against
func WithClock(clock func() time.Time) Option {
	return func(e *RuleExtractor) {
		e.clock = clock
	}
}

// RuleExtractor locates fields through the anchor table in detailFields.
// A missing anchor leaves its field empty; it is never an error.
type RuleExtractor struct {
	logger *logging.Logger
	clock  func() time.Time
}

// NewRuleExtractor builds the anchor-based extractor
func NewRuleExtractor(logger *logging.Logger, opts ...Option) *RuleExtractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &RuleExtractor{logger: logger, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fills a record from the document's markup
func (e *RuleExtractor) Extract(ctx context.Context, doc domain.DetailDocument) (domain.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobRecord{}, err
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return domain.JobRecord{}, fmt.Errorf("extract: parse document %s: %w", doc.JobID, err)
	}

	rec := domain.NewJobRecord(doc.JobID, doc.SourceURL)

	missing := 0
	for _, f := range detailFields {
		n := f.anchor.locate(page)
		if n == nil {
			missing++
			continue
		}
		f.assign(&rec, f.value(n))
	}

	deadline := rec.Identity.ApplicationDeadline
	if deadline != "" {
		if _, ok := ParseDate(deadline); !ok {
			e.logger.Debug("deadline not parseable, keeping record active", "job_id", doc.JobID, "deadline", deadline)
		}
	}
	rec.Status.IsActive = IsActive(deadline, e.clock())

	e.logger.Debug("record extracted", "job_id", doc.JobID, "missing_anchors", missing)
	return rec, nil
}

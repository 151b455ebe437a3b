package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/domain/extract"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// Generator produces free-form text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var _ extract.Extractor = (*Extractor)(nil)

// Option configures Extractor
type Option func(*Extractor)

// WithClock sets the clock is_active is evaluated against
func WithClock(clock func() time.Time) Option {
	return func(e *Extractor) {
		e.clock = clock
	}
}

// Extractor fills JobRecords by asking a text-generation model to read the
// document and answer with the grouped record JSON.
type Extractor struct {
	gen    Generator
	logger *logging.Logger
	clock  func() time.Time
}

// New builds a model-backed extractor
func New(gen Generator, logger *logging.Logger, opts ...Option) (*Extractor, error) {
	if gen == nil {
		return nil, fmt.Errorf("llm.Extractor: generator is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Extractor{gen: gen, logger: logger, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract returns domain.ErrNoResult when the model output holds no usable
// JSON object. Identity and provenance fields always come from the document,
// and is_active is computed locally from the returned deadline.
func (e *Extractor) Extract(ctx context.Context, doc domain.DetailDocument) (domain.JobRecord, error) {
	prompt := buildPrompt(preprocess(doc.Body))

	started := time.Now()
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("generation failed", "job_id", doc.JobID, "error", err)
		return domain.JobRecord{}, fmt.Errorf("llm: %s: %w: %w", doc.JobID, domain.ErrNoResult, err)
	}
	e.logger.Debug("generation finished", "job_id", doc.JobID, "elapsed", time.Since(started))

	raw, ok := jsonObject(out)
	if !ok {
		e.logger.Warn("no JSON object in model output", "job_id", doc.JobID)
		return domain.JobRecord{}, fmt.Errorf("llm: %s: %w", doc.JobID, domain.ErrNoResult)
	}

	rec := domain.NewJobRecord(doc.JobID, doc.SourceURL)
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		e.logger.Warn("model output is not a record", "job_id", doc.JobID, "error", err)
		return domain.JobRecord{}, fmt.Errorf("llm: %s: %w: %w", doc.JobID, domain.ErrNoResult, err)
	}

	rec.Identity.JobID = doc.JobID
	rec.Status.OriginalURL = doc.SourceURL
	rec.Status.IsActive = extract.IsActive(rec.Identity.ApplicationDeadline, e.clock())

	return rec, nil
}

// preprocess narrows the document to the posting card, or failing that to
// the body without scripts and styles.
func preprocess(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}

	if card := doc.Find("div.card").First(); card.Length() > 0 {
		if h, err := goquery.OuterHtml(card); err == nil {
			return h
		}
	}

	b := doc.Find("body").First()
	if b.Length() == 0 {
		return string(body)
	}
	b.Find("script, style").Remove()
	h, err := goquery.OuterHtml(b)
	if err != nil {
		return string(body)
	}
	return h
}

// jsonObject returns the text from the first '{' to the last '}'
func jsonObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/honeycarbs/tenuretrack/internal/domain"
)

const (
	allListingsFile      = "all_job_urls.json"
	previousListingsFile = "previous_job_urls.json"
	newListingsFile      = "new_job_urls.json"
	recordsFile          = "all_job_data.json"
	csvFile              = "economic_jobs.csv"
	landingPageFile      = "initial_page.html"

	searchPagesDir = "search_pages"
	documentsDir   = "job_details/html"
	recordsDir     = "job_details/json"

	dirPerm  = 0o755
	filePerm = 0o644
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store persists every pipeline artifact as flat files under one root
// directory. Each write is atomic: data lands in a temp file in the target
// directory and is renamed over the destination.
type Store struct {
	root string
}

// New creates the directory layout under root
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("filestore: root directory is required")
	}
	for _, dir := range []string{root, filepath.Join(root, searchPagesDir), filepath.Join(root, documentsDir), filepath.Join(root, recordsDir)} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("filestore: create %s: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the data directory
func (s *Store) Root() string {
	return s.root
}

// CSVPath is where the tabular export is written
func (s *Store) CSVPath() string {
	return filepath.Join(s.root, csvFile)
}

func (s *Store) listingPath(kind domain.ListingSetKind) (string, error) {
	switch kind {
	case domain.ListingSetAll:
		return filepath.Join(s.root, allListingsFile), nil
	case domain.ListingSetPrevious:
		return filepath.Join(s.root, previousListingsFile), nil
	case domain.ListingSetNew:
		return filepath.Join(s.root, newListingsFile), nil
	default:
		return "", fmt.Errorf("filestore: unknown listing set %q", kind)
	}
}

// LoadListingSet reads one listing-set generation. A missing file yields
// domain.ErrListingSetNotFound.
func (s *Store) LoadListingSet(ctx context.Context, kind domain.ListingSetKind) (domain.ListingSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.listingPath(kind)
	if err != nil {
		return nil, err
	}

	var set domain.ListingSet
	if err := readJSON(path, &set); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("filestore: %s listings: %w", kind, domain.ErrListingSetNotFound)
		}
		return nil, fmt.Errorf("filestore: load %s listings: %w", kind, err)
	}
	if set == nil {
		set = domain.ListingSet{}
	}
	return set, nil
}

// SaveListingSet replaces one listing-set generation
func (s *Store) SaveListingSet(ctx context.Context, kind domain.ListingSetKind, set domain.ListingSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.listingPath(kind)
	if err != nil {
		return err
	}
	if set == nil {
		set = domain.ListingSet{}
	}
	if err := writeJSON(path, set); err != nil {
		return fmt.Errorf("filestore: save %s listings: %w", kind, err)
	}
	return nil
}

// SaveDocument stores a raw detail document keyed by job id
func (s *Store) SaveDocument(ctx context.Context, doc domain.DetailDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := fileName(doc.JobID, ".html")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(s.root, documentsDir, name), doc.Body); err != nil {
		return fmt.Errorf("filestore: save document %s: %w", doc.JobID, err)
	}
	return nil
}

// LoadDocument reads a stored detail document. SourceURL is filled from the
// stored record when one exists.
func (s *Store) LoadDocument(ctx context.Context, jobID string) (domain.DetailDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.DetailDocument{}, err
	}
	name, err := fileName(jobID, ".html")
	if err != nil {
		return domain.DetailDocument{}, err
	}

	body, err := os.ReadFile(filepath.Join(s.root, documentsDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DetailDocument{}, fmt.Errorf("filestore: document %s: %w", jobID, domain.ErrDocumentNotFound)
		}
		return domain.DetailDocument{}, fmt.Errorf("filestore: load document %s: %w", jobID, err)
	}

	doc := domain.DetailDocument{JobID: jobID, Body: bytes.TrimPrefix(body, utf8BOM)}
	if rec, err := s.LoadRecord(ctx, jobID); err == nil {
		doc.SourceURL = rec.Status.OriginalURL
	}
	return doc, nil
}

// ListDocuments returns the job ids of every stored detail document, sorted
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, documentsDir))
	if err != nil {
		return nil, fmt.Errorf("filestore: list documents: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".html" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".html"))
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveRecord writes one record to its own JSON file
func (s *Store) SaveRecord(ctx context.Context, rec domain.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := fileName(rec.Identity.JobID, ".json")
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.root, recordsDir, name), rec); err != nil {
		return fmt.Errorf("filestore: save record %s: %w", rec.Identity.JobID, err)
	}
	return nil
}

// LoadRecord reads one per-listing record
func (s *Store) LoadRecord(ctx context.Context, jobID string) (domain.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobRecord{}, err
	}
	name, err := fileName(jobID, ".json")
	if err != nil {
		return domain.JobRecord{}, err
	}
	var rec domain.JobRecord
	if err := readJSON(filepath.Join(s.root, recordsDir, name), &rec); err != nil {
		return domain.JobRecord{}, fmt.Errorf("filestore: load record %s: %w", jobID, err)
	}
	return rec, nil
}

// SaveRecords replaces the aggregate record file of the latest run
func (s *Store) SaveRecords(ctx context.Context, recs []domain.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recs == nil {
		recs = []domain.JobRecord{}
	}
	if err := writeJSON(filepath.Join(s.root, recordsFile), recs); err != nil {
		return fmt.Errorf("filestore: save records: %w", err)
	}
	return nil
}

// LoadRecords reads the aggregate record file; a missing file yields no records
func (s *Store) LoadRecords(ctx context.Context) ([]domain.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var recs []domain.JobRecord
	if err := readJSON(filepath.Join(s.root, recordsFile), &recs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.JobRecord{}, nil
		}
		return nil, fmt.Errorf("filestore: load records: %w", err)
	}
	if recs == nil {
		recs = []domain.JobRecord{}
	}
	return recs, nil
}

// SaveLandingPage keeps the search landing page for diagnostics
func (s *Store) SaveLandingPage(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.root, landingPageFile), body)
}

// SaveSearchPage keeps one raw result page for diagnostics
func (s *Store) SaveSearchPage(ctx context.Context, page int, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.root, searchPagesDir, fmt.Sprintf("page%d.html", page)), body)
}

// SaveParsedPage keeps the parser output of one result page
func (s *Store) SaveParsedPage(ctx context.Context, result domain.PageParseResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.root, searchPagesDir, fmt.Sprintf("parsed_page%d.json", result.PageNumber)), result)
}

func fileName(jobID, ext string) (string, error) {
	if jobID == "" {
		return "", fmt.Errorf("filestore: job id is required")
	}
	if jobID != filepath.Base(jobID) || strings.ContainsAny(jobID, `/\`) || strings.HasPrefix(jobID, ".") {
		return "", fmt.Errorf("filestore: invalid job id %q", jobID)
	}
	return jobID + ext, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// files written by older tooling carry a UTF-8 BOM
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic writes data to path via a temp file and rename so readers
// never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ListingReference is one search-result entry pointing at a detail page.
// JobID is empty when the href carried no recognizable identifier.
type ListingReference struct {
	URL   string
	Title string
	JobID string
}

type listingReferenceJSON struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	JobID *string `json:"job_id"`
}

// MarshalJSON writes an absent JobID as null
func (l ListingReference) MarshalJSON() ([]byte, error) {
	out := listingReferenceJSON{URL: l.URL, Title: l.Title}
	if l.JobID != "" {
		id := l.JobID
		out.JobID = &id
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON accepts null or missing job_id
func (l *ListingReference) UnmarshalJSON(data []byte) error {
	var in listingReferenceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	l.URL = in.URL
	l.Title = in.Title
	l.JobID = ""
	if in.JobID != nil {
		l.JobID = *in.JobID
	}
	return nil
}

// HasID reports whether the listing takes part in dedup and diff
func (l ListingReference) HasID() bool {
	return l.JobID != ""
}

// ListingSet is an ordered snapshot of listings
type ListingSet []ListingReference

// IDs returns the set of non-empty job ids
func (s ListingSet) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s))
	for _, l := range s {
		if l.HasID() {
			ids[l.JobID] = struct{}{}
		}
	}
	return ids
}

// ListingSetKind names one of the persisted listing-set generations
type ListingSetKind string

const (
	// ListingSetAll is the current deduplicated listing set
	ListingSetAll ListingSetKind = "all"
	// ListingSetPrevious is the prior run's listing set
	ListingSetPrevious ListingSetKind = "previous"
	// ListingSetNew is the diff of the current run against the previous one
	ListingSetNew ListingSetKind = "new"
)

// ListingSetKinds lists every persisted generation in display order
func ListingSetKinds() []ListingSetKind {
	return []ListingSetKind{ListingSetAll, ListingSetPrevious, ListingSetNew}
}

// ParseListingSetKind validates a kind name
func ParseListingSetKind(s string) (ListingSetKind, error) {
	switch k := ListingSetKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ListingSetAll, ListingSetPrevious, ListingSetNew:
		return k, nil
	default:
		return "", fmt.Errorf("unknown listing set %q (want all, previous or new)", s)
	}
}

// PageParseResult is the parser output for one search-results page
type PageParseResult struct {
	PageNumber int                `json:"page_number"`
	Listings   []ListingReference `json:"listings"`
	HasNext    bool               `json:"has_next"`
}

// DetailDocument is the raw markup of one listing's detail page
type DetailDocument struct {
	JobID     string
	SourceURL string
	Body      []byte
}

// Identity groups the fields that identify a posting
type Identity struct {
	Title               string `json:"position_title"`
	Institution         string `json:"institution"`
	JobID               string `json:"job_id"`
	InstitutionType     string `json:"institution_type"`
	UpdateDate          string `json:"update_date"`
	ApplicationDeadline string `json:"application_deadline"`
}

// Classification groups the position attributes
type Classification struct {
	Location       string `json:"location"`
	ResearchField  string `json:"research_field"`
	PositionType   string `json:"position_type"`
	EmploymentType string `json:"employment_type"`
	TenureStatus   string `json:"tenure_status"`
	TrialPeriod    string `json:"trial_period"`
}

// Compensation groups salary and working conditions
type Compensation struct {
	Salary                  string `json:"salary"`
	SalaryDescription       string `json:"salary_description"`
	WorkingHoursDescription string `json:"working_hours_description"`
}

// Content groups the free-text body of a posting
type Content struct {
	JobDescription       string `json:"job_description"`
	Department           string `json:"department"`
	Qualifications       string `json:"qualifications"`
	TeachingRequirements string `json:"teaching_requirements"`
	ApplicationMethod    string `json:"application_method"`
}

// RecordStatus groups notes, the computed activity flag and provenance
type RecordStatus struct {
	Notes       string `json:"notes"`
	IsActive    bool   `json:"is_active"`
	OriginalURL string `json:"original_url"`
}

// JobRecord is the normalized extraction output for one listing
type JobRecord struct {
	Identity       Identity       `json:"identity"`
	Classification Classification `json:"classification"`
	Compensation   Compensation   `json:"compensation"`
	Content        Content        `json:"content"`
	Status         RecordStatus   `json:"status"`
}

// NewJobRecord returns an empty record for a listing; is_active defaults to true
func NewJobRecord(jobID, sourceURL string) JobRecord {
	return JobRecord{
		Identity: Identity{JobID: jobID},
		Status:   RecordStatus{IsActive: true, OriginalURL: sourceURL},
	}
}

// RunMode selects which pipeline stages execute
type RunMode string

const (
	// RunModeURLs collects listings and computes the diff only
	RunModeURLs RunMode = "urls"
	// RunModeDetails processes details from previously persisted listings
	RunModeDetails RunMode = "details"
	// RunModeFull collects listings then processes details
	RunModeFull RunMode = "full"
	// RunModeReextract rebuilds records from persisted detail documents
	RunModeReextract RunMode = "reextract"
)

// ParseRunMode accepts canonical names and the legacy *_only spellings
func ParseRunMode(s string) (RunMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urls", "urls_only", "urls-only", "collect":
		return RunModeURLs, nil
	case "details", "details_only", "details-only":
		return RunModeDetails, nil
	case "full", "":
		return RunModeFull, nil
	case "reextract", "re-extract":
		return RunModeReextract, nil
	default:
		return "", fmt.Errorf("unknown run mode %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *RunMode) UnmarshalText(b []byte) error {
	mode, err := ParseRunMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (m RunMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// Collects reports whether the mode runs pagination
func (m RunMode) Collects() bool {
	return m == RunModeURLs || m == RunModeFull
}

// ProcessesDetails reports whether the mode produces JobRecords
func (m RunMode) ProcessesDetails() bool {
	return m != RunModeURLs
}

// Scope picks which listing set feeds detail processing
type Scope string

const (
	// ScopeNew processes only listings not seen in the previous run
	ScopeNew Scope = "new"
	// ScopeAll processes the whole current listing set
	ScopeAll Scope = "all"
)

// ParseScope validates a scope name; empty means ScopeNew
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "":
		return ScopeNew, nil
	case "all":
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want new or all)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Scope) UnmarshalText(b []byte) error {
	scope, err := ParseScope(string(b))
	if err != nil {
		return err
	}
	*s = scope
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

// JobCap bounds how many listings are processed; zero means unlimited
type JobCap int

// Unlimited is the JobCap that processes every listing
const Unlimited JobCap = 0

// ParseJobCap accepts a positive integer or "unlimited"
func ParseJobCap(s string) (JobCap, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "unlimited", "all", "none":
		return Unlimited, nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("job cap must be a positive integer or \"unlimited\", got %q", s)
		}
		return JobCap(n), nil
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *JobCap) UnmarshalText(b []byte) error {
	v, err := ParseJobCap(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (c JobCap) MarshalText() ([]byte, error) {
	if c <= 0 {
		return []byte("unlimited"), nil
	}
	return []byte(strconv.Itoa(int(c))), nil
}

// Apply truncates the set to the cap
func (c JobCap) Apply(set ListingSet) ListingSet {
	if c <= 0 || int(c) >= len(set) {
		return set
	}
	return set[:c]
}

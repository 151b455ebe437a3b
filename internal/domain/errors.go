package domain

import "errors"

var (
	// ErrListingSetNotFound is returned when a listing-set generation was never written
	ErrListingSetNotFound = errors.New("listing set not found")

	// ErrDocumentNotFound is returned when no raw detail document is stored for a job id
	ErrDocumentNotFound = errors.New("detail document not found")

	// ErrNoListingFile means a details-only run found no listing file to work from
	ErrNoListingFile = errors.New("no listing file exists; collect listings first")

	// ErrSessionBootstrap means the first search request could not establish a session
	ErrSessionBootstrap = errors.New("search session bootstrap failed")

	// ErrRunInProgress is returned when a run is requested while another is active
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrNoResult means an extractor produced no usable record for a document
	ErrNoResult = errors.New("extractor produced no result")
)

package analysis

import "errors"

var (
	// ErrNotFound indicates no analysis is stored for a fingerprint.
	ErrNotFound = errors.New("analysis not found")

	// ErrUnanalyzable indicates the extracted text was empty or whitespace only.
	// Such input is never classified as SEGURO.
	ErrUnanalyzable = errors.New("document text is empty or unreadable")

	// ErrExtraction indicates the extraction collaborator failed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrInvalidInput indicates a malformed request value.
	ErrInvalidInput = errors.New("invalid input")
)

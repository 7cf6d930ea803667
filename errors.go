package modelbuilder

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for the metadata load phase.
var (
	// ErrLoadFailed is returned when the metadata load phase aborts.
	// Load failures are fatal for a run; no partial graph is returned.
	ErrLoadFailed = errors.New("modelbuilder: metadata load failed")

	// ErrMalformedPaging is returned when a page envelope cannot be decoded.
	ErrMalformedPaging = errors.New("modelbuilder: malformed paging envelope")

	// ErrCacheMiss is returned by Cache implementations when a key is absent.
	ErrCacheMiss = errors.New("modelbuilder: cache miss")
)

// LoadError represents a fatal failure while reading metadata from a source.
type LoadError struct {
	Stage string // "entities", "optionsets", "messages", "filters", "language"
	Page  int    // 1-based page number, zero when not paged
	Cause error
}

// Error returns the error string.
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("modelbuilder: load error")
	if e.Stage != "" {
		b.WriteString(" in stage ")
		b.WriteString(e.Stage)
	}
	if e.Page > 0 {
		fmt.Fprintf(&b, " (page %d)", e.Page)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrLoadFailed.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// NewLoadError returns a new LoadError.
func NewLoadError(stage string, page int, cause error) *LoadError {
	return &LoadError{Stage: stage, Page: page, Cause: cause}
}

// PagingError represents an unparseable paging envelope.
// It matches both ErrMalformedPaging and ErrLoadFailed.
type PagingError struct {
	Page  int
	Cause error
}

// Error returns the error string.
func (e *PagingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("modelbuilder: malformed paging envelope on page %d: %v", e.Page, e.Cause)
	}
	return fmt.Sprintf("modelbuilder: malformed paging envelope on page %d", e.Page)
}

// Unwrap returns the underlying error.
func (e *PagingError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrMalformedPaging or ErrLoadFailed.
func (e *PagingError) Is(target error) bool {
	return target == ErrMalformedPaging || target == ErrLoadFailed
}

// NewPagingError returns a new PagingError.
func NewPagingError(page int, cause error) *PagingError {
	return &PagingError{Page: page, Cause: cause}
}

// IsLoadError returns true if the error is a load-phase failure.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrLoadFailed)
}

// IsPagingError returns true if the error is a malformed paging envelope.
func IsPagingError(err error) bool {
	var e *PagingError
	return errors.As(err, &e)
}

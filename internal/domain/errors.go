package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a non-deleted record already holds the correlation key.
	ErrConflict = errors.New("record already exists for correlation key")
	// ErrStoreWrite marks a failed store mutation; the event stays unprocessed.
	ErrStoreWrite = errors.New("store write failed")
	// ErrNotFound is returned by direct lookups that match nothing.
	ErrNotFound = errors.New("record not found")
)

// FetchErrorKind classifies image download failures.
type FetchErrorKind string

const (
	FetchNetwork   FetchErrorKind = "network"
	FetchTimeout   FetchErrorKind = "timeout"
	FetchBadStatus FetchErrorKind = "bad_status"
)

// FetchError is returned by the image fetcher. It is always recoverable.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: %s: status %d", e.URL, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

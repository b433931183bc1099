package streamgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/streamgo/asset"
)

var (
	// ErrNotFound is returned when an asset id is not registered.
	ErrNotFound = errors.New("asset not found")

	// ErrClosed is returned by operations on a closed manager.
	ErrClosed = errors.New("manager closed")

	// ErrNoLoader is returned when no registered loader accepts an
	// asset's payload path.
	ErrNoLoader = errors.New("no loader for payload")

	// ErrBudgetExceeded is returned when a load cannot fit the memory
	// budget even after forced eviction.
	ErrBudgetExceeded = errors.New("memory budget exceeded")

	// ErrCanceled is returned to waiters of a load that was canceled
	// while still queued.
	ErrCanceled = errors.New("load canceled")

	// ErrStillReferenced is returned by Unload when handles are still
	// open on the asset.
	ErrStillReferenced = errors.New("asset still referenced")
)

// ErrInvalidMetadata indicates metadata that cannot be registered.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidMetadata struct {
	ID    string
	cause error
}

func (e *ErrInvalidMetadata) Error() string {
	return fmt.Sprintf("invalid metadata for %q: %v", e.ID, e.cause)
}

func (e *ErrInvalidMetadata) Unwrap() error { return e.cause }

// ErrInvalidLOD indicates a LOD request for a level the asset's ladder
// does not define.
type ErrInvalidLOD struct {
	ID    string
	Level int
}

func (e *ErrInvalidLOD) Error() string {
	return fmt.Sprintf("asset %q: no lod level %d", e.ID, e.Level)
}

// LoadError wraps a failed load attempt with the asset id and the
// payload path that was being materialized.
//
// The underlying cause can be accessed via errors.Unwrap.
type LoadError struct {
	ID       string
	Path     string
	Priority asset.Priority
	cause    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q (%s): %v", e.ID, e.Path, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }

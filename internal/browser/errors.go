package browser

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaUnavailable = errors.New("schema unavailable")
	ErrFetch             = errors.New("fetch failed")
	ErrValidation        = errors.New("validation failed")
	ErrMutation          = errors.New("mutation failed")
	ErrCascadeDelete     = errors.New("cascade delete failed")

	ErrNoPrimaryKey  = errors.New("table has no primary key")
	ErrBusy          = errors.New("a fetch is already in flight")
	ErrNoMorePages   = errors.New("no more pages")
	ErrStaleResponse = errors.New("response superseded by a newer request")
	ErrNoSession     = errors.New("no edit session open")
	ErrNotLoaded     = errors.New("record is not loaded")
	ErrDeclined      = errors.New("declined")
	ErrPlanConsumed  = errors.New("cascade delete plan already executed")
)

// SchemaError means the backend could not describe a table. Nothing else in
// the browser works for that table until it resolves.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for %s unavailable: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchemaUnavailable, e.Err}
}

// FetchError is a failed page load. Its message is the backend's verbatim.
type FetchError struct {
	Table string
	Page  int
	Err   error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// ValidationError is raised locally, before anything reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MutationError is a create, update or delete the backend rejected.
type MutationError struct {
	Op    string
	Table string
	Err   error
}

func (e *MutationError) Error() string {
	return e.Err.Error()
}

func (e *MutationError) Unwrap() []error {
	return []error{ErrMutation, e.Err}
}

type CascadeDeleteError struct {
	TargetID string
	Err      error
}

func (e *CascadeDeleteError) Error() string {
	return e.Err.Error()
}

func (e *CascadeDeleteError) Unwrap() []error {
	return []error{ErrCascadeDelete, e.Err}
}

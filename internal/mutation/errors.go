package mutation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMutationInFlight is returned when a contact already has a mutation
	// that has not been committed or rolled back.
	ErrMutationInFlight = errors.New("another change to this contact is still in flight")

	// ErrContactNotFound is returned when the target id is not in the
	// current collection.
	ErrContactNotFound = errors.New("contact not found")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a draft. It never reaches
// the store: a draft that fails validation blocks the mutation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the violation recorded for the named field, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

// PartialBulkFailure reports a bulk operation in which at least one per-id
// operation failed. Succeeded and Failed never overlap.
type PartialBulkFailure struct {
	Succeeded []string
	Failed    map[string]error
}

// FailedIDs returns the failed ids in sorted order.
func (e *PartialBulkFailure) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *PartialBulkFailure) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("%d of %d operations failed: %s",
		len(ids), len(ids)+len(e.Succeeded), strings.Join(ids, ", "))
}

// Unwrap exposes the per-id causes to errors.Is and errors.As.
func (e *PartialBulkFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// Package apperror defines the error taxonomy shared by the admission services.
//
// Every failure surfaced by a service is an *Error carrying one of four kinds.
// Handlers map the kind to an HTTP status; callers match kinds with errors.Is.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Base kinds for errors.Is matching.
var (
	KindValidation    = errors.New("validation error")
	KindNotFound      = errors.New("not found")
	KindStateConflict = errors.New("state conflict")
	KindCollaborator  = errors.New("collaborator failure")
)

// Error is a classified application error.
type Error struct {
	Kind    error    // one of the Kind* sentinels
	Op      string   // operation that failed, e.g. "tracker.SubmitStep1"
	Message string   // human readable, safe to return to clients
	Details []string // full list of validation problems
	Err     error    // underlying cause, never returned to clients for collaborator errors
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

// Validation reports malformed or missing caller input.
func Validation(op, message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Details: details}
}

func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// StateConflict reports an unsatisfied workflow gate.
func StateConflict(op, message string) *Error {
	return &Error{Kind: KindStateConflict, Op: op, Message: message}
}

// Collaborator wraps a failure of an external dependency (evaluator, scheduler,
// renderer, storage).
func Collaborator(op, collaborator string, err error) *Error {
	return &Error{
		Kind:    KindCollaborator,
		Op:      op,
		Message: fmt.Sprintf("%s failed", collaborator),
		Err:     err,
	}
}

func IsValidation(err error) bool    { return errors.Is(err, KindValidation) }
func IsNotFound(err error) bool      { return errors.Is(err, KindNotFound) }
func IsStateConflict(err error) bool { return errors.Is(err, KindStateConflict) }
func IsCollaborator(err error) bool  { return errors.Is(err, KindCollaborator) }

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Package errors defines the engine's typed error taxonomy. Disabled,
// Busy, and BadInput are surfaced to callers; walker faults are logged
// and never returned; internal trie invariant violations panic rather
// than returning a typed error, since they indicate a bug in this
// module, not a caller mistake.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies which of the taxonomy's user-visible error classes a
// Error value belongs to.
type Kind string

const (
	// KindDisabled: the engine is configured off; mutating and search
	// entry points return this without side effects.
	KindDisabled Kind = "disabled"
	// KindBusy: a search was attempted while indexing is in progress.
	// A second start_indexing does not return this; it stops the
	// running walk and starts again.
	KindBusy Kind = "busy"
	// KindBadInput: an invalid root was given to start_indexing.
	KindBadInput Kind = "bad_input"
)

// Error is the single error type returned by the engine's public
// operations. Internal invariant violations never construct one of
// these; see Invariant below.
type Error struct {
	Kind       Kind
	Operation  string
	Path       string
	Underlying error
	Timestamp  time.Time
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Operation, e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Kind)
}

func (e *Error) Unwrap() error { return e.Underlying }

// New constructs an Error of the given kind for the named operation.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Operation: op, Timestamp: time.Now()}
}

// WithPath attaches the path the operation was acting on.
func (e *Error) WithPath(p string) *Error {
	e.Path = p
	return e
}

// WithUnderlying attaches a wrapped cause.
func (e *Error) WithUnderlying(err error) *Error {
	e.Underlying = err
	return e
}

// Disabled returns a KindDisabled error for op.
func Disabled(op string) *Error { return New(KindDisabled, op) }

// Busy returns a KindBusy error for op.
func Busy(op string) *Error { return New(KindBusy, op) }

// BadInput returns a KindBadInput error for op, wrapping the underlying
// cause (e.g. the os.Stat failure on an unrealizable root).
func BadInput(op string, cause error) *Error {
	return New(KindBadInput, op).WithUnderlying(cause)
}

// IsKind reports whether err is an *Error of the given kind, giving
// callers an `errors.Is(err, errors.KindBusy)`-style check.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// Invariant panics with a message identifying which trie structural
// invariant was violated. These are never returned as typed errors:
// they are program bugs, not user-visible failure classes.
func Invariant(id, detail string) {
	panic(fmt.Sprintf("art invariant %s violated: %s", id, detail))
}

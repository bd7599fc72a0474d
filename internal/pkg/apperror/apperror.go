package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and recovery policy.
type Kind int

const (
	// KindValidation rejects malformed input before any external call.
	KindValidation Kind = iota
	// KindNotFound covers unknown owners and missing records.
	KindNotFound
	// KindRetrieval marks a failed embedding or nearest-neighbor call.
	// The fusion engine may recover from it by falling back to lexical-only.
	KindRetrieval
	// KindComposition marks a failed grounded-completion call. Never
	// degraded into a fallback string.
	KindComposition
	// KindInternal marks invariant violations. Always fatal.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRetrieval:
		return "retrieval"
	case KindComposition:
		return "composition"
	default:
		return "internal"
	}
}

// Error is the application error carried up to the HTTP error handler.
type Error struct {
	Kind    Kind
	Stage   string // retrieval stage ("semantic", "lexical"), empty otherwise
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Retrieval wraps a failed external retrieval call, tagged with the stage
// that failed so the fusion engine can decide on fallback.
func Retrieval(stage string, err error) *Error {
	return &Error{
		Kind:    KindRetrieval,
		Stage:   stage,
		Message: fmt.Sprintf("%s retrieval failed", stage),
		Err:     err,
	}
}

func Composition(err error) *Error {
	return &Error{
		Kind:    KindComposition,
		Message: "answer generation failed",
		Err:     err,
	}
}

func Internal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) is an application
// error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// IsRetrieval reports whether err is a retrieval failure for the given
// stage. An empty stage matches any retrieval failure.
func IsRetrieval(err error, stage string) bool {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind != KindRetrieval {
		return false
	}
	return stage == "" || appErr.Stage == stage
}

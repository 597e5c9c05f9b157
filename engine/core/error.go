package core

// Kind tags an Error with one of the taxonomy values from the reconciliation
// engine's error design (transport, validation, engine, and persistence
// kinds). Kind is a string, not an int, so it serializes unchanged into the
// JSON report and CLI summary.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server"
	KindTimeout      Kind = "timeout"
	KindConnection   Kind = "connection"
	KindProtocol     Kind = "protocol"
	KindCancelled    Kind = "cancelled"

	KindInvalidInput  Kind = "invalid_input"
	KindOutOfRange    Kind = "out_of_range"
	KindMissingField  Kind = "missing_field"

	KindNoWorkItems        Kind = "no_work_items"
	KindNoMeetings         Kind = "no_meetings"
	KindConflictUnresolved Kind = "conflict_unresolved"
	KindWriteRejected      Kind = "write_rejected"

	KindIOError        Kind = "io_error"
	KindCorruptStore   Kind = "corrupt_store"
	KindDuplicateEntry Kind = "duplicate_entry"
)

// Error is the structured error value carried across every component
// boundary in the pipeline. It always has a human Message and a taxonomy
// Code; Details carries kind-specific payload (status code, retry-after,
// offending field, etc).
type Error struct {
	Message string         `json:"message,omitempty"`
	Code    Kind           `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func NewError(err error, code Kind, details map[string]any) *Error {
	var message string
	if err != nil {
		message = err.Error()
	} else {
		message = "unknown error"
	}
	return &Error{
		Message: message,
		Code:    code,
		Details: details,
		cause:   err,
	}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether e carries the given taxonomy kind. Used at call sites
// instead of comparing Code directly so a nil *Error is always false.
func (e *Error) Is(kind Kind) bool {
	return e != nil && e.Code == kind
}

// Retryable reports whether the transport layer should retry the request
// that produced this error.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case KindRateLimited, KindServer, KindTimeout, KindConnection:
		return true
	default:
		return false
	}
}

func (e *Error) AsMap() map[string]any {
	if e == nil {
		return nil
	}

	// Return nil if the error has no meaningful content
	if e.Message == "" && e.Code == "" && e.Details == nil {
		return nil
	}

	return map[string]any{
		"message": e.Message,
		"code":    string(e.Code),
		"details": e.Details,
	}
}

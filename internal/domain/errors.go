package domain

import "fmt"

// SourceErrorKind distinguishes the three ingestion failure modes.
type SourceErrorKind string

const (
	SourceUnavailable       SourceErrorKind = "source-unavailable"
	SourceFormatUnsupported SourceErrorKind = "source-format-unsupported"
	SourceEmpty             SourceErrorKind = "source-empty"
)

// SourceError reports an ingestion failure with enough detail for the caller
// to choose a remedy (Hint names the alternative path when one exists).
type SourceError struct {
	Kind      SourceErrorKind
	Reference string
	Hint      string
	Err       error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Reference)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *SourceError) Unwrap() error { return e.Err }

// ExtractionMalformedError means the oracle output failed schema validation.
// Field names the offending field; the output is never silently patched.
type ExtractionMalformedError struct {
	Field  string
	Reason string
}

func (e *ExtractionMalformedError) Error() string {
	return fmt.Sprintf("extraction malformed: field %q: %s", e.Field, e.Reason)
}

// ExtractionUnavailableError means the oracle could not be reached or refused
// the request. Retryable separates temporary overload from quota exhaustion;
// retry policy belongs to the caller, never to the core.
type ExtractionUnavailableError struct {
	Retryable bool
	Err       error
}

func (e *ExtractionUnavailableError) Error() string {
	state := "quota exhausted"
	if e.Retryable {
		state = "temporarily overloaded"
	}
	if e.Err != nil {
		return fmt.Sprintf("extraction unavailable (%s): %v", state, e.Err)
	}
	return fmt.Sprintf("extraction unavailable (%s)", state)
}

func (e *ExtractionUnavailableError) Unwrap() error { return e.Err }

// FieldMissingError reports a required field for the chosen layout that was
// never filled. Surfaced before assembly, not as a rendering crash.
type FieldMissingError struct {
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

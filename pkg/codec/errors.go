package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile  Phase = "compile"  // spec normalization
	PhaseGenerate Phase = "generate" // record to buffer
	PhaseParse    Phase = "parse"    // buffer to record
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidSpec         Kind = "invalid_spec"
	KindRequiredField       Kind = "required_field"
	KindInvalidValue        Kind = "invalid_value"
	KindNotInteger          Kind = "not_integer"
	KindNotBoolean          Kind = "not_boolean"
	KindInvalidDate         Kind = "invalid_date"
	KindTooLong             Kind = "too_long"
	KindInvalidLength       Kind = "invalid_length"
	KindInvalidRecordEnding Kind = "invalid_record_ending"

	// kindValue only exists as the ErrValue match target.
	kindValue Kind = "value"
)

// Sentinel errors for use with errors.Is. Matching is by Kind only, so
// errors.Is(err, ErrTooLong) holds for every too_long error regardless of
// field or phase.
var (
	ErrInvalidSpec         = &Error{Kind: KindInvalidSpec}
	ErrRequiredField       = &Error{Kind: KindRequiredField}
	ErrInvalidValue        = &Error{Kind: KindInvalidValue}
	ErrNotInteger          = &Error{Kind: KindNotInteger}
	ErrNotBoolean          = &Error{Kind: KindNotBoolean}
	ErrInvalidDate         = &Error{Kind: KindInvalidDate}
	ErrTooLong             = &Error{Kind: KindTooLong}
	ErrInvalidLength       = &Error{Kind: KindInvalidLength}
	ErrInvalidRecordEnding = &Error{Kind: KindInvalidRecordEnding}

	// ErrValue matches every error raised by Generate or Parse, i.e. every
	// kind except invalid_spec.
	ErrValue = &Error{Kind: kindValue}
)

// Error is the structured error returned by Compile, Generate and Parse
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Field  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Field != "" {
		b.WriteString(" at field ")
		b.WriteString(e.Field)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == kindValue {
		return e.Kind != KindInvalidSpec && e.Kind != kindValue
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func specError(format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInvalidSpec,
		Detail: fmt.Sprintf(format, args...),
	}
}

func fieldError(phase Phase, kind Kind, f *Field, value any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Field:  f.Key,
		Value:  value,
		Detail: detail,
	}
}

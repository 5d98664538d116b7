package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField classifies strict parse failures caused by unknown keys.
	ErrUnknownField = errors.New("unknown config field")

	ErrMissingCredential = errors.New("missing credential")
	ErrOutOfRange        = errors.New("value out of range")
	ErrInvalidValue      = errors.New("invalid value")
)

// Kind classifies one validation issue.
type Kind string

const (
	KindMissingCredential Kind = "MissingCredential"
	KindOutOfRange        Kind = "OutOfRange"
	KindInvalidValue      Kind = "InvalidValue"
)

func (k Kind) sentinel() error {
	switch k {
	case KindMissingCredential:
		return ErrMissingCredential
	case KindOutOfRange:
		return ErrOutOfRange
	default:
		return ErrInvalidValue
	}
}

// Issue is one invalid field.
type Issue struct {
	Field   string
	Kind    Kind
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Message, i.Kind)
}

// Error is the configuration validity error returned by Validate.
// errors.Is matches the sentinel of every contained issue kind.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return "invalid config: " + e.Issues[0].String()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("invalid config: %d issues: %s", len(e.Issues), strings.Join(parts, "; "))
}

func (e *Error) Is(target error) bool {
	for _, issue := range e.Issues {
		if issue.Kind.sentinel() == target {
			return true
		}
	}
	return false
}

// Fields returns the fields with an issue of kind, in schema order.
func (e *Error) Fields(kind Kind) []string {
	var fields []string
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			fields = append(fields, issue.Field)
		}
	}
	return fields
}

// Without returns the remaining issues after dropping kind, or nil when none remain.
func (e *Error) Without(kind Kind) *Error {
	rest := make([]Issue, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Kind != kind {
			rest = append(rest, issue)
		}
	}
	if len(rest) == 0 {
		return nil
	}
	return &Error{Issues: rest}
}

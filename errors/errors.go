// Package errors provides the structured error types used throughout Mosaic.
//
// Engine errors carry a stable Code plus the component type and slot path
// they relate to, so callers can match on the failure class with errors.Is
// while logs retain enough context to locate the offending template position.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a class of engine failure.
type Code string

const (
	// CodeTemplateMismatch signals that a view's segment and value counts
	// disagree, or that discovery produced a slot list whose length does
	// not match the view's value count. Nothing is cached for the type.
	CodeTemplateMismatch Code = "template_mismatch"

	// CodeUnknownComponentType signals that a node value satisfies the
	// component contract but its tag name was never registered.
	CodeUnknownComponentType Code = "unknown_component_type"

	// CodeUnstableDataComparison signals injected component data that
	// cannot be compared structurally (functions, channels).
	CodeUnstableDataComparison Code = "unstable_data_comparison"

	// CodeMalformedMarkup signals compiled markup the fragment parser
	// rejected.
	CodeMalformedMarkup Code = "malformed_markup"

	// CodeInvalidDefinition signals component options that cannot be
	// registered (missing or malformed name).
	CodeInvalidDefinition Code = "invalid_definition"

	// CodeCommit signals a failure while applying a single slot's value.
	// Commit errors are isolated per slot: logged and skipped.
	CodeCommit Code = "commit_failed"

	// CodeInternal signals a bug in the engine itself.
	CodeInternal Code = "internal"
)

// Error is the structured error type for engine failures.
type Error struct {
	Code      Code
	Component string // component type name, when known
	Slot      []int  // slot path relative to the fragment root, when slot-scoped
	Attr      string // attribute name, for attribute/event slots
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s]", e.Code))

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}
	if e.Slot != nil {
		parts = append(parts, "slot:"+PathString(e.Slot))
	}
	if e.Attr != "" {
		parts = append(parts, "attr:"+e.Attr)
	}

	parts = append(parts, e.Message)
	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by Code, so sentinel-style comparisons work:
//
//	errors.Is(err, &Error{Code: CodeTemplateMismatch})
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithComponent records the component type name the error occurred in.
func (e *Error) WithComponent(name string) *Error {
	e.Component = name
	return e
}

// WithSlot records the slot path (and attribute name, if any) the error
// occurred at.
func (e *Error) WithSlot(path []int, attr string) *Error {
	e.Slot = path
	e.Attr = attr
	return e
}

// PathString renders a slot path as "/0/2/1". The empty path is "/".
func PathString(path []int) string {
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range path {
		fmt.Fprintf(&b, "/%d", i)
	}
	return b.String()
}

// NewTemplateMismatch creates a TemplateMismatch error for a view whose
// slot and value counts disagree.
func NewTemplateMismatch(component string, slots, values int) *Error {
	return &Error{
		Code:      CodeTemplateMismatch,
		Component: component,
		Message:   fmt.Sprintf("view produced %d values for %d slots", values, slots),
	}
}

// NewUnknownComponentType creates an UnknownComponentType error.
func NewUnknownComponentType(tag string) *Error {
	return &Error{
		Code:    CodeUnknownComponentType,
		Message: fmt.Sprintf("component tag %q is not registered", tag),
	}
}

// NewUnstableDataComparison creates an UnstableDataComparison error for the
// named data key.
func NewUnstableDataComparison(key string) *Error {
	return &Error{
		Code:    CodeUnstableDataComparison,
		Message: fmt.Sprintf("injected data key %q holds a value that cannot be compared structurally", key),
	}
}

// NewMalformedMarkup wraps a fragment parser failure.
func NewMalformedMarkup(component string, cause error) *Error {
	return &Error{
		Code:      CodeMalformedMarkup,
		Component: component,
		Message:   "compiled markup failed to parse",
		Cause:     cause,
	}
}

// NewInvalidDefinition creates an InvalidDefinition error for the named
// component options.
func NewInvalidDefinition(name, reason string) *Error {
	return &Error{
		Code:      CodeInvalidDefinition,
		Component: name,
		Message:   reason,
	}
}

// NewCommit wraps a single slot's commit failure.
func NewCommit(message string, cause error) *Error {
	return &Error{
		Code:    CodeCommit,
		Message: message,
		Cause:   cause,
	}
}

// NewInternal creates an internal engine error.
func NewInternal(message string, cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: message,
		Cause:   cause,
	}
}

// IsTemplateMismatch reports whether err is a TemplateMismatch.
func IsTemplateMismatch(err error) bool { return hasCode(err, CodeTemplateMismatch) }

// IsUnknownComponentType reports whether err is an UnknownComponentType.
func IsUnknownComponentType(err error) bool { return hasCode(err, CodeUnknownComponentType) }

// IsUnstableDataComparison reports whether err is an UnstableDataComparison.
func IsUnstableDataComparison(err error) bool { return hasCode(err, CodeUnstableDataComparison) }

// IsInvalidDefinition reports whether err is an InvalidDefinition.
func IsInvalidDefinition(err error) bool { return hasCode(err, CodeInvalidDefinition) }

func hasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

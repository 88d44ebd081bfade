package extract

import (
	"fmt"

	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// Kind classifies extraction failures.
type Kind string

const (
	KindLoopUsage         Kind = "LOOP_CSS_NOT_ALLOWED"
	KindDynamicContent    Kind = "DYNAMIC_CSS_NOT_ALLOWED"
	KindInvalidScope      Kind = "INVALID_SCOPE"
	KindDuplicateName     Kind = "DUPLICATE_NAME"
	KindInternalInvariant Kind = "INTERNAL_INVARIANT"
)

var messages = map[Kind]string{
	KindLoopUsage:         "css tag cannot be used inside a loop",
	KindDynamicContent:    "css tag supports static content only",
	KindInvalidScope:      "css tagged template literals must be assigned to a variable",
	KindDuplicateName:     "variable name is already taken",
	KindInternalInvariant: "unexpected syntax tree shape",
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrLoopUsage         = &Error{Kind: KindLoopUsage}
	ErrDynamicContent    = &Error{Kind: KindDynamicContent}
	ErrInvalidScope      = &Error{Kind: KindInvalidScope}
	ErrDuplicateName     = &Error{Kind: KindDuplicateName}
	ErrInternalInvariant = &Error{Kind: KindInternalInvariant}
)

// Error is a fatal extraction failure. Location is the zero Position when the
// tag site could not be resolved.
type Error struct {
	Kind     Kind
	Detail   string
	Location syntax.Position
}

func newError(kind Kind, loc syntax.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Location: loc}
}

// Message is the user-facing text without location.
func (e *Error) Message() string {
	msg := messages[e.Kind]
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Error() string {
	if e.Location.IsValid() {
		return fmt.Sprintf("%d:%d: %s (%s)", e.Location.Line, e.Location.Column, e.Message(), e.Kind)
	}
	return fmt.Sprintf("%s (%s)", e.Message(), e.Kind)
}

// Is matches sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

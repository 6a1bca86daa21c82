package domain

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("instrument already exists")
	ErrNotFound   = errors.New("instrument not found")
	ErrStore      = errors.New("catalog store failure")
)

// Error pairs a sentinel with the message shown to users. errors.Is matches
// the sentinel; Error returns only the message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

package core

import "fmt"

// Unit is the response type for commands that acknowledge with an empty
// payload.
type Unit struct{}

// Protocol error codes carried by failure acknowledgments. The presence of a
// code is the sole discriminant between failure and success on the wire.
// ErrorCodeConnection is client-local and never sent by the server.
const (
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeDuplicateItem = "DUPLICATE_ITEM"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeInternal      = "INTERNAL_ERROR"
	ErrorCodeConnection    = "CONNECTION_ERROR"
)

// CommandError is a handler failure that already knows how it should be
// acknowledged on the wire: Code is the protocol error code the client
// discriminates on.
type CommandError struct {
	Code   string
	Reason *string
}

type CommandErrorOption func(*CommandError)

func WithReason(reason string) CommandErrorOption {
	return func(e *CommandError) {
		e.Reason = &reason
	}
}

func NewCommandError(code string, opts ...CommandErrorOption) CommandError {
	e := CommandError{Code: code}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

func (e CommandError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("%s: %s", e.Code, *e.Reason)
	}

	return e.Code
}

package command

import (
	"errors"
	"fmt"
)

// Code classifies a command failure. Codes never cross the text boundary;
// they exist so callers and tests can branch on the kind of failure.
type Code string

const (
	CodeBadArgs  Code = "BAD_ARGS"
	CodeNoEnt    Code = "NOENT"
	CodeNotDir   Code = "NOTDIR"
	CodeNotFile  Code = "NOTFILE"
	CodeBadRedir Code = "BAD_REDIR"
	CodeUnknown  Code = "UNKNOWN"
	CodeNLMap    Code = "NL_MAP"
)

// Error is the expected failure of a command: bad input or a missing path.
type Error struct {
	Message string
	Code    Code
}

func (e *Error) Error() string { return e.Message }

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Code: code}
}

// CodeOf returns the Code carried by err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

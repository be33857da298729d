// Package syntax turns a raw command line into tokens and an optional
// output redirection.
package syntax

import (
	"errors"
	"fmt"

	shellquote "github.com/kballard/go-shellquote"
)

// ParseError reports a line that cannot be split into words, usually
// because a quote or escape was left open.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err (or anything it wraps) is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Tokenize splits line using POSIX shell word-splitting and quoting rules.
// Whitespace-only input yields an empty, non-nil slice.
func Tokenize(line string) ([]string, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// Quote renders a single word so that Tokenize returns it unchanged.
func Quote(word string) string {
	return shellquote.Join(word)
}

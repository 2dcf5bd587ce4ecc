package chess

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is wrapped by every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrIllegalMove is returned when a well-formed move is not legal in the current position.
	ErrIllegalMove = errors.New("illegal move")
)

// ParseError reports malformed FEN or move text.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

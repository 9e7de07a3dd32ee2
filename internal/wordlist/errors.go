package wordlist

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a file name matches no dictionary kind.
var ErrUnknownKind = errors.New("unknown dictionary kind")

// StructuralError aborts the validation of a file. No output is produced.
type StructuralError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *StructuralError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d column %d: %s", e.Line, e.Column, msg)
	}
	return msg
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

func structuralf(n Node, format string, args ...any) *StructuralError {
	return &StructuralError{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// Pos is a source position: a line/column pair, 1-based, or the zero value
// when no position is available (e.g. a programmatically-built Program).
type Pos struct {
	Line, Col int
}

func (p Pos) IsZero() bool { return p.Line == 0 && p.Col == 0 }

func (p Pos) String() string {
	if p.IsZero() {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// PosError is a diagnostic carrying a primary span and, per §7, optional
// related-position labels. It wraps github.com/pkg/errors so that CLI tools
// running with --debug can print a stack trace (%+v) while the default
// rendering (Error()) stays a one-line human message, matching the
// "build errors are reported with source position" contract of §4.B/§7.
type PosError struct {
	Pos     Pos
	Msg     string
	Labels  map[string]Pos
	wrapped error
}

func NewPosError(pos Pos, format string, args ...any) *PosError {
	return &PosError{Pos: pos, Msg: fmt.Sprintf(format, args...), wrapped: errors.New(fmt.Sprintf(format, args...))}
}

// WrapPos attaches a position to an existing error, preserving its stack via
// pkg/errors.
func WrapPos(pos Pos, err error, format string, args ...any) *PosError {
	msg := fmt.Sprintf(format, args...)
	return &PosError{Pos: pos, Msg: msg, wrapped: errors.Wrap(err, msg)}
}

func (e *PosError) Error() string {
	if e.Pos.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Unwrap exposes the underlying pkg/errors chain for errors.Is/As and for
// %+v stack-trace formatting.
func (e *PosError) Unwrap() error { return e.wrapped }

// WithLabel records a related position, e.g. "previous definition here".
func (e *PosError) WithLabel(name string, pos Pos) *PosError {
	if e.Labels == nil {
		e.Labels = make(map[string]Pos)
	}
	e.Labels[name] = pos
	return e
}

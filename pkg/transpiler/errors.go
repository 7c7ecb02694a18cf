package transpiler

import "fmt"

// ErrorKind classifies every failure the engine can report. The set is
// closed: there is no silent recovery and no best-effort variant.
type ErrorKind int

const (
	ErrUnterminatedLiteral ErrorKind = iota
	ErrMismatchedBracket
	ErrIndentationMismatch
	ErrExpectedIndent
	ErrUnclosedBrace
	ErrIncludeCycle
	ErrUnresolvedInclude
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnterminatedLiteral:
		return "UnterminatedLiteral"
	case ErrMismatchedBracket:
		return "MismatchedBracket"
	case ErrIndentationMismatch:
		return "IndentationMismatch"
	case ErrExpectedIndent:
		return "ExpectedIndent"
	case ErrUnclosedBrace:
		return "UnclosedBrace"
	case ErrIncludeCycle:
		return "IncludeCycle"
	case ErrUnresolvedInclude:
		return "UnresolvedInclude"
	}
	return "Unknown"
}

// Error is a positioned transpilation failure. Line and Col always refer to
// the original source file, never to transpiled output.
type Error struct {
	Kind ErrorKind
	File string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Col, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Msg)
}

func newError(kind ErrorKind, file string, line, col int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, File: file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// NewError builds a positioned error of the given kind. It exists for the
// header resolver, which reports include failures in the same shape the
// engine uses for its own.
func NewError(kind ErrorKind, file string, line, col int, format string, args ...interface{}) *Error {
	return newError(kind, file, line, col, format, args...)
}

package xpath

import "fmt"

// LexError reports a malformed query at the character level: unknown
// character, unclosed string or comment, malformed number.
type LexError struct {
	Msg        string
	Lexeme     string
	LineNumber int
	Column     int
}

func (e LexError) Error() string {
	return fmt.Sprintf("query lex error: %s at line %d, column %d ('%s')", e.Msg, e.LineNumber, e.Column, e.Lexeme)
}

// ParseError reports a token at an unexpected position.
type ParseError struct {
	Msg        string
	Lexeme     string
	LineNumber int
	Column     int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("query parse error: %s at line %d, column %d ('%s')", e.Msg, e.LineNumber, e.Column, e.Lexeme)
}

// EvalError reports a failure during evaluation: argument count
// mismatch, a type the operation cannot consume, or a leftover on the
// computation stack at end of query.
type EvalError struct {
	Msg string
}

func (e EvalError) Error() string {
	return "query eval error: " + e.Msg
}

func evalErrorf(format string, args ...interface{}) error {
	return EvalError{Msg: fmt.Sprintf(format, args...)}
}

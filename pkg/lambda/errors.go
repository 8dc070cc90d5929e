package lambda

import "fmt"

// Syntax names a surface notation.
type Syntax string

const (
	SyntaxPolish Syntax = "polish"
	SyntaxSexpr  Syntax = "sexpr"
	SyntaxLambda Syntax = "lambda"
)

// ParseError reports malformed surface input. No partial term is returned
// alongside it.
type ParseError struct {
	Syntax Syntax
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s syntax error at offset %d: %s", e.Syntax, e.Offset, e.Msg)
}

func newParseError(syntax Syntax, offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Syntax: syntax, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

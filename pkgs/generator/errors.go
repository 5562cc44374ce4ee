package generator

import (
	"fmt"
	"strings"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/lexer"
)

// ErrorKind separates the three ways a token can be rejected. All kinds are
// fatal to the translation run; the kind only shapes the message.
type ErrorKind int

const (
	ErrorUnexpected ErrorKind = iota // token not legal in the current state
	ErrorExpected                    // a specific token was required
	ErrorContext                     // legal token, illegal given the open scopes
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorUnexpected:
		return "unexpected token"
	case ErrorExpected:
		return "missing token"
	case ErrorContext:
		return "context violation"
	default:
		return "error"
	}
}

// endOfInput is reported as the actual token when the stream runs dry
const endOfInput = "end of input"

// ParseError describes the token that stopped a translation run.
type ParseError struct {
	Kind        ErrorKind
	Line        int
	Category    classifier.Category
	Text        string   // offending token text, or "end of input"
	Expected    string   // what was required, for ErrorExpected
	Reason      string   // why the token is illegal here, for ErrorContext
	Suggestions []string // keywords the offending statement may have meant
}

// Error renders the diagnostic line printed by the command line tool.
func (e *ParseError) Error() string {
	if e.Kind == ErrorExpected {
		return fmt.Sprintf("On line %d: expected '%s' but got '%s'", e.Line, e.Expected, e.Text)
	}
	return fmt.Sprintf("On line %d: unexpected %s '%s'", e.Line, e.Category, e.Text)
}

// Detail renders the reason and suggestions, or "" when there are none.
func (e *ParseError) Detail() string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.Suggestions) > 0 {
		quoted := make([]string, len(e.Suggestions))
		for i, s := range e.Suggestions {
			quoted[i] = "'" + s + "'"
		}
		parts = append(parts, "did you mean "+strings.Join(quoted, " or ")+"?")
	}
	return strings.Join(parts, "; ")
}

func (g *Generator) unexpected(tok lexer.Token) error {
	return &ParseError{
		Kind:     ErrorUnexpected,
		Line:     tok.Line,
		Category: g.category(tok),
		Text:     tok.Text,
	}
}

func (g *Generator) contextError(tok lexer.Token, format string, args ...interface{}) error {
	return &ParseError{
		Kind:     ErrorContext,
		Line:     tok.Line,
		Category: g.category(tok),
		Text:     tok.Text,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (g *Generator) expected(want string, tok lexer.Token) error {
	return &ParseError{
		Kind:     ErrorExpected,
		Line:     tok.Line,
		Category: g.category(tok),
		Text:     tok.Text,
		Expected: want,
	}
}

func (g *Generator) endOfInput(want string) error {
	return &ParseError{
		Kind:     ErrorExpected,
		Line:     g.stream.Line(),
		Category: classifier.Identifier,
		Text:     endOfInput,
		Expected: want,
	}
}

// Package generator is the single-pass recursive-descent translator from
// Delight to D. Every state consumes tokens from the stream and returns the
// D text for the construct it recognised; no syntax tree is built.
package generator

import (
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/prelude"
	"github.com/delight-lang/delight/pkgs/scope"
)

// TokenStream is the input the generator pulls from. *lexer.Stream
// implements it.
type TokenStream interface {
	Pop() lexer.Token
	Peek() lexer.Token
	Empty() bool
	Line() int
	Level() int
	Indentation() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithTables replaces the default classification tables.
func WithTables(tables *classifier.Tables) Option {
	return func(g *Generator) {
		g.tables = tables
	}
}

// WithLogger routes dispatch tracing to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator holds the state of one translation run.
type Generator struct {
	stream  TokenStream
	tables  *classifier.Tables
	scopes  *scope.Stack
	prelude *prelude.Registry
	logger  *slog.Logger

	dispatched int  // tokens handed to Start
	terminated bool // last statement of the current block was a jump

	// template parameters of the enclosing classes, innermost last
	classGenerics []map[string]bool
}

// New returns a generator reading from stream.
func New(stream TokenStream, opts ...Option) *Generator {
	g := &Generator{
		stream:  stream,
		tables:  classifier.DefaultTables(),
		scopes:  scope.NewStack(),
		prelude: prelude.NewRegistry(stream.Indentation()),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Scopes exposes the context stack, mainly for end-of-run checks.
func (g *Generator) Scopes() *scope.Stack {
	return g.scopes
}

// Prelude exposes the runtime helper registry of this run.
func (g *Generator) Prelude() *prelude.Registry {
	return g.prelude
}

// Start is the start state: it dispatches on the category of an already
// consumed token and returns the D text of the construct it begins.
func (g *Generator) Start(tok lexer.Token) (string, error) {
	cat := g.category(tok)
	first := g.dispatched == 0
	g.dispatched++

	g.logger.Debug("dispatch",
		"line", tok.Line,
		"category", cat.String(),
		"text", tok.Text,
		"scopes", g.scopes.String())

	if tok.Raw {
		return "", g.unexpected(tok)
	}

	switch cat {
	case classifier.Begin:
		if !first {
			return "", g.unexpected(tok)
		}
		return "", nil
	case classifier.Newline:
		return g.lineBreak(), nil
	case classifier.Dedent:
		return g.dedent(tok)
	case classifier.Indent:
		return "", g.unexpected(tok)
	case classifier.Punctuation:
		if isCommentMarker(tok.Text) {
			return g.comment(tok)
		}
		return "", g.unexpected(tok)
	case classifier.Conditional:
		g.terminated = false
		return g.conditional(tok)
	case classifier.ExceptionKeyword:
		g.terminated = false
		return g.exception(tok)
	}

	// Everything else starts an unrelated statement: else, except and
	// finally can no longer continue the block closed before it.
	g.scopes.ForgetPrevious()
	g.terminated = false

	switch cat {
	case classifier.Attribute:
		return g.attribute(tok)
	case classifier.LibraryKeyword:
		return g.library(tok)
	case classifier.Statement:
		return g.statement(tok)
	case classifier.Constructor:
		return g.constructor(tok)
	case classifier.Constant:
		if g.peekIs("=") {
			return g.constantDeclaration(tok)
		}
		return g.identifierStatement(tok)
	case classifier.ClassIdentifier:
		if g.peekIs(".") || g.peekIs("(") {
			return g.identifierStatement(tok)
		}
		return g.declaration(tok)
	case classifier.Type:
		return g.declaration(tok)
	case classifier.TemplateType:
		if !g.scopes.Contains(scope.Template) {
			return "", g.contextError(tok, "template type '%s' outside of a template class", tok.Text)
		}
		return g.declaration(tok)
	case classifier.FunctionType:
		return g.function(tok)
	case classifier.Identifier:
		return g.identifierStatement(tok)
	case classifier.UserType:
		return g.class(tok)
	default:
		return "", g.unexpected(tok)
	}
}

// category classifies a token; raw text is never a keyword.
func (g *Generator) category(tok lexer.Token) classifier.Category {
	if tok.Raw {
		return classifier.Identifier
	}
	return g.tables.Classify(tok.Text)
}

// next consumes a token, failing with an expected-token error naming want
// when the stream is exhausted.
func (g *Generator) next(want string) (lexer.Token, error) {
	if g.stream.Empty() {
		return lexer.Token{}, g.endOfInput(want)
	}
	return g.stream.Pop(), nil
}

// expect consumes a token that must read text.
func (g *Generator) expect(text string) error {
	tok, err := g.next(text)
	if err != nil {
		return err
	}
	if tok.Raw || tok.Text != text {
		return g.expected(text, tok)
	}
	return nil
}

// peekIs reports whether the next token reads text.
func (g *Generator) peekIs(text string) bool {
	if g.stream.Empty() {
		return false
	}
	tok := g.stream.Peek()
	return !tok.Raw && tok.Text == text
}

// peekCategory classifies the next token; ok is false at end of input.
func (g *Generator) peekCategory() (classifier.Category, bool) {
	if g.stream.Empty() {
		return classifier.Identifier, false
	}
	return g.category(g.stream.Peek()), true
}

// atLineEnd reports whether the current statement has no more tokens.
func (g *Generator) atLineEnd() bool {
	if g.stream.Empty() {
		return true
	}
	tok := g.stream.Peek()
	if tok.Raw {
		return false
	}
	return g.category(tok).IsNewlineMarker() || isCommentMarker(tok.Text)
}

// lineBreak starts a new output line at the current indentation.
func (g *Generator) lineBreak() string {
	return "\n" + g.indentation(g.stream.Level())
}

func (g *Generator) indentation(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(g.stream.Indentation(), level)
}

// require records a runtime helper dependency.
func (g *Generator) require(tok lexer.Token, helper string) error {
	if err := g.prelude.Require(helper); err != nil {
		return g.contextError(tok, "%v", err)
	}
	return nil
}

var wordPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isWord reports whether text can be a D identifier segment, keyword or not.
func isWord(tok lexer.Token) bool {
	return !tok.Raw && wordPattern.MatchString(tok.Text)
}

func isCommentMarker(text string) bool {
	return text == "#" || text == "#."
}

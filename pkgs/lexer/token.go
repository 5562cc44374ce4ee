package lexer

import (
	"fmt"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/invariant"
)

// Synthetic line markers. The generator sees them as ordinary token text and
// classifies them into the newline marker categories.
const (
	Newline = classifier.NewlineMarker
	Indent  = classifier.IndentMarker
	Dedent  = classifier.DedentMarker
	Begin   = classifier.BeginMarker
)

// Token is one unit of Delight input. Its category is not stored; callers
// classify Text on demand.
type Token struct {
	Text  string `cbor:"1,keyasint" json:"text"`
	Line  int    `cbor:"2,keyasint" json:"line"`  // 1-based source line
	Level int    `cbor:"3,keyasint" json:"level"` // indentation level once the token is consumed
	Depth int    `cbor:"4,keyasint" json:"depth"` // open raw blocks once the token is consumed
	Raw   bool   `cbor:"5,keyasint" json:"raw"`   // verbatim text: comment text or a line of a raw block
}

func (t Token) String() string {
	if t.Raw {
		return fmt.Sprintf("%d:raw %q", t.Line, t.Text)
	}
	return fmt.Sprintf("%d:%q", t.Line, t.Text)
}

// IsMarker reports whether the token is one of the synthetic line markers.
func (t Token) IsMarker() bool {
	if t.Raw {
		return false
	}
	switch t.Text {
	case Newline, Indent, Dedent, Begin:
		return true
	}
	return false
}

// Stream is the pull interface the generator consumes. It is owned by a
// single translation run and is not safe for concurrent use.
type Stream struct {
	tokens      []Token
	pos         int
	indentation string
	current     Token
}

// NewStream wraps a token slice. indentation is the literal text of one
// indentation unit in the generated output.
func NewStream(tokens []Token, indentation string) *Stream {
	if indentation == "" {
		indentation = DefaultIndentation
	}
	return &Stream{
		tokens:      tokens,
		indentation: indentation,
		current:     Token{Line: 1},
	}
}

// Pop consumes and returns the next token.
func (s *Stream) Pop() Token {
	invariant.Precondition(!s.Empty(), "pop from an exhausted token stream")
	s.current = s.tokens[s.pos]
	s.pos++
	return s.current
}

// Peek returns the next token without consuming it, or a zero Token at the
// end of input.
func (s *Stream) Peek() Token {
	if s.Empty() {
		return Token{}
	}
	return s.tokens[s.pos]
}

// Empty reports whether every token has been consumed.
func (s *Stream) Empty() bool {
	return s.pos >= len(s.tokens)
}

// Remaining returns the number of tokens not yet consumed.
func (s *Stream) Remaining() int {
	return len(s.tokens) - s.pos
}

// Line returns the source line of the most recently consumed token.
func (s *Stream) Line() int {
	return s.current.Line
}

// Level returns the indentation level after the most recently consumed token.
func (s *Stream) Level() int {
	return s.current.Level
}

// CommentDepth returns how many raw blocks are open at the read position.
func (s *Stream) CommentDepth() int {
	return s.current.Depth
}

// Indentation returns one indentation unit.
func (s *Stream) Indentation() string {
	return s.indentation
}

// Tokens returns the full token slice, consumed or not.
func (s *Stream) Tokens() []Token {
	return s.tokens
}

// FromWords builds a stream from bare token texts. Line numbers advance after
// every line marker and levels follow the indent and dedent markers, which is
// enough for tests and tools that do not start from source text.
func FromWords(indentation string, words ...string) *Stream {
	tokens := make([]Token, 0, len(words))
	line, level := 1, 0
	for _, w := range words {
		switch w {
		case Indent:
			level++
		case Dedent:
			if level > 0 {
				level--
			}
		}
		tokens = append(tokens, Token{Text: w, Line: line, Level: level})
		// a dedent run is always followed by a newline, which ends the line
		if w == Indent || w == Newline {
			line++
		}
	}
	return NewStream(tokens, indentation)
}

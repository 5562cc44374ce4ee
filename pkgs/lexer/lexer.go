package lexer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

// DefaultIndentation is the output indentation unit when the source has no
// indented line to learn it from.
const DefaultIndentation = "    "

// wordLexer splits the content of one logical line into words. Rule order
// matters: the first matching rule wins.
var wordLexer = plexer.MustStateful(plexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t\r]+`, Action: nil},
		{Name: "Comment", Pattern: `#\.?[^\n]*`, Action: nil},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`, Action: nil},
		{Name: "Char", Pattern: `'(\\.|[^'\\])*'`, Action: nil},
		{Name: "Comparator", Pattern: `\b(less[ \t]+than|more[ \t]+than|equal[ \t]+to)\b`, Action: nil},
		{Name: "Number", Pattern: `0[xX][0-9a-fA-F_]+|0[bB][01_]+|[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9]+)?[a-zA-Z]{0,2}`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Operator", Pattern: `->|\.\.|<<=|>>=|\^\^|<<|>>|<=|>=|==|!=|[-+*/%~&|^]=`, Action: nil},
		{Name: "Symbol", Pattern: `[-+*/%~&|^<>=!.,:;()\[\]{}?@$]`, Action: nil},
	},
})

var (
	symWhitespace = wordLexer.Symbols()["Whitespace"]
	symComment    = wordLexer.Symbols()["Comment"]
	symComparator = wordLexer.Symbols()["Comparator"]
)

// ScanError reports source text the scanner cannot turn into tokens.
type ScanError struct {
	Line    int
	Column  int
	Message string
}

func (e *ScanError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("On line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("On line %d: %s", e.Line, e.Message)
}

// Option configures Scan.
type Option func(*scanConfig)

type scanConfig struct {
	indentation string
	filename    string
	logger      *slog.Logger
}

// WithIndentation fixes the indentation unit instead of detecting it from
// the first indented line.
func WithIndentation(unit string) Option {
	return func(c *scanConfig) {
		c.indentation = unit
	}
}

// WithFilename sets the name reported by the word lexer.
func WithFilename(name string) Option {
	return func(c *scanConfig) {
		c.filename = name
	}
}

// WithLogger routes scanner debug output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

// debugLogger returns the scanner logger used when none is configured. Debug
// output is enabled by DELIGHT_DEBUG_LEXER.
func debugLogger() *slog.Logger {
	if os.Getenv("DELIGHT_DEBUG_LEXER") == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp and level for cleaner output
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// scanner turns source lines into words and line markers
type scanner struct {
	cfg    scanConfig
	unit   string
	tokens []Token

	level int // level of the last content line
	line  int // current 1-based line

	// raw block state
	raw       bool
	rawBase   int
	rawLines  int
	rawBlanks int
}

// Scan converts Delight source into a token stream with synthetic line
// markers. The stream starts with a Begin marker and every indent is
// balanced by a dedent before the final newline.
func Scan(source []byte, opts ...Option) (*Stream, error) {
	cfg := scanConfig{filename: "<input>"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = debugLogger()
	}

	s := &scanner{cfg: cfg, unit: cfg.indentation}
	s.emit(Begin, 0)

	text := strings.ReplaceAll(string(source), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	seenContent := false

	for i, raw := range lines {
		s.line = i + 1
		leading, content := splitIndent(raw)

		if s.raw {
			if s.rawLine(raw, leading, content) {
				continue
			}
		}

		if content == "" {
			continue
		}

		level, err := s.levelOf(leading)
		if err != nil {
			return nil, err
		}
		if !seenContent {
			if level != 0 {
				return nil, &ScanError{Line: s.line, Message: "unexpected indentation on first line"}
			}
			seenContent = true
		} else if err := s.boundary(level); err != nil {
			return nil, err
		}

		s.level = level
		if err := s.words(content, len(leading)); err != nil {
			return nil, err
		}

		if opensRawBlock(content) {
			s.raw = true
			s.rawBase = level
			s.rawLines = 0
			s.rawBlanks = 0
		}
	}

	if seenContent {
		s.line = len(lines)
		if s.raw && s.rawLines > 0 {
			s.level = s.rawBase + 1
		}
		s.raw = false
		s.closeTo(0)
	}

	if s.unit == "" {
		s.unit = DefaultIndentation
	}
	cfg.logger.Debug("scanned", "file", cfg.filename, "tokens", len(s.tokens), "indentation", fmt.Sprintf("%q", s.unit))
	return NewStream(s.tokens, s.unit), nil
}

// rawLine consumes a line inside a raw block. It returns false once the line
// belongs to the enclosing code again.
func (s *scanner) rawLine(line, leading, content string) bool {
	if content == "" {
		s.rawBlanks++
		return true
	}

	if s.unit == "" {
		if leading == "" {
			s.raw = false
			return false
		}
		s.unit = leading
	}

	prefix := strings.Repeat(s.unit, s.rawBase+1)
	if !strings.HasPrefix(line, prefix) {
		// back at or above the opener: close the block
		s.raw = false
		if s.rawLines > 0 {
			s.level = s.rawBase + 1
		}
		return false
	}

	depthAfter := 1
	if s.rawLines == 0 {
		s.emitMarker(Indent, s.rawBase+1, depthAfter)
	} else {
		s.emitMarker(Newline, s.rawBase+1, depthAfter)
		for ; s.rawBlanks > 0; s.rawBlanks-- {
			s.tokens = append(s.tokens, Token{Line: s.line - s.rawBlanks, Level: s.rawBase + 1, Depth: depthAfter, Raw: true})
			s.emitMarker(Newline, s.rawBase+1, depthAfter)
		}
	}
	s.rawBlanks = 0
	s.tokens = append(s.tokens, Token{
		Text:  strings.TrimRight(line[len(prefix):], " \t\r"),
		Line:  s.line,
		Level: s.rawBase + 1,
		Depth: depthAfter,
		Raw:   true,
	})
	s.rawLines++
	return true
}

// boundary emits the markers between the previous content line and a line
// at level.
func (s *scanner) boundary(level int) error {
	switch {
	case level == s.level+1:
		s.emitMarker(Indent, level, 0)
	case level > s.level+1:
		return &ScanError{Line: s.line, Message: fmt.Sprintf("indentation jumps from level %d to %d", s.level, level)}
	default:
		s.closeTo(level)
	}
	return nil
}

// closeTo emits one dedent per closed level and the newline ending the line.
func (s *scanner) closeTo(level int) {
	markerLine := s.markerLine()
	for l := s.level; l > level; l-- {
		s.tokens = append(s.tokens, Token{Text: Dedent, Line: markerLine, Level: l - 1})
	}
	s.tokens = append(s.tokens, Token{Text: Newline, Line: markerLine, Level: level})
}

// markerLine is the line a marker terminates: the line of the last token.
func (s *scanner) markerLine() int {
	if len(s.tokens) == 0 {
		return 1
	}
	return s.tokens[len(s.tokens)-1].Line
}

func (s *scanner) emitMarker(marker string, level, depth int) {
	s.tokens = append(s.tokens, Token{Text: marker, Line: s.markerLine(), Level: level, Depth: depth})
}

func (s *scanner) emit(text string, level int) {
	s.tokens = append(s.tokens, Token{Text: text, Line: max(s.line, 1), Level: level})
}

// levelOf converts leading whitespace into an indentation level, learning
// the unit from the first indented line.
func (s *scanner) levelOf(leading string) (int, error) {
	if leading == "" {
		return 0, nil
	}
	if s.unit == "" {
		s.unit = leading
		s.cfg.logger.Debug("indentation unit detected", "line", s.line, "unit", fmt.Sprintf("%q", leading))
	}
	level := strings.Count(leading, s.unit)
	if strings.Repeat(s.unit, level) != leading {
		return 0, &ScanError{Line: s.line, Message: fmt.Sprintf("inconsistent indentation %q (unit is %q)", leading, s.unit)}
	}
	return level, nil
}

// words lexes the content of one line and appends its tokens.
func (s *scanner) words(content string, column int) error {
	lex, err := wordLexer.LexString(s.cfg.filename, content)
	if err != nil {
		return &ScanError{Line: s.line, Message: err.Error()}
	}
	toks, err := plexer.ConsumeAll(lex)
	if err != nil {
		var lexErr *plexer.Error
		if errors.As(err, &lexErr) {
			return &ScanError{Line: s.line, Column: column + lexErr.Pos.Column, Message: lexErr.Msg}
		}
		return &ScanError{Line: s.line, Message: err.Error()}
	}

	for _, tok := range toks {
		switch {
		case tok.EOF(), tok.Type == symWhitespace:
			continue
		case tok.Type == symComment:
			marker, text := splitComment(tok.Value)
			s.emit(marker, s.level)
			if text != "" {
				s.tokens = append(s.tokens, Token{Text: text, Line: s.line, Level: s.level, Raw: true})
			}
		case tok.Type == symComparator:
			s.emit(strings.Join(strings.Fields(tok.Value), " "), s.level)
		default:
			s.emit(tok.Value, s.level)
		}
	}
	return nil
}

// splitComment separates "#." or "#" from the comment text.
func splitComment(value string) (marker, text string) {
	marker = "#"
	if strings.HasPrefix(value, "#.") {
		marker = "#."
	}
	return marker, strings.TrimSpace(value[len(marker):])
}

// opensRawBlock reports whether a line introduces a verbatim block.
func opensRawBlock(content string) bool {
	switch strings.TrimSpace(content) {
	case "#", "#.", "passthrough", "passthrough:":
		return true
	}
	return false
}

func splitIndent(line string) (leading, content string) {
	trimmed := strings.TrimLeft(line, " \t")
	leading = line[:len(line)-len(trimmed)]
	return leading, strings.TrimRight(trimmed, " \t\r")
}

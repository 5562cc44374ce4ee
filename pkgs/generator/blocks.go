package generator

import (
	"strings"

	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/scope"
)

// openBlock consumes the ':' and '<indent>' ending a block header, pushes tag
// and returns the text that opens the D block.
func (g *Generator) openBlock(tag string) (string, error) {
	if err := g.expect(":"); err != nil {
		return "", err
	}
	comment := g.trailingComment()
	tok, err := g.next(lexer.Indent)
	if err != nil {
		return "", err
	}
	if tok.Raw || tok.Text != lexer.Indent {
		return "", g.expected(lexer.Indent, tok)
	}
	g.scopes.Push(tag)
	if tag == scope.Case {
		return ":" + comment + g.lineBreak(), nil
	}
	return " {" + comment + g.lineBreak(), nil
}

// dedent closes the innermost scope.
func (g *Generator) dedent(tok lexer.Token) (string, error) {
	if g.scopes.Empty() {
		return "", g.contextError(tok, "dedent with no open block")
	}
	tag := g.scopes.Pop()
	if tag == scope.Class || tag == scope.Template {
		g.classGenerics = g.classGenerics[:len(g.classGenerics)-1]
	}

	if tag == scope.Case {
		out := ""
		if !g.terminated {
			out = "\n" + g.indentation(g.stream.Level()+1) + "break;"
		}
		g.terminated = false
		return out, nil
	}

	g.terminated = false
	return g.lineBreak() + "}", nil
}

// finish ends a statement on its line marker. terminator is written before
// any trailing comment.
func (g *Generator) finish(terminator string) (string, error) {
	out := terminator + g.trailingComment()
	if g.stream.Empty() {
		return out, nil
	}
	tok := g.stream.Pop()
	if tok.Raw {
		return "", g.unexpected(tok)
	}
	switch tok.Text {
	case lexer.Newline:
		return out + g.lineBreak(), nil
	case lexer.Dedent:
		closing, err := g.dedent(tok)
		return out + closing, err
	default:
		return "", g.unexpected(tok)
	}
}

// trailingComment consumes an inline comment ending the current line.
func (g *Generator) trailingComment() string {
	if !g.peekIs("#") && !g.peekIs("#.") {
		return ""
	}
	marker := g.stream.Pop()
	return " " + lineComment(marker.Text, g.commentText())
}

// commentText consumes the raw text following a comment marker, if any.
func (g *Generator) commentText() string {
	if g.stream.Empty() || !g.stream.Peek().Raw {
		return ""
	}
	return g.stream.Pop().Text
}

func lineComment(marker, text string) string {
	prefix := "//"
	if marker == "#." {
		prefix = "///"
	}
	if text == "" {
		return prefix
	}
	return prefix + " " + text
}

// comment handles a comment that starts a line: inline, or a block when the
// marker stands alone above an indented raw block.
func (g *Generator) comment(tok lexer.Token) (string, error) {
	if !g.peekIs(lexer.Indent) {
		return lineComment(tok.Text, g.commentText()), nil
	}

	base := g.stream.Level()
	lines, err := g.rawBlock(scope.Comment)
	if err != nil {
		return "", err
	}

	open := "/*"
	if tok.Text == "#." {
		open = "/**"
	}
	var b strings.Builder
	b.WriteString(open)
	for _, line := range lines {
		b.WriteString("\n")
		if line != "" {
			b.WriteString(g.indentation(base+1) + line)
		}
	}
	b.WriteString("\n" + g.indentation(base) + "*/")
	return b.String(), nil
}

// passthrough copies a raw block verbatim at the current indentation.
func (g *Generator) passthrough(tok lexer.Token) (string, error) {
	if g.peekIs(":") {
		g.stream.Pop()
	}
	if !g.peekIs(lexer.Indent) {
		if g.stream.Empty() {
			return "", g.endOfInput(lexer.Indent)
		}
		return "", g.expected(lexer.Indent, g.stream.Peek())
	}

	base := g.stream.Level()
	lines, err := g.rawBlock(scope.Passthrough)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
			if line != "" {
				b.WriteString(g.indentation(base))
			}
		}
		b.WriteString(line)
	}
	g.terminated = len(lines) > 0 && endsInJump(lines[len(lines)-1])
	return b.String(), nil
}

// rawBlock consumes '<indent>', the raw lines and the closing '<dedent>',
// keeping tag on the stack while inside.
func (g *Generator) rawBlock(tag string) ([]string, error) {
	if _, err := g.next(lexer.Indent); err != nil {
		return nil, err
	}
	g.scopes.Push(tag)

	var lines []string
	for {
		tok, err := g.next(lexer.Dedent)
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Raw:
			lines = append(lines, tok.Text)
		case tok.Text == lexer.Newline:
		case tok.Text == lexer.Dedent:
			g.scopes.Pop()
			return lines, nil
		default:
			return nil, g.unexpected(tok)
		}
	}
}

var jumpPrefixes = []string{"break", "continue", "return", "throw", "goto"}

// endsInJump reports whether a line of D leaves the enclosing case.
func endsInJump(line string) bool {
	line = strings.TrimSpace(line)
	for _, p := range jumpPrefixes {
		if line == p+";" || strings.HasPrefix(line, p+" ") {
			return true
		}
	}
	return false
}

package generator

import (
	"strings"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/prelude"
	"github.com/delight-lang/delight/pkgs/scope"
)

func (g *Generator) statement(tok lexer.Token) (string, error) {
	switch tok.Text {
	case "return":
		if !g.scopes.Contains(scope.Function) {
			return "", g.contextError(tok, "'return' outside of a function")
		}
		out := "return"
		if !g.atLineEnd() {
			value, err := g.expression()
			if err != nil {
				return "", err
			}
			out += " " + value
		}
		g.terminated = true
		return g.terminate(out)

	case "break", "continue":
		if !g.scopes.Contains(scope.For, scope.While) {
			return "", g.contextError(tok, "'%s' outside of a loop", tok.Text)
		}
		g.terminated = true
		return g.terminate(tok.Text)

	case "pass":
		return g.finish("{}")

	case "print":
		if err := g.require(tok, prelude.Print); err != nil {
			return "", err
		}
		var args []string
		if !g.atLineEnd() {
			var err error
			if args, err = g.expressionList(); err != nil {
				return "", err
			}
		}
		return g.terminate("print(" + strings.Join(args, ", ") + ")")

	case "assert":
		args, err := g.expressionList()
		if err != nil {
			return "", err
		}
		if len(args) > 2 {
			return "", g.contextError(tok, "'assert' takes a condition and an optional message")
		}
		return g.terminate("assert(" + strings.Join(args, ", ") + ")")

	case "for":
		return g.forLoop()

	case "while":
		cond, err := g.expression()
		if err != nil {
			return "", err
		}
		return g.block("while ("+cond+")", scope.While)

	case "unittest":
		return g.block("unittest", scope.Unittest)

	case "passthrough":
		return g.passthrough(tok)
	}
	return "", g.unexpected(tok)
}

// terminate ends a simple statement with ';'.
func (g *Generator) terminate(stmt string) (string, error) {
	end, err := g.finish(";")
	if err != nil {
		return "", err
	}
	return stmt + end, nil
}

// block emits a header and opens its body.
func (g *Generator) block(header, tag string) (string, error) {
	open, err := g.openBlock(tag)
	if err != nil {
		return "", err
	}
	return header + open, nil
}

func (g *Generator) forLoop() (string, error) {
	var names []string
	for {
		tok, err := g.next("identifier")
		if err != nil {
			return "", err
		}
		if g.category(tok) != classifier.Identifier {
			return "", g.expected("identifier", tok)
		}
		names = append(names, tok.Text)
		if len(names) == 2 || !g.peekIs(",") {
			break
		}
		g.stream.Pop()
	}

	if err := g.expect("in"); err != nil {
		return "", err
	}
	seq, err := g.expression()
	if err != nil {
		return "", err
	}
	return g.block("foreach ("+strings.Join(names, ", ")+"; "+seq+")", scope.For)
}

func (g *Generator) conditional(tok lexer.Token) (string, error) {
	switch tok.Text {
	case "if":
		g.scopes.ForgetPrevious()
		cond, err := g.expression()
		if err != nil {
			return "", err
		}
		return g.block("if ("+cond+")", scope.If)

	case "else":
		if g.scopes.Previous() != scope.If {
			return "", g.contextError(tok, "'else' without a preceding 'if' block")
		}
		g.scopes.ForgetPrevious()
		if g.peekIs("if") {
			g.stream.Pop()
			cond, err := g.expression()
			if err != nil {
				return "", err
			}
			return g.block("else if ("+cond+")", scope.If)
		}
		return g.block("else", scope.Else)

	case "switch":
		g.scopes.ForgetPrevious()
		subject, err := g.expression()
		if err != nil {
			return "", err
		}
		return g.block("switch ("+subject+")", scope.Switch)

	case "case", "default":
		g.scopes.ForgetPrevious()
		return g.caseLabel(tok)
	}
	return "", g.unexpected(tok)
}

// caseLabel emits a case or default label. A label with no body falls
// through to the label chained after it.
func (g *Generator) caseLabel(tok lexer.Token) (string, error) {
	if g.scopes.Top() != scope.Switch {
		return "", g.contextError(tok, "'%s' outside of a switch", tok.Text)
	}

	label := "default"
	if tok.Text == "case" {
		values, err := g.expressionList()
		if err != nil {
			return "", err
		}
		label = "case " + strings.Join(values, ", ")
	}
	if err := g.expect(":"); err != nil {
		return "", err
	}
	label += ":" + g.trailingComment()

	marker, err := g.next(lexer.Indent)
	if err != nil {
		return "", err
	}
	switch {
	case marker.Raw:
		return "", g.expected(lexer.Indent, marker)
	case marker.Text == lexer.Indent:
		g.scopes.Push(scope.Case)
		return label + g.lineBreak(), nil
	case marker.Text != lexer.Newline:
		return "", g.expected(lexer.Indent, marker)
	}

	// no body: fall through to the next label
	label += g.lineBreak()
	nextLabel, err := g.next("case")
	if err != nil {
		return "", err
	}
	if nextLabel.Raw || (nextLabel.Text != "case" && nextLabel.Text != "default") {
		return "", g.expected("case", nextLabel)
	}
	rest, err := g.caseLabel(nextLabel)
	if err != nil {
		return "", err
	}
	return label + rest, nil
}

func (g *Generator) exception(tok lexer.Token) (string, error) {
	switch tok.Text {
	case "try":
		g.scopes.ForgetPrevious()
		return g.block("try", scope.Try)

	case "except":
		if prev := g.scopes.Previous(); prev != scope.Try && prev != scope.Except {
			return "", g.contextError(tok, "'except' without a preceding 'try' block")
		}
		g.scopes.ForgetPrevious()
		typeTok, err := g.next("type")
		if err != nil {
			return "", err
		}
		caught, err := g.typeFrom(typeTok, nil)
		if err != nil {
			return "", err
		}
		if cat, ok := g.peekCategory(); ok && cat == classifier.Identifier {
			caught += " " + g.stream.Pop().Text
		}
		return g.block("catch ("+caught+")", scope.Except)

	case "finally":
		if prev := g.scopes.Previous(); prev != scope.Try && prev != scope.Except {
			return "", g.contextError(tok, "'finally' without a preceding 'try' block")
		}
		g.scopes.ForgetPrevious()
		return g.block("finally", scope.Finally)

	case "raise":
		g.scopes.ForgetPrevious()
		thrown, err := g.raised()
		if err != nil {
			return "", err
		}
		g.terminated = true
		return g.terminate("throw " + thrown)
	}
	return "", g.unexpected(tok)
}

// raised translates the operand of raise: a class instantiation becomes a
// new-expression, anything else is thrown as is.
func (g *Generator) raised() (string, error) {
	tok, err := g.next("expression")
	if err != nil {
		return "", err
	}
	if g.category(tok) == classifier.ClassIdentifier && g.peekIs("(") {
		args, err := g.callArguments()
		if err != nil {
			return "", err
		}
		return "new " + tok.Text + args, nil
	}
	return g.expressionFrom(tok)
}

func (g *Generator) library(tok lexer.Token) (string, error) {
	if tok.Text == "import" {
		var modules []string
		for {
			module, err := g.modulePath()
			if err != nil {
				return "", err
			}
			modules = append(modules, module)
			if !g.peekIs(",") {
				break
			}
			g.stream.Pop()
		}
		return g.terminate("import " + strings.Join(modules, ", "))
	}

	module, err := g.modulePath()
	if err != nil {
		return "", err
	}
	if err := g.expect("import"); err != nil {
		return "", err
	}
	var names []string
	for {
		name, err := g.next("identifier")
		if err != nil {
			return "", err
		}
		if !isWord(name) {
			return "", g.expected("identifier", name)
		}
		names = append(names, name.Text)
		if !g.peekIs(",") {
			break
		}
		g.stream.Pop()
	}
	return g.terminate("import " + module + " : " + strings.Join(names, ", "))
}

// modulePath reads a dotted module name. Segments may collide with keywords
// (std.string), so any word is accepted.
func (g *Generator) modulePath() (string, error) {
	var segments []string
	for {
		tok, err := g.next("module name")
		if err != nil {
			return "", err
		}
		if !isWord(tok) {
			return "", g.expected("module name", tok)
		}
		segments = append(segments, tok.Text)
		if !g.peekIs(".") {
			return strings.Join(segments, "."), nil
		}
		g.stream.Pop()
	}
}

func (g *Generator) attribute(tok lexer.Token) (string, error) {
	if g.peekIs(":") {
		return g.block(tok.Text, tok.Text)
	}
	next, err := g.next("declaration")
	if err != nil {
		return "", err
	}
	if next.Raw || g.category(next).IsNewlineMarker() {
		return "", g.unexpected(next)
	}
	rest, err := g.Start(next)
	if err != nil {
		return "", err
	}
	return tok.Text + " " + rest, nil
}

func (g *Generator) constantDeclaration(tok lexer.Token) (string, error) {
	g.stream.Pop() // '='
	value, err := g.expression()
	if err != nil {
		return "", err
	}
	return g.terminate("enum " + tok.Text + " = " + value)
}

func (g *Generator) constructor(tok lexer.Token) (string, error) {
	switch tok.Text {
	case "this":
		if g.peekIs("(") && !g.scopes.Contains(scope.Function) {
			if !g.scopes.Contains(scope.Class, scope.Template) {
				return "", g.contextError(tok, "constructor outside of a class")
			}
			params, err := g.parameters(g.newFreeTypes())
			if err != nil {
				return "", err
			}
			return g.block("this("+params+")", scope.Function)
		}
		return g.identifierStatement(tok)
	case "super":
		return g.identifierStatement(tok)
	}
	return "", g.unexpected(tok)
}

// identifierStatement handles an assignment or a bare call.
func (g *Generator) identifierStatement(tok lexer.Token) (string, error) {
	target, called, err := g.accessors(tok.Text)
	if err != nil {
		return "", err
	}

	if cat, ok := g.peekCategory(); ok && cat == classifier.AssignmentOperator {
		op := g.stream.Pop()
		value, err := g.expression()
		if err != nil {
			return "", err
		}
		return g.terminate(target + " " + op.Text + " " + value)
	}

	if called && g.atLineEnd() {
		return g.terminate(target)
	}

	var perr *ParseError
	if g.stream.Empty() {
		perr = g.endOfInput("=").(*ParseError)
	} else {
		perr = g.expected("=", g.stream.Peek()).(*ParseError)
	}
	if target == tok.Text {
		perr.Suggestions = g.suggest(tok.Text)
	}
	return "", perr
}

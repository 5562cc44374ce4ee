package generator

import (
	"strings"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/prelude"
)

// wordOperators maps the English operators onto D.
var wordOperators = map[string]string{
	"and":       "&&",
	"or":        "||",
	"equal to":  "==",
	"less than": "<",
	"more than": ">",
	"is":        "is",
}

// negatedOperators maps "not <comparator>" onto D.
var negatedOperators = map[string]string{
	"equal to":  "!=",
	"less than": ">=",
	"more than": "<=",
	"is":        "!is",
	"==":        "!=",
	"!=":        "==",
	"<":         ">=",
	">":         "<=",
	"<=":        ">",
	">=":        "<",
}

// rangeOperator builds a half-open range through the range helper.
const rangeOperator = ".."

func (g *Generator) expression() (string, error) {
	tok, err := g.next("expression")
	if err != nil {
		return "", err
	}
	return g.expressionFrom(tok)
}

// expressionFrom parses an expression whose first token is already consumed.
// Operators associate to the right with no precedence: the right operand is
// a whole expression.
func (g *Generator) expressionFrom(tok lexer.Token) (string, error) {
	left, err := g.operand(tok)
	if err != nil {
		return "", err
	}
	for g.atBinaryOperator() {
		op := g.stream.Pop()
		if left, err = g.binary(left, op); err != nil {
			return "", err
		}
	}
	return left, nil
}

func (g *Generator) expressionList() ([]string, error) {
	var list []string
	for {
		expr, err := g.expression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
		if !g.peekIs(",") {
			return list, nil
		}
		g.stream.Pop()
	}
}

func (g *Generator) atBinaryOperator() bool {
	if g.peekIs(rangeOperator) {
		return true
	}
	cat, ok := g.peekCategory()
	return ok && !g.stream.Peek().Raw && cat.IsBinaryOperator()
}

func (g *Generator) binary(left string, op lexer.Token) (string, error) {
	text := op.Text
	negated := false
	if text == "not" {
		cmp, err := g.next("comparator")
		if err != nil {
			return "", err
		}
		if g.category(cmp) != classifier.Comparator {
			return "", g.expected("comparator", cmp)
		}
		text, negated = cmp.Text, true
	}

	right, err := g.expression()
	if err != nil {
		return "", err
	}

	switch {
	case text == rangeOperator:
		if err := g.require(op, prelude.Range); err != nil {
			return "", err
		}
		return "range(" + left + ", " + right + ")", nil
	case text == "in":
		if err := g.require(op, prelude.Contains); err != nil {
			return "", err
		}
		call := "contains(" + right + ", " + left + ")"
		if negated {
			call = "!" + call
		}
		return call, nil
	case negated:
		return left + " " + negatedOperators[text] + " " + right, nil
	}

	if symbol, ok := wordOperators[text]; ok {
		text = symbol
	}
	return left + " " + text + " " + right, nil
}

// operand parses one operand including unary prefixes and accessors.
func (g *Generator) operand(tok lexer.Token) (string, error) {
	if tok.Raw {
		return "", g.unexpected(tok)
	}
	cat := g.category(tok)

	switch {
	case tok.Text == "-" || tok.Text == "not":
		inner, err := g.next("expression")
		if err != nil {
			return "", err
		}
		value, err := g.operand(inner)
		if err != nil {
			return "", err
		}
		if tok.Text == "-" {
			return "-" + value, nil
		}
		return "!" + value, nil

	case tok.Text == "(":
		inner, err := g.expression()
		if err != nil {
			return "", err
		}
		if err := g.expect(")"); err != nil {
			return "", err
		}
		value, _, err := g.accessors("(" + inner + ")")
		return value, err

	case tok.Text == "[":
		literal, err := g.arrayLiteral()
		if err != nil {
			return "", err
		}
		value, _, err := g.accessors(literal)
		return value, err

	case tok.Text == "new":
		return g.newExpression()

	case cat.IsLiteral(),
		cat == classifier.Identifier,
		cat == classifier.ClassIdentifier,
		cat == classifier.Type,
		cat == classifier.Constant,
		cat == classifier.TemplateType,
		tok.Text == "this",
		tok.Text == "super":
		value, _, err := g.accessors(tok.Text)
		return value, err
	}
	return "", g.unexpected(tok)
}

// accessors extends base with member access, indexing, calls and template
// instantiation. called reports whether the chain ends in a call.
func (g *Generator) accessors(base string) (value string, called bool, err error) {
	value = base
	for {
		switch {
		case g.peekIs("."):
			g.stream.Pop()
			member, err := g.next("identifier")
			if err != nil {
				return "", false, err
			}
			if !isWord(member) {
				return "", false, g.expected("identifier", member)
			}
			value += "." + member.Text
			called = false

		case g.peekIs("["):
			g.stream.Pop()
			index, err := g.arrayAccess()
			if err != nil {
				return "", false, err
			}
			value += index
			called = false

		case g.peekIs("("):
			args, err := g.callArguments()
			if err != nil {
				return "", false, err
			}
			value += args
			called = true

		case g.peekIs("!"):
			g.stream.Pop()
			args, err := g.templateArguments(nil)
			if err != nil {
				return "", false, err
			}
			value += "!" + args
			called = false

		default:
			return value, called, nil
		}
	}
}

// callArguments reads "(a, b)" including the parentheses.
func (g *Generator) callArguments() (string, error) {
	if err := g.expect("("); err != nil {
		return "", err
	}
	if g.peekIs(")") {
		g.stream.Pop()
		return "()", nil
	}
	args, err := g.expressionList()
	if err != nil {
		return "", err
	}
	if err := g.expect(")"); err != nil {
		return "", err
	}
	return "(" + strings.Join(args, ", ") + ")", nil
}

// arrayAccess reads the rest of an index or slice after '['. Only one index
// is allowed per bracket pair.
func (g *Generator) arrayAccess() (string, error) {
	if g.peekIs("]") {
		g.stream.Pop()
		return "[]", nil
	}

	low := "0"
	if !g.peekIs(":") {
		index, err := g.expression()
		if err != nil {
			return "", err
		}
		if !g.peekIs(":") {
			if err := g.expect("]"); err != nil {
				return "", err
			}
			return "[" + index + "]", nil
		}
		low = index
	}

	g.stream.Pop() // ':'
	high := "$"
	if !g.peekIs("]") {
		var err error
		if high, err = g.expression(); err != nil {
			return "", err
		}
	}
	if err := g.expect("]"); err != nil {
		return "", err
	}
	return "[" + low + " .. " + high + "]", nil
}

// arrayLiteral reads the rest of an array literal after '['. Elements may
// carry a ": value" part for associative arrays.
func (g *Generator) arrayLiteral() (string, error) {
	if g.peekIs("]") {
		g.stream.Pop()
		return "[]", nil
	}

	var elements []string
	for {
		element, err := g.expression()
		if err != nil {
			return "", err
		}
		if g.peekIs(":") {
			g.stream.Pop()
			value, err := g.expression()
			if err != nil {
				return "", err
			}
			element += ": " + value
		}
		elements = append(elements, element)

		sep, err := g.next("]")
		if err != nil {
			return "", err
		}
		switch {
		case sep.Raw:
			return "", g.expected("]", sep)
		case sep.Text == "]":
			return "[" + strings.Join(elements, ", ") + "]", nil
		case sep.Text != ",":
			return "", g.expected("]", sep)
		}
	}
}

// newExpression reads "new Type(args)" or "new Type[size]" after 'new'.
func (g *Generator) newExpression() (string, error) {
	tok, err := g.next("type")
	if err != nil {
		return "", err
	}
	typ, err := g.typeFrom(tok, nil)
	if err != nil {
		return "", err
	}
	if g.peekIs("(") {
		args, err := g.callArguments()
		if err != nil {
			return "", err
		}
		typ += args
	}
	return "new " + typ, nil
}

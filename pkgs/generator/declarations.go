package generator

import (
	"strings"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/scope"
)

// freeTypes collects the single-letter type parameters a function signature
// uses, in order of first appearance. Letters bound by an enclosing template
// class are not free.
type freeTypes struct {
	names []string
	bound []map[string]bool
}

func (g *Generator) newFreeTypes() *freeTypes {
	return &freeTypes{bound: g.classGenerics}
}

func (f *freeTypes) add(name string) {
	if f == nil {
		return
	}
	for _, set := range f.bound {
		if set[name] {
			return
		}
	}
	for _, n := range f.names {
		if n == name {
			return
		}
	}
	f.names = append(f.names, name)
}

// list renders the template parameter list, or "" when there is none.
func (f *freeTypes) list() string {
	if len(f.names) == 0 {
		return ""
	}
	return "(" + strings.Join(f.names, ", ") + ")"
}

// declaration translates "Type[dims] name [= value][, name [= value]]".
func (g *Generator) declaration(tok lexer.Token) (string, error) {
	typ, err := g.typeFrom(tok, nil)
	if err != nil {
		return "", err
	}

	var names []string
	for {
		name, err := g.next("identifier")
		if err != nil {
			return "", err
		}
		if g.category(name) != classifier.Identifier {
			return "", g.expected("identifier", name)
		}
		decl := name.Text

		if cat, ok := g.peekCategory(); ok && cat == classifier.AssignmentOperator {
			op := g.stream.Pop()
			if op.Text != "=" {
				return "", g.unexpected(op)
			}
			value, err := g.expression()
			if err != nil {
				return "", err
			}
			decl += " = " + value
		}
		names = append(names, decl)

		if !g.peekIs(",") {
			break
		}
		g.stream.Pop()
	}
	return g.terminate(typ + " " + strings.Join(names, ", "))
}

// typeFrom reads a type starting at an already consumed token: the name, an
// optional template instantiation and any array dimensions.
func (g *Generator) typeFrom(tok lexer.Token, free *freeTypes) (string, error) {
	cat := g.category(tok)
	if !cat.IsTypeName() {
		return "", g.expected("type", tok)
	}
	if cat == classifier.TemplateType {
		free.add(tok.Text)
	}

	typ := tok.Text
	if g.peekIs("!") {
		g.stream.Pop()
		args, err := g.templateArguments(free)
		if err != nil {
			return "", err
		}
		typ += "!" + args
	}
	for g.peekIs("[") {
		g.stream.Pop()
		dims, err := g.dimensions()
		if err != nil {
			return "", err
		}
		typ += dims
	}
	return typ, nil
}

// dimensions reads the rest of a "[d1, d2]" group; every dimension becomes
// its own bracket pair.
func (g *Generator) dimensions() (string, error) {
	var dims []string
	current, filled := "", false
	for {
		if g.peekIs("]") {
			g.stream.Pop()
			dims = append(dims, current)
			return "[" + strings.Join(dims, "][") + "]", nil
		}
		if g.peekIs(",") {
			g.stream.Pop()
			dims = append(dims, current)
			current, filled = "", false
			continue
		}
		if filled {
			if g.stream.Empty() {
				return "", g.endOfInput("]")
			}
			return "", g.expected("]", g.stream.Peek())
		}
		dim, err := g.expression()
		if err != nil {
			return "", err
		}
		current, filled = dim, true
	}
}

// templateArguments reads what follows '!': one argument or a parenthesised
// list.
func (g *Generator) templateArguments(free *freeTypes) (string, error) {
	if !g.peekIs("(") {
		return g.templateArgument(free)
	}
	g.stream.Pop()
	var args []string
	for {
		arg, err := g.templateArgument(free)
		if err != nil {
			return "", err
		}
		args = append(args, arg)

		sep, err := g.next(")")
		if err != nil {
			return "", err
		}
		switch {
		case sep.Raw:
			return "", g.expected(")", sep)
		case sep.Text == ")":
			return "(" + strings.Join(args, ", ") + ")", nil
		case sep.Text != ",":
			return "", g.expected(")", sep)
		}
	}
}

func (g *Generator) templateArgument(free *freeTypes) (string, error) {
	tok, err := g.next("type")
	if err != nil {
		return "", err
	}
	cat := g.category(tok)
	switch {
	case cat.IsTypeName():
		return g.typeFrom(tok, free)
	case cat.IsLiteral(), cat == classifier.Identifier, cat == classifier.Constant:
		return tok.Text, nil
	}
	return "", g.expected("type", tok)
}

// function translates a function, method or procedure header.
func (g *Generator) function(tok lexer.Token) (string, error) {
	inClass := g.scopes.Contains(scope.Class, scope.Template)
	if tok.Text == "method" && !inClass {
		return "", g.contextError(tok, "'method' outside of a class")
	}

	name, err := g.next("identifier")
	if err != nil {
		return "", err
	}
	if g.category(name) != classifier.Identifier {
		return "", g.expected("identifier", name)
	}

	free := g.newFreeTypes()
	params := ""
	if g.peekIs("(") {
		if params, err = g.parameters(free); err != nil {
			return "", err
		}
	}

	ret := "auto"
	if g.peekIs("->") {
		arrow := g.stream.Pop()
		if tok.Text == "procedure" {
			return "", g.contextError(arrow, "a procedure has no return type")
		}
		typeTok, err := g.next("type")
		if err != nil {
			return "", err
		}
		if ret, err = g.typeFrom(typeTok, free); err != nil {
			return "", err
		}
	} else if tok.Text == "procedure" {
		ret = "void"
	}

	prefix := ""
	if tok.Text == "function" {
		prefix = "pure "
		if inClass {
			prefix = "static pure "
		}
	}
	return g.block(prefix+ret+" "+name.Text+free.list()+"("+params+")", scope.Function)
}

// parameters reads "(Type a, b, Type c)". A name without a type shares the
// type of the name before it.
func (g *Generator) parameters(free *freeTypes) (string, error) {
	if err := g.expect("("); err != nil {
		return "", err
	}
	if g.peekIs(")") {
		g.stream.Pop()
		return "", nil
	}

	var params []string
	current := ""
	for {
		tok, err := g.next("identifier")
		if err != nil {
			return "", err
		}

		if cat := g.category(tok); cat != classifier.Identifier {
			var storage []string
			for g.category(tok) == classifier.Attribute {
				storage = append(storage, tok.Text)
				if tok, err = g.next("type"); err != nil {
					return "", err
				}
			}
			typ, err := g.typeFrom(tok, free)
			if err != nil {
				return "", err
			}
			current = strings.Join(append(storage, typ), " ")
			if tok, err = g.next("identifier"); err != nil {
				return "", err
			}
			if g.category(tok) != classifier.Identifier {
				return "", g.expected("identifier", tok)
			}
		} else if current == "" {
			return "", g.expected("type", tok)
		}

		param := current + " " + tok.Text
		if g.peekIs("=") {
			g.stream.Pop()
			value, err := g.expression()
			if err != nil {
				return "", err
			}
			param += " = " + value
		}
		params = append(params, param)

		sep, err := g.next(")")
		if err != nil {
			return "", err
		}
		switch {
		case sep.Raw:
			return "", g.expected(")", sep)
		case sep.Text == ")":
			return strings.Join(params, ", "), nil
		case sep.Text != ",":
			return "", g.expected(")", sep)
		}
	}
}

// class translates a class, struct or interface header. Generic parameters
// make it a template.
func (g *Generator) class(tok lexer.Token) (string, error) {
	name, err := g.next("class-identifier")
	if err != nil {
		return "", err
	}
	if g.category(name) != classifier.ClassIdentifier {
		return "", g.expected("class-identifier", name)
	}
	header := tok.Text + " " + name.Text
	tag := scope.Class
	params := map[string]bool{}

	if g.peekIs("(") {
		g.stream.Pop()
		var names []string
		for {
			param, err := g.next("template type")
			if err != nil {
				return "", err
			}
			if g.category(param) != classifier.TemplateType {
				return "", g.expected("template type", param)
			}
			names = append(names, param.Text)
			params[param.Text] = true

			sep, err := g.next(")")
			if err != nil {
				return "", err
			}
			if sep.Text == ")" && !sep.Raw {
				break
			}
			if sep.Raw || sep.Text != "," {
				return "", g.expected(")", sep)
			}
		}
		header += "(" + strings.Join(names, ", ") + ")"
		tag = scope.Template
	}

	if g.peekIs("inherits") {
		inherits := g.stream.Pop()
		if tok.Text == "struct" {
			return "", g.contextError(inherits, "a struct cannot inherit")
		}
		var parents []string
		for {
			parent, err := g.next("class-identifier")
			if err != nil {
				return "", err
			}
			if g.category(parent) != classifier.ClassIdentifier {
				return "", g.expected("class-identifier", parent)
			}
			typ, err := g.typeFrom(parent, nil)
			if err != nil {
				return "", err
			}
			parents = append(parents, typ)
			if !g.peekIs(",") {
				break
			}
			g.stream.Pop()
		}
		header += " : " + strings.Join(parents, ", ")
	}

	out, err := g.block(header, tag)
	if err != nil {
		return "", err
	}
	g.classGenerics = append(g.classGenerics, params)
	return out, nil
}

package classifier

import "fmt"

// Category is the semantic class of a Delight token. The set is closed;
// every token text maps to exactly one category.
type Category int

const (
	Identifier Category = iota // fallback when nothing else matches

	// Newline markers produced by the scanner
	Newline // <newline>
	Indent  // <indent>
	Dedent  // <dedent>
	Begin   // <begin>

	// Keyword sets
	AssignmentOperator // = += -= ...
	Attribute          // public, static, override ...
	Comparator         // less than, more than, equal to, is, in ...
	Conditional        // if, else, switch, case, default
	Constructor        // this, super, new
	ExceptionKeyword   // try, except, finally, raise
	FunctionType       // function, method, procedure
	LibraryKeyword     // import, from
	Logical            // and, or, not
	Operator           // + - * / ...
	Statement          // return, break, for, while, print ...
	Type               // int, string, auto ...
	UserType           // class, struct, interface

	// Structural patterns
	StringLiteral    // "text"
	CharacterLiteral // 'c'
	NumberLiteral    // 42, 3.14, 10UL, 0xFF
	TemplateType     // T
	Constant         // MAX_SIZE
	ClassIdentifier  // Widget
	Punctuation      // ( ) [ ] , : . ! # -> ..

	categoryCount
)

// Pre-computed category names used in diagnostics
var categoryNames = [...]string{
	Identifier:         "identifier",
	Newline:            "newline",
	Indent:             "indent",
	Dedent:             "dedent",
	Begin:              "begin",
	AssignmentOperator: "assignment-operator",
	Attribute:          "attribute",
	Comparator:         "comparator",
	Conditional:        "conditional",
	Constructor:        "constructor",
	ExceptionKeyword:   "exception-keyword",
	FunctionType:       "function-type",
	LibraryKeyword:     "library-keyword",
	Logical:            "logical",
	Operator:           "operator",
	Statement:          "statement",
	Type:               "type",
	UserType:           "user-type",
	StringLiteral:      "string-literal",
	CharacterLiteral:   "character-literal",
	NumberLiteral:      "number-literal",
	TemplateType:       "template-type",
	Constant:           "constant",
	ClassIdentifier:    "class-identifier",
	Punctuation:        "punctuation",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// IsNewlineMarker reports whether c is one of the synthetic line markers.
func (c Category) IsNewlineMarker() bool {
	return c == Newline || c == Indent || c == Dedent || c == Begin
}

// IsLiteral reports whether c is a string, character or number literal.
func (c Category) IsLiteral() bool {
	return c == StringLiteral || c == CharacterLiteral || c == NumberLiteral
}

// IsTypeName reports whether a token of category c can name a type in a
// declaration or parameter list.
func (c Category) IsTypeName() bool {
	return c == Type || c == ClassIdentifier || c == TemplateType
}

// IsBinaryOperator reports whether c can join two operands in an expression.
func (c Category) IsBinaryOperator() bool {
	return c == Operator || c == Comparator || c == Logical
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Identifier; c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

package classifier

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/delight-lang/delight/pkgs/invariant"
)

// Synthetic marker texts emitted by the scanner. They cannot be produced by
// scanning source text because the scanner splits '<' and '>' from words.
const (
	NewlineMarker = "<newline>"
	IndentMarker  = "<indent>"
	DedentMarker  = "<dedent>"
	BeginMarker   = "<begin>"
)

// Keyword sets, one per keyword category
var keywordSets = map[Category][]string{
	Newline:            {NewlineMarker},
	Indent:             {IndentMarker},
	Dedent:             {DedentMarker},
	Begin:              {BeginMarker},
	AssignmentOperator: {"=", "+=", "-=", "*=", "/=", "%=", "~=", "&=", "|=", "^=", "<<=", ">>="},
	Attribute: {
		"public", "private", "protected", "package", "export", "static", "override",
		"abstract", "final", "const", "immutable", "shared", "synchronized", "extern",
		"ref", "scope", "lazy", "nothrow", "pure",
	},
	Comparator:       {"less than", "more than", "equal to", "is", "in", "<", ">", "<=", ">=", "==", "!="},
	Conditional:      {"if", "else", "switch", "case", "default"},
	Constructor:      {"this", "super", "new"},
	ExceptionKeyword: {"try", "except", "finally", "raise"},
	FunctionType:     {"function", "method", "procedure"},
	LibraryKeyword:   {"import", "from"},
	Logical:          {"and", "or", "not"},
	Operator:         {"+", "-", "*", "/", "%", "~", "&", "|", "^", "^^", "<<", ">>"},
	Statement: {
		"return", "break", "continue", "pass", "print", "for", "while", "assert",
		"passthrough", "unittest",
	},
	Type: {
		"bool", "byte", "ubyte", "short", "ushort", "int", "uint", "long", "ulong",
		"float", "double", "real", "char", "wchar", "dchar", "string", "wstring",
		"dstring", "size_t", "void", "auto",
	},
	UserType: {"class", "struct", "interface"},
}

// punctuationAlphabet lists the symbol characters a punctuation token may use.
const punctuationAlphabet = "()[]{},:;.!?@$#<>-=+*/%&|^~"

var numberPattern = regexp.MustCompile(
	`^(0[xX][0-9a-fA-F_]+|0[bB][01_]+|[0-9][0-9_]*(\.[0-9_]*)?([eE][+-]?[0-9]+)?)([a-zA-Z]{1,2})?$`)

// pattern is a structural check evaluated after the keyword sets
type pattern struct {
	category Category
	match    func(string) bool
}

// Tables holds the immutable lookup data used by Classify. Build it once and
// share it; nothing mutates a Tables after construction.
type Tables struct {
	keywords map[string]Category
	patterns []pattern
	byCat    map[Category][]string
}

var (
	defaultTables     *Tables
	defaultTablesOnce sync.Once
)

// DefaultTables returns the shared tables for the Delight grammar.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		defaultTables = NewTables()
	})
	return defaultTables
}

// NewTables builds the keyword and pattern tables. A keyword listed under two
// categories is a grammar design error and panics.
func NewTables() *Tables {
	t := &Tables{
		keywords: make(map[string]Category),
		byCat:    make(map[Category][]string),
	}

	for cat, words := range keywordSets {
		for _, w := range words {
			prev, dup := t.keywords[w]
			invariant.Precondition(!dup, "keyword %q listed as both %s and %s", w, prev, cat)
			t.keywords[w] = cat
		}
		sorted := append([]string(nil), words...)
		sort.Strings(sorted)
		t.byCat[cat] = sorted
	}

	// Priority order matters: a single upper-case letter is a template type
	// before it can be a constant or class identifier.
	t.patterns = []pattern{
		{StringLiteral, quoted('"')},
		{CharacterLiteral, quoted('\'')},
		{NumberLiteral, numberPattern.MatchString},
		{TemplateType, isTemplateType},
		{Constant, isConstant},
		{ClassIdentifier, isClassIdentifier},
		{Punctuation, isPunctuation},
	}

	return t
}

// Classify maps token text to its category. It is total: text that matches
// neither a keyword set nor a structural pattern is an Identifier.
func (t *Tables) Classify(text string) Category {
	if cat, ok := t.keywords[text]; ok {
		return cat
	}
	for _, p := range t.patterns {
		if p.match(text) {
			return p.category
		}
	}
	return Identifier
}

// Keywords returns the sorted keyword set of cat, or nil for pattern-only
// categories.
func (t *Tables) Keywords(cat Category) []string {
	return t.byCat[cat]
}

// AllKeywords returns every keyword of every set except the newline markers.
func (t *Tables) AllKeywords() []string {
	out := make([]string, 0, len(t.keywords))
	for w, cat := range t.keywords {
		if cat.IsNewlineMarker() {
			continue
		}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// IsKeyword reports whether text belongs to any keyword set.
func (t *Tables) IsKeyword(text string) bool {
	_, ok := t.keywords[text]
	return ok
}

// Classify classifies text with the default tables.
func Classify(text string) Category {
	return DefaultTables().Classify(text)
}

func quoted(q byte) func(string) bool {
	return func(s string) bool {
		return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
	}
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isTemplateType(s string) bool {
	return len(s) == 1 && isUpper(s[0])
}

func isConstant(s string) bool {
	if len(s) < 2 || !isUpper(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isUpper(s[i]) && !isDigit(s[i]) && s[i] != '_' {
			return false
		}
	}
	return true
}

func isClassIdentifier(s string) bool {
	if len(s) < 2 || !isUpper(s[0]) {
		return false
	}
	hasLower := false
	for i := 1; i < len(s); i++ {
		b := s[i]
		switch {
		case isLower(b):
			hasLower = true
		case isUpper(b), isDigit(b), b == '_':
		default:
			return false
		}
	}
	return hasLower
}

func isPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(punctuationAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}

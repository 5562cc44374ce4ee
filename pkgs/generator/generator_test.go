package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/prelude"
)

// run drives the generator over stream the way the translator does.
func run(stream *lexer.Stream) (string, *Generator, error) {
	g := New(stream)
	var b strings.Builder
	for !stream.Empty() {
		frag, err := g.Start(stream.Pop())
		if err != nil {
			return b.String(), g, err
		}
		b.WriteString(frag)
	}
	return b.String(), g, nil
}

func words(w ...string) *lexer.Stream {
	return lexer.FromWords("    ", w...)
}

func source(t *testing.T, src string) *lexer.Stream {
	t.Helper()
	stream, err := lexer.Scan([]byte(src))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return stream
}

func TestImport(t *testing.T) {
	out, g, err := run(words("import", "std", ".", "stdio", lexer.Newline))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("import std.stdio;\n", out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if !g.Scopes().Empty() {
		t.Errorf("scope stack not empty: %s", g.Scopes())
	}
}

func TestDeclarationWithAssignment(t *testing.T) {
	out, _, err := run(words("int", "x", "=", "5", lexer.Newline))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("int x = 5;\n", out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestForLoopRequiresPrintOnce(t *testing.T) {
	stream := words(
		"for", "i", "in", "items", ":", lexer.Indent,
		"print", "i", lexer.Newline,
		"print", "i", lexer.Dedent, lexer.Newline,
	)
	out, g, err := run(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "foreach (i; items) {\n    print(i);\n    print(i);\n}\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{prelude.Print}, g.Prelude().Used()); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
	if n := strings.Count(g.Prelude().String(), "void print("); n != 1 {
		t.Errorf("print helper emitted %d times, want 1", n)
	}
	if !g.Scopes().Empty() {
		t.Errorf("scope stack not empty: %s", g.Scopes())
	}
}

func TestTranslatePrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "if else",
			src: `if x more than 5:
    print x
else:
    pass
`,
			want: "if (x > 5) {\n    print(x);\n}\nelse {\n    {}\n}\n",
		},
		{
			name: "else if chain",
			src: `if a equal to 1:
    b = 1
else if a not equal to 2:
    b = 2
else:
    b = 3
`,
			want: "if (a == 1) {\n    b = 1;\n}\nelse if (a != 2) {\n    b = 2;\n}\nelse {\n    b = 3;\n}\n",
		},
		{
			name: "switch with fallthrough and inserted break",
			src: `function f(int x) -> int:
    switch x:
        case 1:
        case 2:
            return 10
        default:
            x = 3
    return x
`,
			want: `pure int f(int x) {
    switch (x) {
        case 1:
        case 2:
            return 10;
        default:
            x = 3;
            break;
    }
    return x;
}
`,
		},
		{
			name: "while with break",
			src: `while running:
    if done():
        break
    step()
`,
			want: "while (running) {\n    if (done()) {\n        break;\n    }\n    step();\n}\n",
		},
		{
			name: "generic function",
			src: `function first(T[] items, U fallback) -> T:
    return items[0]
`,
			want: "pure T first(T, U)(T[] items, U fallback) {\n    return items[0];\n}\n",
		},
		{
			name: "function kinds have distinct prefixes",
			src: `function square(int x) -> int:
    return x * x
procedure log(string line):
    print line
class Counter:
    method next() -> int:
        return 1
`,
			want: `pure int square(int x) {
    return x * x;
}
void log(string line) {
    print(line);
}
class Counter {
    int next() {
        return 1;
    }
}
`,
		},
		{
			name: "parameter groups share a type",
			src: `procedure move(int x, y, string label):
    pass
`,
			want: "void move(int x, int y, string label) {\n    {}\n}\n",
		},
		{
			name: "class with methods and constructor",
			src: `class Point inherits Shape:
    int x
    this(int x):
        this.x = x
    method norm() -> double:
        return x
    function origin():
        return new Point(0)
`,
			want: `class Point : Shape {
    int x;
    this(int x) {
        this.x = x;
    }
    double norm() {
        return x;
    }
    static pure auto origin() {
        return new Point(0);
    }
}
`,
		},
		{
			name: "class with a base class and interfaces",
			src: `class Circle inherits Shape, Printable:
    double radius
`,
			want: "class Circle : Shape, Printable {\n    double radius;\n}\n",
		},
		{
			name: "template class keeps its parameters bound",
			src: `class Box(T):
    T value
    method get() -> T:
        return value
`,
			want: "class Box(T) {\n    T value;\n    T get() {\n        return value;\n    }\n}\n",
		},
		{
			name: "try except finally",
			src: `try:
    run()
except Exception e:
    raise Failure("bad", e)
finally:
    close()
`,
			want: "try {\n    run();\n}\ncatch (Exception e) {\n    throw new Failure(\"bad\", e);\n}\nfinally {\n    close();\n}\n",
		},
		{
			name: "constants and from-import",
			src: `from std.algorithm import map, filter
MAX_SIZE = 10
`,
			want: "import std.algorithm : map, filter;\nenum MAX_SIZE = 10;\n",
		},
		{
			name: "attribute block and prefix",
			src: `private:
    int hidden
static int counter = 0
`,
			want: "private {\n    int hidden;\n}\nstatic int counter = 0;\n",
		},
		{
			name: "array dimensions",
			src: `int[,] grid
int[3, 4] matrix
int[][2] pairs
int[string] ages = ["bob": 3]
`,
			want: "int[][] grid;\nint[3][4] matrix;\nint[][2] pairs;\nint[string] ages = [\"bob\": 3];\n",
		},
		{
			name: "slices",
			src: `a = b[1:3]
c = b[:2]
d = b[2:]
`,
			want: "a = b[1 .. 3];\nc = b[0 .. 2];\nd = b[2 .. $];\n",
		},
		{
			name: "template instantiation",
			src: `List!int xs = make!(List!int)()
s = to!string(5)
`,
			want: "List!int xs = make!(List!int)();\ns = to!string(5);\n",
		},
		{
			name: "inline comments",
			src: `# leading note
x = 1 # trailing
#. documented
`,
			want: "// leading note\nx = 1; // trailing\n/// documented\n",
		},
		{
			name: "block comment",
			src: `#
    first line
        nested
x = 1
`,
			want: "/*\n    first line\n        nested\n*/\nx = 1;\n",
		},
		{
			name: "passthrough",
			src: `passthrough
    writeln("raw");
    mixin(foo);
y = 2
`,
			want: "writeln(\"raw\");\nmixin(foo);\ny = 2;\n",
		},
		{
			name: "unittest and assert",
			src: `unittest:
    assert x equal to 1, "x must be one"
`,
			want: "unittest {\n    assert(x == 1, \"x must be one\");\n}\n",
		},
		{
			name: "foreach with index",
			src: `for i, v in values:
    total += v
`,
			want: "foreach (i, v; values) {\n    total += v;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, g, err := run(source(t, tt.src))
			if err != nil {
				t.Fatalf("unexpected error: %v\npartial output:\n%s", err, out)
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if !g.Scopes().Empty() {
				t.Errorf("scope stack not empty after balanced input: %s", g.Scopes())
			}
		})
	}
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    string
		helpers []string
	}{
		{"logical", "a and b or c", "a && b || c", nil},
		{"comparators", "a less than b", "a < b", nil},
		{"negated comparator", "a not less than b", "a >= b", nil},
		{"negated more than", "a not more than b", "a <= b", nil},
		{"identity", "a is null", "a is null", nil},
		{"negated identity", "a not is null", "a !is null", nil},
		{"membership swaps operands", "x in items", "contains(items, x)", []string{prelude.Contains}},
		{"negated membership", "x not in items", "!contains(items, x)", []string{prelude.Contains}},
		{"range", "0 .. n", "range(0, n)", []string{prelude.Range}},
		{"right operand is a whole expression", "x in a and b", "contains(a && b, x)", []string{prelude.Contains}},
		{"unary", "-a + not b", "-a + !b", nil},
		{"parentheses", "(a + b) * c", "(a + b) * c", nil},
		{"calls and members", "obj.items[i].name(1, 2)", "obj.items[i].name(1, 2)", nil},
		{"array literal", "[1, 2, 3]", "[1, 2, 3]", nil},
		{"empty array", "[]", "[]", nil},
		{"new array", "new int[5]", "new int[5]", nil},
		{"strings and chars", `"a" ~ 'b'`, `"a" ~ 'b'`, nil},
		{"symbols copied", "a <= b", "a <= b", nil},
		{"negated symbol", "a not == b", "a != b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, g, err := run(source(t, "value = "+tt.expr+"\n"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := "value = " + tt.want + ";\n"
			if diff := cmp.Diff(want, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.helpers, g.Prelude().Used()); diff != "" {
				t.Errorf("helpers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIndentationFollowsLevel(t *testing.T) {
	stream := lexer.FromWords("\t",
		"while", "x", ":", lexer.Indent,
		"while", "y", ":", lexer.Indent,
		"int", "z", "=", "1", lexer.Dedent, lexer.Dedent, lexer.Newline,
	)
	out, _, err := run(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "while (x) {\n\twhile (y) {\n\t\tint z = 1;\n\t}\n}\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		stream  *lexer.Stream
		kind    ErrorKind
		line    int
		message string
	}{
		{
			name:    "break outside a loop",
			stream:  words("x", "=", "1", lexer.Newline, "break", lexer.Newline),
			kind:    ErrorContext,
			line:    2,
			message: "On line 2: unexpected statement 'break'",
		},
		{
			name:    "else without if",
			stream:  words("else", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected conditional 'else'",
		},
		{
			name: "else after an unrelated statement",
			stream: words(
				"if", "a", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline,
				"x", "=", "1", lexer.Newline,
				"else", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline,
			),
			kind:    ErrorContext,
			line:    4,
			message: "On line 4: unexpected conditional 'else'",
		},
		{
			name:    "except without try",
			stream:  words("except", "Exception", "e", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected exception-keyword 'except'",
		},
		{
			name:    "case outside switch",
			stream:  words("case", "1", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected conditional 'case'",
		},
		{
			name:    "method outside class",
			stream:  words("method", "run", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected function-type 'method'",
		},
		{
			name:    "return outside function",
			stream:  words("return", "1", lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected statement 'return'",
		},
		{
			name:    "template type outside template",
			stream:  words("T", "x", lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected template-type 'T'",
		},
		{
			name:    "missing colon",
			stream:  words("while", "x", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorExpected,
			line:    1,
			message: "On line 1: expected ':' but got '<indent>'",
		},
		{
			name:    "missing block",
			stream:  words("while", "x", ":", lexer.Newline),
			kind:    ErrorExpected,
			line:    1,
			message: "On line 1: expected '<indent>' but got '<newline>'",
		},
		{
			name:    "end of input",
			stream:  words("int", "x", "="),
			kind:    ErrorExpected,
			line:    1,
			message: "On line 1: expected 'expression' but got 'end of input'",
		},
		{
			name:    "comma in array access",
			stream:  words("y", "=", "a", "[", "1", ",", "2", "]", lexer.Newline),
			kind:    ErrorExpected,
			line:    1,
			message: "On line 1: expected ']' but got ','",
		},
		{
			name:    "not without comparator",
			stream:  words("y", "=", "a", "not", "b", lexer.Newline),
			kind:    ErrorExpected,
			line:    1,
			message: "On line 1: expected 'comparator' but got 'b'",
		},
		{
			name:    "procedure with return type",
			stream:  words("procedure", "run", "->", "int", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected punctuation '->'",
		},
		{
			name:    "struct cannot inherit",
			stream:  words("struct", "Point", "inherits", "Base", ":", lexer.Indent, "pass", lexer.Dedent, lexer.Newline),
			kind:    ErrorContext,
			line:    1,
			message: "On line 1: unexpected identifier 'inherits'",
		},
		{
			name:    "stray indent",
			stream:  words(lexer.Indent, "x", "=", "1", lexer.Dedent, lexer.Newline),
			kind:    ErrorUnexpected,
			line:    1,
			message: "On line 1: unexpected indent '<indent>'",
		},
		{
			name:    "begin after the first token",
			stream:  words(lexer.Begin, lexer.Newline, lexer.Begin),
			kind:    ErrorUnexpected,
			line:    2,
			message: "On line 2: unexpected begin '<begin>'",
		},
		{
			name:    "new cannot start a statement",
			stream:  words("new", "Point", lexer.Newline),
			kind:    ErrorUnexpected,
			line:    1,
			message: "On line 1: unexpected constructor 'new'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(tt.stream)
			if err == nil {
				t.Fatal("expected an error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", perr.Kind, tt.kind)
			}
			if perr.Line != tt.line {
				t.Errorf("line = %d, want %d", perr.Line, tt.line)
			}
			if diff := cmp.Diff(tt.message, err.Error()); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPartialOutputBeforeError(t *testing.T) {
	out, _, err := run(words("x", "=", "1", lexer.Newline, "break", lexer.Newline))
	if err == nil {
		t.Fatal("expected an error")
	}
	if diff := cmp.Diff("x = 1;\n", out); diff != "" {
		t.Errorf("partial output mismatch (-want +got):\n%s", diff)
	}
}

func TestContextErrorReason(t *testing.T) {
	_, _, err := run(words("break", lexer.Newline))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if diff := cmp.Diff("'break' outside of a loop", perr.Detail()); diff != "" {
		t.Errorf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{"transposed letters", []string{"pritn", "x", lexer.Newline}, "print"},
		{"misspelt while", []string{"whlie", "x", lexer.Newline}, "while"},
		{"abbreviation", []string{"proc", "run", lexer.Newline}, "procedure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(words(tt.words...))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			found := false
			for _, s := range perr.Suggestions {
				if s == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("suggestions %v do not include %q", perr.Suggestions, tt.want)
			}
		})
	}
}

func TestNoSuggestionsForShortWords(t *testing.T) {
	_, _, err := run(words("xy", "z", lexer.Newline))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(perr.Suggestions) != 0 {
		t.Errorf("unexpected suggestions %v", perr.Suggestions)
	}
}

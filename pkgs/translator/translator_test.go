package translator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/delight-lang/delight/pkgs/generator"
	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/prelude"
)

func TestTranslateSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		body    string
		helpers []string
	}{
		{
			name:  "import",
			input: "import std.stdio\n",
			body:  "import std.stdio;\n",
		},
		{
			name:  "declaration",
			input: "int x = 5\n",
			body:  "int x = 5;\n",
		},
		{
			name:    "loop with print",
			input:   "for i in items:\n    print i\n    print i, i\n",
			body:    "foreach (i; items) {\n    print(i);\n    print(i, i);\n}\n",
			helpers: []string{prelude.Print},
		},
		{
			name:    "helpers in order of first use",
			input:   "r = 0 .. 3\nok = 1 in r\nprint ok\n",
			body:    "r = range(0, 3);\nok = contains(r, 1);\nprint(ok);\n",
			helpers: []string{prelude.Range, prelude.Contains, prelude.Print},
		},
		{
			name:  "tab indentation is detected",
			input: "while x:\n\tpass\n",
			body:  "while (x) {\n\t{}\n}\n",
		},
		{
			name:  "empty input",
			input: "",
			body:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := TranslateString(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.body, result.Body); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.helpers, result.Helpers); diff != "" {
				t.Errorf("helpers mismatch (-want +got):\n%s", diff)
			}
			if result.Output != result.Prelude+result.Body {
				t.Errorf("output is not prelude followed by body")
			}
			if result.Depth != 0 {
				t.Errorf("depth = %d, want 0", result.Depth)
			}
		})
	}
}

func TestPreludeEmittedOnce(t *testing.T) {
	result, err := TranslateString("print 1\nprint 2\nprint 3\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(result.Output, "void print("); n != 1 {
		t.Errorf("print helper defined %d times, want 1", n)
	}
	if !strings.HasPrefix(result.Output, "import std.stdio : write, writeln;") {
		t.Errorf("output does not start with the prelude:\n%s", result.Output)
	}
}

func TestPartialResultOnError(t *testing.T) {
	var logs bytes.Buffer
	result, err := TranslateString("x = 1\nbreak\ny = 2\n",
		WithLogger(NewLogger(&logs, false)),
		WithFilename("loop.delight"))
	if err == nil {
		t.Fatal("expected an error")
	}

	var perr *generator.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not a *generator.ParseError", err)
	}
	if diff := cmp.Diff("On line 2: unexpected statement 'break'", err.Error()); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("x = 1;\n", result.Body); diff != "" {
		t.Errorf("partial body mismatch (-want +got):\n%s", diff)
	}

	out := logs.String()
	for _, want := range []string{"level=ERROR", `msg="translation failed"`, "file=loop.delight", "line=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "time=") {
		t.Errorf("log output should not carry timestamps:\n%s", out)
	}
}

func TestScanError(t *testing.T) {
	_, err := TranslateString("    x = 1\n")
	var scanErr *lexer.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("expected *lexer.ScanError, got %v", err)
	}
	if scanErr.Line != 1 {
		t.Errorf("line = %d, want 1", scanErr.Line)
	}
}

func TestTranslateStream(t *testing.T) {
	stream := lexer.FromWords("  ", "while", "x", ":", lexer.Indent, "pass", lexer.Newline)
	result, err := Translate(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("while (x) {\n  {}\n  ", result.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if result.Depth != 1 {
		t.Errorf("depth = %d, want 1 for an unclosed block", result.Depth)
	}
}

func TestTelemetry(t *testing.T) {
	result, err := TranslateString("import std.stdio\n", WithTelemetryTiming())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Telemetry == nil {
		t.Fatal("telemetry not collected")
	}
	// <begin> import std . stdio <newline>
	if result.Telemetry.TokenCount != 6 {
		t.Errorf("token count = %d, want 6", result.Telemetry.TokenCount)
	}
	// import statement and the final newline share one fragment
	if result.Telemetry.FragmentCount != 1 {
		t.Errorf("fragment count = %d, want 1", result.Telemetry.FragmentCount)
	}
	if result.Telemetry.TotalTime < result.Telemetry.TranslateTime {
		t.Errorf("total time %v shorter than translate time %v", result.Telemetry.TotalTime, result.Telemetry.TranslateTime)
	}

	plain, err := TranslateString("import std.stdio\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain.Telemetry != nil {
		t.Error("telemetry collected without being enabled")
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("print 1\n"))
	b := Hash([]byte("print 1\n"))
	c := Hash([]byte("print 2\n"))

	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(a))
	}
	if a != b {
		t.Error("hash is not deterministic")
	}
	if a == c {
		t.Error("different sources share a hash")
	}
}

// stalledStream hands out the same newline forever without advancing.
type stalledStream struct{}

func (stalledStream) Pop() lexer.Token { return lexer.Token{Text: lexer.Newline, Line: 1} }
func (stalledStream) Peek() lexer.Token { return lexer.Token{Text: lexer.Newline, Line: 1} }
func (stalledStream) Empty() bool { return false }
func (stalledStream) Remaining() int { return 1 }
func (stalledStream) Line() int { return 1 }
func (stalledStream) Level() int { return 0 }
func (stalledStream) Indentation() string { return "    " }

func TestStalledStreamPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for a stream that does not advance")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "INVARIANT VIOLATION: start state at line 1 consumed no input") {
			t.Errorf("unexpected panic: %v", r)
		}
	}()
	_, _ = Translate(stalledStream{})
}

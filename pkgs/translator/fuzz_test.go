package translator

import (
	"testing"
)

// Fuzz tests for translator robustness.
//
// 1. FuzzTranslateNoPanic - Scanner and generator never panic on any input
// 2. FuzzTranslateDeterminism - Same input always produces identical output

func addSeedCorpus(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("import std.stdio\n"))
	f.Add([]byte("int x = 5\n"))
	f.Add([]byte("for i in items:\n    print i\n"))
	f.Add([]byte("if a less than b:\n    pass\nelse:\n    pass\n"))
	f.Add([]byte("switch x:\n    case 1:\n    case 2:\n        y = 1\n    default:\n        y = 2\n"))
	f.Add([]byte("class Box(T) inherits Base:\n    T value\n    method get() -> T:\n        return value\n"))
	f.Add([]byte("try:\n    run()\nexcept Exception e:\n    raise Failure(e)\n"))
	f.Add([]byte("#\n    block\n        comment\nx = 1 # trailing\n"))
	f.Add([]byte("passthrough\n    writeln(1);\n"))
	f.Add([]byte("a = b[1:] + [1: 2, 3: 4] ~ c[:2]\n"))
	f.Add([]byte("else:\n"))
	f.Add([]byte("x = \n"))
	f.Add([]byte("\t\tbad\n"))
	f.Add([]byte("function f(T a, , ) ->\n"))
	f.Add([]byte("static static static\n"))
	f.Add([]byte("- - - - not not not x\n"))
}

func FuzzTranslateNoPanic(f *testing.F) {
	addSeedCorpus(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		result, err := TranslateSource(input)
		if result == nil {
			t.Fatalf("nil result (err: %v)", err)
		}
		if err == nil && result.Output != result.Prelude+result.Body {
			t.Errorf("output is not prelude followed by body")
		}
	})
}

func FuzzTranslateDeterminism(f *testing.F) {
	addSeedCorpus(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		first, err1 := TranslateSource(input)
		second, err2 := TranslateSource(input)

		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("error mismatch: %v vs %v", err1, err2)
		}
		if err1 != nil && err1.Error() != err2.Error() {
			t.Errorf("error text differs: %q vs %q", err1, err2)
		}
		if first.Output != second.Output {
			t.Errorf("output differs:\n%s\nvs\n%s", first.Output, second.Output)
		}
	})
}

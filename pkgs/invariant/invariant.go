// Package invariant provides contract assertions for the translator.
//
// Assertions mark programming errors: a scanner that hands out unbalanced
// markers, a generator that pops a scope it never pushed. They are never used
// for problems in Delight source text, which are reported as parse errors.
//
// All functions panic on violation.
package invariant

import (
	"fmt"
	"runtime"
)

// Precondition checks an input contract at function entry.
// Panics with PRECONDITION VIOLATION if condition is false.
//
// Example:
//
//	func (s *Stream) Pop() Token {
//	    invariant.Precondition(!s.Empty(), "pop from an exhausted token stream")
//	    // ...
//	}
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Invariant checks an internal invariant during function execution.
// Panics with INVARIANT VIOLATION if condition is false.
//
// Example:
//
//	before := stream.Remaining()
//	fragment, err := gen.Start(stream.Pop())
//	invariant.Invariant(stream.Remaining() < before, "start state must consume input")
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// ExpectNoError panics if err is not nil.
// Use it for operations on built-in data that cannot fail at runtime, such as
// parsing the helper templates compiled into the binary.
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("POSTCONDITION", "%s must not fail: %v", msg, err)
	}
}

// fail panics with a formatted message including the caller location.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)

	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}

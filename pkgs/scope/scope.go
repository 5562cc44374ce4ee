// Package scope tracks the open syntactic scopes of a translation run.
package scope

import (
	"strings"

	"github.com/delight-lang/delight/pkgs/invariant"
)

// Scope tags pushed by block-opening constructs. Attribute blocks push the
// attribute name itself.
const (
	Function    = "function"
	Class       = "class"
	Template    = "template"
	If          = "if"
	Else        = "else"
	While       = "while"
	For         = "for"
	Switch      = "switch"
	Case        = "case"
	Try         = "try"
	Except      = "except"
	Finally     = "finally"
	Passthrough = "passthrough"
	Comment     = "comment"
	Unittest    = "unittest"
)

// Stack is a last-in-first-out record of open scopes. The top is the
// innermost unclosed construct. It also remembers the most recently popped
// tag so constructs that continue a closed sibling (else, except, finally)
// can be validated across the dedent.
type Stack struct {
	tags     []string
	previous string
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{tags: make([]string, 0, 8)}
}

// Push opens a scope.
func (s *Stack) Push(tag string) {
	invariant.Precondition(tag != "", "scope tag must not be empty")
	s.tags = append(s.tags, tag)
}

// Pop closes the innermost scope and records it as the previous tag.
func (s *Stack) Pop() string {
	invariant.Precondition(len(s.tags) > 0, "pop from an empty scope stack")
	top := s.tags[len(s.tags)-1]
	s.tags = s.tags[:len(s.tags)-1]
	s.previous = top
	return top
}

// Top returns the innermost scope, or "" when none is open.
func (s *Stack) Top() string {
	if len(s.tags) == 0 {
		return ""
	}
	return s.tags[len(s.tags)-1]
}

// Contains reports whether any of tags is open anywhere on the stack.
func (s *Stack) Contains(tags ...string) bool {
	for i := len(s.tags) - 1; i >= 0; i-- {
		for _, tag := range tags {
			if s.tags[i] == tag {
				return true
			}
		}
	}
	return false
}

// Previous returns the tag most recently removed by Pop.
func (s *Stack) Previous() string {
	return s.previous
}

// ForgetPrevious clears the previous tag once an unrelated construct starts.
func (s *Stack) ForgetPrevious() {
	s.previous = ""
}

// Len returns the number of open scopes.
func (s *Stack) Len() int {
	return len(s.tags)
}

// Empty reports whether no scope is open.
func (s *Stack) Empty() bool {
	return len(s.tags) == 0
}

// String renders the stack bottom to top, for debug logging.
func (s *Stack) String() string {
	return "[" + strings.Join(s.tags, " ") + "]"
}

// Package prelude emits the runtime helper functions generated D code
// relies on when Delight offers something D has no direct spelling for.
package prelude

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/delight-lang/delight/pkgs/invariant"
)

// Helper names
const (
	Print    = "print"
	Contains = "contains"
	Range    = "range"
)

var helperTemplates = map[string]string{
	Print:    printTemplate,
	Contains: containsTemplate,
	Range:    rangeTemplate,
}

// helpers holds every helper template, parsed once
var helpers = parseHelpers()

func parseHelpers() *template.Template {
	root := template.New("prelude")
	names := make([]string, 0, len(helperTemplates))
	for name := range helperTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err := root.Parse(helperTemplates[name])
		invariant.ExpectNoError(err, fmt.Sprintf("parsing helper template %q", name))
	}
	return root
}

type helperData struct {
	Indent string
}

// Registry records which helpers a translation run depends on and renders
// each definition exactly once, in order of first use.
type Registry struct {
	indent  string
	emitted map[string]bool
	order   []string
	buf     strings.Builder
}

// NewRegistry returns a registry with every known helper marked as not yet
// emitted. indent is the indentation unit used inside helper bodies.
func NewRegistry(indent string) *Registry {
	r := &Registry{
		indent:  indent,
		emitted: make(map[string]bool, len(helperTemplates)),
	}
	for name := range helperTemplates {
		r.emitted[name] = false
	}
	return r
}

// Require appends the definition of name to the prelude the first time it is
// called; later calls are no-ops.
func (r *Registry) Require(name string) error {
	done, known := r.emitted[name]
	if !known {
		return fmt.Errorf("unknown runtime helper %q", name)
	}
	if done {
		return nil
	}

	var out bytes.Buffer
	if err := helpers.ExecuteTemplate(&out, name, helperData{Indent: r.indent}); err != nil {
		return fmt.Errorf("rendering runtime helper %q: %w", name, err)
	}

	if r.buf.Len() > 0 {
		r.buf.WriteString("\n")
	}
	r.buf.Write(out.Bytes())
	r.emitted[name] = true
	r.order = append(r.order, name)
	return nil
}

// Emitted reports whether the definition of name is already in the prelude.
func (r *Registry) Emitted(name string) bool {
	return r.emitted[name]
}

// Used returns the emitted helpers in order of first use.
func (r *Registry) Used() []string {
	return append([]string(nil), r.order...)
}

// Names returns every known helper, sorted.
func Names() []string {
	names := make([]string, 0, len(helperTemplates))
	for name := range helperTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the prelude text. It ends with a blank line when any
// helper was emitted so the translated body starts on a fresh paragraph.
func (r *Registry) String() string {
	if r.buf.Len() == 0 {
		return ""
	}
	return r.buf.String() + "\n"
}

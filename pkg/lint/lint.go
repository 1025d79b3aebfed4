// Package lint reports authoring problems in a form schema: structural
// issues, unusable formulas, dependency cycles and rule combinations that
// are easy to get wrong.
package lint

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/formula"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic codes.
const (
	CodeStructure        = "structure"
	CodeUnknownType      = "unknown-type"
	CodeDuplicateID      = "duplicate-id"
	CodeMissingOptions   = "missing-options"
	CodeFormulaSyntax    = "formula-syntax"
	CodeUnknownReference = "unknown-reference"
	CodeSelfReference    = "self-reference"
	CodeStaleParents     = "stale-parents"
	CodeCycle            = "cycle"
	CodeRequiredNotEmpty = "required-without-not-empty"
)

// Diagnostic is one finding. Field is empty for schema-level findings.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Field, d.Message)
}

// Report collects the diagnostics of one schema in discovery order.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// HasErrors reports whether any diagnostic is an error.
func (r Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Count returns the number of diagnostics at severity.
func (r Report) Count(severity Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics carrying code.
func (r Report) Filter(code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

type linter struct {
	form   schema.FormSchema
	ids    map[string]bool
	report Report
}

func (l *linter) add(severity Severity, code, field, format string, args ...any) {
	l.report.Diagnostics = append(l.report.Diagnostics, Diagnostic{
		Severity: severity,
		Code:     code,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Lint inspects form and returns every finding.
func Lint(form schema.FormSchema) Report {
	l := &linter{form: form, ids: make(map[string]bool, len(form.Fields))}
	for _, f := range form.Fields {
		l.ids[f.ID] = true
	}

	l.structure()
	for _, f := range form.Fields {
		l.field(f)
	}
	l.cycles()
	return l.report
}

func (l *linter) structure() {
	err := schema.Check(l.form)
	if err == nil {
		return
	}
	var issues schema.ValidationErrors
	if !errors.As(err, &issues) {
		l.add(SeverityError, CodeStructure, "", "%v", err)
		return
	}
	for _, issue := range issues {
		field := l.fieldAt(issue.Path)
		switch {
		case strings.HasPrefix(issue.Message, "unknown field type"):
			l.add(SeverityError, CodeUnknownType, field, "%s", issue.Message)
		case strings.HasPrefix(issue.Message, "field ids must be unique"):
			for _, id := range duplicates(l.form.Fields) {
				l.add(SeverityError, CodeDuplicateID, id, "id is used by more than one field")
			}
		default:
			l.add(SeverityError, CodeStructure, field, "%s", issue)
		}
	}
}

// fieldAt maps an issue path like "fields[2].type" to the field's id.
func (l *linter) fieldAt(path string) string {
	rest, ok := strings.CutPrefix(path, "fields[")
	if !ok {
		return ""
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return ""
	}
	idx, err := strconv.Atoi(rest[:end])
	if err != nil || idx < 0 || idx >= len(l.form.Fields) {
		return ""
	}
	if id := l.form.Fields[idx].ID; id != "" {
		return id
	}
	return fmt.Sprintf("#%d", idx)
}

func duplicates(fields []schema.Field) []string {
	seen := make(map[string]int, len(fields))
	var out []string
	for _, f := range fields {
		seen[f.ID]++
		if seen[f.ID] == 2 {
			out = append(out, f.ID)
		}
	}
	return out
}

func (l *linter) field(f schema.Field) {
	if f.Type.UsesOptions() && len(f.Options) == 0 {
		l.add(SeverityWarning, CodeMissingOptions, f.ID, "%s field has no options", f.Type)
	}
	if f.Required && !schema.HasRule(f.Validations, schema.RuleNotEmpty) {
		l.add(SeverityInfo, CodeRequiredNotEmpty, f.ID,
			"required is a display marker; add a notEmpty rule to reject blank input")
	}
	if f.IsDerived() {
		l.derivation(f)
	}
}

func (l *linter) derivation(f schema.Field) {
	d := f.Derived
	if strings.TrimSpace(d.Formula) == "" {
		// reported by the structural check
		return
	}
	if err := formula.Check(d.Formula); err != nil {
		l.add(SeverityError, CodeFormulaSyntax, f.ID, "%v", err)
	}

	refs := formula.UniqueParentIDs(d.Formula)
	for _, ref := range refs {
		switch {
		case ref == f.ID:
			l.add(SeverityError, CodeSelfReference, f.ID, "formula references its own field")
		case !l.ids[ref]:
			l.add(SeverityError, CodeUnknownReference, f.ID, "formula references unknown field %q", ref)
		}
	}

	if !slices.Equal(d.ParentIDs, formula.ExtractParentIDs(d.Formula)) {
		l.add(SeverityWarning, CodeStaleParents, f.ID,
			"stored parentIds %v do not match the formula; they will be re-derived", d.ParentIDs)
	}
}

// cycles walks the dependencies between derived fields depth first and
// reports each cycle once. Self references are reported separately.
func (l *linter) cycles() {
	edges := make(map[string][]string)
	var order []string
	for _, f := range l.form.Fields {
		if !f.IsDerived() {
			continue
		}
		order = append(order, f.ID)
		edges[f.ID] = nil
	}
	for _, f := range l.form.Fields {
		if !f.IsDerived() {
			continue
		}
		for _, ref := range formula.UniqueParentIDs(f.Derived.Formula) {
			if _, derived := edges[ref]; derived && ref != f.ID {
				edges[f.ID] = append(edges[f.ID], ref)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(order))
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		state[id] = visiting
		stack = append(stack, id)
		for _, next := range edges[id] {
			switch state[next] {
			case unvisited:
				visit(next)
			case visiting:
				start := slices.Index(stack, next)
				path := append(slices.Clone(stack[start:]), next)
				l.add(SeverityWarning, CodeCycle, next,
					"derived fields depend on each other (%s); values will not settle",
					strings.Join(path, " -> "))
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}
	for _, id := range order {
		if state[id] == unvisited {
			visit(id)
		}
	}
}

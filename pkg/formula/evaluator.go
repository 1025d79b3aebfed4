package formula

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// Scope binds field ids to the values a formula may read. A reference to an
// id missing from the scope is an evaluation error; an id bound to an absent
// value is not.
type Scope map[string]schema.Value

// ScopeFor restricts values to exactly ids. Ids missing from values bind to
// an absent value.
func ScopeFor(ids []string, values schema.ValueMap) Scope {
	scope := make(Scope, len(ids))
	for _, id := range ids {
		scope[id] = values.Get(id)
	}
	return scope
}

// Expr is a parsed formula.
type Expr struct {
	source string
	root   node
	refs   []string
}

// Compile parses formula into an expression.
func Compile(formula string) (*Expr, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, fmt.Errorf("%w: empty formula", ErrSyntax)
	}
	tokens, err := tokenize(formula)
	if err != nil {
		return nil, err
	}
	root, refs, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	return &Expr{source: formula, root: root, refs: refs}, nil
}

// Source returns the formula text the expression was compiled from.
func (e *Expr) Source() string { return e.source }

// Refs lists the ids the expression references, in source order.
func (e *Expr) Refs() []string {
	out := make([]string, len(e.refs))
	copy(out, e.refs)
	return out
}

// Eval evaluates the expression over scope.
func (e *Expr) Eval(scope Scope) (schema.Value, error) {
	return e.root.eval(scope)
}

// Eval compiles and evaluates formula over scope, reporting why evaluation
// failed.
func Eval(formula string, scope Scope) (schema.Value, error) {
	expr, err := Compile(formula)
	if err != nil {
		return schema.Absent(), err
	}
	return expr.Eval(scope)
}

// Check reports whether formula parses.
func Check(formula string) error {
	_, err := Compile(formula)
	return err
}

// Evaluate computes a derived value. The scope is restricted to
// d.ParentIDs; every failure yields an absent value.
func Evaluate(d schema.Derivation, values schema.ValueMap) schema.Value {
	v, err := Eval(d.Formula, ScopeFor(d.ParentIDs, values))
	if err != nil {
		return schema.Absent()
	}
	return v
}

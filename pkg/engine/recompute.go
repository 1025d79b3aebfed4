package engine

import (
	"log/slog"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/formula"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Coordinator runs bounded fixpoint recomputation. It holds no state between
// calls and is safe for concurrent use.
type Coordinator struct {
	maxPasses int
	logger    *slog.Logger
}

// New builds a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		maxPasses: DefaultMaxPasses,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// MaxPasses reports the configured pass bound.
func (c *Coordinator) MaxPasses() int { return c.maxPasses }

// Result is the outcome of one recomputation.
type Result struct {
	Values schema.ValueMap
	// Passes counts the passes run, including the final unchanged one.
	Passes int
	// Converged is false when the pass bound stopped recomputation.
	Converged bool
	// Changed lists the ids whose value differs from the input, in field order.
	Changed []string
}

type derivedField struct {
	id    string
	scope []string
	expr  *formula.Expr
}

// Run recomputes every derived field of fields over values. The input map is
// not modified.
func (c *Coordinator) Run(fields []schema.Field, values schema.ValueMap) Result {
	out := values.Clone()

	derived := compileDerived(fields)
	if len(derived) == 0 {
		return Result{Values: out, Converged: true}
	}

	result := Result{Values: out}
	for result.Passes < c.maxPasses {
		result.Passes++
		changed := false
		for _, d := range derived {
			next := evaluate(d, out)
			if out.Get(d.id).Equal(next) {
				continue
			}
			out[d.id] = next
			changed = true
		}
		if !changed {
			result.Converged = true
			break
		}
	}

	for _, d := range derived {
		if !values.Get(d.id).Equal(out.Get(d.id)) {
			result.Changed = append(result.Changed, d.id)
		}
	}

	if !result.Converged {
		c.logger.Debug("derived values did not converge",
			"passes", result.Passes,
			"derived_fields", len(derived),
		)
	}
	return result
}

// Recompute returns values with every derived field brought to its fixpoint
// or to the state after the pass bound.
func (c *Coordinator) Recompute(fields []schema.Field, values schema.ValueMap) schema.ValueMap {
	return c.Run(fields, values).Values
}

// Recompute runs a default Coordinator.
func Recompute(fields []schema.Field, values schema.ValueMap) schema.ValueMap {
	return New().Recompute(fields, values)
}

// compileDerived parses each formula once per call. Parent ids are always
// re-derived from the formula text; stored parentIds are ignored.
func compileDerived(fields []schema.Field) []derivedField {
	var out []derivedField
	for _, f := range fields {
		if !f.IsDerived() {
			continue
		}
		d := derivedField{
			id:    f.ID,
			scope: formula.ExtractParentIDs(f.Derived.Formula),
		}
		if expr, err := formula.Compile(f.Derived.Formula); err == nil {
			d.expr = expr
		}
		out = append(out, d)
	}
	return out
}

func evaluate(d derivedField, values schema.ValueMap) schema.Value {
	if d.expr == nil {
		return schema.Absent()
	}
	v, err := d.expr.Eval(formula.ScopeFor(d.scope, values))
	if err != nil {
		return schema.Absent()
	}
	return v
}

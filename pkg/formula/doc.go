// Package formula extracts field references from derived-field formulas and
// evaluates them over the current form values.
//
// A formula is an arithmetic or string expression whose operands are
// literals and field references written as ${fieldId}:
//
//	${qty} * ${price}
//	${first} + " " + ${last}
//	(${a} + ${b}) % 7
//
// Supported grammar: number, string ('...' or "...") and boolean literals,
// null, ${id} references, unary + and -, binary + - * / % with the usual
// precedence, and parentheses. The + operator concatenates when either
// operand is a string; the other operators require numbers.
//
// Evaluate never returns an error. Any failure (a syntax error, a reference
// outside the derivation's parentIds, a bare name, a type mismatch,
// arithmetic on a missing value, division by zero or a non-finite result)
// yields an absent value. Use Check or Eval when the error matters.
//
// Security caveat: formulas are trusted to the schema author. The evaluator
// accepts only the strict grammar above, with no function calls and no
// external name resolution, which is what makes it safe to run formulas
// taken from untrusted sources.
package formula

// Package validation evaluates the rule chain attached to each form field.
//
// Evaluate applies one rule; Validate walks a rule list in declaration order
// and stops at the first failure, so a field declaring notEmpty before email
// reports only the required message for an empty value. ValidateAll checks
// every field of a schema and collects all failures into an ErrorMap.
//
// Length-based rules count Unicode code points. minLength, maxLength and
// email only apply to string values; numbers, booleans and absent values pass
// them untouched.
package validation

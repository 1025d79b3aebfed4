package formula

import "errors"

var (
	// ErrSyntax reports a formula that does not match the grammar.
	ErrSyntax = errors.New("formula: syntax error")
	// ErrUndeclared reports a reference to a name outside the scope.
	ErrUndeclared = errors.New("formula: undeclared name")
	// ErrType reports an operator applied to operands of the wrong kind.
	ErrType = errors.New("formula: type mismatch")
	// ErrArithmetic reports division by zero or a non-finite result.
	ErrArithmetic = errors.New("formula: arithmetic error")
)

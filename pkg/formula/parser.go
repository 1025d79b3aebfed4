package formula

import (
	"fmt"
	"math"

	"github.com/goliatone/go-formkit/pkg/schema"
)

type node interface {
	eval(scope Scope) (schema.Value, error)
}

type literalNode struct {
	value schema.Value
}

func (n literalNode) eval(Scope) (schema.Value, error) { return n.value, nil }

type refNode struct {
	id string
}

func (n refNode) eval(scope Scope) (schema.Value, error) {
	value, ok := scope[n.id]
	if !ok {
		return schema.Absent(), fmt.Errorf("%w: ${%s}", ErrUndeclared, n.id)
	}
	return value, nil
}

type unaryNode struct {
	op    tokenKind
	inner node
}

func (n unaryNode) eval(scope Scope) (schema.Value, error) {
	v, err := n.inner.eval(scope)
	if err != nil {
		return schema.Absent(), err
	}
	num, ok := v.Num()
	if !ok {
		return schema.Absent(), fmt.Errorf("%w: unary %s on %s", ErrType, opString(n.op), v.Kind())
	}
	if n.op == tokenMinus {
		num = -num
	}
	return schema.Number(num), nil
}

type binaryNode struct {
	op    tokenKind
	left  node
	right node
}

func (n binaryNode) eval(scope Scope) (schema.Value, error) {
	left, err := n.left.eval(scope)
	if err != nil {
		return schema.Absent(), err
	}
	right, err := n.right.eval(scope)
	if err != nil {
		return schema.Absent(), err
	}
	if left.IsAbsent() || right.IsAbsent() {
		return schema.Absent(), fmt.Errorf("%w: %s with a missing operand", ErrType, opString(n.op))
	}

	if n.op == tokenPlus && (left.Kind() == schema.KindString || right.Kind() == schema.KindString) {
		return schema.String(left.String() + right.String()), nil
	}

	a, okA := left.Num()
	b, okB := right.Num()
	if !okA || !okB {
		return schema.Absent(), fmt.Errorf("%w: %s %s %s", ErrType, left.Kind(), opString(n.op), right.Kind())
	}

	var out float64
	switch n.op {
	case tokenPlus:
		out = a + b
	case tokenMinus:
		out = a - b
	case tokenStar:
		out = a * b
	case tokenSlash:
		if b == 0 {
			return schema.Absent(), fmt.Errorf("%w: division by zero", ErrArithmetic)
		}
		out = a / b
	case tokenPercent:
		if b == 0 {
			return schema.Absent(), fmt.Errorf("%w: modulo by zero", ErrArithmetic)
		}
		out = math.Mod(a, b)
	default:
		return schema.Absent(), fmt.Errorf("%w: unsupported operator %q", ErrSyntax, opString(n.op))
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return schema.Absent(), fmt.Errorf("%w: non-finite result", ErrArithmetic)
	}
	return schema.Number(out), nil
}

// maxNesting bounds how deeply parentheses and unary signs may nest.
const maxNesting = 64

type tokenStream struct {
	tokens []token
	pos    int
	refs   []string
	depth  int
}

func parse(tokens []token) (node, []string, error) {
	stream := &tokenStream{tokens: tokens}
	root, err := parseAdditive(stream)
	if err != nil {
		return nil, nil, err
	}
	if stream.pos < len(stream.tokens) {
		tok := stream.tokens[stream.pos]
		return nil, nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.raw, tok.pos)
	}
	return root, stream.refs, nil
}

func parseAdditive(stream *tokenStream) (node, error) {
	left, err := parseMultiplicative(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.matchAny(tokenPlus, tokenMinus)
		if !ok {
			return left, nil
		}
		right, err := parseMultiplicative(stream)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func parseMultiplicative(stream *tokenStream) (node, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.matchAny(tokenStar, tokenSlash, tokenPercent)
		if !ok {
			return left, nil
		}
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func parseUnary(stream *tokenStream) (node, error) {
	stream.depth++
	defer func() { stream.depth-- }()
	if stream.depth > maxNesting {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrSyntax, maxNesting)
	}
	if op, ok := stream.matchAny(tokenPlus, tokenMinus); ok {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (node, error) {
	if stream.pos >= len(stream.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of formula", ErrSyntax)
	}
	tok := stream.tokens[stream.pos]
	stream.pos++

	switch tok.kind {
	case tokenLParen:
		inner, err := parseAdditive(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, fmt.Errorf("%w: missing closing ')' for '(' at %d", ErrSyntax, tok.pos)
		}
		return inner, nil
	case tokenNumber:
		n, err := parseNumber(tok.raw)
		if err != nil {
			return nil, err
		}
		return literalNode{value: schema.Number(n)}, nil
	case tokenString:
		return literalNode{value: schema.String(tok.raw)}, nil
	case tokenBool:
		return literalNode{value: schema.Bool(tok.raw == "true")}, nil
	case tokenNull:
		return literalNode{value: schema.Absent()}, nil
	case tokenRef:
		stream.refs = append(stream.refs, tok.raw)
		return refNode{id: tok.raw}, nil
	case tokenIdentifier:
		return nil, fmt.Errorf("%w: %q (field references are written ${%s})", ErrUndeclared, tok.raw, tok.raw)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.raw, tok.pos)
	}
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) matchAny(kinds ...tokenKind) (tokenKind, bool) {
	if s.pos >= len(s.tokens) {
		return 0, false
	}
	current := s.tokens[s.pos].kind
	for _, kind := range kinds {
		if current == kind {
			s.pos++
			return kind, true
		}
	}
	return 0, false
}

func opString(kind tokenKind) string {
	switch kind {
	case tokenPlus:
		return "+"
	case tokenMinus:
		return "-"
	case tokenStar:
		return "*"
	case tokenSlash:
		return "/"
	case tokenPercent:
		return "%"
	default:
		return "?"
	}
}

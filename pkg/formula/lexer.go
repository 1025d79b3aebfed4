package formula

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenString
	tokenBool
	tokenNull
	tokenRef
	tokenIdentifier
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
	pos  int
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		ch := input[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		start := i
		switch ch {
		case '(':
			i++
			tokens = append(tokens, token{kind: tokenLParen, raw: "(", pos: start})
		case ')':
			i++
			tokens = append(tokens, token{kind: tokenRParen, raw: ")", pos: start})
		case '+':
			i++
			tokens = append(tokens, token{kind: tokenPlus, raw: "+", pos: start})
		case '-':
			i++
			tokens = append(tokens, token{kind: tokenMinus, raw: "-", pos: start})
		case '*':
			i++
			tokens = append(tokens, token{kind: tokenStar, raw: "*", pos: start})
		case '/':
			i++
			tokens = append(tokens, token{kind: tokenSlash, raw: "/", pos: start})
		case '%':
			i++
			tokens = append(tokens, token{kind: tokenPercent, raw: "%", pos: start})
		case '$':
			if i+1 >= len(input) || input[i+1] != '{' {
				return nil, fmt.Errorf("%w: unexpected '$' at %d; references are written ${id}", ErrSyntax, start)
			}
			i += 2
			idStart := i
			for i < len(input) && input[i] != '}' {
				if input[i] == '{' {
					return nil, fmt.Errorf("%w: unexpected '{' inside reference at %d", ErrSyntax, i)
				}
				i++
			}
			if i >= len(input) {
				return nil, fmt.Errorf("%w: unterminated reference at %d", ErrSyntax, start)
			}
			tokens = append(tokens, token{kind: tokenRef, raw: input[idStart:i], pos: start})
			i++
		case '"', '\'':
			value, next, err := scanString(input, i)
			if err != nil {
				return nil, err
			}
			i = next
			tokens = append(tokens, token{kind: tokenString, raw: value, pos: start})
		default:
			switch {
			case isDigit(ch) || (ch == '.' && i+1 < len(input) && isDigit(input[i+1])):
				i = scanNumber(input, i)
				tokens = append(tokens, token{kind: tokenNumber, raw: input[start:i], pos: start})
			case isIdentStart(ch):
				for i < len(input) && isIdentPart(input[i]) {
					i++
				}
				raw := input[start:i]
				switch raw {
				case "true", "false":
					tokens = append(tokens, token{kind: tokenBool, raw: raw, pos: start})
				case "null":
					tokens = append(tokens, token{kind: tokenNull, raw: raw, pos: start})
				default:
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw, pos: start})
				}
			default:
				return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, ch, start)
			}
		}
	}

	return tokens, nil
}

func scanNumber(input string, i int) int {
	for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
		i++
	}
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		if j < len(input) && isDigit(input[j]) {
			i = j
			for i < len(input) && isDigit(input[i]) {
				i++
			}
		}
	}
	return i
}

func scanString(input string, i int) (string, int, error) {
	quote := input[i]
	start := i
	i++
	var b strings.Builder
	for i < len(input) {
		c := input[i]
		i++
		switch {
		case c == quote:
			return b.String(), i, nil
		case c == '\\':
			if i >= len(input) {
				return "", 0, fmt.Errorf("%w: unterminated string literal at %d", ErrSyntax, start)
			}
			esc := input[i]
			i++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string literal at %d", ErrSyntax, start)
}

func parseNumber(raw string) (float64, error) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number literal %q", ErrSyntax, raw)
	}
	return n, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

package expression

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ToPostfix converts an infix expression to postfix (reverse polish) order
// using the shunting-yard algorithm. parentheses never appear in the result.
func ToPostfix(expr string) ([]Token, error) {
	tokens, err := NewLexer(expr).Tokenize()
	if err != nil {
		return nil, err
	}

	output := make([]Token, 0, len(tokens))
	var stack []Token

	for _, tok := range tokens {
		switch tok.Type {
		case TokenOperand:
			output = append(output, tok)

		case TokenOperator:
			prec, err := precedenceOf(tok)
			if err != nil {
				return nil, err
			}
			// equal precedence pops too: every operator is left-associative
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Type == TokenLeftParen {
					break
				}
				topPrec, err := precedenceOf(top)
				if err != nil {
					return nil, err
				}
				if topPrec < prec {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)

		case TokenLeftParen:
			stack = append(stack, tok)

		case TokenRightParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Type == TokenLeftParen {
					matched = true
					break
				}
				output = append(output, top)
			}
			if !matched {
				return nil, errors.Wrapf(ErrMismatchedParentheses, "unmatched ')' at position %d", tok.Pos)
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == TokenLeftParen || top.Type == TokenRightParen {
			return nil, errors.Wrapf(ErrMismatchedParentheses, "unmatched '(' at position %d", top.Pos)
		}
		output = append(output, top)
	}

	return output, nil
}

func precedenceOf(tok Token) (int, error) {
	r := []rune(tok.Value)
	if len(r) != 1 {
		return 0, errors.Wrapf(ErrUnsupportedOperator, "operator %q", tok.Value)
	}
	return Precedence(r[0])
}

// FormatPostfix joins postfix tokens with single spaces
func FormatPostfix(tokens []Token) string {
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = tok.Value
	}
	return strings.Join(values, " ")
}

// Package expression compiles infix arithmetic expressions into trees
// and evaluates them.
package expression

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// Tree is an expression tree compiled from an infix expression. the tree
// structure is fixed once built; only variable values change afterwards.
type Tree struct {
	expression string
	postfix    []Token
	root       Node

	variables map[string]float64 // name -> current value
	names     []string           // variables in order of first appearance
}

// New compiles expr into a Tree. every operand that is not a numeric literal
// becomes a variable with a default value of 0.
func New(expr string) (*Tree, error) {
	postfix, err := ToPostfix(expr)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		expression: expr,
		postfix:    postfix,
		variables:  make(map[string]float64),
	}
	root, err := t.compile(postfix)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// compile builds the tree from postfix tokens with an explicit node stack
func (t *Tree) compile(postfix []Token) (Node, error) {
	var stack []Node

	for _, tok := range postfix {
		switch {
		case tok.Type == TokenOperator:
			if len(stack) < 2 {
				return nil, errors.Wrapf(ErrMalformedExpression,
					"operator %s at position %d needs two operands", tok.Value, tok.Pos)
			}
			// first pop is the right operand
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			node, err := newOperatorNode(tok.Value, left, right)
			if err != nil {
				return nil, err
			}
			stack = append(stack, node)

		case isNumeric(tok.Value):
			value, _ := parseNumber(tok.Value)
			stack = append(stack, &ConstantNode{Value: value})

		default:
			t.declare(tok.Value)
			stack = append(stack, &VariableNode{Name: tok.Value, lookup: t.lookup})
		}
	}

	switch len(stack) {
	case 0:
		return nil, errors.Wrap(ErrMalformedExpression, "empty expression")
	case 1:
		return stack[0], nil
	default:
		return nil, errors.Wrapf(ErrMalformedExpression, "%d operands are missing an operator", len(stack)-1)
	}
}

func (t *Tree) declare(name string) {
	if _, exists := t.variables[name]; exists {
		return
	}
	t.variables[name] = 0
	t.names = append(t.names, name)
}

func (t *Tree) lookup(name string) float64 {
	return t.variables[name]
}

// Expression returns the infix expression the tree was built from
func (t *Tree) Expression() string {
	return t.expression
}

// Root returns the root node of the tree
func (t *Tree) Root() Node {
	return t.root
}

// Postfix returns the postfix form of the expression
func (t *Tree) Postfix() []Token {
	result := make([]Token, len(t.postfix))
	copy(result, t.postfix)
	return result
}

// SetVariable sets the value of a variable. names the expression does not
// use are stored but never read.
func (t *Tree) SetVariable(name string, value float64) {
	t.variables[name] = value
}

// Variable returns the current value of a variable
func (t *Tree) Variable(name string) (float64, bool) {
	value, exists := t.variables[name]
	return value, exists
}

// Variables returns the free variable names of the expression in order of
// first appearance
func (t *Tree) Variables() []string {
	result := make([]string, len(t.names))
	copy(result, t.names)
	return result
}

// Evaluate evaluates the tree with the current variable values
func (t *Tree) Evaluate() (float64, error) {
	if t.root == nil {
		return 0, errors.Wrap(ErrMalformedExpression, "tree has no root")
	}
	return t.root.Eval()
}

// String renders the tree as a fully parenthesized infix expression
func (t *Tree) String() string {
	if t.root == nil {
		return ""
	}
	return t.root.String()
}

// isNumeric reports whether an operand token is a numeric literal. the
// leading character check keeps names such as "Inf" or "NaN" variables, and
// hex forms are not literals here.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	first := rune(s[0])
	if first != charPeriod && !(first >= '0' && first <= '9') {
		return false
	}
	if strings.ContainsAny(s, "xXpP_") {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	_, ok := parseNumber(s)
	return ok
}

// parseNumber parses a literal, overflowing literals become +-Inf
func parseNumber(s string) (float64, bool) {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return value, true
		}
		return 0, false
	}
	return value, true
}

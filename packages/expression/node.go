package expression

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Node is a node of an expression tree. trees are evaluated by recursive
// descent from the root.
type Node interface {
	Eval() (float64, error)
	String() string
}

// ConstantNode represents a numeric literal
type ConstantNode struct {
	Value float64
}

func (n *ConstantNode) Eval() (float64, error) {
	return n.Value, nil
}

func (n *ConstantNode) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Lookup resolves a variable name to its current value
type Lookup func(name string) float64

// VariableNode represents a named variable. the value is resolved through
// the lookup on every evaluation, so a variable set after the tree was
// built is seen by the next Eval.
type VariableNode struct {
	Name   string
	lookup Lookup
}

func (n *VariableNode) Eval() (float64, error) {
	if n.lookup == nil {
		return 0, errors.AssertionFailedf("variable %q has no lookup", n.Name)
	}
	return n.lookup(n.Name), nil
}

func (n *VariableNode) String() string {
	return n.Name
}

// OperatorNode represents a binary operation. an operator node exclusively
// owns its children.
type OperatorNode struct {
	Op    Operator
	Left  Node
	Right Node
}

func (n *OperatorNode) Eval() (float64, error) {
	if n.Left == nil || n.Right == nil {
		return 0, errors.Wrapf(ErrMalformedExpression, "operator %s is missing an operand", n.Op)
	}

	left, err := n.Left.Eval()
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval()
	if err != nil {
		return 0, err
	}
	return n.Op.Apply(left, right), nil
}

func (n *OperatorNode) String() string {
	return fmt.Sprintf("(%s%s%s)", n.Left, n.Op, n.Right)
}

// newOperatorNode builds an operator node for symbol
func newOperatorNode(symbol string, left, right Node) (*OperatorNode, error) {
	r := []rune(symbol)
	if len(r) != 1 {
		return nil, errors.Wrapf(ErrUnsupportedOperator, "operator %q", symbol)
	}
	op, ok := LookupOperator(r[0])
	if !ok || !op.valid() {
		return nil, errors.Wrapf(ErrUnsupportedOperator, "operator %q", symbol)
	}
	return &OperatorNode{Op: op, Left: left, Right: right}, nil
}

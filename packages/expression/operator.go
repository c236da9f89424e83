package expression

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Operator is a binary arithmetic operator. The set is closed: adding an
// operator means adding a constant here and an entry in the registry, the
// lexer and the postfix conversion only ever consult the registry.
type Operator uint8

const (
	OpAdd Operator = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
)

// operator precedence levels, higher binds tighter
const (
	precedenceAdditive       = 2
	precedenceMultiplicative = 3
)

type operatorInfo struct {
	symbol     rune
	precedence int
	apply      func(left, right float64) float64
}

// registry maps every supported operator to its symbol, precedence and
// arithmetic. all operators are left-associative.
var registry = map[Operator]operatorInfo{
	OpAdd: {
		symbol:     charPlus,
		precedence: precedenceAdditive,
		apply:      func(l, r float64) float64 { return l + r },
	},
	OpSubtract: {
		symbol:     charMinus,
		precedence: precedenceAdditive,
		apply:      func(l, r float64) float64 { return l - r },
	},
	OpMultiply: {
		symbol:     charAsterisk,
		precedence: precedenceMultiplicative,
		apply:      func(l, r float64) float64 { return l * r },
	},
	OpDivide: {
		symbol:     charSlash,
		precedence: precedenceMultiplicative,
		// IEEE 754: x/0 is +-Inf, 0/0 is NaN
		apply: func(l, r float64) float64 { return l / r },
	},
}

// symbols is the reverse index of registry
var symbols = func() map[rune]Operator {
	m := make(map[rune]Operator, len(registry))
	for op, info := range registry {
		m[info.symbol] = op
	}
	return m
}()

// LookupOperator returns the operator registered for symbol
func LookupOperator(symbol rune) (Operator, bool) {
	op, ok := symbols[symbol]
	return op, ok
}

// IsOperator reports whether symbol is a registered operator
func IsOperator(symbol rune) bool {
	_, ok := symbols[symbol]
	return ok
}

// Precedence returns the precedence of the operator registered for symbol
func Precedence(symbol rune) (int, error) {
	op, ok := symbols[symbol]
	if !ok {
		return 0, errors.Wrapf(ErrUnsupportedOperator, "operator %q", symbol)
	}
	return registry[op].precedence, nil
}

// Operators returns the registered operator symbols in declaration order
func Operators() []rune {
	ops := make([]Operator, 0, len(registry))
	for op := range registry {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	result := make([]rune, len(ops))
	for i, op := range ops {
		result[i] = registry[op].symbol
	}
	return result
}

func (op Operator) Symbol() rune {
	return registry[op].symbol
}

func (op Operator) Precedence() int {
	return registry[op].precedence
}

// Apply evaluates left op right
func (op Operator) Apply(left, right float64) float64 {
	return registry[op].apply(left, right)
}

func (op Operator) String() string {
	if info, ok := registry[op]; ok {
		return string(info.symbol)
	}
	return "?"
}

func (op Operator) valid() bool {
	_, ok := registry[op]
	return ok
}

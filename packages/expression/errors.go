package expression

import "github.com/cockroachdb/errors"

// Parse-time failures. every error returned while building a Tree wraps
// exactly one of these, so callers can match with errors.Is.
var (
	ErrMismatchedParentheses = errors.New("mismatched parentheses")
	ErrUnsupportedToken      = errors.New("unsupported token")
	ErrUnsupportedOperator   = errors.New("unsupported operator")
	ErrMalformedExpression   = errors.New("malformed expression")
)

// IsParseError reports whether err is one of the parse-time failures
func IsParseError(err error) bool {
	return errors.IsAny(err,
		ErrMismatchedParentheses,
		ErrUnsupportedToken,
		ErrUnsupportedOperator,
		ErrMalformedExpression,
	)
}

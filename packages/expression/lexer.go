package expression

import (
	"unicode"

	"github.com/cockroachdb/errors"
)

// TokenType represents different types of tokens in an infix expression
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenOperand
	TokenOperator
	TokenLeftParen
	TokenRightParen
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenOperand:
		return "operand"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "lparen"
	case TokenRightParen:
		return "rparen"
	}
	return "unknown"
}

// character classification constants. slightly easier to read.
const (
	charNull     = 0
	charLParen   = '('
	charRParen   = ')'
	charAsterisk = '*'
	charPlus     = '+'
	charMinus    = '-'
	charPeriod   = '.'
	charSlash    = '/'
)

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in input
}

// Lexer splits an infix expression into operands, operators and
// parentheses. operands are maximal runs of letters, digits and '.', so
// "2.5", "A12" and "12A" are each a single token.
type Lexer struct {
	input string
	runes []rune
	pos   int
}

// NewLexer creates a new lexer for the given expression
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		runes: []rune(input),
	}
}

// Tokenize tokenizes the entire input. the returned slice does not include
// an EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// nextToken returns the next token from the input
func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.runes) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	startPos := l.pos
	ch := l.current()

	if isOperandChar(ch) {
		return l.scanOperand(), nil
	}

	switch ch {
	case charLParen:
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: startPos}, nil
	case charRParen:
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: startPos}, nil
	}

	if IsOperator(ch) {
		l.pos++
		return Token{Type: TokenOperator, Value: string(ch), Pos: startPos}, nil
	}

	return Token{}, errors.Wrapf(ErrUnsupportedToken, "unexpected character %q at position %d", ch, startPos)
}

// scanOperand scans a numeric literal or variable name
func (l *Lexer) scanOperand() Token {
	startPos := l.pos
	for l.pos < len(l.runes) && isOperandChar(l.current()) {
		l.pos++
	}
	return Token{Type: TokenOperand, Value: string(l.runes[startPos:l.pos]), Pos: startPos}
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) && unicode.IsSpace(l.current()) {
		l.pos++
	}
}

func isOperandChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == charPeriod
}

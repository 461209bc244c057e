package parser

import (
	"fmt"
	"unicode"
)

// ParseError reports malformed program text
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Lexer tokenizes program text
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		col:    1,
		tokens: []Token{},
	}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		startLine := l.line
		startCol := l.col

		ch := l.peek()
		switch {
		case ch == '(':
			l.advance()
			l.emit(TokenLeftParen, "", startLine, startCol)
		case ch == ')':
			l.advance()
			l.emit(TokenRightParen, "", startLine, startCol)
		case ch == ',':
			l.advance()
			l.emit(TokenComma, "", startLine, startCol)
		case ch == '.':
			l.advance()
			l.emit(TokenDot, "", startLine, startCol)
		case ch == ':':
			l.advance()
			if l.peek() != '-' {
				return &ParseError{Line: startLine, Col: startCol, Msg: "expected ':-'"}
			}
			l.advance()
			l.emit(TokenImplies, ":-", startLine, startCol)
		case isUpper(ch):
			l.emit(TokenVariable, l.readWhile(isVariableChar), startLine, startCol)
		case isLower(ch) || isDigit(ch):
			l.emit(TokenConstant, l.readWhile(isConstantChar), startLine, startCol)
		default:
			return &ParseError{Line: startLine, Col: startCol, Msg: fmt.Sprintf("unexpected character %q", rune(ch))}
		}
	}

	// Add EOF token
	l.emit(TokenEOF, "", l.line, l.col)
	return nil
}

func (l *Lexer) emit(typ TokenType, value string, line, col int) {
	l.tokens = append(l.tokens, Token{
		Type:  typ,
		Value: value,
		Line:  line,
		Col:   col,
	})
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current]
}

// peek returns the current character without advancing
func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// advance moves to the next character
func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// skipWhitespaceAndComments skips whitespace and % line comments
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(rune(ch)) {
			l.advance()
		} else if ch == '%' {
			// Skip comment until end of line
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readWhile consumes characters accepted by keep
func (l *Lexer) readWhile(keep func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && keep(l.peek()) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }
func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }
func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// isVariableChar matches [A-Za-z0-9_]
func isVariableChar(ch byte) bool {
	return isUpper(ch) || isLower(ch) || isDigit(ch) || ch == '_'
}

// isConstantChar matches [a-zA-Z0-9_.]
func isConstantChar(ch byte) bool {
	return isVariableChar(ch) || ch == '.'
}

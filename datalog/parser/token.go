package parser

import "fmt"

// TokenType represents the type of a program token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenConstant
	TokenVariable
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenDot
	TokenImplies
)

// Token represents a lexical token in a program
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF[%d:%d]", t.Line, t.Col)
	case TokenConstant:
		return fmt.Sprintf("Constant[%d:%d]:%s", t.Line, t.Col, t.Value)
	case TokenVariable:
		return fmt.Sprintf("Variable[%d:%d]:%s", t.Line, t.Col, t.Value)
	case TokenLeftParen:
		return fmt.Sprintf("LeftParen[%d:%d]", t.Line, t.Col)
	case TokenRightParen:
		return fmt.Sprintf("RightParen[%d:%d]", t.Line, t.Col)
	case TokenComma:
		return fmt.Sprintf("Comma[%d:%d]", t.Line, t.Col)
	case TokenDot:
		return fmt.Sprintf("Dot[%d:%d]", t.Line, t.Col)
	case TokenImplies:
		return fmt.Sprintf("Implies[%d:%d]", t.Line, t.Col)
	default:
		return fmt.Sprintf("Unknown[%d:%d]:%s", t.Line, t.Col, t.Value)
	}
}

// describe names the token for error messages
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenConstant:
		return fmt.Sprintf("constant %q", t.Value)
	case TokenVariable:
		return fmt.Sprintf("variable %q", t.Value)
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenComma:
		return "','"
	case TokenDot:
		return "'.'"
	case TokenImplies:
		return "':-'"
	default:
		return t.Value
	}
}

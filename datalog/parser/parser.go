// Package parser reads Datalog program text into facts and rules.
//
//	program := clause*
//	clause  := atom "." | atom ":-" atom ("," atom)* "."
//	atom    := name "(" [term ("," term)*] ")"
//
// A term starting with an upper-case letter is a variable; one starting with
// a lower-case letter or digit is a constant. '%' starts a line comment.
// Facts and rules may appear in any order.
package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// Program is a parsed source file. Facts may still contain variables;
// rejecting those is the safety checker's job.
type Program struct {
	Facts []datalog.Atom
	Rules []datalog.Rule
}

// String renders the program back to source form, facts first
func (p *Program) String() string {
	var sb strings.Builder
	for _, f := range p.Facts {
		sb.WriteString(f.String())
		sb.WriteString(".\n")
	}
	for _, r := range p.Rules {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parser parses program tokens into facts and rules
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// ParseProgram parses program text
func ParseProgram(src string) (*Program, error) {
	lexer := NewLexer(src)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	return NewParser(lexer).Parse()
}

// ParseFile reads and parses a program file
func ParseFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	prog, err := ParseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse reads clauses until EOF
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}

	for p.lexer.PeekToken().Type != TokenEOF {
		head, err := p.parseAtom()
		if err != nil {
			return nil, err
		}

		tok := p.lexer.NextToken()
		switch tok.Type {
		case TokenDot:
			prog.Facts = append(prog.Facts, head)

		case TokenImplies:
			body, err := p.parseBody()
			if err != nil {
				return nil, err
			}
			prog.Rules = append(prog.Rules, datalog.NewRule(head, body...))

		default:
			return nil, unexpected(tok, "'.' or ':-'")
		}
	}

	return prog, nil
}

// parseBody reads atom ("," atom)* "."
func (p *Parser) parseBody() ([]datalog.Atom, error) {
	var body []datalog.Atom
	for {
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		body = append(body, atom)

		tok := p.lexer.NextToken()
		switch tok.Type {
		case TokenComma:
			continue
		case TokenDot:
			return body, nil
		default:
			return nil, unexpected(tok, "',' or '.'")
		}
	}
}

// parseAtom reads name "(" [term ("," term)*] ")"
func (p *Parser) parseAtom() (datalog.Atom, error) {
	name := p.lexer.NextToken()
	if name.Type != TokenConstant {
		return datalog.Atom{}, unexpected(name, "predicate name")
	}

	if tok := p.lexer.NextToken(); tok.Type != TokenLeftParen {
		return datalog.Atom{}, unexpected(tok, "'('")
	}

	var terms []datalog.Term
	if p.lexer.PeekToken().Type == TokenRightParen {
		p.lexer.NextToken()
		return datalog.NewAtom(datalog.InternSymbol(name.Value), terms...), nil
	}

	for {
		term, err := p.parseTerm()
		if err != nil {
			return datalog.Atom{}, err
		}
		terms = append(terms, term)

		tok := p.lexer.NextToken()
		switch tok.Type {
		case TokenComma:
			continue
		case TokenRightParen:
			return datalog.NewAtom(datalog.InternSymbol(name.Value), terms...), nil
		default:
			return datalog.Atom{}, unexpected(tok, "',' or ')'")
		}
	}
}

// parseTerm reads a single constant or variable
func (p *Parser) parseTerm() (datalog.Term, error) {
	tok := p.lexer.NextToken()
	switch tok.Type {
	case TokenConstant:
		return datalog.NewConstant(datalog.InternSymbol(tok.Value)), nil
	case TokenVariable:
		return datalog.NewVariable(tok.Value), nil
	default:
		return datalog.Term{}, unexpected(tok, "term")
	}
}

func unexpected(tok Token, want string) *ParseError {
	return &ParseError{
		Line: tok.Line,
		Col:  tok.Col,
		Msg:  fmt.Sprintf("expected %s, got %s", want, tok.describe()),
	}
}

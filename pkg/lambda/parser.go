package lambda

import (
	"strconv"
	"unicode"

	"github.com/vic/skjnet/pkg/term"
)

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenNumber
	TokenColon
	TokenEqual
	TokenSemicolon
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenPipe
	TokenLet
	TokenIn
	TokenIllegal
)

type Token struct {
	Type    TokenType
	Literal string
	Offset  int
}

// Parser reads the lambda notation:
//
//	x: body          nominal abstraction (FUN)
//	f x y            application
//	a | b            join
//	{x}              quote
//	let x = v; in b  LET
//
// Atom names such as K or TOP denote atoms, digits denote de Bruijn indices
// and every other identifier is a variable.
type Parser struct {
	input   string
	pos     int
	current Token
}

func NewParser(input string) *Parser {
	p := &Parser{input: input}
	p.next()
	return p
}

func (p *Parser) next() {
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		p.current = Token{Type: TokenEOF, Offset: p.pos}
		return
	}

	start := p.pos
	ch := p.input[p.pos]
	switch {
	case isLetter(ch):
		for p.pos < len(p.input) && (isLetter(p.input[p.pos]) || isDigit(p.input[p.pos])) {
			p.pos++
		}
		lit := p.input[start:p.pos]
		switch lit {
		case "let":
			p.current = Token{Type: TokenLet, Literal: lit, Offset: start}
		case "in":
			p.current = Token{Type: TokenIn, Literal: lit, Offset: start}
		default:
			p.current = Token{Type: TokenIdent, Literal: lit, Offset: start}
		}
		return
	case isDigit(ch):
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
		p.current = Token{Type: TokenNumber, Literal: p.input[start:p.pos], Offset: start}
		return
	}
	p.pos++
	typ := TokenIllegal
	switch ch {
	case ':':
		typ = TokenColon
	case '=':
		typ = TokenEqual
	case ';':
		typ = TokenSemicolon
	case '(':
		typ = TokenLParen
	case ')':
		typ = TokenRParen
	case '{':
		typ = TokenLBrace
	case '}':
		typ = TokenRBrace
	case '|':
		typ = TokenPipe
	}
	p.current = Token{Type: typ, Literal: string(ch), Offset: start}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return newParseError(SyntaxLambda, p.current.Offset, format, args...)
}

// Parse parses a whole input.
func (p *Parser) Parse() (*term.Term, error) {
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected %q", p.current.Literal)
	}
	return t, nil
}

// Term ::= Let | Ident ':' Term | Join
func (p *Parser) parseTerm() (*term.Term, error) {
	if p.current.Type == TokenLet {
		return p.parseLet()
	}
	if fun, ok, err := p.tryParseFun(); ok || err != nil {
		return fun, err
	}
	return p.parseJoin()
}

// tryParseFun parses `x: body` if the input continues that way, otherwise it
// leaves the parser untouched.
func (p *Parser) tryParseFun() (*term.Term, bool, error) {
	if p.current.Type != TokenIdent {
		return nil, false, nil
	}
	savePos := p.pos
	saveTok := p.current
	p.next()
	if p.current.Type != TokenColon {
		p.pos = savePos
		p.current = saveTok
		return nil, false, nil
	}
	if term.IsAtomName(saveTok.Literal) {
		p.current = saveTok
		return nil, true, p.errorf("cannot bind atom %s", saveTok.Literal)
	}
	p.next()
	body, err := p.parseTerm()
	if err != nil {
		return nil, true, err
	}
	return term.Fun(term.NVar(saveTok.Literal), body), true, nil
}

// Join ::= App ('|' App)*
func (p *Parser) parseJoin() (*term.Term, error) {
	left, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenPipe {
		p.next()
		right, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		left = term.Join(left, right)
	}
	return left, nil
}

func (p *Parser) parseApp() (*term.Term, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current.Type {
		case TokenEOF, TokenRParen, TokenRBrace, TokenSemicolon, TokenIn, TokenPipe:
			return left, nil
		}
		// `f x: b` is `f (x: b)`: the abstraction extends to the right.
		fun, ok, err := p.tryParseFun()
		if err != nil {
			return nil, err
		}
		if ok {
			return term.App(left, fun), nil
		}
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = term.App(left, right)
	}
}

func (p *Parser) parseAtom() (*term.Term, error) {
	switch p.current.Type {
	case TokenIdent:
		name := p.current.Literal
		p.next()
		if term.IsAtomName(name) {
			return term.Atom(name), nil
		}
		return term.NVar(name), nil
	case TokenNumber:
		rank, err := strconv.ParseUint(p.current.Literal, 10, 32)
		if err != nil {
			return nil, p.errorf("index out of range: %s", p.current.Literal)
		}
		p.next()
		return term.IVar(uint32(rank)), nil
	case TokenLParen, TokenLBrace:
		closer := TokenRParen
		if p.current.Type == TokenLBrace {
			closer = TokenRBrace
		}
		p.next()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if p.current.Type != closer {
			if closer == TokenRParen {
				return nil, p.errorf("expected ')'")
			}
			return nil, p.errorf("expected '}'")
		}
		p.next()
		if closer == TokenRBrace {
			return term.Quote(t), nil
		}
		return t, nil
	case TokenEOF:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected token %q", p.current.Literal)
	}
}

func (p *Parser) parseLet() (*term.Term, error) {
	p.next() // consume 'let'

	type binding struct {
		name string
		val  *term.Term
	}
	var bindings []binding

	for {
		if p.current.Type != TokenIdent || term.IsAtomName(p.current.Literal) {
			return nil, p.errorf("expected identifier in let binding")
		}
		name := p.current.Literal
		p.next()

		if p.current.Type != TokenEqual {
			return nil, p.errorf("expected '='")
		}
		p.next()

		val, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, binding{name, val})

		if p.current.Type == TokenSemicolon {
			p.next()
			if p.current.Type == TokenIn {
				p.next()
				break
			}
			continue
		}
		if p.current.Type == TokenIn {
			p.next()
			break
		}
		return nil, p.errorf("expected ';' or 'in'")
	}

	body, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	t := body
	for i := len(bindings) - 1; i >= 0; i-- {
		t = term.Let(term.NVar(bindings[i].name), bindings[i].val, t)
	}
	return t, nil
}

// Parse parses the lambda notation.
func Parse(input string) (*term.Term, error) {
	return NewParser(input).Parse()
}

// ParseSyntax parses input in the given notation.
func ParseSyntax(syntax Syntax, input string) (*term.Term, error) {
	switch syntax {
	case SyntaxPolish:
		return ParsePolish(input)
	case SyntaxSexpr:
		return ParseSexpr(input)
	case SyntaxLambda:
		return Parse(input)
	}
	return nil, newParseError(syntax, 0, "unknown syntax %q", string(syntax))
}

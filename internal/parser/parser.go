// Package parser implements a recursive-descent parser over the token
// stream produced by internal/lexer, building the internal/ast tree.
//
// Per spec.md §4.2, statement parsing needs only single-token lookahead;
// expression parsing uses one token of lookahead plus a left fold over
// binary operators sharing a single precedence level — there is no
// precedence-climbing table here, by design.
package parser

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/tinybc/internal/ast"
	"github.com/cwbudde/tinybc/internal/lexer"
	"github.com/cwbudde/tinybc/pkg/token"
)

// ParseError is one diagnostic raised while parsing. The first one raised
// aborts the whole program: ParseProgram returns nil and no partial AST is
// surfaced (spec.md §4.2/§7.2).
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// binaryOperators is the closed set of token types that are binary
// operators, all folding at the single precedence level spec.md §3/§4.2
// mandates.
var binaryOperators = map[token.Type]bool{
	token.PLUS: true, token.MINUS: true, token.STAR: true, token.SLASH: true, token.PERCENT: true,
	token.EQ: true, token.NOT_EQ: true, token.LT: true, token.LT_EQ: true, token.GT: true, token.GT_EQ: true,
	token.AND_AND: true, token.OR_OR: true, token.SHL: true, token.SHR: true,
}

// Parser consumes a token stream and produces an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors   []ParseError
	lexError error // set if the lexer ever reports a fatal lexical error
}

// New creates a Parser over l. It primes the first two tokens immediately
// so ParseProgram can assume cur/peek are always valid.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	p.advance()
	return p
}

// Errors returns the syntax diagnostics accumulated during parsing.
func (p *Parser) Errors() []ParseError { return p.errors }

// LexError returns the fatal lexical error encountered while scanning, if
// any. A non-nil LexError means the token stream stopped short of EOF.
func (p *Parser) LexError() error { return p.lexError }

func (p *Parser) advance() {
	p.cur = p.peek
	tok, err := p.l.Next()
	if err != nil {
		if p.lexError == nil {
			p.lexError = err
		}
		tok = token.New(token.EOF, "", p.cur.Pos)
	}
	p.peek = tok
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(tt token.Type) (token.Token, bool) {
	if p.cur.Type != tt {
		p.errorf(p.cur.Pos, "expected %s, found %s %q", tt, p.cur.Type, p.cur.Literal)
		return token.Token{}, false
	}
	tok := p.cur
	p.advance()
	return tok, true
}

// ParseProgram parses the whole token stream into an *ast.Program. Per
// spec.md §4.2, a top-level `ident ;` is a global declaration; anything
// else at top level is a function definition. A malformed function
// abandons the whole program, not just that function: ParseProgram returns
// nil the moment parseFunction fails, mirroring parse_prog()'s immediate
// `return {};` on the first parse_f() failure (spec.md: parsing stops and
// no partial AST is surfaced). If the lexer ever hits a fatal error,
// parsing likewise stops and nil is returned (the caller is expected to
// check LexError and abort).
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for p.cur.Type != token.EOF {
		if p.lexError != nil {
			return nil
		}

		switch {
		case p.cur.Type == token.IDENT && p.peek.Type == token.SEMICOLON:
			program.Globals = append(program.Globals, p.cur.Literal)
			p.advance() // consume ident
			p.advance() // consume ';'

		case p.cur.Type == token.IDENT:
			fn := p.parseFunction()
			if fn == nil {
				return nil
			}
			program.Functions = append(program.Functions, fn)

		default:
			p.errorf(p.cur.Pos, "unexpected token %s %q at top level", p.cur.Type, p.cur.Literal)
			return nil
		}
	}

	if p.lexError != nil {
		return nil
	}
	return program
}

// parseFunction parses `name ( ) { stmts }`. On any structural error the
// function's parse is abandoned: parseFunction returns nil, which
// ParseProgram treats as abandoning the whole program, not just this
// function.
func (p *Parser) parseFunction() *ast.Function {
	nameTok := p.cur
	fn := &ast.Function{Token: nameTok, Name: nameTok.Literal}
	p.advance()

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		return nil
	}

	for p.cur.Type != token.RBRACE {
		if p.cur.Type == token.EOF || p.lexError != nil {
			p.errorf(p.cur.Pos, "unexpected end of input in function %q", fn.Name)
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		fn.Body = append(fn.Body, stmt)
	}
	p.advance() // consume '}'

	return fn
}

// parseStatement dispatches on the current token, per spec.md §4.2.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.AUTO:
		return p.parseAutoStmt()
	case token.EXTERN:
		return p.parseExternStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.LBRACE:
		return p.parseBlockStmt()
	case token.IDENT:
		return p.parseIdentStmt()
	default:
		p.errorf(p.cur.Pos, "unexpected token %s %q at start of statement", p.cur.Type, p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseNameList() ([]string, token.Position, bool) {
	startPos := p.cur.Pos
	var names []string

	tok, ok := p.expect(token.IDENT)
	if !ok {
		return nil, startPos, false
	}
	names = append(names, tok.Literal)

	for p.cur.Type == token.COMMA {
		p.advance()
		tok, ok := p.expect(token.IDENT)
		if !ok {
			return nil, startPos, false
		}
		names = append(names, tok.Literal)
	}

	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil, startPos, false
	}
	return names, startPos, true
}

func (p *Parser) parseAutoStmt() ast.Statement {
	tok := p.cur
	p.advance()
	names, _, ok := p.parseNameList()
	if !ok {
		return nil
	}
	return &ast.AutoStmt{Token: tok, Names: names}
}

func (p *Parser) parseExternStmt() ast.Statement {
	tok := p.cur
	p.advance()
	names, _, ok := p.parseNameList()
	if !ok {
		return nil
	}
	return &ast.ExternStmt{Token: tok, Names: names}
}

// parseIdentStmt handles the two shapes an identifier-led statement can
// take: `ident = expr ;` (assignment) or `ident ( [expr] ) ;` (call).
func (p *Parser) parseIdentStmt() ast.Statement {
	nameTok := p.cur
	p.advance()

	switch p.cur.Type {
	case token.ASSIGN:
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.AssignStmt{Token: nameTok, Name: nameTok.Literal, Expr: expr}

	case token.LPAREN:
		p.advance()
		var arg ast.Expression
		if p.cur.Type != token.RPAREN {
			arg = p.parseExpr()
			if arg == nil {
				return nil
			}
		}
		if _, ok := p.expect(token.RPAREN); !ok {
			return nil
		}
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.FuncCallStmt{Token: nameTok, Name: nameTok.Literal, Arg: arg}

	default:
		p.errorf(p.cur.Pos, "expected '=' or '(' after identifier %q, found %s %q",
			nameTok.Literal, p.cur.Type, p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseIfStmt() ast.Statement {
	tok := p.cur
	p.advance()

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}
	then := p.parseStatement()
	if then == nil {
		return nil
	}

	stmt := &ast.IfStmt{Token: tok, Cond: cond, Then: then}
	if p.cur.Type == token.ELSE {
		p.advance()
		elseStmt := p.parseStatement()
		if elseStmt == nil {
			return nil
		}
		stmt.Else = elseStmt
	}
	return stmt
}

func (p *Parser) parseWhileStmt() ast.Statement {
	tok := p.cur
	p.advance()

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{Token: tok, Cond: cond, Body: body}
}

func (p *Parser) parseReturnStmt() ast.Statement {
	tok := p.cur
	p.advance()

	stmt := &ast.ReturnStmt{Token: tok}
	if p.cur.Type != token.SEMICOLON {
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		stmt.Expr = expr
	}
	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}
	return stmt
}

func (p *Parser) parseBlockStmt() ast.Statement {
	tok := p.cur
	p.advance()

	block := &ast.BlockStmt{Token: tok}
	for p.cur.Type != token.RBRACE {
		if p.cur.Type == token.EOF || p.lexError != nil {
			p.errorf(p.cur.Pos, "unexpected end of input in block")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.advance() // consume '}'
	return block
}

// parsePrimary accepts an integer literal or identifier (spec.md §4.2).
func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case token.INT:
		tok := p.cur
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid integer literal %q", tok.Literal)
			return nil
		}
		p.advance()
		return &ast.IntegerLiteral{Token: tok, Value: value}

	case token.IDENT:
		tok := p.cur
		p.advance()
		return &ast.Identifier{Token: tok, Name: tok.Literal}

	default:
		p.errorf(p.cur.Pos, "expected expression, found %s %q", p.cur.Type, p.cur.Literal)
		return nil
	}
}

// parseExpr repeatedly consumes a binary operator and a following primary,
// building a left-leaning tree. Every binary operator shares one
// precedence level and is left-associative — this is spec.md §4.2's
// documented simplification, not an oversight.
func (p *Parser) parseExpr() ast.Expression {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}

	for binaryOperators[p.cur.Type] {
		opTok := p.cur
		p.advance()
		right := p.parsePrimary()
		if right == nil {
			return nil
		}
		left = &ast.BinOp{Token: opTok, Op: opTok.Type, Left: left, Right: right}
	}

	return left
}

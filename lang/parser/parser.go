// Package parser implements the recursive-descent parser that turns a
// lang/scanner token stream into a lang/ast tree.
package parser

import (
	"fmt"

	"github.com/pellmell/wbc/lang/ast"
	"github.com/pellmell/wbc/lang/scanner"
	"github.com/pellmell/wbc/lang/token"
)

// Error is returned by Parse on the first unexpected token. Parsing never
// recovers past the first error (spec.md §7: "first error aborts").
type Error struct {
	Lexeme   string
	Pos      token.Pos
	Expected string // empty when there was no single expected token
}

func (e *Error) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("expected %s on %s, instead got %s", e.Expected, e.Pos, e.Lexeme)
	}
	return fmt.Sprintf("unexpected symbol -> %s on %s", e.Lexeme, e.Pos)
}

// Parser parses procedures, statements and expressions one token of
// lookahead at a time. The zero value is ready to use.
type Parser struct {
	scan *scanner.Scanner

	tok  token.Token
	last token.Token // token most recently consumed by accept
}

// New returns a ready-to-use Parser.
func New() *Parser {
	return &Parser{}
}

// Parse tokenizes and parses source, returning the PROGRAM root node. The
// Parser may be reused for a later call to Parse.
func (p *Parser) Parse(source string) (root *ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = pe
		}
	}()

	if p.scan == nil {
		p.scan = scanner.New(source)
	} else {
		p.scan.Reset(source)
	}
	p.advance()
	root = p.parseProgram()
	return root, nil
}

func (p *Parser) advance() {
	p.tok = p.scan.Next()
	for p.tok.Kind == token.COMMENT {
		p.tok = p.scan.Next()
	}
}

// accept consumes and returns true if the current token's kind is one of
// kinds, recording it in p.last; otherwise it leaves the token stream alone.
func (p *Parser) accept(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			p.last = p.tok
			p.advance()
			return true
		}
	}
	return false
}

// expect accepts kind or panics with an *Error describing what was expected.
func (p *Parser) expect(kind token.Kind) string {
	if !p.accept(kind) {
		panic(&Error{Lexeme: p.display(), Pos: p.tok.Pos, Expected: kind.GoString()})
	}
	return p.last.Lexeme
}

func (p *Parser) errorUnexpected() {
	panic(&Error{Lexeme: p.display(), Pos: p.tok.Pos})
}

func (p *Parser) display() string {
	switch {
	case p.tok.Kind == token.EOF:
		return "EOF"
	case p.tok.Lexeme != "":
		return p.tok.Lexeme
	default:
		return p.tok.Kind.GoString()
	}
}

func (p *Parser) parseProgram() *ast.Node {
	root := ast.New(ast.PROGRAM, token.NoPos, "")
	for p.tok.Kind != token.EOF {
		root.Add(p.parseProcedure())
	}
	return root
}

func (p *Parser) parseProcedure() *ast.Node {
	pos := p.tok.Pos
	name := p.expect(token.IDENTIFIER)
	node := ast.New(ast.PROCEDURE, pos, name)
	if p.tok.Kind != token.LBRACE {
		p.expect(token.LBRACE)
	}
	node.Add(p.blockBody()...)
	return node
}

// blockBody parses one statement and flattens it to a slice: a `{ ... }`
// block yields its inner statements directly, anything else yields a
// single-element slice. This mirrors the dual-return shape of the original
// implementation's statement(), which sometimes returns a Node and
// sometimes a list of Nodes depending on whether it parsed a brace block.
func (p *Parser) blockBody() []*ast.Node {
	single, list := p.parseStatement()
	if list != nil {
		return list
	}
	return []*ast.Node{single}
}

func (p *Parser) parseStatement() (single *ast.Node, list []*ast.Node) {
	switch {
	case p.accept(token.LBRACE):
		var stmts []*ast.Node
		for p.tok.Kind != token.RBRACE {
			n, l := p.parseStatement()
			if l != nil {
				stmts = append(stmts, l...)
			} else {
				stmts = append(stmts, n)
			}
		}
		p.expect(token.RBRACE)
		return nil, stmts

	case p.accept(token.VAR):
		name, pos := p.last.Lexeme, p.last.Pos
		p.expect(token.ASSIGN)
		assignPos := p.last.Pos
		expr := p.logicalExpr()
		node := ast.New(ast.OPERATOR, assignPos, "=", ast.New(ast.VAR, pos, name), expr)
		p.expect(token.SEMICOLON)
		return node, nil

	case p.accept(token.IDENTIFIER):
		proc, pos := p.last.Lexeme, p.last.Pos
		var args []*ast.Node
		if p.accept(token.LPAREN) {
			if !p.accept(token.RPAREN) {
				args = append(args, p.logicalExpr())
				for p.accept(token.COMMA) {
					args = append(args, p.logicalExpr())
				}
				p.expect(token.RPAREN)
			}
		}
		node := ast.New(ast.CALL, pos, proc, args...)
		p.expect(token.SEMICOLON)
		return node, nil

	case p.accept(token.IF):
		return p.parseIf(), nil

	case p.accept(token.WHILE):
		pos := p.last.Pos
		p.expect(token.LPAREN)
		cond := p.logicalExpr()
		p.expect(token.RPAREN)
		body := ast.New(ast.BLOCK, pos, "", p.blockBody()...)
		return ast.New(ast.WHILE, pos, "", cond, body), nil

	case p.accept(token.RETURN):
		node := ast.New(ast.RETURN, p.last.Pos, "")
		p.expect(token.SEMICOLON)
		return node, nil

	default:
		p.errorUnexpected()
		panic("unreachable")
	}
}

// parseIf implements the if/else-if/else chain, attaching each else-if as an
// additional child IF node of the top-level IF and a bare else as a trailing
// BLOCK child — flattening the chain instead of nesting it, as spec.md §4.3
// requires.
func (p *Parser) parseIf() *ast.Node {
	pos := p.last.Pos
	p.expect(token.LPAREN)
	cond := p.logicalExpr()
	p.expect(token.RPAREN)
	body := ast.New(ast.BLOCK, pos, "", p.blockBody()...)
	node := ast.New(ast.IF, pos, "", cond, body)

	for p.accept(token.ELSE) {
		if p.accept(token.IF) {
			elifPos := p.last.Pos
			p.expect(token.LPAREN)
			elifCond := p.logicalExpr()
			p.expect(token.RPAREN)
			elifBody := ast.New(ast.BLOCK, elifPos, "", p.blockBody()...)
			node.Add(ast.New(ast.IF, elifPos, "", elifCond, elifBody))
			pos = elifPos
			continue
		}
		node.Add(ast.New(ast.BLOCK, pos, "", p.blockBody()...))
		break
	}
	return node
}

// logicalExpr implements &, | and ^ at a single, left-associative precedence
// level (DESIGN.md Open Question 2): no re-association is attempted.
func (p *Parser) logicalExpr() *ast.Node {
	node := p.comparativeExpr()
	for {
		switch {
		case p.accept(token.AND, token.OR, token.XOR):
			node = ast.New(ast.OPERATOR, p.last.Pos, p.last.Lexeme, node, p.comparativeExpr())
		default:
			return node
		}
	}
}

// comparativeExpr accepts at most one comparison: comparisons do not chain.
func (p *Parser) comparativeExpr() *ast.Node {
	node := p.arithmeticExpr()
	if p.accept(token.EQUAL, token.NOT_EQUAL, token.GT, token.GT_EQUAL, token.LT, token.LT_EQUAL) {
		node = ast.New(ast.OPERATOR, p.last.Pos, p.last.Lexeme, node, p.arithmeticExpr())
	}
	return node
}

func (p *Parser) arithmeticExpr() *ast.Node {
	var node *ast.Node
	switch {
	case p.accept(token.PLUS):
		// a leading + is absorbed: it contributes no node of its own.
		node = p.term()
	case p.accept(token.MINUS):
		pos := p.last.Pos
		node = ast.New(ast.OPERATOR, pos, "~", p.term())
	case p.accept(token.NOT):
		pos := p.last.Pos
		node = ast.New(ast.OPERATOR, pos, "!", p.term())
	default:
		node = p.term()
	}
	for p.accept(token.PLUS, token.MINUS) {
		node = ast.New(ast.OPERATOR, p.last.Pos, p.last.Lexeme, node, p.term())
	}
	return node
}

func (p *Parser) term() *ast.Node {
	node := p.factor()
	for p.accept(token.MULTIPLY, token.DIVIDE, token.MODULO) {
		node = ast.New(ast.OPERATOR, p.last.Pos, p.last.Lexeme, node, p.factor())
	}
	return node
}

func (p *Parser) factor() *ast.Node {
	switch {
	case p.accept(token.VAR):
		return ast.New(ast.VAR, p.last.Pos, p.last.Lexeme)

	case p.accept(token.IDENTIFIER):
		name, pos := p.last.Lexeme, p.last.Pos
		node := ast.New(ast.CALL, pos, name)
		if p.accept(token.LPAREN) {
			if !p.accept(token.RPAREN) {
				node.Add(p.logicalExpr())
				for p.accept(token.COMMA) {
					node.Add(p.logicalExpr())
				}
				p.expect(token.RPAREN)
			}
		}
		return node

	case p.accept(token.INTEGER):
		return ast.New(ast.INTEGER, p.last.Pos, p.last.Lexeme)

	case p.accept(token.LPAREN):
		node := p.logicalExpr()
		p.expect(token.RPAREN)
		return node

	default:
		p.errorUnexpected()
		panic("unreachable")
	}
}

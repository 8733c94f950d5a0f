// Package parser turns a token stream into an ast.Program by
// recursive-descent, precedence-climbing parsing. It is an external
// collaborator to the compiler core: the core only needs a
// valid *ast.Program to lower, and this package is one way to produce
// one from source text.
package parser

import (
	"fmt"
	"strconv"

	"tlcc/internal/ast"
	"tlcc/internal/token"
	"tlcc/internal/types"
)

var precedence = map[token.Type]int{
	token.OrOr:   1,
	token.AndAnd: 2,
	token.Eq:     3,
	token.Ne:     3,
	token.Lt:     3,
	token.Le:     3,
	token.Gt:     3,
	token.Ge:     3,
	token.Plus:   4,
	token.Minus:  4,
	token.Star:   5,
	token.Slash:  5,
	token.Percent: 5,
}

var binaryOps = map[token.Type]ast.BinaryOp{
	token.Plus: ast.OpAdd, token.Minus: ast.OpSub, token.Star: ast.OpMul,
	token.Slash: ast.OpDiv, token.Percent: ast.OpMod,
	token.Eq: ast.OpEq, token.Ne: ast.OpNe, token.Lt: ast.OpLt, token.Le: ast.OpLe,
	token.Gt: ast.OpGt, token.Ge: ast.OpGe, token.AndAnd: ast.OpAnd, token.OrOr: ast.OpOr,
}

var typeKeywords = map[token.Type]types.DataType{
	token.IntType: types.Int, token.BoolType: types.Bool, token.VoidType: types.Void,
	token.FloatType: types.Float, token.DoubleType: types.Double, token.StringType: types.String,
}

// Parser consumes a flat token stream and builds an ast.Program.
// Parse errors are collected on Errors rather than panicked, so a
// caller sees every mistake in one pass instead of only the first.
type Parser struct {
	tokens  []token.Token
	current int
	Errors  []error
}

// New builds a parser over tokens, as produced by lexer.Scanner.ScanTokens.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseProgram parses a whole translation unit: a sequence of function
// definitions and extern declarations.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.isAtEnd() {
		switch {
		case p.match(token.Include):
			p.includeDirective()
		case p.match(token.Extern):
			if ext := p.externDecl(); ext != nil {
				prog.Externs = append(prog.Externs, ext)
			}
		case p.match(token.Func):
			if fn := p.function(); fn != nil {
				prog.Functions = append(prog.Functions, fn)
			}
		default:
			p.errf("expected 'func' or 'extern' at top level, got %q", p.peek().Lexeme)
			p.advance()
		}
	}
	return prog
}

func (p *Parser) includeDirective() ast.Stmt {
	pos := p.pos()
	nameTok := p.consume(token.String, "expect a string path after 'include'")
	p.consume(token.Semi, "expect ';' after include path")
	return &ast.Include{Position: pos, Path: nameTok.Lexeme}
}

func (p *Parser) externDecl() *ast.ExternFunc {
	nameTok := p.consume(token.Ident, "expect extern function name")
	p.consume(token.LParen, "expect '(' after extern function name")
	var paramTypes []types.DataType
	if !p.check(token.RParen) {
		paramTypes = append(paramTypes, p.typeName())
		for p.match(token.Comma) {
			paramTypes = append(paramTypes, p.typeName())
		}
	}
	p.consume(token.RParen, "expect ')' after extern parameter types")
	p.consume(token.Arrow, "expect '->' before extern return type")
	ret := p.typeName()
	p.consume(token.Semi, "expect ';' after extern declaration")
	return &ast.ExternFunc{Name: nameTok.Lexeme, ReturnType: ret, ParamTypes: paramTypes}
}

func (p *Parser) typeName() types.DataType {
	tok := p.advance()
	if dt, ok := typeKeywords[tok.Type]; ok {
		return dt
	}
	p.errf("expected a type name, got %q", tok.Lexeme)
	return types.Void
}

func (p *Parser) function() *ast.Function {
	nameTok := p.consume(token.Ident, "expect function name")
	p.consume(token.LParen, "expect '(' after function name")

	var params []ast.Parameter
	if !p.check(token.RParen) {
		params = append(params, p.parameter())
		for p.match(token.Comma) {
			params = append(params, p.parameter())
		}
	}
	p.consume(token.RParen, "expect ')' after parameters")
	p.consume(token.Arrow, "expect '->' before return type")
	ret := p.typeName()

	body := p.block()
	return &ast.Function{Name: nameTok.Lexeme, ReturnType: ret, Params: params, Body: body}
}

func (p *Parser) parameter() ast.Parameter {
	nameTok := p.consume(token.Ident, "expect parameter name")
	p.consume(token.Colon, "expect ':' after parameter name")
	dt := p.typeName()
	size := types.DynamicSize
	if p.match(token.LBracket) {
		sizeTok := p.consume(token.Int, "expect array size")
		size = atoiOrZero(sizeTok.Lexeme)
		p.consume(token.RBracket, "expect ']' after array size")
	}
	return ast.Parameter{Name: nameTok.Lexeme, Type: dt, ArraySize: size}
}

func (p *Parser) block() *ast.Block {
	pos := p.pos()
	p.consume(token.LBrace, "expect '{' to start a block")
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	p.consume(token.RBrace, "expect '}' to close a block")
	return &ast.Block{Position: pos, Statements: stmts}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.Let):
		return p.varOrArrayDecl()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.check(token.Break):
		pos := p.pos()
		p.advance()
		p.consume(token.Semi, "expect ';' after 'break'")
		return &ast.Break{Position: pos}
	case p.check(token.Continue):
		pos := p.pos()
		p.advance()
		p.consume(token.Semi, "expect ';' after 'continue'")
		return &ast.Continue{Position: pos}
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.check(token.LBrace):
		return p.block()
	case p.check(token.Include):
		p.advance()
		return p.includeDirective()
	default:
		return p.exprOrAssignStmt()
	}
}

func (p *Parser) varOrArrayDecl() ast.Stmt {
	pos := p.pos()
	nameTok := p.consume(token.Ident, "expect a variable name after 'let'")
	p.consume(token.Colon, "expect ':' after variable name")
	dt := p.typeName()

	if p.match(token.LBracket) {
		size := types.DynamicSize
		if p.check(token.Int) {
			size = atoiOrZero(p.advance().Lexeme)
		}
		p.consume(token.RBracket, "expect ']' after array size")
		var init ast.Expr
		if p.match(token.Assign) {
			init = p.expression()
		}
		p.consume(token.Semi, "expect ';' after array declaration")
		return &ast.ArrayDecl{Position: pos, Name: nameTok.Lexeme, ElementType: dt, Size: size, Initializer: init}
	}

	var init ast.Expr
	if p.match(token.Assign) {
		init = p.expression()
	}
	p.consume(token.Semi, "expect ';' after variable declaration")
	return &ast.VarDecl{Position: pos, Name: nameTok.Lexeme, Type: dt, Initializer: init}
}

func (p *Parser) ifStmt() ast.Stmt {
	pos := p.pos()
	p.consume(token.LParen, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(token.RParen, "expect ')' after if condition")
	then := p.block()

	var elseBranch ast.Stmt
	if p.match(token.Else) {
		if p.check(token.If) {
			p.advance()
			elseBranch = p.ifStmt()
		} else {
			elseBranch = p.block()
		}
	}
	return &ast.If{Position: pos, Condition: cond, Then: then, ElseBranch: elseBranch}
}

func (p *Parser) whileStmt() ast.Stmt {
	pos := p.pos()
	p.consume(token.LParen, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RParen, "expect ')' after while condition")
	body := p.block()
	return &ast.While{Position: pos, Condition: cond, Body: body}
}

func (p *Parser) returnStmt() ast.Stmt {
	pos := p.pos()
	var value ast.Expr
	if !p.check(token.Semi) {
		value = p.expression()
	}
	p.consume(token.Semi, "expect ';' after return statement")
	return &ast.Return{Position: pos, Value: value}
}

func (p *Parser) printStmt() ast.Stmt {
	pos := p.pos()
	p.consume(token.LParen, "expect '(' after 'print'")
	var values []ast.Expr
	if !p.check(token.RParen) {
		values = append(values, p.expression())
		for p.match(token.Comma) {
			values = append(values, p.expression())
		}
	}
	p.consume(token.RParen, "expect ')' after print arguments")
	p.consume(token.Semi, "expect ';' after print statement")
	return &ast.Print{Position: pos, Values: values}
}

// exprOrAssignStmt disambiguates `name = expr;`, `name[idx] = expr;`,
// and a bare expression statement by speculatively parsing an
// expression and checking what follows it.
func (p *Parser) exprOrAssignStmt() ast.Stmt {
	pos := p.pos()
	expr := p.expression()

	if p.match(token.Assign) {
		value := p.expression()
		p.consume(token.Semi, "expect ';' after assignment")
		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assignment{Position: pos, Name: target.Name, Value: value}
		case *ast.ArrayIndex:
			return &ast.ArrayAssignment{Position: pos, Array: target.Array, Index: target.Index, Value: value}
		default:
			p.errf("invalid assignment target")
			return &ast.ExprStmt{Position: pos, Expression: expr}
		}
	}

	p.consume(token.Semi, "expect ';' after expression statement")
	return &ast.ExprStmt{Position: pos, Expression: expr}
}

// --- expressions ---

func (p *Parser) expression() ast.Expr {
	return p.binary(0)
}

func (p *Parser) binary(minPrec int) ast.Expr {
	left := p.unary()
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right := p.binary(prec + 1)
		op, ok := binaryOps[tok.Type]
		if !ok {
			p.errf("unknown binary operator %q", tok.Lexeme)
			continue
		}
		left = &ast.Binary{Position: left.Pos(), Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	pos := p.pos()
	if p.match(token.Bang) {
		return &ast.Unary{Position: pos, Operator: ast.OpNot, Operand: p.unary()}
	}
	if p.match(token.Minus) {
		return &ast.Unary{Position: pos, Operator: ast.OpNeg, Operand: p.unary()}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		pos := p.pos()
		switch {
		case p.match(token.LBracket):
			index := p.expression()
			p.consume(token.RBracket, "expect ']' after index")
			if v, ok := expr.(*ast.Variable); ok {
				expr = &ast.ArrayIndex{Position: pos, Array: v, Index: index}
			} else {
				expr = &ast.StringIndex{Position: pos, Str: expr, Index: index}
			}
		default:
			return expr
		}
	}
}

func (p *Parser) primary() ast.Expr {
	pos := p.pos()
	tok := p.advance()
	switch tok.Type {
	case token.Int:
		return &ast.Literal{Position: pos, Value: int64(atoiOrZero(tok.Lexeme))}
	case token.Float:
		return &ast.FloatLiteral{Position: pos, Value: atofOrZero(tok.Lexeme)}
	case token.String:
		return &ast.StringLiteral{Position: pos, Value: tok.Lexeme}
	case token.True:
		return &ast.Literal{Position: pos, Value: 1, IsBool: true}
	case token.False:
		return &ast.Literal{Position: pos, Value: 0, IsBool: true}
	case token.Null:
		return &ast.NullLiteral{Position: pos}
	case token.Ident:
		if p.check(token.LParen) {
			return p.call(tok.Lexeme, pos)
		}
		return &ast.Variable{Position: pos, Name: tok.Lexeme}
	case token.LParen:
		inner := p.expression()
		p.consume(token.RParen, "expect ')' after expression")
		return &ast.Group{Position: pos, Inner: inner}
	default:
		p.errf("unexpected token %q in expression", tok.Lexeme)
		return &ast.NullLiteral{Position: pos}
	}
}

func (p *Parser) call(name string, pos ast.Position) ast.Expr {
	p.consume(token.LParen, "expect '(' after function name")
	var args []ast.Expr
	if !p.check(token.RParen) {
		args = append(args, p.expression())
		for p.match(token.Comma) {
			args = append(args, p.expression())
		}
	}
	p.consume(token.RParen, "expect ')' after arguments")
	return &ast.Call{Position: pos, Name: name, Args: args}
}

// --- token-stream utilities ---

func (p *Parser) pos() ast.Position {
	tok := p.peek()
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) consume(t token.Type, msg string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errf("%s (got %q)", msg, p.peek().Lexeme)
	return p.peek()
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) errf(format string, args ...interface{}) {
	tok := p.peek()
	p.Errors = append(p.Errors, fmt.Errorf("%d:%d: "+format, append([]interface{}{tok.Line, tok.Column}, args...)...))
}

// atoiOrZero and atofOrZero tolerate a malformed literal rather than
// erroring, since the lexer already guarantees well-formed numeric
// lexemes (digits, plus one '.' for token.Float); a parse failure here
// would mean a lexer bug,
// not bad input.
func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atofOrZero(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

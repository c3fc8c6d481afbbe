package ast

import (
	"fmt"

	"github.com/solventlang/tsc/internal/diagnostic"
	"github.com/solventlang/tsc/internal/lexer"
	"github.com/solventlang/tsc/internal/position"
	"github.com/solventlang/tsc/internal/token"
)

// Parser is a pure recursive-descent parser with one-token lookahead
// (Peek) and occasional second-token lookahead (peekNth), both satisfied
// by the lexer's own buffering. It never backtracks.
type Parser struct {
	s     *lexer.Stream
	diags diagnostic.Bag
}

// Parse builds a Program from src. Parsing stops at the first syntax
// error: the spec's grammar has no recovery, so a non-nil second return
// value always means the first return value is nil.
func Parse(filename string, src []byte) (*Program, *diagnostic.Bag) {
	p := &Parser{s: lexer.New(filename, src)}

	prog, err := p.parseProgram()
	if err != nil {
		p.diags.Add(err)
	}

	// Surface any lexical errors the scanner recorded while the parser
	// was pulling tokens from it (e.g. an unterminated block comment
	// that was skipped over as blank).
	p.diags.Extend(p.s.Diagnostics())

	if p.diags.HasErrors() {
		return nil, &p.diags
	}

	return prog, nil
}

// parseError is used internally to unwind out of arbitrarily nested
// recursive-descent calls back to Parse, mirroring the "stop at the
// first syntax error" contract without threading an error return through
// every grammar production.
type parseError struct{ diag *diagnostic.Diagnostic }

func (e parseError) Error() string { return e.diag.Error() }

func (p *Parser) fail(pos position.Position, format string, args ...any) {
	panic(parseError{diag: diagnostic.Syntax(pos, format, args...)})
}

func (p *Parser) parseProgram() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}

			err = pe
		}
	}()

	start := p.s.Peek().Span.Start

	var stmts []Statement

	for {
		p.skipBlank()

		tok := p.s.Peek()
		if tok.Kind == token.Eof {
			break
		}

		stmts = append(stmts, p.parseStatement())
	}

	eofTok := p.s.Next() // consume Eof
	end := eofTok.Span.End

	return &Program{base: base{span: position.Span{Start: start, End: end}}, Statements: stmts}, nil
}

// ---- token helpers ----

func (p *Parser) skipBlank() {
	for p.s.Peek().Kind.IsBlank() {
		p.s.Next()
	}
}

// next returns the next non-blank token, advancing the stream.
func (p *Parser) next() token.Token {
	p.skipBlank()

	return p.s.Next()
}

// peek returns the next non-blank token without advancing.
func (p *Parser) peek() token.Token {
	p.skipBlank()

	return p.s.Peek()
}

// peekNth returns the nth non-blank token ahead (0 == peek). Blank tokens
// already skipped by skipBlank never count.
func (p *Parser) peekNth(n int) token.Token {
	p.skipBlank()

	idx := 0
	shown := 0

	for {
		tok := p.s.PeekNth(idx)
		if !tok.Kind.IsBlank() {
			if shown == n {
				return tok
			}

			shown++
		}

		idx++
	}
}

func (p *Parser) expect(kinds ...token.Kind) token.Token {
	tok := p.next()

	for _, k := range kinds {
		if tok.Kind == k {
			return tok
		}
	}

	p.fail(tok.Span.Start, "unexpected token %s %q", tok.Kind, tok.Lexeme)

	return tok
}

func (p *Parser) expectSymbol(c rune) token.Token {
	tok := p.next()
	if tok.Kind != token.Symbol || tok.Sym != c {
		p.fail(tok.Span.Start, "expected %q, got %s %q", c, tok.Kind, tok.Lexeme)
	}

	return tok
}

func (p *Parser) expectKeyword(k token.Keyword) token.Token {
	tok := p.next()
	if tok.Kind != token.Keyword || tok.Keyword != k {
		p.fail(tok.Span.Start, "expected keyword %q, got %s %q", k, tok.Kind, tok.Lexeme)
	}

	return tok
}

func (p *Parser) atSymbol(c rune) bool {
	tok := p.peek()
	return tok.Kind == token.Symbol && tok.Sym == c
}

func (p *Parser) atKeyword(k token.Keyword) bool {
	tok := p.peek()
	return tok.Kind == token.Keyword && tok.Keyword == k
}

// atOperator reports whether the upcoming token(s) spell a (possibly
// multi-character) operator made of adjacent Symbol tokens, per the
// tokenizer's deliberate simplification of not lexing them as one token.
func (p *Parser) atOperator(op string) bool {
	for i, want := range op {
		tok := p.peekNth(i)
		if tok.Kind != token.Symbol || tok.Sym != want {
			return false
		}
	}

	return true
}

// consumeOperator consumes len(op) adjacent Symbol tokens and returns
// their combined span.
func (p *Parser) consumeOperator(op string) position.Span {
	var span position.Span

	for range op {
		tok := p.next()
		span = span.Merge(tok.Span)
	}

	return span
}

// ---- statements ----

func (p *Parser) parseDecorators() []Decorator {
	var decs []Decorator

	for p.atSymbol('@') {
		start := p.next().Span.Start // consume '@'
		name := p.expect(token.Identifier).Lexeme

		var args []Expression

		if p.atSymbol('(') {
			p.next()

			args = p.parseArgList()
			p.expectSymbol(')')
		}

		end := p.s.LastNonEOF().Span.End
		decs = append(decs, Decorator{base: base{span: position.Span{Start: start, End: end}}, Name: name, Args: args})
	}

	return decs
}

func (p *Parser) parseStatement() Statement {
	decs := p.parseDecorators()

	tok := p.peek()

	switch {
	case tok.Kind == token.Keyword && tok.Keyword == token.Function:
		return p.parseFunctionDecl(decs)
	case tok.Kind == token.Keyword && tok.Keyword == token.Class:
		return p.parseClassDecl(decs)
	case tok.Kind == token.Keyword && (tok.Keyword == token.Let || tok.Keyword == token.Var || tok.Keyword == token.Const):
		decl := p.parseVariableDecl(decs)
		p.consumeStatementTerminator()

		return decl
	case tok.Kind == token.Keyword && tok.Keyword == token.If:
		return p.parseIf()
	case tok.Kind == token.Keyword && tok.Keyword == token.While:
		return p.parseWhile()
	case tok.Kind == token.Keyword && tok.Keyword == token.For:
		return p.parseFor()
	case tok.Kind == token.Keyword && tok.Keyword == token.Return:
		stmt := p.parseReturn()
		p.consumeStatementTerminator()

		return stmt
	case tok.Kind == token.Keyword && tok.Keyword == token.Import:
		stmt := p.parseImport()
		p.consumeStatementTerminator()

		return stmt
	case tok.Kind == token.Keyword && tok.Keyword == token.Break:
		p.next()
		p.consumeStatementTerminator()

		return &Break{base{span: tok.Span}}
	case tok.Kind == token.Keyword && tok.Keyword == token.Continue:
		p.next()
		p.consumeStatementTerminator()

		return &Continue{base{span: tok.Span}}
	case tok.Kind == token.Symbol && tok.Sym == '{':
		return p.parseBlock()
	case tok.Kind == token.Symbol && tok.Sym == ';':
		p.next()

		return &ExpressionStatement{base: base{span: tok.Span}}
	default:
		expr := p.parseExpression(precAssign)

		if p.atOperator("=") && !p.atOperator("==") {
			assignStart := expr.Span().Start
			p.consumeOperator("=")
			value := p.parseExpression(precAssign)
			p.consumeStatementTerminator()

			return &Assignment{base: base{span: position.Span{Start: assignStart, End: value.Span().End}}, Target: expr, Value: value}
		}

		p.consumeStatementTerminator()

		return &ExpressionStatement{base: base{span: expr.Span()}, Expr: expr}
	}
}

// consumeStatementTerminator eats an optional trailing ';' — the grammar
// treats it as an explicit empty statement, not a mandatory terminator,
// so its absence before '}' or Eof is not an error.
func (p *Parser) consumeStatementTerminator() {
	if p.atSymbol(';') {
		p.next()
	}
}

func (p *Parser) parseBlock() *Block {
	start := p.expectSymbol('{').Span.Start

	var stmts []Statement

	for !p.atSymbol('}') {
		if p.peek().Kind == token.Eof {
			p.fail(p.peek().Span.Start, "unterminated block, expected '}'")
		}

		stmts = append(stmts, p.parseStatement())
	}

	end := p.expectSymbol('}').Span.End

	return &Block{base: base{span: position.Span{Start: start, End: end}}, Statements: stmts}
}

func (p *Parser) parseTypeParams() []TypeParam {
	if !p.atSymbol('<') {
		return nil
	}

	p.next()

	var params []TypeParam

	for {
		name := p.expect(token.Identifier).Lexeme

		var extends *TypeRef
		if p.atKeyword(token.Extends) {
			p.next()

			extends = p.parseTypeRef()
		}

		params = append(params, TypeParam{Name: name, Extends: extends})

		if p.atSymbol(',') {
			p.next()

			continue
		}

		break
	}

	p.expectSymbol('>')

	return params
}

func (p *Parser) parseTypeRef() *TypeRef {
	start := p.peek().Span.Start
	name := p.expect(token.Identifier).Lexeme

	var args []*TypeRef

	if p.atSymbol('<') {
		p.next()

		for {
			args = append(args, p.parseTypeRef())

			if p.atSymbol(',') {
				p.next()

				continue
			}

			break
		}

		p.expectSymbol('>')
	}

	end := p.s.LastNonEOF().Span.End

	return &TypeRef{base: base{span: position.Span{Start: start, End: end}}, Name: name, Args: args}
}

func (p *Parser) parseParamList() []Param {
	var params []Param

	for !p.atSymbol(')') {
		name := p.expect(token.Identifier).Lexeme
		p.expectSymbol(':')
		typ := p.parseTypeRef()

		params = append(params, Param{Name: name, Type: typ})

		if p.atSymbol(',') {
			p.next()

			continue
		}

		break
	}

	return params
}

func (p *Parser) parseFunctionDecl(decs []Decorator) *FunctionDecl {
	start := p.expectKeyword(token.Function).Span.Start
	name := p.expect(token.Identifier).Lexeme
	typeParams := p.parseTypeParams()

	p.expectSymbol('(')
	params := p.parseParamList()
	p.expectSymbol(')')

	var result *TypeRef
	if p.atSymbol(':') {
		p.next()

		result = p.parseTypeRef()
	}

	var body *Block

	var end position.Position

	if p.atSymbol('{') {
		body = p.parseBlock()
		end = body.Span().End
	} else {
		p.consumeStatementTerminator()
		end = p.s.LastNonEOF().Span.End
	}

	return &FunctionDecl{
		base:       base{span: position.Span{Start: start, End: end}},
		Decorators: decs,
		Name:       name,
		TypeParams: typeParams,
		Params:     params,
		Result:     result,
		Body:       body,
	}
}

func (p *Parser) parseClassDecl(decs []Decorator) *ClassDecl {
	start := p.expectKeyword(token.Class).Span.Start
	name := p.expect(token.Identifier).Lexeme
	typeParams := p.parseTypeParams()

	var extends *TypeRef
	if p.atKeyword(token.Extends) {
		p.next()

		extends = p.parseTypeRef()
	}

	p.expectSymbol('{')

	var members []Member

	for !p.atSymbol('}') {
		memberDecs := p.parseDecorators()

		if p.atKeyword(token.Function) {
			members = append(members, Member{Method: p.parseFunctionDecl(memberDecs)})
			continue
		}

		field := p.parseVariableDecl(memberDecs)
		p.consumeStatementTerminator()
		members = append(members, Member{Field: field})
	}

	end := p.expectSymbol('}').Span.End

	return &ClassDecl{
		base:       base{span: position.Span{Start: start, End: end}},
		Decorators: decs,
		Name:       name,
		TypeParams: typeParams,
		Extends:    extends,
		Members:    members,
	}
}

func (p *Parser) parseVariableDecl(decs []Decorator) *VariableDecl {
	tok := p.next() // let | var | const
	if tok.Kind != token.Keyword || (tok.Keyword != token.Let && tok.Keyword != token.Var && tok.Keyword != token.Const) {
		p.fail(tok.Span.Start, "expected 'let', 'var', or 'const', got %s %q", tok.Kind, tok.Lexeme)
	}

	name := p.expect(token.Identifier).Lexeme

	var typ *TypeRef
	if p.atSymbol(':') {
		p.next()

		typ = p.parseTypeRef()
	}

	var init Expression

	end := p.s.LastNonEOF().Span.End

	if p.atOperator("=") {
		p.consumeOperator("=")
		init = p.parseExpression(precAssign)
		end = init.Span().End
	}

	return &VariableDecl{
		base:       base{span: position.Span{Start: tok.Span.Start, End: end}},
		Decorators: decs,
		Name:       name,
		Type:       typ,
		Init:       init,
		Mutable:    tok.Keyword == token.Var,
		Const:      tok.Keyword == token.Const,
	}
}

func (p *Parser) parseIf() *If {
	start := p.expectKeyword(token.If).Span.Start
	p.expectSymbol('(')
	cond := p.parseExpression(precAssign)
	p.expectSymbol(')')

	then := p.parseBlock()
	end := then.Span().End

	var elseStmt Statement

	if p.atKeyword(token.Else) {
		p.next()

		if p.atKeyword(token.If) {
			elseStmt = p.parseIf()
		} else {
			elseStmt = p.parseBlock()
		}

		end = elseStmt.Span().End
	}

	return &If{base: base{span: position.Span{Start: start, End: end}}, Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseWhile() *While {
	start := p.expectKeyword(token.While).Span.Start
	p.expectSymbol('(')
	cond := p.parseExpression(precAssign)
	p.expectSymbol(')')
	body := p.parseBlock()

	return &While{base: base{span: position.Span{Start: start, End: body.Span().End}}, Cond: cond, Body: body}
}

func (p *Parser) parseFor() *For {
	start := p.expectKeyword(token.For).Span.Start
	p.expectSymbol('(')

	var initStmt Statement

	if !p.atSymbol(';') {
		if p.atKeyword(token.Let) || p.atKeyword(token.Var) || p.atKeyword(token.Const) {
			initStmt = p.parseVariableDecl(nil)
		} else {
			initStmt = &ExpressionStatement{Expr: p.parseExpression(precAssign)}
		}
	}

	p.expectSymbol(';')

	var cond Expression
	if !p.atSymbol(';') {
		cond = p.parseExpression(precAssign)
	}

	p.expectSymbol(';')

	var postStmt Statement
	if !p.atSymbol(')') {
		postStmt = &ExpressionStatement{Expr: p.parseExpression(precAssign)}
	}

	p.expectSymbol(')')

	body := p.parseBlock()

	return &For{base: base{span: position.Span{Start: start, End: body.Span().End}}, Init: initStmt, Cond: cond, Post: postStmt, Body: body}
}

func (p *Parser) parseReturn() *Return {
	start := p.expectKeyword(token.Return).Span.Start

	var value Expression

	end := p.s.LastNonEOF().Span.End

	if !p.atSymbol(';') && !p.atSymbol('}') {
		value = p.parseExpression(precAssign)
		end = value.Span().End
	}

	return &Return{base: base{span: position.Span{Start: start, End: end}}, Value: value}
}

func (p *Parser) parseImport() *Import {
	start := p.expectKeyword(token.Import).Span.Start

	var names []string

	names = append(names, p.expect(token.Identifier).Lexeme)

	for p.atSymbol(',') {
		p.next()

		names = append(names, p.expect(token.Identifier).Lexeme)
	}

	p.expectKeyword(token.From)

	fromTok := p.expect(token.StringLiteral)

	return &Import{
		base:  base{span: position.Span{Start: start, End: fromTok.Span.End}},
		Names: names,
		From:  fromTok.Lexeme,
	}
}

func (p *Parser) parseArgList() []Expression {
	var args []Expression

	for !p.atSymbol(')') {
		args = append(args, p.parseExpression(precAssign))

		if p.atSymbol(',') {
			p.next()

			continue
		}

		break
	}

	return args
}

// ---- expressions: Pratt-style precedence climbing ----

type precedence int

const (
	precNone precedence = iota
	precAssign
	precTernary
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precComparison
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

// binaryOpsByLength maps a (possibly multi-character) operator spelling to the
// precedence level that consumes it and whether it is right-associative.
// Checked from longest to shortest so "==" is preferred over "=".
var binaryOpsByLength = [][]struct {
	op    string
	prec  precedence
	right bool
}{
	2: {
		{"==", precEquality, false},
		{"!=", precEquality, false},
		{"<=", precComparison, false},
		{">=", precComparison, false},
		{"&&", precLogicalAnd, false},
		{"||", precLogicalOr, false},
		{"<<", precShift, false},
		{">>", precShift, false},
	},
	1: {
		{"<", precComparison, false},
		{">", precComparison, false},
		{"+", precAdditive, false},
		{"-", precAdditive, false},
		{"*", precMultiplicative, false},
		{"/", precMultiplicative, false},
		{"%", precMultiplicative, false},
		{"&", precBitAnd, false},
		{"|", precBitOr, false},
		{"^", precBitXor, false},
	},
}

// matchBinaryOp looks for the longest operator spelling starting at the
// current token; it never matches "=" alone (that is assignment, handled
// by the statement parser) nor the first '=' of "==" at the 1-char level
// because the 2-char table is tried first.
func (p *Parser) matchBinaryOp() (string, precedence, bool, bool) {
	for length := 2; length >= 1; length-- {
		for _, cand := range binaryOpsByLength[length] {
			if p.atOperator(cand.op) {
				return cand.op, cand.prec, cand.right, true
			}
		}
	}

	return "", precNone, false, false
}

func (p *Parser) parseExpression(minPrec precedence) Expression {
	left := p.parseUnary()

	for {
		if minPrec <= precTernary && p.atSymbol('?') {
			left = p.parseTernary(left)
			continue
		}

		op, prec, rightAssoc, ok := p.matchBinaryOp()
		if !ok || prec < minPrec {
			return left
		}

		opSpan := p.consumeOperator(op)

		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}

		right := p.parseExpression(nextMin)
		left = &BinaryOp{
			base:  base{span: position.Span{Start: left.Span().Start, End: right.Span().End}.Merge(opSpan)},
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *Parser) parseTernary(cond Expression) Expression {
	p.expectSymbol('?')
	then := p.parseExpression(precAssign)
	p.expectSymbol(':')
	elseExpr := p.parseExpression(precTernary)

	return &BinaryOp{
		base:  base{span: position.Span{Start: cond.Span().Start, End: elseExpr.Span().End}},
		Op:    "?:",
		Left:  then,
		Right: elseExpr,
	}
}

var unaryOps = []string{"!", "-", "~", "+"}

func (p *Parser) parseUnary() Expression {
	for _, op := range unaryOps {
		if p.atOperator(op) {
			span := p.consumeOperator(op)
			operand := p.parseUnary()

			return &UnaryOp{base: base{span: span.Merge(operand.Span())}, Op: op, Operand: operand}
		}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expression {
	expr := p.parsePrimary()

	for {
		switch {
		case p.atSymbol('('):
			p.next()

			args := p.parseArgList()
			end := p.expectSymbol(')').Span.End
			expr = &Call{base: base{span: position.Span{Start: expr.Span().Start, End: end}}, Callee: expr, Args: args}
		case p.atSymbol('['):
			p.next()

			idx := p.parseExpression(precAssign)
			end := p.expectSymbol(']').Span.End
			expr = &Index{base: base{span: position.Span{Start: expr.Span().Start, End: end}}, Target: expr, Index: idx}
		case p.atSymbol('.'):
			p.next()

			field := p.expect(token.Identifier)
			expr = &FieldAccess{base: base{span: position.Span{Start: expr.Span().Start, End: field.Span.End}}, Target: expr, Field: field.Lexeme}
		case p.atKeyword(token.As):
			p.next()

			typ := p.parseTypeRef()
			expr = &Cast{base: base{span: position.Span{Start: expr.Span().Start, End: typ.Span().End}}, Value: expr, Type: typ}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() Expression {
	tok := p.next()

	switch {
	case tok.Kind == token.NumericLiteral:
		return &Literal{base: base{span: tok.Span}, Kind: LiteralInt, Raw: tok.Lexeme}
	case tok.Kind == token.FloatingNumberLiteral:
		return &Literal{base: base{span: tok.Span}, Kind: LiteralFloat, Raw: tok.Lexeme}
	case tok.Kind == token.StringLiteral:
		return &Literal{base: base{span: tok.Span}, Kind: LiteralString, Raw: tok.Lexeme, Quote: tok.Quote}
	case tok.Kind == token.Keyword && tok.Keyword == token.True:
		return &Literal{base: base{span: tok.Span}, Kind: LiteralBool, Bool: true, Raw: tok.Lexeme}
	case tok.Kind == token.Keyword && tok.Keyword == token.False:
		return &Literal{base: base{span: tok.Span}, Kind: LiteralBool, Bool: false, Raw: tok.Lexeme}
	case tok.Kind == token.Keyword && tok.Keyword == token.Null:
		return &Literal{base: base{span: tok.Span}, Kind: LiteralNull, Raw: tok.Lexeme}
	case tok.Kind == token.Keyword && tok.Keyword == token.This:
		return &Identifier{base: base{span: tok.Span}, Name: tok.Lexeme}
	case tok.Kind == token.Keyword && tok.Keyword == token.New:
		return p.parseNewExpression(tok)
	case tok.Kind == token.Identifier:
		return &Identifier{base: base{span: tok.Span}, Name: tok.Lexeme}
	case tok.Kind == token.Symbol && tok.Sym == '(':
		expr := p.parseExpression(precAssign)
		p.expectSymbol(')')

		return expr
	default:
		p.fail(tok.Span.Start, "unexpected token %s %q in expression", tok.Kind, tok.Lexeme)

		return nil
	}
}

func (p *Parser) parseNewExpression(newTok token.Token) Expression {
	typ := p.parseTypeRef()
	p.expectSymbol('(')
	args := p.parseArgList()
	end := p.expectSymbol(')').Span.End

	return &Call{
		base:   base{span: position.Span{Start: newTok.Span.Start, End: end}},
		Callee: &Identifier{base: base{span: typ.Span()}, Name: fmt.Sprintf("new %s", typ.Name)},
		Args:   args,
	}
}

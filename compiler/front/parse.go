package front

import (
	"context"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ast"
)

// parser is a recursive-descent parser with a small buffered lookahead,
// generalizing the position-threaded style of the teacher's lexer/parser
// pair into a conventional token-queue parser.
type parser struct {
	ctx context.Context
	lx  *lexer

	buf []token // buffered tokens not yet consumed, front is buf[0]
}

func newParser(ctx context.Context, src []byte) *parser {
	return &parser{ctx: ctx, lx: newLexer(ctx, src)}
}

// peekN ensures at least n+1 tokens are buffered and returns the n-th one
// (0 is the next token to be consumed).
func (p *parser) peekN(n int) (token, error) {
	for len(p.buf) <= n {
		tok, err := p.lx.next()
		if err != nil {
			return token{}, err
		}

		p.buf = append(p.buf, tok)

		if tok.kind == tEOF {
			break
		}
	}

	if n >= len(p.buf) {
		return p.buf[len(p.buf)-1], nil // repeated EOF
	}

	return p.buf[n], nil
}

// Parse parses a full program: a sequence of function definitions
// interleaved with top-level statements. Top-level statements are
// collected into a synthetic "main" function by the generator, the same
// way the original wraps a program's top-level statement list in a
// synthetic entry function.
func (p *parser) Parse() (*ast.StatementList, error) {
	prog := &ast.StatementList{}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if tok.kind == tEOF {
			break
		}

		var stmt ast.Node

		if tok.kind == tKeyword && tok.text == "func" {
			stmt, err = p.parseFuncDef()
		} else {
			stmt, err = p.parseStatement()
		}

		if err != nil {
			return nil, errors.Wrap(err, "at line %d", tok.line)
		}

		prog.Stmts = append(prog.Stmts, stmt)
	}

	return prog, nil
}

func (p *parser) peek() (token, error) {
	return p.peekN(0)
}

func (p *parser) advance() (token, error) {
	tok, err := p.peekN(0)
	if err != nil {
		return token{}, err
	}

	if len(p.buf) > 0 {
		p.buf = p.buf[1:]
	}

	return tok, nil
}

func (p *parser) expectPunct(s string) (token, error) {
	tok, err := p.advance()
	if err != nil {
		return token{}, err
	}

	if tok.kind != tPunct || tok.text != s {
		return token{}, unexpected(tok, s)
	}

	return tok, nil
}

func (p *parser) expectKeyword(s string) (token, error) {
	tok, err := p.advance()
	if err != nil {
		return token{}, err
	}

	if tok.kind != tKeyword || tok.text != s {
		return token{}, unexpected(tok, s)
	}

	return tok, nil
}

func (p *parser) expectIdent() (string, error) {
	tok, err := p.advance()
	if err != nil {
		return "", err
	}

	if tok.kind != tIdent {
		return "", unexpected(tok, "identifier")
	}

	return tok.text, nil
}

func (p *parser) atPunct(s string) bool {
	tok, err := p.peek()
	return err == nil && tok.kind == tPunct && tok.text == s
}

func (p *parser) atKeyword(s string) bool {
	tok, err := p.peek()
	return err == nil && tok.kind == tKeyword && tok.text == s
}

func (p *parser) parseFuncDef() (*ast.FunctionDef, error) {
	tok, err := p.expectKeyword("func")
	if err != nil {
		return nil, err
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var params []string
	for !p.atPunct(")") {
		if len(params) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}

		pn, err := p.expectIdent()
		if err != nil {
			return nil, err
		}

		params = append(params, pn)
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, errors.Wrap(err, "func %s body", name)
	}

	tlog.SpanFromContext(p.ctx).Printw("parsed func", "name", name, "params", params)

	return &ast.FunctionDef{
		Base:   ast.Base{Line: tok.line},
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

func (p *parser) parseBlock() (*ast.StatementList, error) {
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}

	list := &ast.StatementList{Base: ast.Base{Line: open.line}}

	for !p.atPunct("}") {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		list.Stmts = append(list.Stmts, stmt)
	}

	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}

	return list, nil
}

func (p *parser) parseStatement() (ast.Node, error) {
	switch {
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atKeyword("print"):
		stmt, err := p.parsePrint()
		if err != nil {
			return nil, err
		}

		p.eatSemi()

		return stmt, nil
	default:
		return p.parseSimpleStatement()
	}
}

func (p *parser) parseIf() (ast.Node, error) {
	tok, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, errors.Wrap(err, "if condition")
	}

	then, err := p.parseBlock()
	if err != nil {
		return nil, errors.Wrap(err, "if body")
	}

	var els *ast.StatementList
	if p.atKeyword("else") {
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		if p.atKeyword("if") {
			elsIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}

			els = &ast.StatementList{Base: ast.Base{Line: tok.line}, Stmts: []ast.Node{elsIf}}
		} else {
			els, err = p.parseBlock()
			if err != nil {
				return nil, errors.Wrap(err, "else body")
			}
		}
	}

	return &ast.IfElse{
		Base: ast.Base{Line: tok.line},
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

// implicitLoopVar is the loop-variable name bound when `for each { ... }`
// is written with no header of its own, relying on a pipelined range for
// its bounds — `range(a,b) |> for each { item |> print(); }` binds `item`
// the same way an explicit `for each item in a..b { ... }` would.
const implicitLoopVar = "item"

func (p *parser) parseFor() (ast.Node, error) {
	tok, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKeyword("each"); err != nil {
		return nil, err
	}

	name := implicitLoopVar

	var rng ast.Node

	if !p.atPunct("{") {
		name, err = p.expectIdent()
		if err != nil {
			return nil, err
		}

		// "in" is not a reserved word, just a plain identifier the grammar
		// expects in this position, so the lexer stays a single small keyword
		// set.
		if err := p.expectIdentText("in"); err != nil {
			return nil, err
		}

		rng, err = p.parseRange()
		if err != nil {
			return nil, errors.Wrap(err, "range")
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, errors.Wrap(err, "for body")
	}

	return &ast.ForLoop{
		Base: ast.Base{Line: tok.line},
		Var:  name,
		Iter: rng,
		Body: body,
	}, nil
}

func (p *parser) expectIdentText(s string) error {
	tok, err := p.advance()
	if err != nil {
		return err
	}

	if tok.kind != tIdent || tok.text != s {
		return unexpected(tok, s)
	}

	return nil
}

func (p *parser) parseRange() (ast.Node, error) {
	start, err := p.parseAdd()
	if err != nil {
		return nil, err
	}

	tok, err := p.expectPunct("..")
	if err != nil {
		return nil, err
	}

	end, err := p.parseAdd()
	if err != nil {
		return nil, err
	}

	return &ast.Range{Base: ast.Base{Line: tok.line}, Start: start, End: end}, nil
}

// parseRangeCall parses the `range(start, end)` primary expression: the
// structural form fed into a pipeline so a spliced-in ForLoop stage can
// pick up its bounds, as opposed to parseRange's inline `start..end` used
// directly in a `for each x in ...` header.
func (p *parser) parseRangeCall(line int) (ast.Node, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	start, err := p.parseOr()
	if err != nil {
		return nil, errors.Wrap(err, "range start")
	}

	if _, err := p.expectPunct(","); err != nil {
		return nil, err
	}

	end, err := p.parseOr()
	if err != nil {
		return nil, errors.Wrap(err, "range end")
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	return &ast.Range{Base: ast.Base{Line: line}, Start: start, End: end}, nil
}

func (p *parser) parseReturn() (ast.Node, error) {
	tok, err := p.expectKeyword("return")
	if err != nil {
		return nil, err
	}

	if p.atPunct(";") || p.atPunct("}") {
		return &ast.Return{Base: ast.Base{Line: tok.line}}, nil
	}

	v, err := p.parsePipeline()
	if err != nil {
		return nil, errors.Wrap(err, "return value")
	}

	p.eatSemi()

	return &ast.Return{Base: ast.Base{Line: tok.line}, Value: v}, nil
}

// parseSimpleStatement handles `ident = expr` and any pipeline expression
// used for its side effects.
func (p *parser) parseSimpleStatement() (ast.Node, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}

	if start.kind == tIdent {
		// lookahead one token past the identifier to distinguish
		// `x = ...` from `x |> ...` or `x(...)`, without consuming
		// anything if it turns out not to be an assignment.
		next, err := p.peekN(1)
		if err != nil {
			return nil, err
		}

		if next.kind == tPunct && next.text == "=" {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}

			if _, err := p.advance(); err != nil { // consume "="
				return nil, err
			}

			rhs, err := p.parsePipeline()
			if err != nil {
				return nil, errors.Wrap(err, "assignment to %s", name)
			}

			p.eatSemi()

			return &ast.Assignment{Base: ast.Base{Line: start.line}, Name: name, Value: rhs}, nil
		}
	}

	expr, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}

	p.eatSemi()

	return expr, nil
}

func (p *parser) eatSemi() {
	for p.atPunct(";") {
		p.advance()
	}
}

// parsePipeline parses `orExpr ("|>" stage)*`, producing an ast.Pipeline
// only when there is at least one `|>`, otherwise just the bare expression.
func (p *parser) parsePipeline() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	src, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.atPunct("|>") {
		return src, nil
	}

	pipe := &ast.Pipeline{Base: ast.Base{Line: tok.line}, Source: src}

	for p.atPunct("|>") {
		p.advance()

		stage, err := p.parseStage()
		if err != nil {
			return nil, errors.Wrap(err, "pipeline stage")
		}

		pipe.Stages = append(pipe.Stages, stage)
	}

	return pipe, nil
}

func (p *parser) parseStage() (ast.Node, error) {
	switch {
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("print"):
		return p.parsePrint()
	default:
		return p.parseOr()
	}
}

func (p *parser) parsePrint() (ast.Node, error) {
	tok, err := p.expectKeyword("print")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var args []ast.Node
	for !p.atPunct(")") {
		if len(args) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}

		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		args = append(args, a)
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	return &ast.PrintCall{Base: ast.Base{Line: tok.line}, Args: args}, nil
}

func (p *parser) parseExpr() (ast.Node, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Node, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.atKeyword("or") {
		tok, _ := p.advance()

		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		l = &ast.BinaryOp{Base: ast.Base{Line: tok.line}, Op: ast.OpOr, Left: l, Right: r}
	}

	return l, nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.atKeyword("and") {
		tok, _ := p.advance()

		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		l = &ast.BinaryOp{Base: ast.Base{Line: tok.line}, Op: ast.OpAnd, Left: l, Right: r}
	}

	return l, nil
}

func (p *parser) parseNot() (ast.Node, error) {
	if p.atKeyword("not") {
		tok, _ := p.advance()

		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryOp{Base: ast.Base{Line: tok.line}, Op: ast.OpNot, Operand: x}, nil
	}

	return p.parseCmp()
}

var cmpOps = map[string]ast.Operator{
	"==": ast.OpEq, "!=": ast.OpNeq,
	"<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
}

func (p *parser) parseCmp() (ast.Node, error) {
	l, err := p.parseAdd()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.kind == tPunct {
		if op, ok := cmpOps[tok.text]; ok {
			p.advance()

			r, err := p.parseAdd()
			if err != nil {
				return nil, err
			}

			return &ast.BinaryOp{Base: ast.Base{Line: tok.line}, Op: op, Left: l, Right: r}, nil
		}
	}

	return l, nil
}

func (p *parser) parseAdd() (ast.Node, error) {
	l, err := p.parseMul()
	if err != nil {
		return nil, err
	}

	for p.atPunct("+") || p.atPunct("-") {
		tok, _ := p.advance()

		op := ast.OpAdd
		if tok.text == "-" {
			op = ast.OpSub
		}

		r, err := p.parseMul()
		if err != nil {
			return nil, err
		}

		l = &ast.BinaryOp{Base: ast.Base{Line: tok.line}, Op: op, Left: l, Right: r}
	}

	return l, nil
}

func (p *parser) parseMul() (ast.Node, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") {
		tok, _ := p.advance()

		var op ast.Operator
		switch tok.text {
		case "*":
			op = ast.OpMul
		case "/":
			op = ast.OpDiv
		case "%":
			op = ast.OpMod
		}

		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		l = &ast.BinaryOp{Base: ast.Base{Line: tok.line}, Op: op, Left: l, Right: r}
	}

	return l, nil
}

func (p *parser) parseUnary() (ast.Node, error) {
	if p.atPunct("-") {
		tok, _ := p.advance()

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryOp{Base: ast.Base{Line: tok.line}, Op: ast.OpNeg, Operand: x}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Node, error) {
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tNumber:
		v, err := strconv.ParseInt(tok.text, 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "number %q", tok.text)
		}

		return &ast.Number{Base: ast.Base{Line: tok.line}, Value: int32(v)}, nil
	case tIdent:
		if p.atPunct("(") {
			return p.parseCallArgs(tok.text, tok.line)
		}

		return &ast.Identifier{Base: ast.Base{Line: tok.line}, Name: tok.text}, nil
	case tKeyword:
		if tok.text == "range" {
			return p.parseRangeCall(tok.line)
		}
	case tPunct:
		if tok.text == "(" {
			e, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}

			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}

			return e, nil
		}
	}

	return nil, unexpected(tok, "expression")
}

func (p *parser) parseCallArgs(name string, line int) (ast.Node, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var args []ast.Node
	for !p.atPunct(")") {
		if len(args) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}

		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		args = append(args, a)
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	return &ast.FunctionCall{Base: ast.Base{Line: line}, Name: name, Args: args}, nil
}

func unexpected(tok token, want string) error {
	return errors.New("unexpected token %q (%s) at line %d, want %s", tok.text, tok.kind, tok.line, want)
}

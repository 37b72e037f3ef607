package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler/ast"
)

func parseProgram(t *testing.T, src string) *ast.StatementList {
	t.Helper()

	p := newParser(context.Background(), []byte(src))

	prog, err := p.Parse()
	require.NoError(t, err)

	return prog
}

func TestParseFunctionDef(t *testing.T) {
	prog := parseProgram(t, `
func add(a, b) {
	return a + b;
}
`)

	require.Len(t, prog.Stmts, 1)

	fd, ok := prog.Stmts[0].(*ast.FunctionDef)
	require.True(t, ok)
	require.Equal(t, "add", fd.Name)
	require.Equal(t, []string{"a", "b"}, fd.Params)
	require.Len(t, fd.Body.Stmts, 1)

	ret, ok := fd.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)

	bin, ok := ret.Value.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseAssignment(t *testing.T) {
	prog := parseProgram(t, `x = 1 + 2 * 3;`)

	require.Len(t, prog.Stmts, 1)

	a, ok := prog.Stmts[0].(*ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "x", a.Name)

	// * binds tighter than +, so the top node is the addition.
	bin, ok := a.Value.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)

	require.Equal(t, int32(1), bin.Left.(*ast.Number).Value)

	rhs, ok := bin.Right.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseIfElseChain(t *testing.T) {
	prog := parseProgram(t, `
if x > 0 {
	y = 1;
} else if x < 0 {
	y = -1;
} else {
	y = 0;
}
`)

	require.Len(t, prog.Stmts, 1)

	top, ok := prog.Stmts[0].(*ast.IfElse)
	require.True(t, ok)
	require.NotNil(t, top.Else)
	require.Len(t, top.Else.Stmts, 1)

	elseIf, ok := top.Else.Stmts[0].(*ast.IfElse)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
}

func TestParseForEachRange(t *testing.T) {
	prog := parseProgram(t, `
for each i in 0..10 {
	print(i);
}
`)

	require.Len(t, prog.Stmts, 1)

	fl, ok := prog.Stmts[0].(*ast.ForLoop)
	require.True(t, ok)
	require.Equal(t, "i", fl.Var)

	rng, ok := fl.Iter.(*ast.Range)
	require.True(t, ok)
	require.Equal(t, int32(0), rng.Start.(*ast.Number).Value)
	require.Equal(t, int32(10), rng.End.(*ast.Number).Value)
}

func TestParseForEachPipedRangeHasNoHeader(t *testing.T) {
	prog := parseProgram(t, `range(1,4) |> for each { item |> print(); }`)

	require.Len(t, prog.Stmts, 1)

	pipe, ok := prog.Stmts[0].(*ast.Pipeline)
	require.True(t, ok)

	rng, ok := pipe.Source.(*ast.Range)
	require.True(t, ok)
	require.Equal(t, int32(1), rng.Start.(*ast.Number).Value)
	require.Equal(t, int32(4), rng.End.(*ast.Number).Value)

	require.Len(t, pipe.Stages, 1)

	fl, ok := pipe.Stages[0].(*ast.ForLoop)
	require.True(t, ok)
	require.Equal(t, implicitLoopVar, fl.Var)
	require.Nil(t, fl.Iter)
}

func TestParsePipeline(t *testing.T) {
	prog := parseProgram(t, `5 |> double() |> print();`)

	require.Len(t, prog.Stmts, 1)

	pipe, ok := prog.Stmts[0].(*ast.Pipeline)
	require.True(t, ok)
	require.Equal(t, int32(5), pipe.Source.(*ast.Number).Value)
	require.Len(t, pipe.Stages, 2)

	call, ok := pipe.Stages[0].(*ast.FunctionCall)
	require.True(t, ok)
	require.Equal(t, "double", call.Name)
	require.Empty(t, call.Args)

	_, ok = pipe.Stages[1].(*ast.PrintCall)
	require.True(t, ok)
}

func TestParsePrintStatement(t *testing.T) {
	prog := parseProgram(t, `print(1, 2, 3);`)

	require.Len(t, prog.Stmts, 1)

	pc, ok := prog.Stmts[0].(*ast.PrintCall)
	require.True(t, ok)
	require.Len(t, pc.Args, 3)
}

func TestParseUnexpectedTokenError(t *testing.T) {
	p := newParser(context.Background(), []byte(`func (a) { return a; }`))

	_, err := p.Parse()
	require.Error(t, err)
}

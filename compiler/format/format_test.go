package format_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/format"
)

func TestFormatFunctionDef(t *testing.T) {
	fn := &ast.FunctionDef{
		Name:   "add",
		Params: []string{"a", "b"},
		Body: &ast.StatementList{Stmts: []ast.Node{
			&ast.Return{Value: &ast.BinaryOp{Op: ast.OpAdd, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		}},
	}

	out, err := format.Format(context.Background(), nil, fn)
	require.NoError(t, err)
	require.Equal(t, "func add(a, b) {\n\treturn a + b\n}\n", string(out))
}

func TestFormatUnaryOps(t *testing.T) {
	neg := &ast.StatementList{Stmts: []ast.Node{
		&ast.Return{Value: &ast.UnaryOp{Op: ast.OpNeg, Operand: &ast.Identifier{Name: "x"}}},
	}}

	out, err := format.Format(context.Background(), nil, neg)
	require.NoError(t, err)
	require.Equal(t, "return -x\n", string(out))

	not := &ast.StatementList{Stmts: []ast.Node{
		&ast.Return{Value: &ast.UnaryOp{Op: ast.OpNot, Operand: &ast.Identifier{Name: "x"}}},
	}}

	out, err = format.Format(context.Background(), nil, not)
	require.NoError(t, err)
	require.Equal(t, "return not x\n", string(out))
}

func TestFormatForEachPipedRange(t *testing.T) {
	pipe := &ast.Pipeline{
		Source: &ast.Range{Start: &ast.Number{Value: 1}, End: &ast.Number{Value: 4}},
		Stages: []ast.Node{
			&ast.ForLoop{
				Var: "item",
				Body: &ast.StatementList{Stmts: []ast.Node{
					&ast.Assignment{Name: "x", Value: &ast.Identifier{Name: "item"}},
				}},
			},
		},
	}

	list := &ast.StatementList{Stmts: []ast.Node{pipe}}

	out, err := format.Format(context.Background(), nil, list)
	require.NoError(t, err)
	require.Equal(t, "1..4 |> for each {\n\tx = item\n}\n", string(out))
}

func TestFormatPipeline(t *testing.T) {
	pipe := &ast.Pipeline{
		Source: &ast.Number{Value: 5},
		Stages: []ast.Node{
			&ast.FunctionCall{Name: "double"},
			&ast.PrintCall{},
		},
	}

	list := &ast.StatementList{Stmts: []ast.Node{pipe}}

	out, err := format.Format(context.Background(), nil, list)
	require.NoError(t, err)
	require.Equal(t, "5 |> double() |> print()\n", string(out))
}

// Package format renders a FlowScript AST back to readable source text,
// backing the CLI's `parse` subcommand.
package format

import (
	"context"
	"fmt"

	"tlog.app/go/errors"

	"github.com/flowscript-lang/flowscript/compiler/ast"
)

func Format(ctx context.Context, b []byte, x ast.Node) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x ast.Node, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.StatementList:
		return formatList(ctx, b, x, d)
	case *ast.FunctionDef:
		return formatFunc(ctx, b, x, d)
	default:
		return formatExpr(ctx, b, x, d)
	}
}

func formatList(ctx context.Context, b []byte, x *ast.StatementList, d int) (_ []byte, err error) {
	for _, s := range x.Stmts {
		b, err = formatStmt(ctx, b, s, d)
		if err != nil {
			return nil, errors.Wrap(err, "stmt")
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.FunctionDef, d int) (_ []byte, err error) {
	b = app(b, d, "func %s(", x.Name)

	for i, p := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}
		b = append(b, p...)
	}

	b = append(b, ") {\n"...)

	b, err = formatList(ctx, b, x.Body, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, s ast.Node, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.FunctionDef:
		return formatFunc(ctx, b, s, d)
	case *ast.Assignment:
		b = app(b, d, "%s = ", s.Name)

		b, err = formatExpr(ctx, b, s.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		return append(b, '\n'), nil
	case *ast.Return:
		b = app(b, d, "return")

		if s.Value != nil {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, s.Value, d)
			if err != nil {
				return nil, errors.Wrap(err, "value")
			}
		}

		return append(b, '\n'), nil
	case *ast.PrintCall:
		return formatExpr(ctx, b, s, d)
	case *ast.IfElse:
		b = app(b, d, "if ")

		b, err = formatExpr(ctx, b, s.Cond, d)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, " {\n"...)

		b, err = formatList(ctx, b, s.Then, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		b = app(b, d, "}")

		if s.Else != nil {
			b = append(b, " else {\n"...)

			b, err = formatList(ctx, b, s.Else, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}

			b = app(b, d, "}")
		}

		return append(b, '\n'), nil
	case *ast.ForLoop:
		if s.Iter == nil {
			// no header of its own: the range comes from the pipe that
			// feeds this stage, e.g. `range(1,4) |> for each { ... }`.
			b = app(b, d, "for each")
		} else {
			b = app(b, d, "for each %s in ", s.Var)

			b, err = formatExpr(ctx, b, s.Iter, d)
			if err != nil {
				return nil, errors.Wrap(err, "range")
			}
		}

		b = append(b, " {\n"...)

		b, err = formatList(ctx, b, s.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}

		return append(app(b, d, "}"), '\n'), nil
	case *ast.Pipeline:
		b, err = formatExpr(ctx, b, s, d)
		if err != nil {
			return nil, err
		}

		return append(b, '\n'), nil
	case *ast.FunctionCall:
		b, err = formatExpr(ctx, b, s, d)
		if err != nil {
			return nil, err
		}

		return append(b, '\n'), nil
	default:
		return nil, errors.New("unsupported statement: %T", s)
	}
}

func formatExpr(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Identifier:
		return append(b, x.Name...), nil
	case *ast.Number:
		return fmt.Appendf(b, "%d", x.Value), nil
	case *ast.BinaryOp:
		b, err = formatExpr(ctx, b, x.Left, d)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = fmt.Appendf(b, " %s ", x.Op)

		return formatExpr(ctx, b, x.Right, d)
	case *ast.UnaryOp:
		if x.Op == ast.OpNeg {
			b = append(b, '-')
		} else {
			b = append(b, "not "...)
		}

		return formatExpr(ctx, b, x.Operand, d)
	case *ast.Range:
		b, err = formatExpr(ctx, b, x.Start, d)
		if err != nil {
			return nil, errors.Wrap(err, "start")
		}

		b = append(b, ".."...)

		return formatExpr(ctx, b, x.End, d)
	case *ast.FunctionCall:
		b = append(b, x.Name...)
		b = append(b, '(')

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, a, d)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		return append(b, ')'), nil
	case *ast.PrintCall:
		b = append(b, "print("...)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, a, d)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		return append(b, ')'), nil
	case *ast.Pipeline:
		b, err = formatExpr(ctx, b, x.Source, d)
		if err != nil {
			return nil, errors.Wrap(err, "source")
		}

		for _, s := range x.Stages {
			b = append(b, " |> "...)

			b, err = formatExpr(ctx, b, s, d)
			if err != nil {
				return nil, errors.Wrap(err, "stage")
			}
		}

		return b, nil
	case *ast.IfElse, *ast.ForLoop:
		// a stage spanning multiple lines: fall back to the statement
		// formatter and trim the trailing newline it adds.
		b, err = formatStmt(ctx, b, x, d)
		if err != nil {
			return nil, err
		}

		if n := len(b); n > 0 && b[n-1] == '\n' {
			b = b[:n-1]
		}

		return b, nil
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	return fmt.Appendf(b, f, args...)
}

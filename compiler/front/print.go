package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/ir"
)

// lowerPrintCall lowers a print(...) used as an ordinary statement: every
// argument is evaluated and printed.
func (f *Front) lowerPrintCall(ctx context.Context, n *ast.PrintCall) error {
	args, err := f.lowerPrintArgs(ctx, n.Args)
	if err != nil {
		return err
	}

	f.b.Print(args)

	return nil
}

// lowerPrintStage lowers print() appearing as a pipeline stage: with no
// explicit arguments it prints the piped value; with explicit arguments it
// prints those instead, matching the reference generator's printf
// dispatch, which always prints whatever arguments are given and falls
// back to the implicit value only when none were supplied.
func (f *Front) lowerPrintStage(ctx context.Context, n *ast.PrintCall, piped ir.Value) (ir.Value, error) {
	if len(n.Args) == 0 {
		f.b.Print([]ir.Value{piped})
		return piped, nil
	}

	args, err := f.lowerPrintArgs(ctx, n.Args)
	if err != nil {
		return 0, err
	}

	f.b.Print(args)

	return piped, nil
}

func (f *Front) lowerPrintArgs(ctx context.Context, exprs []ast.Node) ([]ir.Value, error) {
	args := make([]ir.Value, 0, len(exprs))

	for _, a := range exprs {
		v, err := f.lowerExpr(ctx, a)
		if err != nil {
			return nil, errors.Wrap(err, "print argument")
		}

		args = append(args, v)
	}

	return args, nil
}

package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/ir"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

// lowerCall lowers a function call. When inPipe is true, piped is the
// first actual argument, ahead of the explicit ones, so call must be
// exactly one argument short of the declared arity — the Pipeline
// Coordinator's contribution to an otherwise ordinary call lowering.
func (f *Front) lowerCall(ctx context.Context, call *ast.FunctionCall, piped ir.Value, inPipe bool) (ir.Value, error) {
	fd, ok := f.sigs[call.Name]
	if !ok {
		return 0, errors.New("line %d: call to undefined function %q", call.Line, call.Name)
	}

	explicit := make([]ir.Value, 0, len(call.Args))

	for _, a := range call.Args {
		v, err := f.lowerExpr(ctx, a)
		if err != nil {
			return 0, errors.Wrap(err, "argument")
		}

		explicit = append(explicit, v)
	}

	var args []ir.Value

	switch {
	case !inPipe && len(explicit) == len(fd.Params):
		args = explicit
	case inPipe && len(explicit) == len(fd.Params)-1:
		args = make([]ir.Value, 0, len(explicit)+1)
		args = append(args, piped)
		args = append(args, explicit...)
	default:
		given := len(explicit)
		if inPipe {
			given++ // the piped value counts as an argument
		}

		return 0, errors.New("line %d: %s takes %d args, called with %d", call.Line, call.Name, len(fd.Params), given)
	}

	return f.b.Call(fd.Name, args, tp.Int32{}), nil
}

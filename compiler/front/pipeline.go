package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/ir"
)

// lowerPipeline threads a single "current piped value" through Source and
// each Stage in turn: a stage that is a call gets the piped value as its
// first actual argument, a stage that is print() with no explicit
// arguments prints the piped value, and a stage that is an if/else or a
// for loop runs for its side effects and leaves the piped value
// unchanged, per the generator's decision to bind pipeline state
// explicitly rather than mutate the stage's own AST node.
//
// A Range source has no scalar value — codegen_range in the reference
// generator returns NULL — so it is carried forward as the AST node itself
// rather than lowered to an ir.Value; if the first stage is a ForLoop with
// no range of its own, it takes that node as its range, the mechanism that
// supports `range(a,b) |> for each { ... }`. A Range used as a stage is
// rejected.
func (f *Front) lowerPipeline(ctx context.Context, p *ast.Pipeline) (ir.Value, error) {
	var v ir.Value
	var rng *ast.Range

	if r, ok := p.Source.(*ast.Range); ok {
		rng = r
	} else {
		var err error

		v, err = f.lowerExpr(ctx, p.Source)
		if err != nil {
			return 0, errors.Wrap(err, "pipeline source")
		}
	}

	for i, stage := range p.Stages {
		var err error

		v, rng, err = f.lowerStage(ctx, stage, v, rng)
		if err != nil {
			return 0, errors.Wrap(err, "stage %d", i)
		}
	}

	return v, nil
}

func (f *Front) lowerStage(ctx context.Context, stage ast.Node, piped ir.Value, rng *ast.Range) (ir.Value, *ast.Range, error) {
	switch x := stage.(type) {
	case *ast.FunctionCall:
		v, err := f.lowerCall(ctx, x, piped, true)
		return v, nil, err
	case *ast.PrintCall:
		v, err := f.lowerPrintStage(ctx, x, piped)
		return v, nil, err
	case *ast.IfElse:
		if err := f.withPiped(ctx, piped, func() error {
			return f.lowerIf(ctx, x)
		}); err != nil {
			return 0, nil, err
		}

		return piped, nil, nil
	case *ast.ForLoop:
		iter := x.Iter
		if iter == nil {
			if rng == nil {
				return 0, nil, errors.New("line %d: for-each requires a range", x.Line)
			}

			iter = rng
		}

		if err := f.lowerForIter(ctx, x, iter); err != nil {
			return 0, nil, err
		}

		return piped, nil, nil
	default:
		return 0, nil, errors.New("line %d: %T is not a valid pipeline stage", line(stage), stage)
	}
}

// withPiped makes v visible as the generator's "current piped value" for
// the duration of body, restoring whatever was current before. Stages
// that don't reference it (most if/else bodies) simply ignore it.
func (f *Front) withPiped(ctx context.Context, v ir.Value, body func() error) error {
	savedVal, savedHave := f.pipedVal, f.havePiped

	f.pipedVal, f.havePiped = v, true
	defer func() { f.pipedVal, f.havePiped = savedVal, savedHave }()

	tlog.SpanFromContext(ctx).Printw("piped value bound", "val", v)

	return body()
}

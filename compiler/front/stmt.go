package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

// lowerBlock lowers every statement in list in order. Once the current
// block has gained a terminator, remaining statements are unreachable and
// are silently dropped, exactly as the reference generator's
// codegen_statement_list_payload returns early once a terminator exists.
func (f *Front) lowerBlock(ctx context.Context, list *ast.StatementList) error {
	if list == nil {
		return nil
	}

	for _, stmt := range list.Stmts {
		if f.b.HasTerminator() {
			tlog.SpanFromContext(ctx).Printw("dropping unreachable statement", "stmt", stmt)
			break
		}

		if err := f.lowerStatement(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (f *Front) lowerStatement(ctx context.Context, n ast.Node) error {
	switch x := n.(type) {
	case *ast.Assignment:
		return f.lowerAssignment(ctx, x)
	case *ast.IfElse:
		return f.lowerIf(ctx, x)
	case *ast.ForLoop:
		return f.lowerFor(ctx, x)
	case *ast.Return:
		return f.lowerReturn(ctx, x)
	case *ast.PrintCall:
		return f.lowerPrintCall(ctx, x)
	case *ast.Pipeline:
		_, err := f.lowerPipeline(ctx, x)
		return err
	case *ast.FunctionCall:
		_, err := f.lowerCall(ctx, x, 0, false)
		return err
	case *ast.FunctionDef:
		return errors.New("line %d: nested function definitions are not supported", x.Line)
	default:
		return errors.New("line %d: %T is not a statement", line(n), n)
	}
}

func (f *Front) lowerAssignment(ctx context.Context, a *ast.Assignment) error {
	if _, ok := f.sigs[a.Name]; ok {
		return errors.New("line %d: assignment target %q is not a mutable binding", a.Line, a.Name)
	}

	v, err := f.lowerExpr(ctx, a.Value)
	if err != nil {
		return errors.Wrap(err, "line %d: assignment to %s", a.Line, a.Name)
	}

	addr, ok := f.scope.lookup(a.Name)
	if !ok {
		addr = f.b.AllocaEntry(tp.Int32{})
		f.scope.define(ctx, a.Name, addr)
	}

	f.b.Store(addr, v)

	return nil
}

func (f *Front) lowerIf(ctx context.Context, n *ast.IfElse) error {
	cond, err := f.lowerExpr(ctx, n.Cond)
	if err != nil {
		return errors.Wrap(err, "line %d: if condition", n.Line)
	}

	thenBlock := f.b.NewBlock("if.then")
	mergeBlock := f.b.NewBlock("if.merge")

	elseBlock := mergeBlock
	if n.Else != nil {
		elseBlock = f.b.NewBlock("if.else")
	}

	f.b.CondBr(cond, thenBlock, elseBlock)

	f.b.SetInsertPoint(thenBlock)
	f.scope = newScope(f.scope)

	if err := f.lowerBlock(ctx, n.Then); err != nil {
		return errors.Wrap(err, "then")
	}

	f.scope = f.scope.parent

	if !f.b.HasTerminator() {
		f.b.Br(mergeBlock)
	}

	if n.Else != nil {
		f.b.SetInsertPoint(elseBlock)
		f.scope = newScope(f.scope)

		if err := f.lowerBlock(ctx, n.Else); err != nil {
			return errors.Wrap(err, "else")
		}

		f.scope = f.scope.parent

		if !f.b.HasTerminator() {
			f.b.Br(mergeBlock)
		}
	}

	f.b.SetInsertPoint(mergeBlock)

	return nil
}

// lowerFor lowers a counting for-each loop whose range is already present
// on the node (the `for each x in a..b { ... }` surface form).
func (f *Front) lowerFor(ctx context.Context, n *ast.ForLoop) error {
	return f.lowerForIter(ctx, n, n.Iter)
}

// lowerForIter lowers a counting for-each loop over iter, which the
// Pipeline Coordinator may supply as an explicit parameter distinct from
// n.Iter — the spliced left-hand side of `range(a,b) |> for each { ... }`
// — instead of mutating the node's own Iter field, per the generator's
// resolution of the pipeline-range open question.
func (f *Front) lowerForIter(ctx context.Context, n *ast.ForLoop, iter ast.Node) error {
	rng, ok := iter.(*ast.Range)
	if !ok {
		return errors.New("line %d: for-each requires a range", n.Line)
	}

	start, err := f.lowerExpr(ctx, rng.Start)
	if err != nil {
		return errors.Wrap(err, "line %d: range start", n.Line)
	}

	end, err := f.lowerExpr(ctx, rng.End)
	if err != nil {
		return errors.Wrap(err, "line %d: range end", n.Line)
	}

	addr := f.b.AllocaEntry(tp.Int32{})
	f.b.Store(addr, start)

	condBlock := f.b.NewBlock("for.cond")
	bodyBlock := f.b.NewBlock("for.body")
	afterBlock := f.b.NewBlock("for.after")

	f.b.Br(condBlock)

	f.b.SetInsertPoint(condBlock)
	cur := f.b.Load(addr)
	cond := f.b.ICmp("<", cur, end)
	f.b.CondBr(cond, bodyBlock, afterBlock)

	f.b.SetInsertPoint(bodyBlock)
	f.scope = newScope(f.scope)
	f.scope.define(ctx, n.Var, addr)

	iterVal := f.b.Load(addr)

	err = f.withPiped(ctx, iterVal, func() error {
		return f.lowerBlock(ctx, n.Body)
	})

	f.scope = f.scope.parent

	if err != nil {
		return errors.Wrap(err, "body")
	}

	if !f.b.HasTerminator() {
		cur2 := f.b.Load(addr)
		next := f.b.Add(cur2, f.b.ConstInt(1))
		f.b.Store(addr, next)
		f.b.Br(condBlock)
	}

	f.b.SetInsertPoint(afterBlock)

	return nil
}

func (f *Front) lowerReturn(ctx context.Context, n *ast.Return) error {
	if n.Value == nil {
		f.b.Ret(f.b.ConstInt(0))
		return nil
	}

	v, err := f.lowerExpr(ctx, n.Value)
	if err != nil {
		return errors.Wrap(err, "line %d: return value", n.Line)
	}

	f.b.Ret(v)

	return nil
}

package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/ir"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

// lowerExpr lowers an expression AST node to the ir.Value holding its
// result, following the same recursive structure as the reference
// generator's codegen_expr dispatch.
func (f *Front) lowerExpr(ctx context.Context, n ast.Node) (ir.Value, error) {
	switch x := n.(type) {
	case *ast.Number:
		return f.b.ConstInt(x.Value), nil
	case *ast.Identifier:
		return f.lowerIdentifier(ctx, x)
	case *ast.BinaryOp:
		return f.lowerBinaryOp(ctx, x)
	case *ast.UnaryOp:
		return f.lowerUnaryOp(ctx, x)
	case *ast.FunctionCall:
		return f.lowerCall(ctx, x, ir.Value(0), false)
	case *ast.Pipeline:
		return f.lowerPipeline(ctx, x)
	default:
		return 0, errors.New("line %d: %T is not a value expression", line(n), n)
	}
}

func (f *Front) lowerIdentifier(ctx context.Context, id *ast.Identifier) (ir.Value, error) {
	addr, ok := f.scope.lookup(id.Name)
	if !ok {
		return 0, errors.New("line %d: undefined variable %q", id.Line, id.Name)
	}

	return f.b.Load(addr), nil
}

func (f *Front) lowerUnaryOp(ctx context.Context, u *ast.UnaryOp) (ir.Value, error) {
	x, err := f.lowerExpr(ctx, u.Operand)
	if err != nil {
		return 0, errors.Wrap(err, "operand")
	}

	switch u.Op {
	case ast.OpNeg:
		return f.b.Neg(x), nil
	case ast.OpNot:
		return f.b.Not(x), nil
	default:
		return 0, errors.New("line %d: unsupported unary op %q", u.Line, u.Op)
	}
}

var binOps = map[ast.Operator]func(*Front, ir.Value, ir.Value) ir.Value{
	ast.OpAdd: (*Front).binAdd,
	ast.OpSub: (*Front).binSub,
	ast.OpMul: (*Front).binMul,
	ast.OpDiv: (*Front).binDiv,
	ast.OpMod: (*Front).binMod,
}

func (f *Front) binAdd(l, r ir.Value) ir.Value { return f.b.Add(l, r) }
func (f *Front) binSub(l, r ir.Value) ir.Value { return f.b.Sub(l, r) }
func (f *Front) binMul(l, r ir.Value) ir.Value { return f.b.Mul(l, r) }
func (f *Front) binDiv(l, r ir.Value) ir.Value { return f.b.Div(l, r) }
func (f *Front) binMod(l, r ir.Value) ir.Value { return f.b.Mod(l, r) }

var cmpOpsIR = map[ast.Operator]ir.Cond{
	ast.OpEq: ir.CmpEq, ast.OpNeq: ir.CmpNe,
	ast.OpLt: ir.CmpLt, ast.OpLe: ir.CmpLe,
	ast.OpGt: ir.CmpGt, ast.OpGe: ir.CmpGe,
}

func (f *Front) lowerBinaryOp(ctx context.Context, b *ast.BinaryOp) (ir.Value, error) {
	switch b.Op {
	case ast.OpAnd:
		return f.lowerShortCircuit(ctx, b, false)
	case ast.OpOr:
		return f.lowerShortCircuit(ctx, b, true)
	}

	l, err := f.lowerExpr(ctx, b.Left)
	if err != nil {
		return 0, errors.Wrap(err, "left")
	}

	r, err := f.lowerExpr(ctx, b.Right)
	if err != nil {
		return 0, errors.Wrap(err, "right")
	}

	if fn, ok := binOps[b.Op]; ok {
		return fn(f, l, r), nil
	}

	if cond, ok := cmpOpsIR[b.Op]; ok {
		return f.b.ICmp(cond, l, r), nil
	}

	return 0, errors.New("line %d: unsupported binary op %q", b.Line, b.Op)
}

// lowerShortCircuit materializes `and`/`or` as control flow and a phi,
// rather than computing both sides unconditionally: for `or`, the right
// side is only evaluated when the left side is false, and vice versa for
// `and`. This is the same shape the reference implementation's
// codegen_binop uses for these two operators. Both operands are forced to
// a strict 0/1 boolean via `NE 0` before they reach the phi, so `5 and 7`
// yields `1`, not `7`.
func (f *Front) lowerShortCircuit(ctx context.Context, b *ast.BinaryOp, isOr bool) (ir.Value, error) {
	l, err := f.lowerExpr(ctx, b.Left)
	if err != nil {
		return 0, errors.Wrap(err, "left")
	}

	lBool := f.b.ICmp(ir.CmpNe, l, f.b.ConstInt(0))

	lBlock := f.b.InsertBlock()

	rhsBlock := f.b.NewBlock("sc.rhs")
	mergeBlock := f.b.NewBlock("sc.merge")

	if isOr {
		f.b.CondBr(lBool, mergeBlock, rhsBlock)
	} else {
		f.b.CondBr(lBool, rhsBlock, mergeBlock)
	}

	f.b.SetInsertPoint(rhsBlock)

	r, err := f.lowerExpr(ctx, b.Right)
	if err != nil {
		return 0, errors.Wrap(err, "right")
	}

	rBool := f.b.ICmp(ir.CmpNe, r, f.b.ConstInt(0))

	rEndBlock := f.b.InsertBlock()

	if !f.b.HasTerminator() {
		f.b.Br(mergeBlock)
	}

	f.b.SetInsertPoint(mergeBlock)

	phi := f.b.NewPhi(tp.Int32{})
	f.b.AddIncoming(phi, lBlock, lBool)
	f.b.AddIncoming(phi, rEndBlock, rBool)

	tlog.SpanFromContext(ctx).Printw("short circuit", "or", isOr, "phi", phi)

	return phi, nil
}

func line(n ast.Node) int {
	switch x := n.(type) {
	case *ast.Number:
		return x.Line
	case *ast.Identifier:
		return x.Line
	case *ast.BinaryOp:
		return x.Line
	case *ast.UnaryOp:
		return x.Line
	case *ast.Assignment:
		return x.Line
	case *ast.FunctionCall:
		return x.Line
	case *ast.Pipeline:
		return x.Line
	case *ast.IfElse:
		return x.Line
	case *ast.Range:
		return x.Line
	case *ast.ForLoop:
		return x.Line
	case *ast.Return:
		return x.Line
	case *ast.PrintCall:
		return x.Line
	default:
		return 0
	}
}

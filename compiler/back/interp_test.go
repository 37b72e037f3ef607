package back_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler/back"
	"github.com/flowscript-lang/flowscript/compiler/ir"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

func TestInterpRunsMainAndCollectsPrint(t *testing.T) {
	ctx := context.Background()
	b := ir.NewBuilder(ctx, "test")

	b.NewFunction("main", nil, tp.Int32{})
	sum := b.Add(b.ConstInt(2), b.ConstInt(3))
	b.Print([]ir.Value{sum})
	b.Ret(b.ConstInt(0))

	mod, err := b.Finish()
	require.NoError(t, err)

	out, err := back.New().Run(ctx, mod)
	require.NoError(t, err)
	require.Equal(t, "5\n", out)
}

func TestInterpCallsUserFunction(t *testing.T) {
	ctx := context.Background()
	b := ir.NewBuilder(ctx, "test")

	b.NewFunction("double", []tp.Type{tp.Int32{}}, tp.Int32{})
	b.Ret(b.Add(ir.Value(0), ir.Value(0)))

	b.NewFunction("main", nil, tp.Int32{})
	r := b.Call("double", []ir.Value{b.ConstInt(21)}, tp.Int32{})
	b.Print([]ir.Value{r})
	b.Ret(b.ConstInt(0))

	mod, err := b.Finish()
	require.NoError(t, err)

	out, err := back.New().Run(ctx, mod)
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

func TestInterpDivisionByZero(t *testing.T) {
	ctx := context.Background()
	b := ir.NewBuilder(ctx, "test")

	b.NewFunction("main", nil, tp.Int32{})
	b.Ret(b.Div(b.ConstInt(1), b.ConstInt(0)))

	mod, err := b.Finish()
	require.NoError(t, err)

	_, err = back.New().Run(ctx, mod)
	require.Error(t, err)
}

func TestInterpMissingMain(t *testing.T) {
	ctx := context.Background()
	b := ir.NewBuilder(ctx, "test")

	b.NewFunction("notMain", nil, tp.Int32{})
	b.Ret(b.ConstInt(0))

	mod, err := b.Finish()
	require.NoError(t, err)

	_, err = back.New().Run(ctx, mod)
	require.Error(t, err)
}

func TestInterpUndefinedCallee(t *testing.T) {
	ctx := context.Background()
	b := ir.NewBuilder(ctx, "test")

	b.NewFunction("main", nil, tp.Int32{})
	r := b.Call("missing", nil, tp.Int32{})
	b.Ret(r)

	mod, err := b.Finish()
	require.NoError(t, err)

	_, err = back.New().Run(ctx, mod)
	require.Error(t, err)
}

package ir_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler/ir"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

func TestBuilderAddAndRet(t *testing.T) {
	b := ir.NewBuilder(context.Background(), "test")

	b.NewFunction("add", []tp.Type{tp.Int32{}, tp.Int32{}}, tp.Int32{})

	sum := b.Add(0, 1)
	b.Ret(sum)

	mod, err := b.Finish()
	require.NoError(t, err)
	require.Len(t, mod.Funcs, 1)

	fn := mod.Funcs[0]
	require.Len(t, fn.Blocks, 1)
	require.True(t, ir.IsTerminator(fn.Values[fn.Blocks[0].Code[len(fn.Blocks[0].Code)-1]]))
}

func TestBuilderRejectsMissingTerminator(t *testing.T) {
	b := ir.NewBuilder(context.Background(), "test")

	b.NewFunction("bad", nil, tp.Int32{})
	b.ConstInt(1)

	_, err := b.Finish()
	require.Error(t, err)
}

func TestBuilderAllocaMustBeInEntryBlock(t *testing.T) {
	b := ir.NewBuilder(context.Background(), "test")

	b.NewFunction("f", nil, tp.Int32{})

	other := b.NewBlock("other")
	b.Br(other)

	b.SetInsertPoint(other)
	b.Alloca(tp.Int32{}) // not AllocaEntry: lands outside the entry block
	b.Ret(b.ConstInt(0))

	_, err := b.Finish()
	require.Error(t, err)
}

func TestBuilderPhi(t *testing.T) {
	b := ir.NewBuilder(context.Background(), "test")

	b.NewFunction("f", []tp.Type{tp.Int32{}}, tp.Int32{})

	thenB := b.NewBlock("then")
	mergeB := b.NewBlock("merge")

	zero := b.ConstInt(0)
	cond := b.ICmp(ir.CmpGt, 0, zero)
	entryBlock := b.InsertBlock()
	b.CondBr(cond, thenB, mergeB)

	b.SetInsertPoint(thenB)
	ten := b.ConstInt(10)
	b.Br(mergeB)

	b.SetInsertPoint(mergeB)
	phi := b.NewPhi(tp.Int32{})
	b.AddIncoming(phi, entryBlock, zero)
	b.AddIncoming(phi, thenB, ten)
	b.Ret(phi)

	mod, err := b.Finish()
	require.NoError(t, err)
	require.Len(t, mod.Funcs, 1)
}

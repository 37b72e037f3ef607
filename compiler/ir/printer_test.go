package ir_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler/ir"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

func TestPrintModule(t *testing.T) {
	b := ir.NewBuilder(context.Background(), "test")

	b.NewFunction("add", []tp.Type{tp.Int32{}, tp.Int32{}}, tp.Int32{})
	sum := b.Add(0, 1)
	b.Ret(sum)

	mod, err := b.Finish()
	require.NoError(t, err)

	out := ir.PrintModule(mod)
	require.True(t, strings.Contains(out, "func add(2 params) -> i32 {"))
	require.True(t, strings.Contains(out, "add %0, %1"))
	require.True(t, strings.Contains(out, "ret %2"))
}

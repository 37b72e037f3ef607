package compiler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler"
	"github.com/flowscript-lang/flowscript/compiler/back"
)

func TestCompileEndToEnd(t *testing.T) {
	ctx := context.Background()

	src := `
func fib(n) {
	if n <= 1 {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}

for each i in 0..7 {
	fib(i) |> print();
}
`

	mod, err := compiler.Compile(ctx, "fib.flow", []byte(src))
	require.NoError(t, err)

	out, err := back.New().Run(ctx, mod)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n1\n2\n3\n5\n8\n", out)
}

func TestCompileParseError(t *testing.T) {
	ctx := context.Background()

	_, err := compiler.Compile(ctx, "bad.flow", []byte(`func ( { `))
	require.Error(t, err)
}

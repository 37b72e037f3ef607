package front_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowscript-lang/flowscript/compiler/back"
	"github.com/flowscript-lang/flowscript/compiler/front"
)

func run(t *testing.T, src string) string {
	t.Helper()

	ctx := context.Background()

	f := front.New()
	f.AddFile(ctx, "test.flow", []byte(src))

	require.NoError(t, f.Parse(ctx))
	require.NoError(t, f.Analyze(ctx))

	mod, err := f.Compile(ctx)
	require.NoError(t, err)

	out, err := back.New().Run(ctx, mod)
	require.NoError(t, err)

	return out
}

func TestCompileAndRunArithmeticPipeline(t *testing.T) {
	out := run(t, `5 |> print();`)
	require.Equal(t, "5\n", out)
}

func TestCompileAndRunFunctionCallAsPipelineStage(t *testing.T) {
	out := run(t, `
func double(x) {
	return x * 2;
}

5 |> double() |> print();
`)
	require.Equal(t, "10\n", out)
}

func TestCompileAndRunForEachRange(t *testing.T) {
	out := run(t, `
for each i in 0..3 {
	print(i);
}
`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestCompileAndRunForEachPipedRange(t *testing.T) {
	out := run(t, `range(1,4) |> for each { item |> print(); }`)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestCompileAndRunPipedCallArgumentOrder(t *testing.T) {
	out := run(t, `
func sub(a, b) {
	return a - b;
}

5 |> sub(10) |> print();
`)
	// the piped value fills the *first* parameter, so this computes 5-10,
	// not 10-5.
	require.Equal(t, "-5\n", out)
}

func TestCompileAndRunIfElse(t *testing.T) {
	out := run(t, `
x = 5;
if x > 3 {
	print(1);
} else {
	print(0);
}
`)
	require.Equal(t, "1\n", out)
}

func TestCompileAndRunShortCircuitAnd(t *testing.T) {
	out := run(t, `
func sideEffect(x) {
	print(x);
	return 1;
}

0 and sideEffect(9) |> print();
`)
	// the left side of `and` is false, so sideEffect never runs and the
	// short circuit evaluates to 0.
	require.Equal(t, "0\n", out)
}

func TestCompileAndRunShortCircuitOr(t *testing.T) {
	out := run(t, `
1 or (0 / 0) |> print();
`)
	// the left side of `or` is true, so the right side (which would divide
	// by zero) is never evaluated.
	require.Equal(t, "1\n", out)
}

func TestCompileAndRunShortCircuitYieldsStrictBoolean(t *testing.T) {
	out := run(t, `5 and 7 |> print();`)
	// both operands are truthy but non-unit, and the merge must carry a
	// strict 0/1 boolean, not either raw operand value.
	require.Equal(t, "1\n", out)
}

func TestCompileRejectsAssignmentToFunctionName(t *testing.T) {
	ctx := context.Background()

	f := front.New()
	f.AddFile(ctx, "test.flow", []byte(`
func double(x) {
	return x * 2;
}

double = 5;
`))

	require.NoError(t, f.Parse(ctx))
	require.NoError(t, f.Analyze(ctx))

	_, err := f.Compile(ctx)
	require.Error(t, err)
}

func TestCompileRejectsUndefinedVariable(t *testing.T) {
	ctx := context.Background()

	f := front.New()
	f.AddFile(ctx, "test.flow", []byte(`print(y);`))

	require.NoError(t, f.Parse(ctx))
	require.NoError(t, f.Analyze(ctx))

	_, err := f.Compile(ctx)
	require.Error(t, err)
}

func TestAnalyzeRejectsArityMismatch(t *testing.T) {
	ctx := context.Background()

	f := front.New()
	f.AddFile(ctx, "test.flow", []byte(`
func add(a, b) {
	return a + b;
}

add(1, 2, 3);
`))

	require.NoError(t, f.Parse(ctx))
	require.Error(t, f.Analyze(ctx))
}

func TestAnalyzeRejectsDuplicateFunction(t *testing.T) {
	ctx := context.Background()

	f := front.New()
	f.AddFile(ctx, "test.flow", []byte(`
func f() { return 1; }
func f() { return 2; }
`))

	require.NoError(t, f.Parse(ctx))
	require.Error(t, f.Analyze(ctx))
}

func TestRecursiveFunctionCall(t *testing.T) {
	out := run(t, `
func fact(n) {
	if n <= 1 {
		return 1;
	}
	return n * fact(n - 1);
}

fact(5) |> print();
`)
	require.Equal(t, "120\n", out)
}

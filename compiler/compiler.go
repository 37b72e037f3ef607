package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/front"
	"github.com/flowscript-lang/flowscript/compiler/ir"
)

// CompileFile reads name and compiles it to a verified IR module.
func CompileFile(ctx context.Context, name string) (*ir.Module, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile runs a FlowScript program named name (for diagnostics) through
// the full pipeline: parse, analyze, generate IR.
func Compile(ctx context.Context, name string, text []byte) (*ir.Module, error) {
	st := front.New()

	st.AddFile(ctx, name, text)

	if err := st.Parse(ctx); err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	if err := st.Analyze(ctx); err != nil {
		return nil, errors.Wrap(err, "analyze %v", name)
	}

	mod, err := st.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile %v", name)
	}

	return mod, nil
}

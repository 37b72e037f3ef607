// Package front turns FlowScript source text into verified IR: lexing and
// parsing into an AST (lex.go, parse.go), then lowering that AST through a
// lexical scope stack (scope.go) into ir.Module via an ir.Builder
// (expr.go, stmt.go, funcs.go, pipeline.go, print.go).
package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ast"
	"github.com/flowscript-lang/flowscript/compiler/ir"
	"github.com/flowscript-lang/flowscript/compiler/tp"
)

type file struct {
	name string
	text []byte
}

// Front drives one compilation: adding source files, parsing them, and
// lowering the result to IR. It holds no state between separate
// compilations — callers create a fresh one per program, the way the
// teacher's driver does.
type Front struct {
	files []file
	prog  *ast.StatementList

	sigs map[string]*ast.FunctionDef // declared functions, by name

	b     *ir.Builder
	scope *scope

	pipedVal  ir.Value
	havePiped bool
}

func New() *Front {
	return &Front{}
}

func (f *Front) AddFile(ctx context.Context, name string, text []byte) {
	f.files = append(f.files, file{name: name, text: text})
}

// Program returns the parsed program, for callers (like the CLI's parse
// subcommand) that only need the AST.
func (f *Front) Program() *ast.StatementList {
	return f.prog
}

// Parse lexes and parses every added file, concatenating their top-level
// statements into one program. FlowScript has no import system, so file
// order is simply the order AddFile was called in.
func (f *Front) Parse(ctx context.Context) error {
	prog := &ast.StatementList{}

	for _, fl := range f.files {
		p := newParser(ctx, fl.text)

		part, err := p.Parse()
		if err != nil {
			return errors.Wrap(err, "parse %v", fl.name)
		}

		prog.Stmts = append(prog.Stmts, part.Stmts...)
	}

	f.prog = prog

	tlog.SpanFromContext(ctx).Printw("parsed program", "stmts", len(prog.Stmts))

	return nil
}

// Analyze performs the checks that don't require code generation: it
// collects every function declaration (so forward calls resolve) and
// validates call arity against each declaration.
func (f *Front) Analyze(ctx context.Context) error {
	f.sigs = map[string]*ast.FunctionDef{}

	for _, stmt := range f.prog.Stmts {
		fd, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}

		if _, dup := f.sigs[fd.Name]; dup {
			return errors.New("line %d: function %q redeclared", fd.Line, fd.Name)
		}

		f.sigs[fd.Name] = fd
	}

	for _, stmt := range f.prog.Stmts {
		if err := f.checkArity(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (f *Front) checkArity(n ast.Node) error {
	var err error

	walk(n, func(n ast.Node) {
		if err != nil {
			return
		}

		call, ok := n.(*ast.FunctionCall)
		if !ok {
			return
		}

		fd, ok := f.sigs[call.Name]
		if !ok {
			return // builtins (print is its own node, so this is always a user func here)
		}

		// a pipeline stage may supply one fewer argument than the
		// function takes: the piped value fills the first parameter.
		if len(call.Args) != len(fd.Params) && len(call.Args) != len(fd.Params)-1 {
			err = errors.New("line %d: %s takes %d args, called with %d", call.Line, call.Name, len(fd.Params), len(call.Args))
		}
	})

	return err
}

// Compile lowers the analyzed program to a verified IR module.
func (f *Front) Compile(ctx context.Context) (*ir.Module, error) {
	f.b = ir.NewBuilder(ctx, "flowscript")

	for _, stmt := range f.prog.Stmts {
		fd, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}

		if err := f.compileFunc(ctx, fd); err != nil {
			return nil, errors.Wrap(err, "func %s", fd.Name)
		}
	}

	if err := f.compileMain(ctx); err != nil {
		return nil, errors.Wrap(err, "main")
	}

	mod, err := f.b.Finish()
	if err != nil {
		return nil, errors.Wrap(err, "verify")
	}

	return mod, nil
}

// compileMain synthesizes an entry function from the program's top-level
// statements that aren't function definitions, mirroring the original's
// synthetic main wrapper.
func (f *Front) compileMain(ctx context.Context) error {
	var top []ast.Node

	for _, stmt := range f.prog.Stmts {
		if _, ok := stmt.(*ast.FunctionDef); ok {
			continue
		}

		top = append(top, stmt)
	}

	fd := &ast.FunctionDef{
		Name:   "main",
		Params: nil,
		Body:   &ast.StatementList{Stmts: top},
	}

	return f.compileFunc(ctx, fd)
}

func (f *Front) compileFunc(ctx context.Context, fd *ast.FunctionDef) error {
	params := make([]tp.Type, len(fd.Params))
	for i := range params {
		params[i] = tp.Int32{}
	}

	f.b.NewFunction(fd.Name, params, tp.Int32{})
	f.scope = newScope(nil)

	for i, name := range fd.Params {
		addr := f.b.AllocaEntry(tp.Int32{})
		f.b.Store(addr, ir.Value(i))
		f.scope.define(ctx, name, addr)
	}

	if err := f.lowerBlock(ctx, fd.Body); err != nil {
		return err
	}

	if !f.b.HasTerminator() {
		f.b.Ret(f.b.ConstInt(0))
	}

	return nil
}

// walk visits n and every AST node reachable from it. It is only used for
// the arity pre-pass, so it does not need to distinguish statement order.
func walk(n ast.Node, visit func(ast.Node)) {
	if n == nil {
		return
	}

	visit(n)

	switch x := n.(type) {
	case *ast.BinaryOp:
		walk(x.Left, visit)
		walk(x.Right, visit)
	case *ast.UnaryOp:
		walk(x.Operand, visit)
	case *ast.Assignment:
		walk(x.Value, visit)
	case *ast.FunctionDef:
		walk(x.Body, visit)
	case *ast.FunctionCall:
		for _, a := range x.Args {
			walk(a, visit)
		}
	case *ast.Pipeline:
		walk(x.Source, visit)
		for _, s := range x.Stages {
			walk(s, visit)
		}
	case *ast.IfElse:
		walk(x.Cond, visit)
		walk(x.Then, visit)
		walk(x.Else, visit)
	case *ast.Range:
		walk(x.Start, visit)
		walk(x.End, visit)
	case *ast.ForLoop:
		walk(x.Iter, visit)
		walk(x.Body, visit)
	case *ast.Return:
		walk(x.Value, visit)
	case *ast.PrintCall:
		for _, a := range x.Args {
			walk(a, visit)
		}
	case *ast.StatementList:
		if x == nil {
			return
		}
		for _, s := range x.Stmts {
			walk(s, visit)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler"
	"github.com/flowscript-lang/flowscript/compiler/back"
	"github.com/flowscript-lang/flowscript/compiler/format"
	"github.com/flowscript-lang/flowscript/compiler/front"
	"github.com/flowscript-lang/flowscript/compiler/ir"
)

func main() {
	parseCmd := &cli.Command{
		Name:   "parse",
		Action: parseAct,
		Args:   cli.Args{},
	}

	buildCmd := &cli.Command{
		Name:   "build",
		Action: buildAct,
		Args:   cli.Args{},
	}

	testCmd := &cli.Command{
		Name:   "test",
		Action: testAct,
		Args:   cli.Args{},
	}

	testFileCmd := &cli.Command{
		Name:   "test-file",
		Action: testFileAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "flowscript",
		Description: "flowscript compiles and runs FlowScript pipeline scripts",
		Commands: []*cli.Command{
			parseCmd,
			buildCmd,
			testCmd,
			testFileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		st := front.New()
		st.AddFile(ctx, a, text)

		if err := st.Parse(ctx); err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		prog := st.Program()

		out, err := format.Format(ctx, nil, prog)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		fmt.Print(string(out))
	}

	return nil
}

func buildAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		mod, err := compiler.CompileFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Print(ir.PrintModule(mod))
	}

	return nil
}

func testAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("usage: flowscript test <file>")
	}

	mod, err := compiler.CompileFile(ctx, c.Args[0])
	if err != nil {
		return errors.Wrap(err, "compile %v", c.Args[0])
	}

	out, err := back.New().Run(ctx, mod)
	if err != nil {
		return errors.Wrap(err, "run %v", c.Args[0])
	}

	fmt.Print(out)

	return nil
}

func testFileAct(c *cli.Command) (err error) {
	return testAct(c)
}

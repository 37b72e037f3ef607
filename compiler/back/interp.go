// Package back is FlowScript's backend: not a machine-code emitter (the
// arm64 register allocator the teacher explored is a non-goal here) but an
// interpreter that runs a verified ir.Module directly, so compiled
// programs are actually checkable without a target machine. The
// Arch/Compiler split below still mirrors the teacher's
// back.Arch/back.Compiler shape, reinterpreted from "allocate a register"
// to "resolve a call target".
package back

import (
	"bytes"
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ir"
)

type (
	// Arch resolves a call by name to the function that implements it,
	// the interpreter's equivalent of the teacher's register allocator
	// plugin point.
	Arch interface {
		Resolve(name string) (*ir.Function, bool)
	}

	module struct {
		funcs map[string]*ir.Function
	}

	// Compiler runs a module's "main" function to completion, printing
	// whatever the program prints to its output writer.
	Compiler struct {
		Out *bytes.Buffer
	}
)

func (m *module) Resolve(name string) (*ir.Function, bool) {
	f, ok := m.funcs[name]
	return f, ok
}

func New() *Compiler {
	return &Compiler{Out: &bytes.Buffer{}}
}

// Run interprets p's "main" function and returns everything it printed.
func (c *Compiler) Run(ctx context.Context, p *ir.Module) (string, error) {
	if c.Out == nil {
		c.Out = &bytes.Buffer{}
	}

	a := &module{funcs: map[string]*ir.Function{}}
	for _, fn := range p.Funcs {
		a.funcs[fn.Name] = fn
	}

	main, ok := a.Resolve("main")
	if !ok {
		return "", errors.New("no main function")
	}

	tlog.SpanFromContext(ctx).Printw("run", "func", "main")

	if _, err := c.call(ctx, a, main, nil); err != nil {
		return "", errors.Wrap(err, "main")
	}

	return c.Out.String(), nil
}

// frame holds one activation's computed values, indexed the same way the
// owning function's Values slice is.
type frame struct {
	vals []int32
	have []bool
}

func newFrame(fn *ir.Function) *frame {
	return &frame{
		vals: make([]int32, len(fn.Values)),
		have: make([]bool, len(fn.Values)),
	}
}

func (fr *frame) set(v ir.Value, x int32) {
	fr.vals[v] = x
	fr.have[v] = true
}

func (fr *frame) get(v ir.Value) int32 {
	if !fr.have[v] {
		panic(fmt.Sprintf("ir value %%%d read before it was computed", v))
	}

	return fr.vals[v]
}

func (c *Compiler) call(ctx context.Context, a Arch, fn *ir.Function, args []int32) (int32, error) {
	fr := newFrame(fn)
	mem := map[ir.Value][]int32{} // alloca id -> single-slot storage

	block := 0
	prev := -1 // the block control arrived from, for Phi

	for steps := 0; ; steps++ {
		if steps > 10_000_000 {
			return 0, errors.New("function %v: exceeded step limit, probable infinite loop", fn.Name)
		}

		blk := fn.Blocks[block]

		var ret int32
		var retOK bool
		var next int
		var jumped bool

		for _, id := range blk.Code {
			instr := fn.Values[id]

			switch x := instr.(type) {
			case ir.Param:
				fr.set(id, args[x.Index])
			case ir.ConstInt:
				fr.set(id, x.X)
			case ir.Alloca:
				mem[id] = make([]int32, 1)
				fr.set(id, int32(id)) // the alloca's own id stands in for its address
			case ir.Load:
				fr.set(id, mem[x.Addr][0])
			case ir.Store:
				mem[x.Addr][0] = fr.get(x.Val)
			case ir.Add:
				fr.set(id, fr.get(x.L)+fr.get(x.R))
			case ir.Sub:
				fr.set(id, fr.get(x.L)-fr.get(x.R))
			case ir.Mul:
				fr.set(id, fr.get(x.L)*fr.get(x.R))
			case ir.Div:
				r := fr.get(x.R)
				if r == 0 {
					return 0, errors.New("function %v: division by zero", fn.Name)
				}
				fr.set(id, fr.get(x.L)/r)
			case ir.Mod:
				r := fr.get(x.R)
				if r == 0 {
					return 0, errors.New("function %v: division by zero", fn.Name)
				}
				fr.set(id, fr.get(x.L)%r)
			case ir.Neg:
				fr.set(id, -fr.get(x.X))
			case ir.Not:
				if fr.get(x.X) == 0 {
					fr.set(id, 1)
				} else {
					fr.set(id, 0)
				}
			case ir.ICmp:
				fr.set(id, boolInt(evalCmp(x.Cond, fr.get(x.L), fr.get(x.R))))
			case ir.Phi:
				v, err := evalPhi(fr, x, prev)
				if err != nil {
					return 0, errors.Wrap(err, "function %v", fn.Name)
				}
				fr.set(id, v)
			case ir.Call:
				callee, ok := a.Resolve(x.Func)
				if !ok {
					return 0, errors.New("function %v: call to undefined function %v", fn.Name, x.Func)
				}

				callArgs := make([]int32, len(x.Args))
				for i, av := range x.Args {
					callArgs[i] = fr.get(av)
				}

				r, err := c.call(ctx, a, callee, callArgs)
				if err != nil {
					return 0, err
				}

				fr.set(id, r)
			case ir.Print:
				c.doPrint(fr, x)
			case ir.Br:
				next = x.Target
				jumped = true
			case ir.CondBr:
				if fr.get(x.Cond) != 0 {
					next = x.True
				} else {
					next = x.False
				}
				jumped = true
			case ir.Ret:
				if x.HasVal {
					ret = fr.get(x.Val)
				}
				retOK = true
			default:
				return 0, errors.New("function %v: unhandled instruction %T", fn.Name, instr)
			}
		}

		if retOK {
			return ret, nil
		}

		if !jumped {
			return 0, errors.New("function %v: block %v fell through without a terminator", fn.Name, blk.Name)
		}

		prev = block
		block = next
	}
}

// evalPhi returns the incoming value paired with pred, the block control
// arrived from.
func evalPhi(fr *frame, p ir.Phi, pred int) (int32, error) {
	for _, e := range p.Incoming {
		if e.Block == pred {
			return fr.get(e.Val), nil
		}
	}

	return 0, errors.New("phi: no incoming value for predecessor block %d", pred)
}

func evalCmp(cond ir.Cond, l, r int32) bool {
	switch cond {
	case ir.CmpEq:
		return l == r
	case ir.CmpNe:
		return l != r
	case ir.CmpLt:
		return l < r
	case ir.CmpLe:
		return l <= r
	case ir.CmpGt:
		return l > r
	case ir.CmpGe:
		return l >= r
	default:
		return false
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (c *Compiler) doPrint(fr *frame, p ir.Print) {
	for i, a := range p.Args {
		if i > 0 {
			fmt.Fprint(c.Out, " ")
		}
		fmt.Fprint(c.Out, fr.get(a))
	}
	fmt.Fprint(c.Out, "\n")
}

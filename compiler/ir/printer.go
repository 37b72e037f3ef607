package ir

import (
	"fmt"
)

// PrintModule renders m as readable text, one function per paragraph. It is
// not a parseable format, only a debugging/CLI-output aid.
func PrintModule(m *Module) string {
	var out string

	for i, fn := range m.Funcs {
		if i != 0 {
			out += "\n"
		}
		out += printFunc(fn)
	}

	return out
}

func printFunc(fn *Function) string {
	s := fmt.Sprintf("func %s(%d params) -> %s {\n", fn.Name, len(fn.Params), fn.Ret)

	for bi, blk := range fn.Blocks {
		s += fmt.Sprintf("%s:  ; block %d, preds %v\n", blk.Name, bi, blk.Preds)

		for _, id := range blk.Code {
			s += fmt.Sprintf("  %%%d = %s\n", id, printInstr(fn.Values[id]))
		}
	}

	s += "}\n"

	return s
}

func printInstr(i Instr) string {
	switch x := i.(type) {
	case Param:
		return fmt.Sprintf("param %d", x.Index)
	case ConstInt:
		return fmt.Sprintf("const %d", x.X)
	case Alloca:
		return fmt.Sprintf("alloca %s", x.Elem)
	case Load:
		return fmt.Sprintf("load %%%d", x.Addr)
	case Store:
		return fmt.Sprintf("store %%%d, %%%d", x.Addr, x.Val)
	case Add:
		return fmt.Sprintf("add %%%d, %%%d", x.L, x.R)
	case Sub:
		return fmt.Sprintf("sub %%%d, %%%d", x.L, x.R)
	case Mul:
		return fmt.Sprintf("mul %%%d, %%%d", x.L, x.R)
	case Div:
		return fmt.Sprintf("sdiv %%%d, %%%d", x.L, x.R)
	case Mod:
		return fmt.Sprintf("srem %%%d, %%%d", x.L, x.R)
	case Neg:
		return fmt.Sprintf("neg %%%d", x.X)
	case Not:
		return fmt.Sprintf("not %%%d", x.X)
	case ICmp:
		return fmt.Sprintf("icmp %s %%%d, %%%d", x.Cond, x.L, x.R)
	case Br:
		return fmt.Sprintf("br block%d", x.Target)
	case CondBr:
		return fmt.Sprintf("condbr %%%d, block%d, block%d", x.Cond, x.True, x.False)
	case Phi:
		s := "phi"
		for _, e := range x.Incoming {
			s += fmt.Sprintf(" [block%d: %%%d]", e.Block, e.Val)
		}
		return s
	case Call:
		return fmt.Sprintf("call %s%v", x.Func, x.Args)
	case Print:
		return fmt.Sprintf("print%v", x.Args)
	case Ret:
		if x.HasVal {
			return fmt.Sprintf("ret %%%d", x.Val)
		}
		return "ret"
	default:
		return fmt.Sprintf("%T", x)
	}
}

// Package ir is the FlowScript intermediate representation: a control-flow
// graph of basic blocks holding typed, three-address instructions, in the
// same alloca/load/store/phi shape LLVM IR uses.
//
// Unlike the variable-versioning SSA construction some compilers use, this
// package models allocation and mutation explicitly: a local variable is an
// Alloca in the function's entry block, read with Load and written with
// Store. Phi nodes only appear where the generator needs to merge a value
// produced on more than one incoming edge without going through memory —
// the result of a short-circuiting `and`/`or`, for instance.
package ir

import (
	"fmt"

	"github.com/flowscript-lang/flowscript/compiler/tp"
)

type (
	// Value identifies the result of an instruction. It indexes into the
	// owning Function's Values slice.
	Value int

	// Cond is an integer-comparison predicate.
	Cond string

	// Instr is any IR instruction. The concrete set is closed.
	Instr interface {
		instr()
	}

	// Param is the Nth formal parameter of the enclosing function.
	Param struct {
		Index int
	}

	ConstInt struct {
		X int32
	}

	// Alloca reserves a stack slot large enough for Elem and yields a
	// pointer to it. Every Alloca in a well-formed function lives in the
	// entry block, so it dominates every use.
	Alloca struct {
		Elem tp.Type
	}

	Load struct {
		Addr Value
	}

	Store struct {
		Addr Value
		Val  Value
	}

	Add struct{ L, R Value }
	Sub struct{ L, R Value }
	Mul struct{ L, R Value }
	Div struct{ L, R Value }
	Mod struct{ L, R Value }
	Neg struct{ X Value }
	Not struct{ X Value } // boolean not: 0 -> 1, nonzero -> 0

	// ICmp compares L and R with Cond, yielding 0 or 1.
	ICmp struct {
		Cond Cond
		L, R Value
	}

	// Br is an unconditional branch; every block ends in exactly one
	// terminator, and Br/CondBr/Ret are the only terminators.
	Br struct {
		Target int // block index
	}

	CondBr struct {
		Cond        Value
		True, False int // block indices
	}

	// PhiEdge is one incoming value of a Phi, paired with the predecessor
	// block it arrives from.
	PhiEdge struct {
		Block int
		Val   Value
	}

	Phi struct {
		Incoming []PhiEdge
	}

	Call struct {
		Func string
		Args []Value
	}

	// Print is the builtin print(...) call: FlowScript has no user
	// definable variadic functions, so this gets its own instruction
	// rather than going through Call.
	Print struct {
		Args []Value
	}

	Ret struct {
		Val    Value
		HasVal bool
	}

	// Block is a basic block: a straight-line list of instructions ending
	// in exactly one terminator.
	Block struct {
		Name  string
		Code  []Value // instruction ids, in order; last one is the terminator
		Preds []int   // predecessor block indices, filled in by the verifier
	}

	// Function is one FlowScript function, lowered to blocks of
	// instructions over a flat value table.
	Function struct {
		Name   string
		Params []tp.Type
		Ret    tp.Type

		Values []Instr     // Value i is Values[i]
		Types  []tp.Type   // parallel to Values
		Blocks []*Block
	}

	Module struct {
		Name  string
		Funcs []*Function
	}
)

const (
	CmpEq Cond = "=="
	CmpNe Cond = "!="
	CmpLt Cond = "<"
	CmpLe Cond = "<="
	CmpGt Cond = ">"
	CmpGe Cond = ">="
)

func (Param) instr()    {}
func (ConstInt) instr() {}
func (Alloca) instr()   {}
func (Load) instr()     {}
func (Store) instr()    {}
func (Add) instr()      {}
func (Sub) instr()      {}
func (Mul) instr()      {}
func (Div) instr()      {}
func (Mod) instr()      {}
func (Neg) instr()      {}
func (Not) instr()      {}
func (ICmp) instr()     {}
func (Br) instr()       {}
func (CondBr) instr()   {}
func (Phi) instr()      {}
func (Call) instr()     {}
func (Print) instr()    {}
func (Ret) instr()      {}

// IsTerminator reports whether i ends a basic block.
func IsTerminator(i Instr) bool {
	switch i.(type) {
	case Br, CondBr, Ret:
		return true
	default:
		return false
	}
}

func (f *Function) Instr(v Value) Instr { return f.Values[v] }
func (f *Function) Type(v Value) tp.Type { return f.Types[v] }

func (f *Function) String() string {
	return fmt.Sprintf("func %s(%d args) -> %s [%d blocks]", f.Name, len(f.Params), f.Ret, len(f.Blocks))
}

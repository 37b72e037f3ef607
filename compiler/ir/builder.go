package ir

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/tp"
)

// Builder appends instructions at a movable insertion point, the way an
// LLVM IRBuilder does: SetInsertPoint repositions it, every New* call
// appends there and advances it.
type Builder struct {
	ctx context.Context

	mod *Module
	fn  *Function
	blk int // index into fn.Blocks of the current insertion block
}

func NewBuilder(ctx context.Context, name string) *Builder {
	return &Builder{
		ctx: ctx,
		mod: &Module{Name: name},
	}
}

func (b *Builder) Module() *Module { return b.mod }

// NewFunction starts a new function and gives it one entry block, matching
// the convention that every function's allocas live in block 0.
func (b *Builder) NewFunction(name string, params []tp.Type, ret tp.Type) *Function {
	fn := &Function{
		Name:   name,
		Params: params,
		Ret:    ret,
	}

	b.mod.Funcs = append(b.mod.Funcs, fn)
	b.fn = fn

	entry := b.NewBlock("entry")
	b.SetInsertPoint(entry)

	for i, t := range params {
		v := b.emit(Param{Index: i}, t)
		_ = v // parameter i is Value i, which front.go's compileFunc relies on
	}

	tlog.SpanFromContext(b.ctx).Printw("new function", "name", name, "params", len(params))

	return fn
}

// NewBlock appends an empty block to the current function without moving
// the insertion point to it.
func (b *Builder) NewBlock(name string) int {
	if b.fn == nil {
		panic("ir: NewBlock with no current function")
	}

	b.fn.Blocks = append(b.fn.Blocks, &Block{Name: name})

	return len(b.fn.Blocks) - 1
}

// SetInsertPoint moves the insertion point to the end of block.
func (b *Builder) SetInsertPoint(block int) {
	b.blk = block
}

// InsertBlock returns the index of the block instructions are currently
// appended to.
func (b *Builder) InsertBlock() int { return b.blk }

// HasTerminator reports whether the current block already ends in a
// terminator; the generator uses this to silently drop unreachable code
// after a return/branch, matching the reference implementation.
func (b *Builder) HasTerminator() bool {
	return BlockTerminated(b.fn, b.fn.Blocks[b.blk])
}

// BlockTerminated reports whether blk's last instruction is a terminator.
func BlockTerminated(fn *Function, blk *Block) bool {
	if len(blk.Code) == 0 {
		return false
	}

	last := blk.Code[len(blk.Code)-1]

	return IsTerminator(fn.Values[last])
}

func (b *Builder) emit(i Instr, t tp.Type) Value {
	id := Value(len(b.fn.Values))
	b.fn.Values = append(b.fn.Values, i)
	b.fn.Types = append(b.fn.Types, t)

	blk := b.fn.Blocks[b.blk]
	blk.Code = append(blk.Code, id)

	return id
}

func (b *Builder) ConstInt(x int32) Value {
	return b.emit(ConstInt{X: x}, tp.Int32{})
}

func (b *Builder) Alloca(elem tp.Type) Value {
	return b.emit(Alloca{Elem: elem}, tp.Ptr{X: elem})
}

// AllocaEntry inserts an Alloca at the front of the entry block regardless
// of the current insertion point, so every local's allocation dominates
// every use of it even when the generator discovers the local mid-block.
func (b *Builder) AllocaEntry(elem tp.Type) Value {
	id := Value(len(b.fn.Values))
	b.fn.Values = append(b.fn.Values, Alloca{Elem: elem})
	b.fn.Types = append(b.fn.Types, tp.Ptr{X: elem})

	entry := b.fn.Blocks[0]
	entry.Code = append([]Value{id}, entry.Code...)

	return id
}

func (b *Builder) Load(addr Value) Value {
	elem := elemType(b.fn.Types[addr])
	return b.emit(Load{Addr: addr}, elem)
}

func (b *Builder) Store(addr, val Value) {
	b.emit(Store{Addr: addr, Val: val}, tp.Void{})
}

func (b *Builder) Add(l, r Value) Value { return b.emit(Add{L: l, R: r}, tp.Int32{}) }
func (b *Builder) Sub(l, r Value) Value { return b.emit(Sub{L: l, R: r}, tp.Int32{}) }
func (b *Builder) Mul(l, r Value) Value { return b.emit(Mul{L: l, R: r}, tp.Int32{}) }
func (b *Builder) Div(l, r Value) Value { return b.emit(Div{L: l, R: r}, tp.Int32{}) }
func (b *Builder) Mod(l, r Value) Value { return b.emit(Mod{L: l, R: r}, tp.Int32{}) }
func (b *Builder) Neg(x Value) Value    { return b.emit(Neg{X: x}, tp.Int32{}) }
func (b *Builder) Not(x Value) Value    { return b.emit(Not{X: x}, tp.Int32{}) }

func (b *Builder) ICmp(cond Cond, l, r Value) Value {
	return b.emit(ICmp{Cond: cond, L: l, R: r}, tp.Int32{})
}

func (b *Builder) Br(target int) Value {
	return b.emit(Br{Target: target}, tp.Void{})
}

func (b *Builder) CondBr(cond Value, t, f int) Value {
	return b.emit(CondBr{Cond: cond, True: t, False: f}, tp.Void{})
}

// NewPhi emits an empty Phi; call AddIncoming for each predecessor once
// their values are known (after the branches into this block exist).
func (b *Builder) NewPhi(t tp.Type) Value {
	return b.emit(Phi{}, t)
}

func (b *Builder) AddIncoming(phi Value, block int, val Value) {
	p := b.fn.Values[phi].(Phi)
	p.Incoming = append(p.Incoming, PhiEdge{Block: block, Val: val})
	b.fn.Values[phi] = p
}

func (b *Builder) Call(name string, args []Value, ret tp.Type) Value {
	return b.emit(Call{Func: name, Args: args}, ret)
}

func (b *Builder) Print(args []Value) Value {
	return b.emit(Print{Args: args}, tp.Void{})
}

func (b *Builder) Ret(v Value) Value {
	return b.emit(Ret{Val: v, HasVal: true}, tp.Void{})
}

func (b *Builder) RetVoid() Value {
	return b.emit(Ret{}, tp.Void{})
}

func elemType(t tp.Type) tp.Type {
	p, ok := t.(tp.Ptr)
	if !ok {
		return tp.Int32{}
	}

	return p.X
}

// Finish verifies the module the builder has been assembling and returns
// it, wrapping any verification failure with the function name it came
// from.
func (b *Builder) Finish() (*Module, error) {
	for _, fn := range b.mod.Funcs {
		if err := VerifyFunction(fn); err != nil {
			return nil, errors.Wrap(err, "func %v", fn.Name)
		}
	}

	return b.mod, nil
}

package ir

import (
	"tlog.app/go/errors"
)

// VerifyModule checks every function in m.
func VerifyModule(m *Module) error {
	for _, fn := range m.Funcs {
		if err := VerifyFunction(fn); err != nil {
			return errors.Wrap(err, "func %v", fn.Name)
		}
	}

	return nil
}

// VerifyFunction enforces the structural invariants the generator depends
// on: every block is non-empty and ends in exactly one terminator, every
// branch and phi block index is in range, and every Alloca lives in the
// entry block. It does not check that a value is defined before it is
// used. On success it fills in each block's Preds.
func VerifyFunction(fn *Function) error {
	if len(fn.Blocks) == 0 {
		return errors.New("function has no blocks")
	}

	for bi, blk := range fn.Blocks {
		if len(blk.Code) == 0 {
			return errors.New("block %d (%s) is empty", bi, blk.Name)
		}

		for ci, id := range blk.Code {
			instr := fn.Values[id]
			isTerm := IsTerminator(instr)
			isLast := ci == len(blk.Code)-1

			if isTerm && !isLast {
				return errors.New("block %d (%s): terminator %T before end of block", bi, blk.Name, instr)
			}

			if isLast && !isTerm {
				return errors.New("block %d (%s): missing terminator", bi, blk.Name)
			}

			if err := verifyTargets(fn, instr); err != nil {
				return errors.Wrap(err, "block %d (%s)", bi, blk.Name)
			}

			if a, ok := instr.(Alloca); ok && bi != 0 {
				return errors.New("block %d (%s): alloca %v outside entry block", bi, blk.Name, a)
			}
		}
	}

	fillPredecessors(fn)

	return nil
}

func verifyTargets(fn *Function, instr Instr) error {
	inRange := func(b int) error {
		if b < 0 || b >= len(fn.Blocks) {
			return errors.New("branch target %d out of range", b)
		}
		return nil
	}

	switch x := instr.(type) {
	case Br:
		return inRange(x.Target)
	case CondBr:
		if err := inRange(x.True); err != nil {
			return err
		}
		return inRange(x.False)
	case Phi:
		for _, e := range x.Incoming {
			if err := inRange(e.Block); err != nil {
				return err
			}
		}
	}

	return nil
}

func fillPredecessors(fn *Function) {
	for _, blk := range fn.Blocks {
		blk.Preds = blk.Preds[:0]
	}

	for bi, blk := range fn.Blocks {
		last := fn.Values[blk.Code[len(blk.Code)-1]]

		addPred := func(target int) {
			t := fn.Blocks[target]
			t.Preds = append(t.Preds, bi)
		}

		switch x := last.(type) {
		case Br:
			addPred(x.Target)
		case CondBr:
			addPred(x.True)
			addPred(x.False)
		}
	}
}

package front

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/flowscript-lang/flowscript/compiler/ir"
)

// scope is one level of FlowScript's lexical scope stack: a parent-linked
// chain from a function body block down through nested if/for blocks, the
// Go-idiomatic equivalent of the original's fixed-size SymbolTable array
// with a parent pointer. Unlike the original, lookups never silently
// truncate — define just grows the map.
type scope struct {
	parent *scope
	vars   map[string]ir.Value // name -> alloca address
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: map[string]ir.Value{}}
}

// define binds name to addr in this scope, shadowing any outer binding of
// the same name.
func (s *scope) define(ctx context.Context, name string, addr ir.Value) {
	tlog.V("vars,define").Printw("define var", "name", name, "addr", addr)

	s.vars[name] = addr
}

// lookup walks outward from s looking for name, the way the original's
// lookup_symbol walks the parent chain.
func (s *scope) lookup(name string) (ir.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if addr, ok := sc.vars[name]; ok {
			return addr, true
		}
	}

	return 0, false
}

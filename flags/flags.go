// Package flags infers the subset of compiler flags (component J) that are
// fully determined by a code unit's instructions, rather than by how it was
// declared.
package flags

import (
	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/codeobj"
)

// Infer recomputes FlagOptimized, FlagGenerator, FlagNoFree, FlagCoroutine,
// and FlagAsyncGenerator from instrs and the unit's cell/free variable
// lists (spec §4.6). isAsync forces coroutine/async-generator
// classification when true, forbids it when false, and lets YIELD_VALUE
// presence decide GENERATOR alone when nil. Every other flag
// (NEWLOCALS, VARARGS, VARKEYWORDS, NESTED, ...) is left untouched by this
// function; callers own those bits directly on the Header.
func Infer(instrs []*abstract.Instr, cellVars, freeVars []string, isAsync *bool) codeobj.Flags {
	var optimized, hasYield bool = true, false

	for _, in := range instrs {
		switch in.Op.Name {
		case "LOAD_NAME", "STORE_NAME":
			optimized = false
		case "YIELD_VALUE", "YIELD_FROM":
			hasYield = true
		}
	}

	var out codeobj.Flags
	if optimized {
		out |= codeobj.FlagOptimized
	}
	if len(cellVars) == 0 && len(freeVars) == 0 {
		out |= codeobj.FlagNoFree
	}

	async := isAsync != nil && *isAsync
	if hasYield && !async {
		out |= codeobj.FlagGenerator
	}
	if async {
		if hasYield {
			out |= codeobj.FlagAsyncGenerator
		} else {
			out |= codeobj.FlagCoroutine
		}
	}

	return out
}

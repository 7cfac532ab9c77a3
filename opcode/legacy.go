package opcode

// legacyDefs builds the opcode set shared by 3.8, 3.9, and 3.10: absolute-
// or forward-only jumps, per-operator binary/unary arithmetic opcodes, and
// no inline instruction cache. 3.10 differs from 3.9 only in jump step
// (word- instead of byte-addressed, handled by the disassembler/assembler,
// not this table) and in allowing negative line-table deltas (handled by
// package concrete), so both register directly off this function.
//
// 3.8 differs from 3.9/3.10 in its with-statement and finally-block cleanup
// opcodes: bpo-40222 simplified that bytecode for 3.9, dropping
// WITH_CLEANUP_START/WITH_CLEANUP_FINISH/END_FINALLY in favor of RERAISE and
// WITH_EXCEPT_START. Code 82 is WITH_CLEANUP_FINISH on 3.8 and LIST_TO_TUPLE
// (from baseDefs) on 3.9/3.10; the two never land in the same table.
func legacyDefs(v Version) []Def {
	defs := baseDefs(v, func(string) int { return 0 })

	defs = append(defs,
		// Jumps. Pre-3.11 all conditional/absolute jumps carry an absolute
		// target; JUMP_FORWARD and FOR_ITER carry a forward-relative one.
		Def{Name: "JUMP_FORWARD", Code: 110, Cat: JumpForward, Pre: 0, Post: 0},
		Def{Name: "JUMP_ABSOLUTE", Code: 113, Cat: JumpAbs, Pre: 0, Post: 0},
		Def{Name: "POP_JUMP_IF_FALSE", Code: 114, Cat: JumpAbs, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_IF_TRUE", Code: 115, Cat: JumpAbs, Pre: 1, Post: -1},
		Def{Name: "JUMP_IF_FALSE_OR_POP", Code: 111, Cat: JumpAbs, Pre: 1, Post: 0, JumpPost: -1},
		Def{Name: "JUMP_IF_TRUE_OR_POP", Code: 112, Cat: JumpAbs, Pre: 1, Post: 0, JumpPost: -1},
		Def{Name: "FOR_ITER", Code: 93, Cat: JumpForward, Pre: 1, Post: 1, JumpPost: -1},
		Def{Name: "SETUP_FINALLY", Code: 122, Cat: JumpForward, Pre: 0, Post: 0},
		Def{Name: "CONTINUE_LOOP", Code: 119, Cat: JumpAbs, Pre: 0, Post: 0},
	)

	if v == V38 {
		// try/except/finally and with-statement cleanup without RERAISE/
		// WITH_EXCEPT_START: explicit stack manipulation opcodes instead.
		defs = append(defs,
			Def{Name: "END_FINALLY", Code: 6, Cat: NoArg, Pre: 0, Post: 0},
			Def{Name: "WITH_CLEANUP_START", Code: 81, Cat: NoArg, Pre: 1, Post: 1},
			Def{Name: "WITH_CLEANUP_FINISH", Code: 82, Cat: NoArg, Pre: 2, Post: -2},
		)
	} else {
		defs = append(defs,
			Def{Name: "RERAISE", Code: 48, Cat: Raw, Pre: 1, Post: -1},
			Def{Name: "WITH_EXCEPT_START", Code: 49, Cat: NoArg, Pre: 4, Post: 1},
		)
	}

	defs = append(defs,
		// Calls: plain integer argument counts, no cache.
		Def{Name: "CALL_FUNCTION", Code: 131, Cat: Raw, Pre: 0, Post: 0},
		Def{Name: "CALL_FUNCTION_KW", Code: 141, Cat: Raw, Pre: 0, Post: 0},
		Def{Name: "CALL_FUNCTION_EX", Code: 142, Cat: Raw, Pre: 0, Post: 0},
		Def{Name: "LOAD_METHOD", Code: 160, Cat: Name, Pre: 1, Post: 1},
		Def{Name: "CALL_METHOD", Code: 161, Cat: Raw, Pre: 0, Post: 0},

		Def{Name: "LOAD_ATTR", Code: 106, Cat: Name, Pre: 1, Post: 0},
		Def{Name: "LOAD_GLOBAL", Code: 116, Cat: LoadGlobal, Pre: 0, Post: 1},

		// Per-operator binary/unary/in-place arithmetic (BINARY_OP with an
		// enum argument arrives only in 3.11).
		Def{Name: "BINARY_ADD", Code: 23, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_SUBTRACT", Code: 24, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_MULTIPLY", Code: 20, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_TRUE_DIVIDE", Code: 27, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_FLOOR_DIVIDE", Code: 26, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_MODULO", Code: 22, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_SUBSCR", Code: 25, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_AND", Code: 64, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_OR", Code: 66, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "BINARY_XOR", Code: 65, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "INPLACE_ADD", Code: 55, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "STORE_SUBSCR", Code: 60, Cat: NoArg, Pre: 3, Post: -3},
		Def{Name: "DELETE_SUBSCR", Code: 61, Cat: NoArg, Pre: 2, Post: -2},
	)

	for i := range defs {
		if defs[i].JumpPost == 0 && defs[i].Cat.IsJump() {
			defs[i].JumpPost = defs[i].Post
		}
	}
	return defs
}

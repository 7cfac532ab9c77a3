package opcode

func init() {
	defs := baseDefs(V311, func(name string) int {
		switch name {
		case "LOAD_GLOBAL":
			return 5
		case "LOAD_DEREF", "LOAD_FAST", "LOAD_NAME", "LOAD_CONST":
			return 0
		case "COMPARE_OP":
			return 2
		case "GET_ITER":
			return 0
		default:
			return 0
		}
	})

	defs = append(defs,
		Def{Name: "JUMP_FORWARD", Code: 110, Cat: JumpForward, Pre: 0, Post: 0},
		Def{Name: "JUMP_BACKWARD", Code: 140, Cat: JumpBackward, Pre: 0, Post: 0},
		Def{Name: "POP_JUMP_FORWARD_IF_FALSE", Code: 114, Cat: JumpForward, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_FORWARD_IF_TRUE", Code: 115, Cat: JumpForward, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_BACKWARD_IF_FALSE", Code: 116, Cat: JumpBackward, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_BACKWARD_IF_TRUE", Code: 117, Cat: JumpBackward, Pre: 1, Post: -1},
		Def{Name: "FOR_ITER", Code: 93, Cat: JumpForward, Pre: 1, Post: 1, JumpPost: -1, Cache: 0},
		Def{Name: "SEND", Code: 121, Cat: JumpForward, Pre: 2, Post: 0, Cache: 0},

		// Exception-table based unwinding (no SETUP_FINALLY/END_FINALLY):
		// TryBegin/TryEnd pseudo-instructions stand in for exception-table
		// entries at the abstract layer; these opcodes manipulate the
		// handler frame the interpreter builds when it consults that table.
		Def{Name: "PUSH_EXC_INFO", Code: 35, Cat: NoArg, Pre: 1, Post: 2},
		Def{Name: "CHECK_EXC_MATCH", Code: 36, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "RERAISE", Code: 48, Cat: Raw, Pre: 1, Post: -1},
		Def{Name: "WITH_EXCEPT_START", Code: 49, Cat: NoArg, Pre: 4, Post: 1},
		Def{Name: "PUSH_NULL", Code: 3, Cat: NoArg, Pre: 0, Post: 1},
		Def{Name: "SWAP", Code: 99, Cat: Raw, Pre: 0, Post: 0},
		Def{Name: "COPY", Code: 120, Cat: Raw, Pre: 0, Post: 1},

		Def{Name: "LOAD_ATTR", Code: 106, Cat: Name, Pre: 1, Post: 0, Cache: 4},
		Def{Name: "LOAD_GLOBAL", Code: 118, Cat: LoadGlobal, Pre: 0, Post: 1, Cache: 5},
		Def{Name: "LOAD_METHOD", Code: 160, Cat: Name, Pre: 1, Post: 1, Cache: 10},
		Def{Name: "PRECALL", Code: 166, Cat: Raw, Pre: 0, Post: 0, Cache: 1},
		Def{Name: "CALL", Code: 171, Cat: Raw, Pre: 0, Post: 0, Cache: 4},
		Def{Name: "KW_NAMES", Code: 172, Cat: Raw, Pre: 0, Post: 0},

		Def{Name: "BINARY_OP", Code: 122, Cat: BinaryOp, Pre: 2, Post: -1, Cache: 1},
		Def{Name: "BINARY_SUBSCR", Code: 25, Cat: NoArg, Pre: 2, Post: -1, Cache: 4},
		Def{Name: "STORE_SUBSCR", Code: 60, Cat: NoArg, Pre: 3, Post: -3, Cache: 1},
	)

	for i := range defs {
		if defs[i].JumpPost == 0 && defs[i].Cat.IsJump() {
			defs[i].JumpPost = defs[i].Post
		}
	}
	register(V311, defs)
}

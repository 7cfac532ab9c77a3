package opcode

func init() {
	defs := baseDefs(V312, func(name string) int {
		switch name {
		case "LOAD_GLOBAL":
			return 4
		case "COMPARE_OP":
			return 1
		default:
			return 0
		}
	})

	defs = append(defs,
		Def{Name: "JUMP_FORWARD", Code: 110, Cat: JumpForward, Pre: 0, Post: 0},
		Def{Name: "JUMP_BACKWARD", Code: 140, Cat: JumpBackward, Pre: 0, Post: 0},
		Def{Name: "POP_JUMP_IF_FALSE", Code: 114, Cat: JumpForward, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_IF_TRUE", Code: 115, Cat: JumpForward, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_BACKWARD_IF_FALSE", Code: 116, Cat: JumpBackward, Pre: 1, Post: -1},
		Def{Name: "POP_JUMP_BACKWARD_IF_TRUE", Code: 117, Cat: JumpBackward, Pre: 1, Post: -1},
		Def{Name: "FOR_ITER", Code: 93, Cat: JumpForward, Pre: 1, Post: 1, JumpPost: -1, Cache: 1},
		Def{Name: "SEND", Code: 121, Cat: JumpForward, Pre: 2, Post: 0, Cache: 1},

		Def{Name: "PUSH_EXC_INFO", Code: 35, Cat: NoArg, Pre: 1, Post: 2},
		Def{Name: "CHECK_EXC_MATCH", Code: 36, Cat: NoArg, Pre: 2, Post: -1},
		Def{Name: "RERAISE", Code: 48, Cat: Raw, Pre: 1, Post: -1},
		Def{Name: "WITH_EXCEPT_START", Code: 49, Cat: NoArg, Pre: 4, Post: 1},
		Def{Name: "PUSH_NULL", Code: 3, Cat: NoArg, Pre: 0, Post: 1},
		Def{Name: "SWAP", Code: 99, Cat: Raw, Pre: 0, Post: 0},
		Def{Name: "COPY", Code: 120, Cat: Raw, Pre: 0, Post: 1},

		// LOAD_METHOD is fused into LOAD_ATTR: the low bit of the operand
		// (call_as_method) selects method-call shape at runtime.
		Def{Name: "LOAD_ATTR", Code: 106, Cat: LoadAttr, Pre: 1, Post: 0, Cache: 9},
		Def{Name: "LOAD_GLOBAL", Code: 118, Cat: LoadGlobal, Pre: 0, Post: 1, Cache: 4},
		Def{Name: "LOAD_SUPER_ATTR", Code: 141, Cat: LoadSuperAttr, Pre: 3, Post: -2, Cache: 1},

		// PRECALL was removed: CALL alone drives the call sequence.
		Def{Name: "CALL", Code: 171, Cat: Raw, Pre: 0, Post: 0, Cache: 3},
		Def{Name: "KW_NAMES", Code: 172, Cat: Raw, Pre: 0, Post: 0},

		Def{Name: "BINARY_OP", Code: 122, Cat: BinaryOp, Pre: 2, Post: -1, Cache: 1},
		Def{Name: "BINARY_SUBSCR", Code: 25, Cat: NoArg, Pre: 2, Post: -1, Cache: 1},
		Def{Name: "STORE_SUBSCR", Code: 60, Cat: NoArg, Pre: 3, Post: -3, Cache: 1},

		Def{Name: "CALL_INTRINSIC_1", Code: 173, Cat: Intrinsic1, Pre: 1, Post: 0},
		Def{Name: "CALL_INTRINSIC_2", Code: 174, Cat: Intrinsic2, Pre: 2, Post: -1},
	)

	for i := range defs {
		if defs[i].JumpPost == 0 && defs[i].Cat.IsJump() {
			defs[i].JumpPost = defs[i].Post
		}
	}
	register(V312, defs)
}

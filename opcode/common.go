package opcode

// baseDefs returns the opcodes whose mnemonic, category, and stack effect
// are identical across every version that carries them. cache is the inline
// cache slot count to apply to opcodes that gained caches in 3.11 (it is 0
// for 3.8-3.10 tables and non-zero for 3.11/3.12 tables, passed in by the
// per-version file). v gates the handful of opcodes that arrived partway
// through the supported range: LOAD_ASSERTION_ERROR, LIST_TO_TUPLE,
// LIST_EXTEND, SET_UPDATE, DICT_UPDATE, and DICT_MERGE were all added in
// 3.9, so V38's table omits them (and frees Code 82 for 3.8's
// WITH_CLEANUP_FINISH, see legacy.go).
func baseDefs(v Version, cache func(name string) int) []Def {
	c := func(name string) int { return cache(name) }
	defs := []Def{
		{Name: "NOP", Code: OpNOP, Cat: NoArg, Pre: 0, Post: 0},
		{Name: "POP_TOP", Code: 1, Cat: NoArg, Pre: 1, Post: -1},
		{Name: "ROT_TWO", Code: 2, Cat: NoArg, Pre: 2, Post: 0},
		{Name: "DUP_TOP", Code: 4, Cat: NoArg, Pre: 1, Post: 1},
		{Name: "UNARY_POSITIVE", Code: 10, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "UNARY_NEGATIVE", Code: 11, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "UNARY_NOT", Code: 12, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "UNARY_INVERT", Code: 15, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "GET_ITER", Code: 68, Cat: NoArg, Pre: 1, Post: 0, Cache: c("GET_ITER")},
		{Name: "GET_YIELD_FROM_ITER", Code: 69, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "PRINT_EXPR", Code: 70, Cat: NoArg, Pre: 1, Post: -1},
		{Name: "LOAD_BUILD_CLASS", Code: 71, Cat: NoArg, Pre: 0, Post: 1},
		{Name: "YIELD_VALUE", Code: 86, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "YIELD_FROM", Code: 87, Cat: NoArg, Pre: 2, Post: -1},
		{Name: "SETUP_ANNOTATIONS", Code: 85, Cat: NoArg, Pre: 0, Post: 0},
		{Name: "POP_EXCEPT", Code: 89, Cat: NoArg, Pre: 3, Post: -3},
		{Name: "RETURN_VALUE", Code: 83, Cat: NoArg, Pre: 1, Post: -1},
		{Name: "GET_AWAITABLE", Code: 73, Cat: NoArg, Pre: 1, Post: 0},
		{Name: "BEFORE_ASYNC_WITH", Code: 52, Cat: NoArg, Pre: 1, Post: 1},
		{Name: "IMPORT_STAR", Code: 84, Cat: NoArg, Pre: 1, Post: -1},

		{Name: "LOAD_FAST", Code: 124, Cat: Local, Pre: 0, Post: 1, Cache: c("LOAD_FAST")},
		{Name: "STORE_FAST", Code: 125, Cat: Local, Pre: 1, Post: -1},
		{Name: "DELETE_FAST", Code: 126, Cat: Local, Pre: 0, Post: 0},

		{Name: "LOAD_NAME", Code: 101, Cat: Name, Pre: 0, Post: 1, Cache: c("LOAD_NAME")},
		{Name: "STORE_NAME", Code: 90, Cat: Name, Pre: 1, Post: -1},
		{Name: "DELETE_NAME", Code: 91, Cat: Name, Pre: 0, Post: 0},
		{Name: "STORE_ATTR", Code: 95, Cat: Name, Pre: 2, Post: -2},
		{Name: "DELETE_ATTR", Code: 96, Cat: Name, Pre: 1, Post: -1},
		{Name: "STORE_GLOBAL", Code: 97, Cat: Name, Pre: 1, Post: -1},
		{Name: "DELETE_GLOBAL", Code: 98, Cat: Name, Pre: 0, Post: 0},
		{Name: "IMPORT_NAME", Code: 108, Cat: Name, Pre: 2, Post: -1},
		{Name: "IMPORT_FROM", Code: 109, Cat: Name, Pre: 1, Post: 1},

		{Name: "LOAD_DEREF", Code: 136, Cat: CellFree, Pre: 0, Post: 1, Cache: c("LOAD_DEREF")},
		{Name: "STORE_DEREF", Code: 137, Cat: CellFree, Pre: 1, Post: -1},
		{Name: "DELETE_DEREF", Code: 138, Cat: CellFree, Pre: 0, Post: 0},
		{Name: "LOAD_CLASSDEREF", Code: 148, Cat: CellFree, Pre: 0, Post: 1},
		{Name: "LOAD_CLOSURE", Code: 135, Cat: CellFree, Pre: 0, Post: 1},

		{Name: "LOAD_CONST", Code: 100, Cat: Const, Pre: 0, Post: 1, Cache: c("LOAD_CONST")},

		{Name: "COMPARE_OP", Code: 107, Cat: Compare, Pre: 2, Post: -1, Cache: c("COMPARE_OP")},

		{Name: "RAISE_VARARGS", Code: 130, Cat: Raw, Pre: 0, Post: 0},
		{Name: "FORMAT_VALUE", Code: 155, Cat: Raw, Pre: 1, Post: 0},
		{Name: "BUILD_TUPLE", Code: 102, Cat: Raw, Pre: 0, Post: 0},
		{Name: "BUILD_LIST", Code: 103, Cat: Raw, Pre: 0, Post: 0},
		{Name: "BUILD_SET", Code: 104, Cat: Raw, Pre: 0, Post: 0},
		{Name: "BUILD_MAP", Code: 105, Cat: Raw, Pre: 0, Post: 0},
		{Name: "BUILD_STRING", Code: 157, Cat: Raw, Pre: 0, Post: 0},
		{Name: "BUILD_SLICE", Code: 133, Cat: Raw, Pre: 0, Post: 0},
		{Name: "UNPACK_SEQUENCE", Code: 92, Cat: Raw, Pre: 1, Post: 0},
		{Name: "UNPACK_EX", Code: 94, Cat: Raw, Pre: 1, Post: 0},
		{Name: "MAKE_FUNCTION", Code: 132, Cat: Raw, Pre: 1, Post: 0},
		{Name: "EXTENDED_ARG", Code: OpExtendedArg, Cat: Raw, Pre: 0, Post: 0, Pseudo: true},
	}

	if v != V38 {
		defs = append(defs,
			Def{Name: "LOAD_ASSERTION_ERROR", Code: 74, Cat: NoArg, Pre: 0, Post: 1},
			Def{Name: "LIST_TO_TUPLE", Code: 82, Cat: NoArg, Pre: 1, Post: 0},
			Def{Name: "LIST_EXTEND", Code: 162, Cat: Raw, Pre: 2, Post: -1},
			Def{Name: "SET_UPDATE", Code: 163, Cat: Raw, Pre: 2, Post: -1},
			Def{Name: "DICT_UPDATE", Code: 165, Cat: Raw, Pre: 2, Post: -1},
			Def{Name: "DICT_MERGE", Code: 164, Cat: Raw, Pre: 2, Post: -1},
		)
	}

	return defs
}

package opcode

func init() {
	register(V38, legacyDefs(V38))
}

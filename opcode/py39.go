package opcode

func init() {
	register(V39, legacyDefs(V39))
}

package opcode

// 3.10 keeps 3.9's opcode set; the only changes relevant to this library are
// word- instead of byte-addressed jump targets (package assemble/disasm) and
// negative line-table deltas (package concrete), neither of which is opcode
// metadata.
func init() {
	register(V310, legacyDefs(V310))
}

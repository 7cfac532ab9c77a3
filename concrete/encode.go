package concrete

import (
	"bytes"

	"github.com/go-python/pybc/opcode"
)

// Encode serializes bc.Instrs into a raw code byte array: each
// instruction is preceded by as many EXTENDED_ARG prefix pairs as
// max(extendedArgCount(RawArg), ExtendedArgs) requires, and followed by
// its opcode's cache slots as zero bytes. Callers (package assemble) are
// responsible for having already resolved every RawArg and ExtendedArgs
// to their final values via the jump fixed-point before calling Encode.
func Encode(bc *Bytecode) []byte {
	buf := new(bytes.Buffer)
	for _, in := range bc.Instrs {
		prefixes := extendedArgCount(in.RawArg)
		if in.ExtendedArgs > prefixes {
			prefixes = in.ExtendedArgs
		}
		raw := in.RawArg
		for p := prefixes; p > 0; p-- {
			buf.WriteByte(opcode.OpExtendedArg)
			buf.WriteByte(byte(raw >> (8 * uint(p))))
		}
		buf.WriteByte(in.Op.Code)
		buf.WriteByte(byte(raw))
		for i := 0; i < in.Op.Cache; i++ {
			buf.WriteByte(0)
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

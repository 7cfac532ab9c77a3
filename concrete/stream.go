// Package concrete implements the concrete bytecode layer (component C): a
// flat ordered sequence of opcodes with integer arguments and byte-offset
// addressing, plus the packed line-table and exception-table codecs whose
// bit layout changes per interpreter version.
package concrete

import (
	"fmt"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
)

// Instr is one concrete instruction: an opcode plus a raw unsigned integer
// argument that may require leading EXTENDED_ARG prefixes to encode (those
// prefixes are represented implicitly by RawArg, not as separate Instr
// values, except when preserved verbatim ahead of a NOP, whose ExtendedArgs
// field below records the count so re-encoding reproduces them exactly).
type Instr struct {
	Op     *opcode.Def
	RawArg uint32
	Loc    abstract.Location

	// ExtendedArgs is a floor on the number of EXTENDED_ARG prefixes this
	// instruction encodes with, even when RawArg's own magnitude would fit
	// in fewer. Width/Encode use max(extendedArgCount(RawArg), ExtendedArgs).
	// Two producers rely on this: a decoder recording the verbatim prefix
	// count observed before a NOP with RawArg == 0 (prefixes that carry no
	// further information but must round-trip exactly), and the assembler's
	// jump fixed-point (package assemble), which pads a jump's width to a
	// previously-committed size so offsets never shrink between passes.
	ExtendedArgs int
}

// Bytecode is the concrete instruction stream for one code unit, plus the
// pools and tables the concrete encoding is addressed against.
type Bytecode struct {
	Version opcode.Version

	Consts   []pyval.Value
	Names    []string
	VarNames []string
	CellVars []string
	FreeVars []string

	Instrs []Instr

	FirstLineno int
	LineTable   []byte
	ExcTable    []byte
}

// Step returns the jump-argument addressing unit for v, in bytes: 1 before
// 3.10 (a jump's raw argument is already a byte offset), 2 from 3.10
// onward (a jump's raw argument counts in 2-byte code units, so it must be
// scaled to compare against Offsets' byte positions).
func Step(v opcode.Version) int {
	if v == opcode.V38 || v == opcode.V39 {
		return 1
	}
	return 2
}

// Width reports the byte width of instruction in (its EXTENDED_ARG
// prefixes, its own opcode+arg pair, and its cache slots), each code unit
// being 2 bytes wide.
func (in Instr) Width() int {
	prefixes := extendedArgCount(in.RawArg)
	if in.ExtendedArgs > prefixes {
		prefixes = in.ExtendedArgs
	}
	return 2 * (prefixes + 1 + in.Op.Cache)
}

// String renders in for test failure messages and Example output: the
// opcode name plus its raw argument, or just the name for a zero-argument
// opcode (matching the level of detail the teacher's Op.String() gives,
// not a full debug disassembly).
func (in Instr) String() string {
	if in.Op.Cat == opcode.NoArg {
		return in.Op.Name
	}
	return fmt.Sprintf("%s %d", in.Op.Name, in.RawArg)
}

// Offsets returns the byte offset of each instruction in Instrs, accounting
// for each instruction's EXTENDED_ARG prefixes, its own opcode+arg byte
// pair, and its cache slots (3.11+).
func (bc *Bytecode) Offsets() []int {
	offsets := make([]int, len(bc.Instrs))
	pos := 0
	for i, in := range bc.Instrs {
		offsets[i] = pos
		pos += in.Width()
	}
	return offsets
}

// extendedArgCount returns how many EXTENDED_ARG prefixes are needed to
// encode raw: 0 if it fits in one byte, up to 3 for the full 32-bit range.
func extendedArgCount(raw uint32) int {
	n := 0
	raw >>= 8
	for raw != 0 {
		n++
		raw >>= 8
	}
	return n
}

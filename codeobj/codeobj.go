// Package codeobj defines the external interface (spec §6): the opaque
// compiled-unit value the disassembler reads and the assembler produces,
// plus the header fields that travel alongside the instruction stream
// through every layer. The host interpreter's exact in-memory code-object
// layout is treated as external (spec §1); CodeObject is this library's
// own serializable stand-in for it, covering every field spec §6 lists.
package codeobj

import (
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
)

// Flags mirrors the subset of compiler flags this library inspects or
// infers (spec §4.6). Bit positions follow CPython's historical
// assignment; only the bits this library reads/writes are named.
type Flags uint32

const (
	FlagOptimized Flags = 1 << iota
	FlagNewLocals
	FlagVarargs
	FlagVarKeywords
	FlagNested
	FlagGenerator
	FlagNoFree
	FlagCoroutine
	_ // 1<<8, CPython's ITERABLE_COROUTINE, is not used by this library
	FlagAsyncGenerator
)

// Has reports whether all bits of want are set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// With returns f with the bits of set added and the bits of clear removed.
func (f Flags) With(set, clear Flags) Flags { return (f | set) &^ clear }

// Header carries the fields of a code unit that are not part of the
// instruction stream itself (spec §3 "Code unit header").
type Header struct {
	Version         opcode.Version
	ArgCount        int
	PosOnlyArgCount int
	KwOnlyArgCount  int
	Flags           Flags
	FirstLineno     int
	Filename        string
	Name            string
	Qualname        string // 3.11+; empty before then
	ArgNames        []string
	CellVars        []string
	FreeVars        []string
	Docstring       *pyval.Value // nil if absent; becomes consts[0] on assembly if non-nil and not None
}

// CodeObject is the opaque compiled-unit value of spec §6: raw code bytes,
// the four index pools, the packed line/exception tables, and stacksize.
// disasm.Disassemble consumes one; assemble.Assemble produces one.
type CodeObject struct {
	Header

	Code           []byte
	Consts         []pyval.Value
	Names          []string
	VarNames       []string // argcount+kwonlyargcount+... locals, in CPython's localsplus order
	LineTable      []byte   // packed per-version format, see package concrete
	ExceptionTable []byte   // packed varint format, 3.11+ only; nil before 3.11
	StackSize      int
}

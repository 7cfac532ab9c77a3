// Package pybc ties the disassembler, editor, and assembler into the
// single entry point most callers want: read a compiled code unit, walk or
// mutate its abstract instruction stream, and write a new code unit back
// out (spec §1, §6).
package pybc

import (
	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/assemble"
	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/disasm"
	"github.com/go-python/pybc/opcode"
)

// Disassemble converts a compiled code unit into its abstract instruction
// stream (component F). unit's Header travels alongside the returned
// stream unchanged; Assemble needs it back to reassemble.
func Disassemble(unit *codeobj.CodeObject) (*abstract.Bytecode, error) {
	return disasm.Disassemble(unit)
}

// Assemble converts bc back into a compiled code unit under hdr (component
// G), with the default jump fixed-point budget and stack-depth check.
func Assemble(bc *abstract.Bytecode, hdr codeobj.Header) (*codeobj.CodeObject, error) {
	return assemble.Assemble(bc, hdr)
}

// AssembleWithOptions is Assemble with explicit control over the jump
// fixed-point pass budget and the optional stack-depth check.
func AssembleWithOptions(bc *abstract.Bytecode, hdr codeobj.Header, opts Options) (*codeobj.CodeObject, error) {
	return assemble.AssembleWithOptions(bc, hdr, opts)
}

// Options controls the optional parts of assembly; see assemble.Options.
type Options = assemble.Options

// Re-exported error kinds, so a caller inspecting an error returned from
// this package's functions never needs to import the component
// subpackages directly.
type (
	ErrUnresolvedTarget   = assemble.ErrUnresolvedTarget
	ErrDuplicateDocstring = assemble.ErrDuplicateDocstring
	ErrJumpsUnstable      = assemble.ErrJumpsUnstable
	ErrStackUnderflow     = assemble.ErrStackUnderflow
	ErrBadJumpTarget      = disasm.ErrBadJumpTarget
	ErrIndexOutOfRange    = disasm.ErrIndexOutOfRange
	ErrUnsupportedVersion = opcode.ErrUnsupportedVersion
)

// Edit disassembles unit, lets fn mutate the resulting stream in place,
// and reassembles it under unit's own header. This is the decode-patch-
// encode shape most bytecode edits follow; callers with more unusual
// needs (a different header, access to the intermediate CFG) can still
// call Disassemble/Assemble directly.
func Edit(unit *codeobj.CodeObject, fn func(bc *abstract.Bytecode) error) (*codeobj.CodeObject, error) {
	bc, err := Disassemble(unit)
	if err != nil {
		return nil, err
	}
	if err := fn(bc); err != nil {
		return nil, err
	}
	return Assemble(bc, unit.Header)
}

package concrete

import (
	"bytes"
	"fmt"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
)

// ErrTruncatedCode is returned when the raw code array ends mid-instruction
// or mid-EXTENDED_ARG-run.
var ErrTruncatedCode = fmt.Errorf("concrete: truncated code array")

// Decode unpacks unit's raw code array and packed line table into a
// Bytecode: a flat Instrs list with EXTENDED_ARG runs folded into RawArg
// (spec §4.2 step 1), and per-instruction Loc populated from the line
// table (step 2). It does not classify arguments or resolve jumps; that is
// package disasm's job.
func Decode(unit *codeobj.CodeObject) (*Bytecode, error) {
	table := opcode.TableFor(unit.Version)

	var instrs []Instr

	r := bytes.NewReader(unit.Code)
	var rawArg uint32
	var extendedRuns int

	for r.Len() > 0 {
		opByte, err := r.ReadByte()
		if err != nil {
			return nil, ErrTruncatedCode
		}
		argByte, err := r.ReadByte()
		if err != nil {
			return nil, ErrTruncatedCode
		}

		if opByte == opcode.OpExtendedArg {
			rawArg = rawArg<<8 | uint32(argByte)
			extendedRuns++
			continue
		}

		def, err := table.ByCode(opByte)
		if err != nil {
			return nil, err
		}
		rawArg = rawArg<<8 | uint32(argByte)

		in := Instr{Op: def, RawArg: rawArg}
		if def.Code == opcode.OpNOP && rawArg == 0 {
			in.ExtendedArgs = extendedRuns
		}
		instrs = append(instrs, in)

		for i := 0; i < def.Cache; i++ {
			if _, err := r.ReadByte(); err != nil {
				return nil, ErrTruncatedCode
			}
			if _, err := r.ReadByte(); err != nil {
				return nil, ErrTruncatedCode
			}
		}

		rawArg = 0
		extendedRuns = 0
	}
	if extendedRuns != 0 {
		return nil, ErrTruncatedCode
	}

	bc := &Bytecode{
		Version:     unit.Version,
		Consts:      append([]pyval.Value(nil), unit.Consts...),
		Names:       append([]string(nil), unit.Names...),
		VarNames:    append([]string(nil), unit.VarNames...),
		CellVars:    append([]string(nil), unit.CellVars...),
		FreeVars:    append([]string(nil), unit.FreeVars...),
		Instrs:      instrs,
		FirstLineno: unit.FirstLineno,
		LineTable:   unit.LineTable,
		ExcTable:    unit.ExceptionTable,
	}

	lineEntries, err := DecodeLineTable(unit.Version, unit.FirstLineno, unit.LineTable)
	if err != nil {
		return nil, err
	}
	boundaries := bc.Offsets()
	for i := range bc.Instrs {
		bc.Instrs[i].Loc = locationAt(lineEntries, boundaries[i])
	}

	return bc, nil
}

func locationAt(entries []LineEntry, byteOffset int) abstract.Location {
	for _, e := range entries {
		if byteOffset >= e.ByteStart && byteOffset < e.ByteStart+e.ByteLen {
			if e.Line == noSource {
				return abstract.NoLocation
			}
			return abstract.Location{
				StartLine: e.Line,
				EndLine:   e.EndLine,
				StartCol:  e.StartCol,
				EndCol:    e.EndCol,
			}
		}
	}
	return abstract.NoLocation
}

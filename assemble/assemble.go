// Package assemble implements the assembler (component G): abstract to
// concrete conversion. It builds the constant/name/varname pools in
// first-occurrence order, resolves jump targets through an EXTENDED_ARG
// fixed-point, and rebuilds the line table and (3.11+) exception table.
package assemble

import (
	"fmt"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/cfg"
	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/concrete"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/stackdepth"
)

// Options controls the optional parts of assembly (spec §4.3.3, §4.3.5).
type Options struct {
	// MaxPasses bounds the jump fixed-point loop. Zero means the spec
	// default of 10.
	MaxPasses int
	// SkipStackCheck disables the optional stack-depth check that would
	// otherwise run over the assembled stream's CFG before finalization.
	SkipStackCheck bool
}

const defaultMaxPasses = 10

// openRegion tracks one TryBegin's currently-open coverage extent while
// walking the stream. Each TryEnd that references the TryBegin closes the
// extent into one exception-table entry and opens a new extent right
// after it; an extent that no later TryEnd closes produces no entry.
type openRegion struct {
	start      int
	target     interface{}
	pushLasti  bool
	stackDepth int
}

type pendingExcEntry struct {
	start, stop int
	target      interface{}
	pushLasti   bool
	stackDepth  int
}

// Assemble converts bc into a concrete code unit under hdr (spec §4.3).
// bc must be a flat abstract stream (jump/TryBegin targets are *abstract.Label,
// not *cfg.Block — lower a Graph with cfg.Flatten first if bc came from one).
func Assemble(bc *abstract.Bytecode, hdr codeobj.Header) (*codeobj.CodeObject, error) {
	return AssembleWithOptions(bc, hdr, Options{})
}

// AssembleWithOptions is Assemble with explicit control over the fixed-point
// pass budget and the optional stack-depth check.
func AssembleWithOptions(bc *abstract.Bytecode, hdr codeobj.Header, opts Options) (*codeobj.CodeObject, error) {
	if err := opcode.CheckSupported(hdr.Version); err != nil {
		return nil, err
	}

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = defaultMaxPasses
	}

	varnames := newStringPool(hdr.ArgNames)
	names := newStringPool(nil)
	consts := newConstPool(hdr.Docstring)

	var concreteInstrs []concrete.Instr
	jumpTargets := make(map[int]interface{}) // concrete instr index -> raw target (label or, after resolve, nothing)
	labelIndex := make(map[*abstract.Label]int)
	var activeLine *int

	var excEntries []pendingExcEntry
	open := make(map[*abstract.TryBegin]*openRegion)

	for _, elem := range bc.Items {
		switch v := elem.(type) {
		case *abstract.Label:
			labelIndex[v] = len(concreteInstrs)

		case abstract.SetLineno:
			line := v.Line
			activeLine = &line

		case *abstract.TryBegin:
			open[v] = &openRegion{
				start:      len(concreteInstrs),
				target:     v.Target,
				pushLasti:  v.PushLasti,
				stackDepth: v.StackDepth,
			}

		case *abstract.TryEnd:
			rec, ok := open[v.Begin]
			if !ok {
				continue
			}
			stop := len(concreteInstrs) - 1
			if stop >= rec.start {
				excEntries = append(excEntries, pendingExcEntry{
					start: rec.start, stop: stop,
					target: rec.target, pushLasti: rec.pushLasti, stackDepth: rec.stackDepth,
				})
			}
			rec.start = len(concreteInstrs)

		case *abstract.Instr:
			loc := v.Loc
			if loc == abstract.NoLocation && activeLine != nil {
				loc = abstract.Location{StartLine: *activeLine, EndLine: *activeLine, StartCol: abstract.Absent, EndCol: abstract.Absent}
			}
			in := concrete.Instr{Op: v.Op, Loc: loc}

			if tgt, isJump := abstract.JumpTarget(v.Arg); isJump {
				jumpTargets[len(concreteInstrs)] = tgt
				concreteInstrs = append(concreteInstrs, in)
				continue
			}

			raw, err := resolveArg(hdr, varnames, names, consts, v)
			if err != nil {
				return nil, err
			}
			in.RawArg = raw
			concreteInstrs = append(concreteInstrs, in)

		default:
			return nil, fmt.Errorf("assemble: unhandled stream element %T", elem)
		}
	}

	resolvedJumpIdx := make(map[int]int, len(jumpTargets))
	for idx, tgt := range jumpTargets {
		lbl, ok := tgt.(*abstract.Label)
		if !ok {
			return nil, ErrUnresolvedTarget{}
		}
		target, ok := labelIndex[lbl]
		if !ok {
			return nil, ErrUnresolvedTarget{Label: lbl}
		}
		resolvedJumpIdx[idx] = target
	}

	excTable, err := resolveExceptionEntries(excEntries, labelIndex)
	if err != nil {
		return nil, err
	}

	step := concrete.Step(hdr.Version)
	if err := fixPoint(concreteInstrs, resolvedJumpIdx, step, maxPasses); err != nil {
		return nil, err
	}

	stackSize, stackErr := solveStackDepth(bc)
	if stackErr != nil && !opts.SkipStackCheck {
		return nil, stackErr
	}

	cbc := &concrete.Bytecode{
		Version:     hdr.Version,
		Consts:      consts.order,
		Names:       names.order,
		VarNames:    varnames.order,
		CellVars:    hdr.CellVars,
		FreeVars:    hdr.FreeVars,
		Instrs:      concreteInstrs,
		FirstLineno: hdr.FirstLineno,
	}

	lineEntries := buildLineEntries(cbc)
	cbc.LineTable = concrete.EncodeLineTable(hdr.Version, hdr.FirstLineno, lineEntries)
	cbc.ExcTable = concrete.EncodeExceptionTable(excTable)
	code := concrete.Encode(cbc)

	unit := &codeobj.CodeObject{
		Header:         hdr,
		Code:           code,
		Consts:         cbc.Consts,
		Names:          cbc.Names,
		VarNames:       cbc.VarNames,
		LineTable:      cbc.LineTable,
		ExceptionTable: cbc.ExcTable,
		StackSize:      stackSize,
	}
	return unit, nil
}

func resolveArg(hdr codeobj.Header, varnames, names *stringPool, consts *constPool, in *abstract.Instr) (uint32, error) {
	switch a := in.Arg.(type) {
	case abstract.Local:
		return varnames.add(a.Name), nil
	case abstract.Name:
		return names.add(a.Name), nil
	case abstract.Cell:
		for i, n := range hdr.CellVars {
			if n == a.Name {
				return uint32(i), nil
			}
		}
		return 0, fmt.Errorf("assemble: cell variable %q not in header.CellVars", a.Name)
	case abstract.Free:
		for i, n := range hdr.FreeVars {
			if n == a.Name {
				return uint32(len(hdr.CellVars) + i), nil
			}
		}
		return 0, fmt.Errorf("assemble: free variable %q not in header.FreeVars", a.Name)
	case abstract.Const:
		idx, ok := consts.add(a.Value)
		if !ok {
			return 0, ErrDuplicateDocstring{}
		}
		return idx, nil
	case abstract.Compare:
		return uint32(a.Op), nil
	case abstract.BinaryOp:
		return uint32(a.Op), nil
	case abstract.Intrinsic1:
		return uint32(a.Op), nil
	case abstract.Intrinsic2:
		return uint32(a.Op), nil
	case abstract.LoadGlobal:
		idx := names.add(a.Name)
		if hdr.Version == opcode.V38 || hdr.Version == opcode.V39 || hdr.Version == opcode.V310 {
			return idx, nil
		}
		raw := idx << 1
		if a.PushNull {
			raw |= 1
		}
		return raw, nil
	case abstract.LoadAttr:
		idx := names.add(a.Name)
		raw := idx << 1
		if a.CallAsMethod {
			raw |= 1
		}
		return raw, nil
	case abstract.LoadSuperAttr:
		idx := names.add(a.Name)
		raw := idx << 2
		if a.CallAsMethod {
			raw |= 1
		}
		if a.PushNull {
			raw |= 2
		}
		return raw, nil
	case abstract.Raw:
		return a.Value, nil
	default:
		return 0, nil // NoArg and any future zero-payload category
	}
}

func resolveExceptionEntries(pending []pendingExcEntry, labelIndex map[*abstract.Label]int) ([]concrete.ExceptionTableEntry, error) {
	out := make([]concrete.ExceptionTableEntry, 0, len(pending))
	for _, p := range pending {
		lbl, ok := p.target.(*abstract.Label)
		if !ok {
			return nil, ErrUnresolvedTarget{}
		}
		target, ok := labelIndex[lbl]
		if !ok {
			return nil, ErrUnresolvedTarget{Label: lbl}
		}
		out = append(out, concrete.ExceptionTableEntry{
			Start: p.start, Stop: p.stop, Target: target,
			PushLasti: p.pushLasti, StackDepth: p.stackDepth,
		})
	}
	// ascending Start, ties broken by ascending Stop (spec §4.3.4).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func less(a, b concrete.ExceptionTableEntry) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.Stop < b.Stop
}

// fixPoint implements spec §4.3.3: repeatedly grow each jump's committed
// EXTENDED_ARG count until offsets stop changing, or fail after maxPasses.
func fixPoint(instrs []concrete.Instr, jumpIdx map[int]int, step, maxPasses int) error {
	extra := make(map[int]int, len(jumpIdx))

	for pass := 0; ; pass++ {
		if pass >= maxPasses {
			return ErrJumpsUnstable{Passes: maxPasses}
		}

		offsets := make([]int, len(instrs))
		pos := 0
		for i := range instrs {
			instrs[i].ExtendedArgs = extra[i]
			offsets[i] = pos
			pos += instrs[i].Width()
		}
		codeLen := pos

		changed := false
		for i, targetIdx := range jumpIdx {
			targetOffset := codeLen
			if targetIdx < len(offsets) {
				targetOffset = offsets[targetIdx]
			}

			var raw int
			switch instrs[i].Op.Cat {
			case opcode.JumpAbs:
				raw = targetOffset / step
			case opcode.JumpForward:
				raw = (targetOffset - (offsets[i] + instrs[i].Width())) / step
			case opcode.JumpBackward:
				raw = ((offsets[i] + instrs[i].Width()) - targetOffset) / step
			}
			if raw < 0 {
				raw = 0
			}
			instrs[i].RawArg = uint32(raw)

			needed := extendedArgsNeeded(uint32(raw))
			if needed > extra[i] {
				extra[i] = needed
				changed = true
			}
		}

		logger.Printf("fixed-point pass %d: %d jumps, changed=%v", pass, len(jumpIdx), changed)
		if !changed {
			return nil
		}
	}
}

func extendedArgsNeeded(raw uint32) int {
	n := 0
	raw >>= 8
	for raw != 0 {
		n++
		raw >>= 8
	}
	return n
}

func buildLineEntries(cbc *concrete.Bytecode) []concrete.LineEntry {
	offsets := cbc.Offsets()
	var out []concrete.LineEntry
	for i, in := range cbc.Instrs {
		width := in.Width()
		line, endLine, startCol, endCol := noSourceFields()
		if in.Loc != abstract.NoLocation {
			line, endLine, startCol, endCol = in.Loc.StartLine, in.Loc.EndLine, in.Loc.StartCol, in.Loc.EndCol
		}
		if n := len(out); n > 0 && out[n-1].Line == line && out[n-1].EndLine == endLine &&
			out[n-1].StartCol == startCol && out[n-1].EndCol == endCol &&
			out[n-1].ByteStart+out[n-1].ByteLen == offsets[i] {
			out[n-1].ByteLen += width
			continue
		}
		out = append(out, concrete.LineEntry{
			ByteStart: offsets[i], ByteLen: width,
			Line: line, EndLine: endLine, StartCol: startCol, EndCol: endCol,
		})
	}
	return out
}

func noSourceFields() (line, endLine, startCol, endCol int) {
	return -1, -1, -1, -1
}

// solveStackDepth runs the stack-depth solver (component I) over bc's CFG,
// translating its StackUnderflow into assemble's own error type (spec
// §4.3.5's "optional stack-depth check").
func solveStackDepth(bc *abstract.Bytecode) (int, error) {
	g, err := cfg.Build(bc)
	if err != nil {
		return 0, err
	}
	size, err := stackdepth.Solve(g, stackdepth.Options{})
	if err != nil {
		if u, ok := err.(stackdepth.StackUnderflow); ok {
			return 0, ErrStackUnderflow{Op: u.Op, Have: u.Have, Want: u.Want}
		}
		return 0, err
	}
	return size, nil
}

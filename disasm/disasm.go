// Package disasm implements the disassembler (component F): concrete to
// abstract conversion. It resolves raw integer arguments to semantic
// values, materializes jump targets as labels, and reconstructs
// TryBegin/TryEnd pairs from the exception table.
package disasm

import (
	"fmt"
	"sort"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/concrete"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
)

// ErrBadJumpTarget is raised when a jump or exception-table target byte
// offset does not fall on an instruction boundary.
type ErrBadJumpTarget struct{ Offset int }

func (e ErrBadJumpTarget) Error() string {
	return fmt.Sprintf("disasm: jump target byte %d is not an instruction boundary", e.Offset)
}

// ErrIndexOutOfRange is raised when a raw argument indexes past the end of
// its pool (consts, names, varnames, cellvars+freevars).
type ErrIndexOutOfRange struct {
	Pool  string
	Index uint32
	Len   int
}

func (e ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("disasm: %s index %d out of range (pool has %d entries)", e.Pool, e.Index, e.Len)
}

// Disassemble converts unit into an abstract stream (spec §4.2). unit's
// Header is untouched; callers keep using it alongside the returned
// stream.
func Disassemble(unit *codeobj.CodeObject) (*abstract.Bytecode, error) {
	if err := opcode.CheckSupported(unit.Version); err != nil {
		return nil, err
	}
	cbc, err := concrete.Decode(unit)
	if err != nil {
		return nil, err
	}
	logger.Printf("decoded %d concrete instructions for %s", len(cbc.Instrs), cbc.Version)
	return fromConcrete(cbc)
}

func fromConcrete(cbc *concrete.Bytecode) (*abstract.Bytecode, error) {
	offsets := cbc.Offsets()
	codeLen := 0
	if n := len(cbc.Instrs); n > 0 {
		codeLen = offsets[n-1] + cbc.Instrs[n-1].Width()
	}

	offsetIndex := make(map[int]int, len(offsets))
	for i, o := range offsets {
		offsetIndex[o] = i
	}
	indexToOffset := func(idx int) int {
		if idx >= len(offsets) {
			return codeLen
		}
		return offsets[idx]
	}

	bc := &abstract.Bytecode{}
	labels := make(map[int]*abstract.Label)
	var labelErr error
	labelAt := func(byteOffset int) *abstract.Label {
		if byteOffset != codeLen {
			if _, ok := offsetIndex[byteOffset]; !ok && labelErr == nil {
				labelErr = ErrBadJumpTarget{Offset: byteOffset}
			}
		}
		if l, ok := labels[byteOffset]; ok {
			return l
		}
		l := bc.NewLabel()
		labels[byteOffset] = l
		return l
	}

	step := concrete.Step(cbc.Version)

	instrs := make([]*abstract.Instr, len(cbc.Instrs))
	for i, in := range cbc.Instrs {
		arg, err := classifyArg(cbc, in, offsets[i], step, labelAt)
		if err != nil {
			return nil, err
		}
		if labelErr != nil {
			return nil, labelErr
		}
		out, err := abstract.New(in.Op, arg, in.Loc)
		if err != nil {
			return nil, err
		}
		instrs[i] = out
	}

	entries, err := concrete.DecodeExceptionTable(cbc.ExcTable)
	if err != nil {
		return nil, err
	}
	logger.Printf("exception table has %d entries", len(entries))
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Start != entries[j].Start {
			return entries[i].Start < entries[j].Start
		}
		return entries[i].Stop > entries[j].Stop
	})

	type pendingEnd struct {
		start int
		end   *abstract.TryEnd
	}
	beginsAt := make(map[int][]*abstract.TryBegin)
	pendingEndsAt := make(map[int][]pendingEnd)
	for _, e := range entries {
		targetOffset := indexToOffset(e.Target)
		tb := &abstract.TryBegin{
			Target:     labelAt(targetOffset),
			PushLasti:  e.PushLasti,
			StackDepth: e.StackDepth,
		}
		beginsAt[e.Start] = append(beginsAt[e.Start], tb)
		pendingEndsAt[e.Stop] = append(pendingEndsAt[e.Stop], pendingEnd{start: e.Start, end: &abstract.TryEnd{Begin: tb}})
	}
	if labelErr != nil {
		return nil, labelErr
	}
	endsAt := make(map[int][]*abstract.TryEnd, len(pendingEndsAt))
	for stop, pending := range pendingEndsAt {
		sort.SliceStable(pending, func(i, j int) bool { return pending[i].start > pending[j].start })
		for _, p := range pending {
			endsAt[stop] = append(endsAt[stop], p.end)
		}
	}

	for i := range instrs {
		if l, ok := labels[offsets[i]]; ok {
			bc.Append(l)
		}
		for _, tb := range beginsAt[i] {
			bc.Append(tb)
		}
		bc.Append(instrs[i])
		for _, te := range endsAt[i] {
			bc.Append(te)
		}
	}
	if l, ok := labels[codeLen]; ok {
		bc.Append(l)
	}

	return bc, nil
}

func classifyArg(cbc *concrete.Bytecode, in concrete.Instr, offset, step int, labelAt func(int) *abstract.Label) (abstract.Argument, error) {
	switch in.Op.Cat {
	case opcode.NoArg:
		return abstract.NoArg, nil

	case opcode.JumpAbs:
		return abstract.NewJump(labelAt(int(in.RawArg)*step), opcode.JumpAbs), nil

	case opcode.JumpForward:
		target := offset + in.Width() + int(in.RawArg)*step
		return abstract.NewJump(labelAt(target), opcode.JumpForward), nil

	case opcode.JumpBackward:
		target := offset + in.Width() - int(in.RawArg)*step
		return abstract.NewJump(labelAt(target), opcode.JumpBackward), nil

	case opcode.Local:
		name, err := poolIndex("varnames", cbc.VarNames, in.RawArg)
		if err != nil {
			return nil, err
		}
		return abstract.Local{Name: name}, nil

	case opcode.Name:
		name, err := poolIndex("names", cbc.Names, in.RawArg)
		if err != nil {
			return nil, err
		}
		return abstract.Name{Name: name}, nil

	case opcode.CellFree:
		if int(in.RawArg) < len(cbc.CellVars) {
			return abstract.Cell{Name: cbc.CellVars[in.RawArg]}, nil
		}
		idx := in.RawArg - uint32(len(cbc.CellVars))
		name, err := poolIndex("freevars", cbc.FreeVars, idx)
		if err != nil {
			return nil, err
		}
		return abstract.Free{Name: name}, nil

	case opcode.Const:
		if int(in.RawArg) >= len(cbc.Consts) {
			return nil, ErrIndexOutOfRange{Pool: "consts", Index: in.RawArg, Len: len(cbc.Consts)}
		}
		return abstract.Const{Value: cbc.Consts[in.RawArg]}, nil

	case opcode.Compare:
		return abstract.Compare{Op: pyval.CompareOp(in.RawArg)}, nil

	case opcode.BinaryOp:
		return abstract.BinaryOp{Op: pyval.BinaryOp(in.RawArg)}, nil

	case opcode.Intrinsic1:
		return abstract.Intrinsic1{Op: pyval.Intrinsic1(in.RawArg)}, nil

	case opcode.Intrinsic2:
		return abstract.Intrinsic2{Op: pyval.Intrinsic2(in.RawArg)}, nil

	case opcode.LoadGlobal:
		// Pre-3.11, LOAD_GLOBAL's argument is a plain names index; the
		// push_null low bit was introduced alongside PUSH_NULL in 3.11.
		if cbc.Version == opcode.V38 || cbc.Version == opcode.V39 || cbc.Version == opcode.V310 {
			name, err := poolIndex("names", cbc.Names, in.RawArg)
			if err != nil {
				return nil, err
			}
			return abstract.LoadGlobal{Name: name}, nil
		}
		pushNull := in.RawArg&1 != 0
		name, err := poolIndex("names", cbc.Names, in.RawArg>>1)
		if err != nil {
			return nil, err
		}
		return abstract.LoadGlobal{PushNull: pushNull, Name: name}, nil

	case opcode.LoadAttr:
		callAsMethod := in.RawArg&1 != 0
		name, err := poolIndex("names", cbc.Names, in.RawArg>>1)
		if err != nil {
			return nil, err
		}
		return abstract.LoadAttr{CallAsMethod: callAsMethod, Name: name}, nil

	case opcode.LoadSuperAttr:
		callAsMethod := in.RawArg&1 != 0
		pushNull := in.RawArg&2 != 0
		name, err := poolIndex("names", cbc.Names, in.RawArg>>2)
		if err != nil {
			return nil, err
		}
		return abstract.LoadSuperAttr{CallAsMethod: callAsMethod, PushNull: pushNull, Name: name}, nil

	case opcode.Raw:
		return abstract.Raw{Value: in.RawArg}, nil

	default:
		return nil, fmt.Errorf("disasm: unhandled opcode category %v for %s", in.Op.Cat, in.Op.Name)
	}
}

func poolIndex(pool string, names []string, idx uint32) (string, error) {
	if int(idx) >= len(names) {
		return "", ErrIndexOutOfRange{Pool: pool, Index: idx, Len: len(names)}
	}
	return names[idx], nil
}

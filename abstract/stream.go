package abstract

import "fmt"

// Label is an opaque, reference-equality position marker used as a jump
// target inside a Bytecode stream. Labels are small handles drawn from a
// per-stream counter (design note, spec §9), not pointers into the stream:
// destroying a Label that nothing references is safe, and a jump that
// still references a destroyed Label is only ever reported as an error
// (ErrUnresolvedLabel from cfg.Build, assemble.ErrUnresolvedTarget from
// the assembler), never as a dangling pointer.
type Label struct {
	id uint64
}

func (l *Label) String() string { return fmt.Sprintf("L%d", l.id) }

// SetLineno is a pseudo-instruction that sets the active line number for
// every instruction that follows it, until the next SetLineno or the end
// of the stream.
type SetLineno struct {
	Line int
}

// TryBegin marks the start of an exception-covered region. Target is the
// handler entry point: a *Label before CFG construction, a *cfg.Block
// identity afterward (mirroring jumpArg's target typing). PushLasti
// records whether the interpreter pushes the instruction offset before the
// exception object when unwinding into this region's handler. StackDepth
// is the operand-stack depth the handler must execute at.
type TryBegin struct {
	Target     interface{}
	PushLasti  bool
	StackDepth int
}

// TryEnd closes the region opened by the TryBegin it references by
// identity. TryBegin/TryEnd never nest (spec §3); a TryBegin may have more
// than one matching TryEnd if conditional jumps exit the region early
// (spec §4.2 step 6, §4.4).
type TryEnd struct {
	Begin *TryBegin
}

// Elem is any element of a Bytecode stream: *Instr, *Label, SetLineno,
// *TryBegin, or *TryEnd.
type Elem interface{ isElem() }

func (*Instr) isElem()    {}
func (*Label) isElem()    {}
func (SetLineno) isElem() {}
func (*TryBegin) isElem() {}
func (*TryEnd) isElem()   {}

// Bytecode is the abstract instruction stream for one code unit (component
// D): an ordered list of instructions interspersed with labels, line
// markers, and exception-region pseudo-instructions. Bytecode owns its
// instructions and labels; jump/TryBegin targets are references only.
type Bytecode struct {
	Items []Elem

	nextLabel uint64
}

// NewLabel mints a fresh Label owned by this stream. Two labels are never
// equal unless they are the same *Label pointer.
func (bc *Bytecode) NewLabel() *Label {
	bc.nextLabel++
	return &Label{id: bc.nextLabel}
}

// Append adds elements to the end of the stream.
func (bc *Bytecode) Append(elems ...Elem) {
	bc.Items = append(bc.Items, elems...)
}

// Instrs returns only the *Instr elements, in order, discarding labels and
// pseudo-instructions. Useful for callers that only care about the
// executable sequence (e.g. the flag inferer).
func (bc *Bytecode) Instrs() []*Instr {
	out := make([]*Instr, 0, len(bc.Items))
	for _, e := range bc.Items {
		if in, ok := e.(*Instr); ok {
			out = append(out, in)
		}
	}
	return out
}

// Labels returns the set of labels actually present (inserted) in the
// stream, keyed by pointer identity.
func (bc *Bytecode) Labels() map[*Label]int {
	out := make(map[*Label]int)
	idx := 0
	for _, e := range bc.Items {
		if l, ok := e.(*Label); ok {
			out[l] = idx
		}
		idx++
	}
	return out
}

// ErrUnresolvedLabel is raised by cfg.Build when a jump or TryBegin
// targets a Label that is not present anywhere in the stream.
type ErrUnresolvedLabel struct {
	Label *Label
}

func (e ErrUnresolvedLabel) Error() string {
	return fmt.Sprintf("abstract: unresolved jump target %v", e.Label)
}

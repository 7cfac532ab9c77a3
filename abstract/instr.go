// Package abstract implements the abstract bytecode layer (component D):
// an ordered stream of instructions whose arguments are semantic values
// (label identities, symbolic names, constant Python values, enum members)
// rather than raw integers, interspersed with Label, SetLineno, and
// TryBegin/TryEnd pseudo-instructions.
package abstract

import (
	"fmt"

	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
)

// Location carries the source position attached to an instruction. Any
// field may be absent, represented by -1.
type Location struct {
	StartLine, EndLine int
	StartCol, EndCol   int
}

// Absent is the sentinel for a missing Location field.
const Absent = -1

// NoLocation is a Location with every field absent.
var NoLocation = Location{StartLine: Absent, EndLine: Absent, StartCol: Absent, EndCol: Absent}

// Argument is the semantic payload of an abstract Instr. Each Argument
// implementation reports one opcode.Category (Cell and Free both report
// CellFree; the jump payload reports whichever jump category it was built
// with), so construction can enforce invariant I1.
type Argument interface {
	Category() opcode.Category
}

// jumpArg is the argument of a jump instruction. Target is a *Label before a
// Bytecode is lowered into a CFG, and a *cfg.Block identity afterward; this
// package only ever produces/consumes *Label targets, so Target is stored
// as an opaque interface{} and package cfg re-uses the same Instr type with
// *cfg.Block targets. cat distinguishes JumpAbs/JumpForward/JumpBackward,
// since all three share this payload shape.
type jumpArg struct {
	Target interface{}
	cat    opcode.Category
}

func (j jumpArg) Category() opcode.Category { return j.cat }

// NewJump builds a jump Argument targeting target, tagged with the category
// cat expects (opcode.JumpAbs, opcode.JumpForward, or opcode.JumpBackward).
func NewJump(target interface{}, cat opcode.Category) Argument {
	return jumpArg{Target: target, cat: cat}
}

// JumpTarget extracts the target from any jump-categorized Argument.
func JumpTarget(a Argument) (interface{}, bool) {
	j, ok := a.(jumpArg)
	if !ok {
		return nil, false
	}
	return j.Target, true
}

// SetJumpTarget replaces the target of a jump-categorized Argument,
// preserving its category, and is used by the CFG builder/flattener to
// retarget jumps between *Label and *cfg.Block identities.
func SetJumpTarget(a Argument, target interface{}) (Argument, bool) {
	j, ok := a.(jumpArg)
	if !ok {
		return a, false
	}
	j.Target = target
	return j, true
}

// Local names a fast local variable (LOAD_FAST/STORE_FAST/DELETE_FAST).
type Local struct{ Name string }

func (Local) Category() opcode.Category { return opcode.Local }

// Name names a global/attribute/module-level binding (LOAD_NAME, STORE_ATTR, …).
type Name struct{ Name string }

func (Name) Category() opcode.Category { return opcode.Name }

// Cell names a cell variable captured by a nested unit.
type Cell struct{ Name string }

func (Cell) Category() opcode.Category { return opcode.CellFree }

// Free names a free variable resolved in an enclosing unit's cells.
type Free struct{ Name string }

func (Free) Category() opcode.Category { return opcode.CellFree }

// Const carries a constant Python value for LOAD_CONST.
type Const struct{ Value pyval.Value }

func (Const) Category() opcode.Category { return opcode.Const }

// Compare carries a COMPARE_OP operator.
type Compare struct{ Op pyval.CompareOp }

func (Compare) Category() opcode.Category { return opcode.Compare }

// BinaryOp carries a BINARY_OP operator (3.11+).
type BinaryOp struct{ Op pyval.BinaryOp }

func (BinaryOp) Category() opcode.Category { return opcode.BinaryOp }

// Intrinsic1 carries a CALL_INTRINSIC_1 function (3.12+).
type Intrinsic1 struct{ Op pyval.Intrinsic1 }

func (Intrinsic1) Category() opcode.Category { return opcode.Intrinsic1 }

// Intrinsic2 carries a CALL_INTRINSIC_2 function (3.12+).
type Intrinsic2 struct{ Op pyval.Intrinsic2 }

func (Intrinsic2) Category() opcode.Category { return opcode.Intrinsic2 }

// LoadGlobal carries LOAD_GLOBAL's name plus the push_null flag that
// selects whether the interpreter pushes NULL before the global (3.11+;
// always false pre-3.11).
type LoadGlobal struct {
	PushNull bool
	Name     string
}

func (LoadGlobal) Category() opcode.Category { return opcode.LoadGlobal }

// LoadAttr carries LOAD_ATTR's name plus the call_as_method flag fused into
// it from 3.12 onward (pre-3.12, attribute loads use category Name instead).
type LoadAttr struct {
	CallAsMethod bool
	Name         string
}

func (LoadAttr) Category() opcode.Category { return opcode.LoadAttr }

// LoadSuperAttr carries LOAD_SUPER_ATTR's name plus its two flags (3.12+).
type LoadSuperAttr struct {
	CallAsMethod bool
	PushNull     bool
	Name         string
}

func (LoadSuperAttr) Category() opcode.Category { return opcode.LoadSuperAttr }

// Raw carries an opaque small non-negative integer argument (e.g. CALL,
// KW_NAMES, RAISE_VARARGS, BUILD_TUPLE's element count). Invariant I2:
// Value must be in [0, 2^31).
type Raw struct{ Value uint32 }

func (Raw) Category() opcode.Category { return opcode.Raw }

// ErrRawOutOfRange reports a Raw argument outside [0, 2^31), invariant I2.
type ErrRawOutOfRange struct{ Value uint32 }

func (e ErrRawOutOfRange) Error() string {
	return fmt.Sprintf("abstract: raw argument %d exceeds 2^31-1", e.Value)
}

func (r Raw) validate() error {
	if r.Value >= 1<<31 {
		return ErrRawOutOfRange{Value: r.Value}
	}
	return nil
}

// noArg is the Argument for opcodes that take nothing.
type noArg struct{}

func (noArg) Category() opcode.Category { return opcode.NoArg }

// NoArg is the Argument value for instructions with no operand.
var NoArg Argument = noArg{}

// ErrInvalidArgumentKind is raised when an Argument's Category does not
// match the opcode's declared Category (invariant I1).
type ErrInvalidArgumentKind struct {
	Op   string
	Want opcode.Category
	Got  opcode.Category
}

func (e ErrInvalidArgumentKind) Error() string {
	return fmt.Sprintf("abstract: %s requires a %v argument, got %v", e.Op, e.Want, e.Got)
}

// ErrPseudoOpcode is raised by New when op is a pseudo-opcode (invariant I3):
// EXTENDED_ARG and instrumented variants cannot be constructed directly in
// the abstract layer.
type ErrPseudoOpcode struct{ Op string }

func (e ErrPseudoOpcode) Error() string {
	return fmt.Sprintf("abstract: %s is a pseudo-opcode and cannot appear in an abstract stream", e.Op)
}

// Instr is one instruction in the abstract stream.
type Instr struct {
	Op  *opcode.Def
	Arg Argument
	Loc Location
}

// New constructs an Instr, enforcing I1 (argument category matches opcode
// category) and I3 (no pseudo-opcodes).
func New(op *opcode.Def, arg Argument, loc Location) (*Instr, error) {
	if op.Pseudo {
		return nil, ErrPseudoOpcode{Op: op.Name}
	}
	if arg == nil {
		arg = NoArg
	}
	if arg.Category() != op.Cat {
		return nil, ErrInvalidArgumentKind{Op: op.Name, Want: op.Cat, Got: arg.Category()}
	}
	if raw, ok := arg.(Raw); ok {
		if err := raw.validate(); err != nil {
			return nil, err
		}
	}
	return &Instr{Op: op, Arg: arg, Loc: loc}, nil
}

// SetArg atomically replaces both the opcode and argument of an existing
// instruction, re-checking I1/I3. Op and Arg are exported fields, so
// assigning either of them directly bypasses these checks.
func (i *Instr) SetArg(op *opcode.Def, arg Argument) error {
	replacement, err := New(op, arg, i.Loc)
	if err != nil {
		return err
	}
	i.Op, i.Arg = replacement.Op, replacement.Arg
	return nil
}

func (i *Instr) String() string {
	switch a := i.Arg.(type) {
	case noArg:
		return i.Op.Name
	case jumpArg:
		return fmt.Sprintf("%s %v", i.Op.Name, a.Target)
	default:
		return fmt.Sprintf("%s %v", i.Op.Name, i.Arg)
	}
}

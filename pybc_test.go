package pybc_test

import (
	"testing"

	"github.com/go-python/pybc"
	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/concrete"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
	"github.com/stretchr/testify/require"
)

// helloWorld builds the raw concrete.Bytecode for
//
//	LOAD_NAME print; LOAD_CONST "Hello"; CALL_FUNCTION 1; POP_TOP;
//	LOAD_CONST None; RETURN_VALUE
//
// directly with concrete.Encode, bypassing the assembler, so Disassemble
// can be exercised on a fixture whose bytes the assembler did not produce.
func helloWorld(t *testing.T) *codeobj.CodeObject {
	t.Helper()
	v := opcode.V38
	op := func(name string) *opcode.Def {
		d, ok := opcode.TableFor(v).ByName(name)
		require.True(t, ok, "no opcode %s", name)
		return d
	}
	instrs := []concrete.Instr{
		{Op: op("LOAD_NAME"), RawArg: 0},
		{Op: op("LOAD_CONST"), RawArg: 0},
		{Op: op("CALL_FUNCTION"), RawArg: 1},
		{Op: op("POP_TOP")},
		{Op: op("LOAD_CONST"), RawArg: 1},
		{Op: op("RETURN_VALUE")},
	}
	cbc := &concrete.Bytecode{
		Version:     v,
		Consts:      []pyval.Value{pyval.Str("Hello"), pyval.None()},
		Names:       []string{"print"},
		FirstLineno: 1,
		Instrs:      instrs,
	}
	code := concrete.Encode(cbc)
	return &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1, Name: "<module>"},
		Code:   code,
		Consts: cbc.Consts,
		Names:  cbc.Names,
	}
}

func TestRoundTripDisassembleAssemble(t *testing.T) {
	unit := helloWorld(t)

	bc, err := pybc.Disassemble(unit)
	require.NoError(t, err)

	reassembled, err := pybc.Assemble(bc, unit.Header)
	require.NoError(t, err)

	again, err := pybc.Disassemble(reassembled)
	require.NoError(t, err)

	orig := bc.Instrs()
	got := again.Instrs()
	require.Len(t, got, len(orig))
	for i := range orig {
		require.Equal(t, orig[i].Op.Name, got[i].Op.Name, "instruction %d", i)
		require.Equal(t, orig[i].Arg, got[i].Arg, "instruction %d", i)
	}
}

func TestEditRewritesConstant(t *testing.T) {
	unit := helloWorld(t)

	edited, err := pybc.Edit(unit, func(bc *abstract.Bytecode) error {
		for _, in := range bc.Instrs() {
			if c, ok := in.Arg.(abstract.Const); ok {
				if c.Value.Kind() == pyval.KindString && c.Value.StrValue() == "Hello" {
					return in.SetArg(in.Op, abstract.Const{Value: pyval.Str("Goodbye")})
				}
			}
		}
		t.Fatal("no \"Hello\" constant found to rewrite")
		return nil
	})
	require.NoError(t, err)

	bc, err := pybc.Disassemble(edited)
	require.NoError(t, err)

	var sawGoodbye bool
	for _, in := range bc.Instrs() {
		if c, ok := in.Arg.(abstract.Const); ok {
			if c.Value.Kind() == pyval.KindString && c.Value.StrValue() == "Goodbye" {
				sawGoodbye = true
			}
		}
	}
	require.True(t, sawGoodbye, "rewritten constant did not survive reassembly")
}

func TestEditPropagatesAssembleError(t *testing.T) {
	unit := helloWorld(t)

	_, err := pybc.Edit(unit, func(bc *abstract.Bytecode) error {
		dangling := bc.NewLabel()
		d, ok := opcode.TableFor(opcode.V38).ByName("JUMP_FORWARD")
		require.True(t, ok)
		jump, err := abstract.New(d, abstract.NewJump(dangling, opcode.JumpForward), abstract.NoLocation)
		if err != nil {
			return err
		}
		bc.Append(jump)
		return nil
	})
	require.Error(t, err)
	_, ok := err.(pybc.ErrUnresolvedTarget)
	require.True(t, ok, "expected ErrUnresolvedTarget, got %T", err)
}

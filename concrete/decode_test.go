package concrete_test

import (
	"testing"

	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/concrete"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/pyval"
	"github.com/stretchr/testify/require"
)

func op(t *testing.T, v opcode.Version, name string) *opcode.Def {
	t.Helper()
	d, ok := opcode.TableFor(v).ByName(name)
	require.True(t, ok, "no opcode %s in %s", name, v)
	return d
}

func TestDecodeFoldsExtendedArg(t *testing.T) {
	v := opcode.V38
	cbc := &concrete.Bytecode{
		Version: v,
		Consts:  make([]pyval.Value, 300),
		Instrs: []concrete.Instr{
			{Op: op(t, v, "LOAD_CONST"), RawArg: 0x1abc},
			{Op: op(t, v, "RETURN_VALUE")},
		},
		FirstLineno: 1,
	}
	code := concrete.Encode(cbc)
	require.Len(t, code, 3*2, "one EXTENDED_ARG pair + LOAD_CONST pair + RETURN_VALUE pair")

	unit := &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1},
		Code:   code,
		Consts: cbc.Consts,
	}
	got, err := concrete.Decode(unit)
	require.NoError(t, err)
	require.Len(t, got.Instrs, 2)
	require.Equal(t, uint32(0x1abc), got.Instrs[0].RawArg)
	require.Equal(t, 0, got.Instrs[0].ExtendedArgs, "folded prefixes are implied by RawArg's own magnitude, not recorded again")
}

func TestDecodePreservesNOPExtendedArgPrefixes(t *testing.T) {
	v := opcode.V38
	cbc := &concrete.Bytecode{
		Version: v,
		Instrs: []concrete.Instr{
			{Op: op(t, v, "NOP"), ExtendedArgs: 2},
			{Op: op(t, v, "RETURN_VALUE")},
		},
		FirstLineno: 1,
	}
	code := concrete.Encode(cbc)
	require.Len(t, code, 2*2+1*2+1*2, "two EXTENDED_ARG pairs + NOP pair + RETURN_VALUE pair")

	unit := &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1},
		Code:   code,
	}
	got, err := concrete.Decode(unit)
	require.NoError(t, err)
	require.Len(t, got.Instrs, 2)
	require.Equal(t, 2, got.Instrs[0].ExtendedArgs)
	require.Equal(t, uint32(0), got.Instrs[0].RawArg)
}

func TestDecodeSkipsCacheSlots(t *testing.T) {
	v := opcode.V311
	cbc := &concrete.Bytecode{
		Version: v,
		Names:   []string{"x"},
		Instrs: []concrete.Instr{
			{Op: op(t, v, "LOAD_GLOBAL"), RawArg: 0},
			{Op: op(t, v, "RETURN_VALUE")},
		},
		FirstLineno: 1,
	}
	code := concrete.Encode(cbc)

	unit := &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1},
		Names:  cbc.Names,
		Code:   code,
	}
	got, err := concrete.Decode(unit)
	require.NoError(t, err)
	require.Len(t, got.Instrs, 2, "cache slots must be consumed, not decoded as instructions")
	require.Equal(t, "RETURN_VALUE", got.Instrs[1].Op.Name)

	offsets := got.Offsets()
	loadGlobalDef := op(t, v, "LOAD_GLOBAL")
	require.Equal(t, 2*(1+loadGlobalDef.Cache), offsets[1], "second instruction starts after LOAD_GLOBAL's opcode pair and cache slots")
}

func TestDecodeTruncatedCode(t *testing.T) {
	v := opcode.V38
	unit := &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1},
		Code:   []byte{op(t, v, "RETURN_VALUE").Code},
	}
	_, err := concrete.Decode(unit)
	require.ErrorIs(t, err, concrete.ErrTruncatedCode)
}

func TestDecodeTruncatedExtendedArgRun(t *testing.T) {
	v := opcode.V38
	unit := &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1},
		Code:   []byte{opcode.OpExtendedArg, 1},
	}
	_, err := concrete.Decode(unit)
	require.ErrorIs(t, err, concrete.ErrTruncatedCode)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	v := opcode.V38
	unit := &codeobj.CodeObject{
		Header: codeobj.Header{Version: v, FirstLineno: 1},
		Code:   []byte{0xff, 0},
	}
	_, err := concrete.Decode(unit)
	require.Error(t, err)
	var unknown opcode.ErrUnknownOpcode
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, byte(0xff), unknown.Value)
}

package flags_test

import (
	"testing"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/codeobj"
	"github.com/go-python/pybc/flags"
	"github.com/go-python/pybc/opcode"
	"github.com/stretchr/testify/require"
)

func op(t *testing.T, name string) *opcode.Def {
	t.Helper()
	d, ok := opcode.TableFor(opcode.V38).ByName(name)
	require.True(t, ok, "no opcode %s", name)
	return d
}

func instr(t *testing.T, d *opcode.Def, arg abstract.Argument) *abstract.Instr {
	t.Helper()
	in, err := abstract.New(d, arg, abstract.NoLocation)
	require.NoError(t, err)
	return in
}

func TestInferOptimizedNoFree(t *testing.T) {
	instrs := []*abstract.Instr{
		instr(t, op(t, "LOAD_FAST"), abstract.Local{Name: "x"}),
		instr(t, op(t, "RETURN_VALUE"), abstract.NoArg),
	}
	f := flags.Infer(instrs, nil, nil, nil)
	require.True(t, f.Has(codeobj.FlagOptimized))
	require.True(t, f.Has(codeobj.FlagNoFree))
	require.False(t, f.Has(codeobj.FlagGenerator))
}

func TestInferLoadNameClearsOptimized(t *testing.T) {
	instrs := []*abstract.Instr{
		instr(t, op(t, "LOAD_NAME"), abstract.Name{Name: "x"}),
		instr(t, op(t, "RETURN_VALUE"), abstract.NoArg),
	}
	f := flags.Infer(instrs, nil, nil, nil)
	require.False(t, f.Has(codeobj.FlagOptimized))
}

func TestInferGenerator(t *testing.T) {
	instrs := []*abstract.Instr{
		instr(t, op(t, "LOAD_FAST"), abstract.Local{Name: "x"}),
		instr(t, op(t, "YIELD_VALUE"), abstract.NoArg),
		instr(t, op(t, "RETURN_VALUE"), abstract.NoArg),
	}
	f := flags.Infer(instrs, nil, nil, nil)
	require.True(t, f.Has(codeobj.FlagGenerator))
	require.False(t, f.Has(codeobj.FlagCoroutine))
}

func TestInferAsyncGenerator(t *testing.T) {
	instrs := []*abstract.Instr{
		instr(t, op(t, "YIELD_VALUE"), abstract.NoArg),
		instr(t, op(t, "RETURN_VALUE"), abstract.NoArg),
	}
	isAsync := true
	f := flags.Infer(instrs, nil, nil, &isAsync)
	require.True(t, f.Has(codeobj.FlagAsyncGenerator))
	require.False(t, f.Has(codeobj.FlagGenerator))
}

func TestInferCoroutineNoYield(t *testing.T) {
	instrs := []*abstract.Instr{
		instr(t, op(t, "RETURN_VALUE"), abstract.NoArg),
	}
	isAsync := true
	f := flags.Infer(instrs, nil, nil, &isAsync)
	require.True(t, f.Has(codeobj.FlagCoroutine))
}

func TestInferIdempotent(t *testing.T) {
	instrs := []*abstract.Instr{
		instr(t, op(t, "LOAD_FAST"), abstract.Local{Name: "x"}),
		instr(t, op(t, "YIELD_VALUE"), abstract.NoArg),
		instr(t, op(t, "RETURN_VALUE"), abstract.NoArg),
	}
	a := flags.Infer(instrs, []string{"c"}, nil, nil)
	b := flags.Infer(instrs, []string{"c"}, nil, nil)
	require.Equal(t, a, b)
}

package stackdepth_test

import (
	"testing"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/cfg"
	"github.com/go-python/pybc/opcode"
	"github.com/go-python/pybc/stackdepth"
	"github.com/stretchr/testify/require"
)

func op(t *testing.T, v opcode.Version, name string) *opcode.Def {
	t.Helper()
	d, ok := opcode.TableFor(v).ByName(name)
	require.True(t, ok, "no opcode %s in %s", name, v)
	return d
}

func instr(t *testing.T, d *opcode.Def, arg abstract.Argument) *abstract.Instr {
	t.Helper()
	in, err := abstract.New(d, arg, abstract.NoLocation)
	require.NoError(t, err)
	return in
}

// LOAD_CONST; LOAD_CONST; BINARY_ADD... peaks at 2, ends at 1, then returns.
func TestSolveLinear(t *testing.T) {
	bc := &abstract.Bytecode{}
	bc.Append(
		instr(t, op(t, opcode.V38, "LOAD_CONST"), abstract.Const{}),
		instr(t, op(t, opcode.V38, "LOAD_CONST"), abstract.Const{}),
		instr(t, op(t, opcode.V38, "BINARY_ADD"), abstract.NoArg),
		instr(t, op(t, opcode.V38, "RETURN_VALUE"), abstract.NoArg),
	)
	g, err := cfg.Build(bc)
	require.NoError(t, err)

	depth, err := stackdepth.Solve(g, stackdepth.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, depth)
}

func TestSolveUnderflow(t *testing.T) {
	bc := &abstract.Bytecode{}
	bc.Append(instr(t, op(t, opcode.V38, "RETURN_VALUE"), abstract.NoArg))
	g, err := cfg.Build(bc)
	require.NoError(t, err)

	_, err = stackdepth.Solve(g, stackdepth.Options{})
	require.Error(t, err)
	require.IsType(t, stackdepth.StackUnderflow{}, err)
}

func TestSolveUnderflowDisabled(t *testing.T) {
	bc := &abstract.Bytecode{}
	bc.Append(instr(t, op(t, opcode.V38, "RETURN_VALUE"), abstract.NoArg))
	g, err := cfg.Build(bc)
	require.NoError(t, err)

	_, err = stackdepth.Solve(g, stackdepth.Options{NoUnderflowCheck: true})
	require.NoError(t, err)
}

func TestSolvePrecomputed(t *testing.T) {
	g := &cfg.Graph{}
	precomputed := 7
	depth, err := stackdepth.Solve(g, stackdepth.Options{Precomputed: &precomputed})
	require.NoError(t, err)
	require.Equal(t, 7, depth)
}

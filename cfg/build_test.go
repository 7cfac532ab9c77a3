package cfg_test

import (
	"testing"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/cfg"
	"github.com/go-python/pybc/opcode"
	"github.com/stretchr/testify/require"
)

func mustInstr(t *testing.T, op *opcode.Def, arg abstract.Argument) *abstract.Instr {
	t.Helper()
	in, err := abstract.New(op, arg, abstract.NoLocation)
	require.NoError(t, err)
	return in
}

func op(t *testing.T, v opcode.Version, name string) *opcode.Def {
	t.Helper()
	d, ok := opcode.TableFor(v).ByName(name)
	require.True(t, ok, "no opcode %s in %s", name, v)
	return d
}

// if True: return 1 else: return 2
func buildIfElse(t *testing.T) *abstract.Bytecode {
	t.Helper()
	bc := &abstract.Bytecode{}
	skip := bc.NewLabel()

	loadTrue := mustInstr(t, op(t, opcode.V38, "LOAD_CONST"), abstract.Const{})
	jumpFalse := mustInstr(t, op(t, opcode.V38, "POP_JUMP_IF_FALSE"), abstract.NewJump(skip, opcode.JumpAbs))
	loadOne := mustInstr(t, op(t, opcode.V38, "LOAD_CONST"), abstract.Const{})
	ret1 := mustInstr(t, op(t, opcode.V38, "RETURN_VALUE"), abstract.NoArg)
	loadTwo := mustInstr(t, op(t, opcode.V38, "LOAD_CONST"), abstract.Const{})
	ret2 := mustInstr(t, op(t, opcode.V38, "RETURN_VALUE"), abstract.NoArg)

	bc.Append(loadTrue, jumpFalse, loadOne, ret1, skip, loadTwo, ret2)
	return bc
}

func TestBuildSplitsAtLabelAndFinal(t *testing.T) {
	bc := buildIfElse(t)
	g, err := cfg.Build(bc)
	require.NoError(t, err)

	require.Len(t, g.Blocks, 3)
	require.Same(t, g.Blocks[0], g.Entry)

	b0 := g.Blocks[0]
	require.Len(t, b0.Instrs(), 2)
	require.Same(t, g.Blocks[1], b0.Next, "block ending in a conditional jump keeps its fallthrough")

	b1 := g.Blocks[1]
	require.Len(t, b1.Instrs(), 2)
	require.Nil(t, b1.Next, "block ending in RETURN_VALUE has no fallthrough")

	b2 := g.Blocks[2]
	require.Len(t, b2.Instrs(), 2)

	jump := b0.Instrs()[1]
	tgt, ok := abstract.JumpTarget(jump.Arg)
	require.True(t, ok)
	require.Same(t, b2, tgt)
}

func TestBuildUnresolvedLabel(t *testing.T) {
	bc := &abstract.Bytecode{}
	ghost := bc.NewLabel()
	jump := mustInstr(t, op(t, opcode.V38, "JUMP_ABSOLUTE"), abstract.NewJump(ghost, opcode.JumpAbs))
	bc.Append(jump)

	_, err := cfg.Build(bc)
	require.Error(t, err)
	require.IsType(t, abstract.ErrUnresolvedLabel{}, err)
}

func TestFlattenRoundTrip(t *testing.T) {
	bc := buildIfElse(t)
	g, err := cfg.Build(bc)
	require.NoError(t, err)

	flat, err := cfg.Flatten(g)
	require.NoError(t, err)

	var labels, instrs int
	for _, e := range flat.Items {
		switch e.(type) {
		case *abstract.Label:
			labels++
		case *abstract.Instr:
			instrs++
		}
	}
	require.Equal(t, 1, labels, "only the jump target block should get a label")
	require.Equal(t, 6, instrs)

	g2, err := cfg.Build(flat)
	require.NoError(t, err)
	require.Len(t, g2.Blocks, 3)
}

package cfg

import (
	"github.com/go-python/pybc/abstract"
)

// isFinal reports whether in ends a basic block unconditionally: a plain
// jump, a return, or a raise never falls through to the following
// instruction.
func isFinal(in *abstract.Instr) bool {
	switch in.Op.Name {
	case "RETURN_VALUE", "RETURN_CONST", "RAISE_VARARGS", "RERAISE":
		return true
	}
	if in.Op.Cat.IsJump() {
		// Unconditional jumps (JUMP_FORWARD, JUMP_ABSOLUTE, JUMP_BACKWARD,
		// JUMP_BACKWARD_NO_INTERRUPT) never fall through; conditional ones
		// (POP_JUMP_IF_*, JUMP_IF_*_OR_POP) do. Distinguish by name since
		// both share a Category.
		return isUnconditionalJumpName(in.Op.Name)
	}
	return false
}

func isUnconditionalJumpName(name string) bool {
	switch name {
	case "JUMP_FORWARD", "JUMP_ABSOLUTE", "JUMP_BACKWARD", "JUMP_BACKWARD_NO_INTERRUPT":
		return true
	default:
		return false
	}
}

// isJump reports whether in carries a jump argument at all (conditional or
// not); it is the point a block boundary always follows.
func isJump(in *abstract.Instr) bool {
	return in.Op.Cat.IsJump()
}

// Build lowers an abstract stream into a Graph (component E, spec §4.2): a
// new block starts at every Label position and immediately after every
// final or jump instruction. TryBegin/TryEnd markers and SetLineno travel
// with the instructions around them into whichever block contains them.
func Build(bc *abstract.Bytecode) (*Graph, error) {
	g := &Graph{}
	cur := g.newBlock()
	g.Entry = cur

	labelBlocks := make(map[*abstract.Label]*Block)
	curHasInstr := false

	for _, e := range bc.Items {
		switch v := e.(type) {
		case *abstract.Label:
			if curHasInstr {
				next := g.newBlock()
				cur.Next = next
				cur = next
				curHasInstr = false
			}
			labelBlocks[v] = cur
		case *abstract.Instr:
			cur.Items = append(cur.Items, v)
			curHasInstr = true
			if isJump(v) || isFinal(v) {
				next := g.newBlock()
				if !isFinal(v) {
					cur.Next = next
				}
				cur = next
				curHasInstr = false
			}
		default:
			cur.Items = append(cur.Items, e)
		}
	}

	// A final instruction at the very end of the stream leaves an empty
	// block behind; drop it unless a fallthrough or a label reaches it.
	if n := len(g.Blocks); n > 1 && len(cur.Items) == 0 && g.Blocks[n-2].Next != cur {
		targeted := false
		for _, b := range labelBlocks {
			targeted = targeted || b == cur
		}
		if !targeted {
			g.Blocks = g.Blocks[:n-1]
		}
	}

	resolve := func(target interface{}) (interface{}, error) {
		lbl, ok := target.(*abstract.Label)
		if !ok {
			return target, nil
		}
		b, ok := labelBlocks[lbl]
		if !ok {
			return nil, abstract.ErrUnresolvedLabel{Label: lbl}
		}
		return b, nil
	}

	for _, b := range g.Blocks {
		for _, e := range b.Items {
			switch v := e.(type) {
			case *abstract.Instr:
				if tgt, ok := abstract.JumpTarget(v.Arg); ok {
					resolved, err := resolve(tgt)
					if err != nil {
						return nil, err
					}
					if arg, ok := abstract.SetJumpTarget(v.Arg, resolved); ok {
						v.Arg = arg
					}
				}
			case *abstract.TryBegin:
				resolved, err := resolve(v.Target)
				if err != nil {
					return nil, err
				}
				v.Target = resolved
			}
		}
	}

	return g, nil
}

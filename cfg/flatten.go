package cfg

import "github.com/go-python/pybc/abstract"

// referencedBlocks collects every Block directly targeted by a jump or a
// TryBegin, across the whole graph.
func referencedBlocks(g *Graph) map[*Block]bool {
	refs := make(map[*Block]bool)
	mark := func(target interface{}) {
		if b, ok := target.(*Block); ok {
			refs[b] = true
		}
	}
	for _, b := range g.Blocks {
		for _, e := range b.Items {
			switch v := e.(type) {
			case *abstract.Instr:
				if tgt, ok := abstract.JumpTarget(v.Arg); ok {
					mark(tgt)
				}
			case *abstract.TryBegin:
				mark(v.Target)
			}
		}
	}
	return refs
}

// Flatten lowers a Graph back into a linear abstract stream (component H):
// blocks are emitted in their Graph order, a fresh Label is minted and
// inserted ahead of every block a jump or TryBegin actually targets, and
// jump/TryBegin targets are rewritten from *Block identities back to those
// Labels; a target block that is no longer in the Graph yields
// ErrDanglingBlock. Consecutive TryEnd markers for the same TryBegin, with
// nothing between them, are collapsed to one. Build itself inserts no
// TryEnd markers, so such duplicates come only from the input stream or
// from edits made to the Graph.
func Flatten(g *Graph) (*abstract.Bytecode, error) {
	out := &abstract.Bytecode{}

	refs := referencedBlocks(g)
	labels := make(map[*Block]*abstract.Label, len(refs))
	for _, b := range g.Blocks {
		if refs[b] {
			labels[b] = out.NewLabel()
		}
	}

	resolve := func(target interface{}) (interface{}, error) {
		b, ok := target.(*Block)
		if !ok {
			return target, nil
		}
		lbl, ok := labels[b]
		if !ok {
			return nil, ErrDanglingBlock{Ref: b}
		}
		return lbl, nil
	}

	var lastTryEnd *abstract.TryBegin
	append1 := func(e abstract.Elem) {
		if te, ok := e.(*abstract.TryEnd); ok {
			if lastTryEnd == te.Begin {
				return
			}
			lastTryEnd = te.Begin
		} else {
			lastTryEnd = nil
		}
		out.Append(e)
	}

	for _, b := range g.Blocks {
		if lbl, ok := labels[b]; ok {
			append1(lbl)
		}
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
				append1(v)
			case *abstract.TryBegin:
				resolved, err := resolve(v.Target)
				if err != nil {
					return nil, err
				}
				v.Target = resolved
				append1(v)
			default:
				append1(e)
			}
		}
	}

	return out, nil
}

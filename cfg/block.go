// Package cfg implements the control-flow-graph layer (component E) and
// the builder/flattener that convert between it and the abstract stream
// (component H).
package cfg

import (
	"fmt"

	"github.com/go-python/pybc/abstract"
)

// Block is one basic block: a straight-line run of abstract stream
// elements (instructions, SetLineno markers, TryBegin/TryEnd) whose last
// instruction, if any, may be the only one that jumps. Block identities are
// stable indices into a Graph's arena (design note, spec §9): deleting a
// referenced block is caught at Flatten/assemble time, never silently.
type Block struct {
	id    int
	Items []abstract.Elem
	// Next is this block's fallthrough successor, or nil if the block ends
	// in a final instruction (return/raise/unconditional jump/re-raise) or
	// is the last block in the stream.
	Next *Block
}

func (b *Block) String() string { return fmt.Sprintf("block%d", b.id) }

// Instrs returns only the *abstract.Instr elements of the block, in order.
func (b *Block) Instrs() []*abstract.Instr {
	var out []*abstract.Instr
	for _, e := range b.Items {
		if in, ok := e.(*abstract.Instr); ok {
			out = append(out, in)
		}
	}
	return out
}

// Last returns the block's last instruction, if it has one.
func (b *Block) Last() (*abstract.Instr, bool) {
	in := b.Instrs()
	if len(in) == 0 {
		return nil, false
	}
	return in[len(in)-1], true
}

// Graph is an ordered list of basic blocks (component E). Blocks are
// listed in their original stream order; Entry is always Blocks[0] for a
// non-empty graph.
type Graph struct {
	Blocks []*Block
	Entry  *Block
}

func (g *Graph) newBlock() *Block {
	b := &Block{id: len(g.Blocks)}
	g.Blocks = append(g.Blocks, b)
	return b
}

// ErrDanglingBlock is raised by Flatten when a jump or TryBegin references
// a Block that is no longer present in the Graph (design note, spec §9:
// deleting a referenced block is an error, never a dangling pointer).
type ErrDanglingBlock struct {
	Ref *Block
}

func (e ErrDanglingBlock) Error() string {
	return fmt.Sprintf("cfg: jump or exception region references a block not present in the graph: %v", e.Ref)
}

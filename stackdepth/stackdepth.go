// Package stackdepth implements the CFG stack-depth solver (component I):
// a worklist algorithm that computes the maximum operand-stack depth a
// code unit reaches, honoring per-instruction pre/post effects and the
// independent depth exception handlers are entered at.
package stackdepth

import (
	"fmt"

	"github.com/go-python/pybc/abstract"
	"github.com/go-python/pybc/cfg"
)

// StackUnderflow is raised when an instruction's required depth (Op.Pre)
// exceeds the depth actually available on entry.
type StackUnderflow struct {
	Op   string
	Have int
	Want int
}

func (e StackUnderflow) Error() string {
	return fmt.Sprintf("stackdepth: %s requires %d on the stack, only %d available", e.Op, e.Want, e.Have)
}

// InconsistentStack is raised when a block is reached at two different
// depths along two different paths.
type InconsistentStack struct {
	Block *cfg.Block
	A, B  int
}

func (e InconsistentStack) Error() string {
	return fmt.Sprintf("stackdepth: %v entered at depth %d and %d on different paths", e.Block, e.A, e.B)
}

// Options controls the solver's strictness and allows bypassing it.
type Options struct {
	// NoUnderflowCheck disables the h >= pre check, trusting the input.
	NoUnderflowCheck bool
	// Precomputed, if non-nil, bypasses the solver entirely: *Precomputed
	// is returned as-is.
	Precomputed *int
}

// Solve computes the maximum operand-stack depth reached by g, per spec
// §4.5: entry seeded at 0, each exception region's target block also
// seeded at stack_depth+1(+1 if push_lasti), propagated with the
// jump-taken stack effect on conditional-jump edges and the ordinary one
// elsewhere.
func Solve(g *cfg.Graph, opts Options) (int, error) {
	if opts.Precomputed != nil {
		return *opts.Precomputed, nil
	}
	if g.Entry == nil {
		return 0, nil
	}

	depth := make(map[*cfg.Block]int)
	// seed records d as b's entry depth and reports whether b was newly
	// reached; a block already reached at d needs no further visit.
	seed := func(b *cfg.Block, d int) (bool, error) {
		if cur, ok := depth[b]; ok {
			if cur != d {
				return false, InconsistentStack{Block: b, A: cur, B: d}
			}
			return false, nil
		}
		depth[b] = d
		return true, nil
	}

	if _, err := seed(g.Entry, 0); err != nil {
		return 0, err
	}

	for _, b := range g.Blocks {
		for _, e := range b.Items {
			tb, ok := e.(*abstract.TryBegin)
			if !ok {
				continue
			}
			target, ok := tb.Target.(*cfg.Block)
			if !ok {
				continue
			}
			d := tb.StackDepth + 1
			if tb.PushLasti {
				d++
			}
			if _, err := seed(target, d); err != nil {
				return 0, err
			}
		}
	}

	max := 0
	queue := make([]*cfg.Block, 0, len(g.Blocks))
	queued := make(map[*cfg.Block]bool)
	enqueue := func(b *cfg.Block) {
		if !queued[b] {
			queued[b] = true
			queue = append(queue, b)
		}
	}
	for b := range depth {
		enqueue(b)
	}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		queued[b] = false

		h, ok := depth[b]
		if !ok {
			continue
		}

		for _, in := range b.Instrs() {
			if !opts.NoUnderflowCheck && h < in.Op.Pre {
				return 0, StackUnderflow{Op: in.Op.Name, Have: h, Want: in.Op.Pre}
			}
			if h > max {
				max = h
			}
			if tgt, isJump := abstract.JumpTarget(in.Arg); isJump {
				if tb, ok := tgt.(*cfg.Block); ok {
					jd := h + in.Op.JumpPost
					if jd > max {
						max = jd
					}
					added, err := seed(tb, jd)
					if err != nil {
						return 0, err
					}
					if added {
						enqueue(tb)
					}
				}
			}
			h += in.Op.Post
		}
		if h > max {
			max = h
		}
		if b.Next != nil {
			added, err := seed(b.Next, h)
			if err != nil {
				return 0, err
			}
			if added {
				enqueue(b.Next)
			}
		}
	}

	logger.Printf("solved stack depth %d over %d blocks", max, len(g.Blocks))
	return max, nil
}

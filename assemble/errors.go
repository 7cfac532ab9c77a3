package assemble

import (
	"fmt"

	"github.com/go-python/pybc/abstract"
)

// ErrUnresolvedTarget is raised when a jump or TryBegin references a label
// not present anywhere in the stream (spec §4.3.5).
type ErrUnresolvedTarget struct{ Label *abstract.Label }

func (e ErrUnresolvedTarget) Error() string {
	return fmt.Sprintf("assemble: unresolved jump target %v", e.Label)
}

// ErrDuplicateDocstring is raised when the header's docstring value is
// also present as an explicit constant in the stream (spec §4.3.5): the
// two would otherwise collapse into the same pool slot in a way that
// hides which source produced it.
type ErrDuplicateDocstring struct{}

func (ErrDuplicateDocstring) Error() string {
	return "assemble: docstring present in both header and constants"
}

// ErrJumpsUnstable is raised when the EXTENDED_ARG fixed-point (spec
// §4.3.3) does not converge within MaxPasses.
type ErrJumpsUnstable struct{ Passes int }

func (e ErrJumpsUnstable) Error() string {
	return fmt.Sprintf("assemble: jump offsets did not converge within %d passes", e.Passes)
}

// ErrStackUnderflow is raised by the optional stack-depth check (spec
// §4.3.5, §4.5): Op requires Want operands but only Have are available on
// entry. The solver works over CFG blocks rather than a linear program
// counter, so Op stands in for spec's "pc" as the identifying detail.
type ErrStackUnderflow struct {
	Op         string
	Have, Want int
}

func (e ErrStackUnderflow) Error() string {
	return fmt.Sprintf("assemble: stack underflow: %s requires %d on the stack, only %d available", e.Op, e.Want, e.Have)
}

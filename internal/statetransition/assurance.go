package statetransition

import (
	"fmt"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/internal/state"
)

// ProcessAssuranceExtrinsic validates the shape of an availability
// affirmation. It deliberately mutates no state in this iteration: the
// extrinsic slot in the block ordering is reserved for affirmations
// that advance finality or tilt unresolved disputes.
func ProcessAssuranceExtrinsic(a block.Assurance, _ *state.OnchainState, _ jamtime.Timeslot) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("assurance: %w", err)
	}
	return nil
}

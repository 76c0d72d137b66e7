package block

import "github.com/mossberry/mossberry/internal/jamtime"

// Extrinsic bundles a block's extrinsics. They are applied in the
// canonical order Guarantees, Assurances, Disputes, then the
// accumulation sweep.
type Extrinsic struct {
	EG GuaranteesExtrinsic
	EA AssurancesExtrinsic
	ED DisputesExtrinsic
}

// Block is the unit of state transition: a slot plus its extrinsics.
type Block struct {
	Slot      jamtime.Timeslot
	Extrinsic Extrinsic
}

package statetransition

import (
	"log"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/internal/state"
)

// ProcessDisputeExtrinsic removes the disputed digest from ρ or ω,
// records the dispute in ψ_B, and charges the report's guarantor in
// ψ_O. A digest already finalized stays in ξ (history is immutable) but
// still collects the ψ_B entry and the offender charge. A dispute
// against an unknown digest is a silent no-op, tolerating replays.
func ProcessDisputeExtrinsic(d block.Dispute, s *state.OnchainState, slot jamtime.Timeslot) {
	if err := d.Validate(); err != nil {
		log.Printf("rejecting malformed dispute: %v", err)
		return
	}

	digest := d.DisputedDigestHash

	var report block.WorkReport
	switch {
	case s.Rho[digest] != nil:
		report = s.Rho[digest].Report
		delete(s.Rho, digest)
	case s.Omega[digest] != nil:
		report = s.Omega[digest].Report
		delete(s.Omega, digest)
	default:
		finalized, ok := s.Xi[digest]
		if !ok {
			log.Printf("dispute target missing: %s", digest.Hex())
			return
		}
		report = finalized
	}

	s.RecordBadReport(digest, d.Reason, d.DisputerPublicKey)
	s.ChargeOffender(report.GuarantorPublicKey, slot)
}

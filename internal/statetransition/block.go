package statetransition

import (
	"log"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
)

// UpdateState applies a whole block against the accumulator's state in
// the canonical extrinsic order: Guarantees, Assurances, Disputes, then
// one accumulation sweep. As guarantees are admitted their digests join
// currentBlockDigests, so later reports in the batch may cite earlier
// ones as dependencies.
func (a *Accumulator) UpdateState(blk block.Block) {
	s := a.state

	var currentBlockDigests []crypto.Hash
	for _, g := range blk.Extrinsic.EG.Guarantees {
		ProcessGuaranteeExtrinsic(g.WorkReport, s, blk.Slot, currentBlockDigests)

		d, err := g.WorkReport.Hash()
		if err != nil {
			continue
		}
		if s.DigestKnown(d) && !containsDigest(currentBlockDigests, d) {
			currentBlockDigests = append(currentBlockDigests, d)
		}
	}

	for _, assurance := range blk.Extrinsic.EA.Assurances {
		if err := ProcessAssuranceExtrinsic(assurance, s, blk.Slot); err != nil {
			log.Printf("skipping assurance: %v", err)
		}
	}

	for _, dispute := range blk.Extrinsic.ED.Disputes {
		ProcessDisputeExtrinsic(dispute, s, blk.Slot)
	}

	a.ProcessAccumulationQueue(blk.Slot)
}

func containsDigest(digests []crypto.Hash, d crypto.Hash) bool {
	for _, existing := range digests {
		if existing == d {
			return true
		}
	}
	return false
}

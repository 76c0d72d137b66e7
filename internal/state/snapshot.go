package state

import (
	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/pkg/serialization/codec/canonical"
)

// Snapshot is the plain-data rendering of an OnchainState, used for
// test-vector diffing. Buckets are keyed by digest hex; endorsement and
// dispute sets render as sorted arrays.
type Snapshot struct {
	Rho    map[string]PendingSnapshot  `json:"rho"`
	Omega  map[string]QueuedSnapshot   `json:"omega"`
	Xi     map[string]block.WorkReport `json:"xi"`
	PsiB   map[string]BadSnapshot      `json:"psi_b"`
	PsiO   map[string]OffenderSnapshot `json:"psi_o"`
	Global GlobalState                 `json:"global_state"`
}

type PendingSnapshot struct {
	Report             block.WorkReport  `json:"report"`
	ReceivedSignatures []crypto.Identity `json:"receivedSignatures"`
	SubmissionSlot     jamtime.Timeslot  `json:"submissionSlot"`
}

type QueuedSnapshot struct {
	Report block.WorkReport `json:"report"`
	Status ReportStatus     `json:"status"`
}

type BadSnapshot struct {
	Reason     string            `json:"reason"`
	DisputedBy []crypto.Identity `json:"disputedBy"`
}

type OffenderSnapshot struct {
	DisputeCount    uint32           `json:"disputeCount"`
	LastDisputeSlot jamtime.Timeslot `json:"lastDisputeSlot"`
}

// Snapshot renders the state as a plain-data tree.
func (s *OnchainState) Snapshot() Snapshot {
	snap := Snapshot{
		Rho:    make(map[string]PendingSnapshot, len(s.Rho)),
		Omega:  make(map[string]QueuedSnapshot, len(s.Omega)),
		Xi:     make(map[string]block.WorkReport, len(s.Xi)),
		PsiB:   make(map[string]BadSnapshot, len(s.PsiB)),
		PsiO:   make(map[string]OffenderSnapshot, len(s.PsiO)),
		Global: s.Global.Clone(),
	}
	for d, pending := range s.Rho {
		snap.Rho[d.Hex()] = PendingSnapshot{
			Report:             pending.Report,
			ReceivedSignatures: pending.ReceivedSignatures.Sorted(),
			SubmissionSlot:     pending.SubmissionSlot,
		}
	}
	for d, queued := range s.Omega {
		snap.Omega[d.Hex()] = QueuedSnapshot{
			Report: queued.Report,
			Status: queued.Status,
		}
	}
	for d, report := range s.Xi {
		snap.Xi[d.Hex()] = report
	}
	for d, bad := range s.PsiB {
		snap.PsiB[d.Hex()] = BadSnapshot{
			Reason:     bad.Reason,
			DisputedBy: bad.DisputedBy.Sorted(),
		}
	}
	for id, record := range s.PsiO {
		snap.PsiO[string(id)] = OffenderSnapshot{
			DisputeCount:    record.DisputeCount,
			LastDisputeSlot: record.LastDisputeSlot,
		}
	}
	return snap
}

// Root computes the blake2b fingerprint of the canonical snapshot
// encoding. Two states are equal iff their roots are equal.
func (s *OnchainState) Root() (crypto.Hash, error) {
	encoded, err := canonical.Marshal(s.Snapshot())
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.FingerprintData(encoded), nil
}

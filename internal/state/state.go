package state

import (
	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
)

// ReportStatus is the processing status of a report in the
// accumulation queue.
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusReady      ReportStatus = "ready"
	StatusProcessing ReportStatus = "processing"
)

// PendingReport is a ρ entry: a report whose endorsements have not yet
// reached the super-majority threshold.
type PendingReport struct {
	Report             block.WorkReport
	ReceivedSignatures crypto.IdentitySet
	SubmissionSlot     jamtime.Timeslot
}

// QueuedReport is an ω entry: an endorsed report awaiting accumulation.
type QueuedReport struct {
	Report block.WorkReport
	Status ReportStatus
}

// BadReport is a ψ_B entry: a rejected or disputed digest with the set
// of parties that disputed it. The reason recorded on first insertion
// is never overwritten by later disputes.
type BadReport struct {
	Reason     string
	DisputedBy crypto.IdentitySet
}

// OffenderRecord is a ψ_O entry: the running dispute tally for one
// guarantor identity. DisputeCount is monotone non-decreasing.
type OffenderRecord struct {
	DisputeCount    uint32
	LastDisputeSlot jamtime.Timeslot
}

// OnchainState owns the five report buckets and the global state. No
// entry references another except by digest key, and a digest is never
// present in more than one of ρ, ω, ξ at a time.
type OnchainState struct {
	Rho    map[crypto.Hash]*PendingReport     // Pending reports (ρ): incomplete endorsements.
	Omega  map[crypto.Hash]*QueuedReport      // Accumulation queue (ω): endorsed reports awaiting accumulation.
	Xi     map[crypto.Hash]block.WorkReport   // Finalized history (ξ): terminal; never removed.
	PsiB   map[crypto.Hash]*BadReport         // Bad reports (ψ_B): rejected or disputed digests.
	PsiO   map[crypto.Identity]OffenderRecord // Offender ledger (ψ_O): per-identity dispute tally.
	Global GlobalState
}

// NewOnchainState returns an empty state with all buckets allocated.
func NewOnchainState() *OnchainState {
	return &OnchainState{
		Rho:    make(map[crypto.Hash]*PendingReport),
		Omega:  make(map[crypto.Hash]*QueuedReport),
		Xi:     make(map[crypto.Hash]block.WorkReport),
		PsiB:   make(map[crypto.Hash]*BadReport),
		PsiO:   make(map[crypto.Identity]OffenderRecord),
		Global: NewGlobalState(),
	}
}

// RecordBadReport inserts or merges a ψ_B entry for the digest. On
// merge the disputing parties accumulate and the original reason stands.
func (s *OnchainState) RecordBadReport(d crypto.Hash, reason string, disputedBy crypto.Identity) {
	if entry, ok := s.PsiB[d]; ok {
		entry.DisputedBy.Add(disputedBy)
		return
	}
	s.PsiB[d] = &BadReport{
		Reason:     reason,
		DisputedBy: crypto.NewIdentitySet(disputedBy),
	}
}

// ChargeOffender increments the guarantor's dispute tally and stamps
// the slot, creating the record if absent.
func (s *OnchainState) ChargeOffender(guarantor crypto.Identity, slot jamtime.Timeslot) {
	record := s.PsiO[guarantor]
	record.DisputeCount++
	record.LastDisputeSlot = slot
	s.PsiO[guarantor] = record
}

// DigestKnown reports whether the digest is present in any of ρ, ω, ξ.
func (s *OnchainState) DigestKnown(d crypto.Hash) bool {
	if _, ok := s.Rho[d]; ok {
		return true
	}
	if _, ok := s.Omega[d]; ok {
		return true
	}
	_, ok := s.Xi[d]
	return ok
}

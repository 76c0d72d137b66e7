// Package conformance loads externally produced test vectors, replays
// them through the extrinsic processors, and diffs the resulting state
// snapshots against the expected post-state.
package conformance

import (
	"fmt"
	"os"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/internal/pvm"
	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/statetransition"
	"github.com/mossberry/mossberry/internal/work"
	"github.com/mossberry/mossberry/pkg/serialization/codec/canonical"
)

// VectorSlotOffset is added to the first guarantee's lookup anchor slot
// to derive the slot fed to the processors.
const VectorSlotOffset = 65

// Vector is one test-vector file: a pre-state, an input batch, and the
// expected post-state.
type Vector struct {
	PreState      state.Snapshot `json:"pre_state"`
	Input         Input          `json:"input"`
	PostState     state.Snapshot `json:"post_state"`
	ExpectedError string         `json:"expected_error"`
}

// Input carries the extrinsics of the vector in canonical order.
type Input struct {
	Guarantees []GuaranteeInput  `json:"guarantees"`
	Assurances []block.Assurance `json:"assurances"`
	Disputes   []block.Dispute   `json:"disputes"`
}

// GuaranteeInput wraps a vector report. The report's context carries a
// lookup_anchor_slot used to derive the processing slot.
type GuaranteeInput struct {
	Report ReportInput `json:"report"`
}

// ContextInput is the vector rendering of a refinement context: the
// model fields plus the lookup anchor slot.
type ContextInput struct {
	block.RefinementContext
	LookupAnchorSlot jamtime.Timeslot `json:"lookup_anchor_slot"`
}

// ReportInput is the vector rendering of a work-report, with the
// refinement context under its vector key.
type ReportInput struct {
	WorkPackage        work.Package            `json:"workPackage"`
	Context            ContextInput            `json:"context"`
	PvmOutput          string                  `json:"pvmOutput"`
	GasUsed            int64                   `json:"gasUsed"`
	AvailabilitySpec   *block.AvailabilitySpec `json:"availabilitySpec"`
	GuarantorSignature string                  `json:"guarantorSignature"`
	GuarantorPublicKey crypto.Identity         `json:"guarantorPublicKey"`
	CoreIndex          uint16                  `json:"coreIndex"`
	Slot               jamtime.Timeslot        `json:"slot"`
	Dependencies       []crypto.Hash           `json:"dependencies"`
}

// ToModel converts the vector report into the model work-report.
func (r ReportInput) ToModel() block.WorkReport {
	return block.WorkReport{
		WorkPackage:        r.WorkPackage,
		RefinementContext:  r.Context.RefinementContext,
		PvmOutput:          r.PvmOutput,
		GasUsed:            r.GasUsed,
		AvailabilitySpec:   r.AvailabilitySpec,
		GuarantorSignature: r.GuarantorSignature,
		GuarantorPublicKey: r.GuarantorPublicKey,
		CoreIndex:          r.CoreIndex,
		Slot:               r.Slot,
		Dependencies:       r.Dependencies,
	}
}

// LoadVector reads and parses a vector file.
func LoadVector(path string) (Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vector{}, fmt.Errorf("read vector: %w", err)
	}
	var v Vector
	if err := canonical.Unmarshal(data, &v); err != nil {
		return Vector{}, fmt.Errorf("parse vector %s: %w", path, err)
	}
	return v, nil
}

// Slot derives the slot fed to the processors: the first guarantee's
// lookup anchor slot plus the fixed offset.
func (v Vector) Slot() jamtime.Timeslot {
	if len(v.Input.Guarantees) == 0 {
		return 0
	}
	return v.Input.Guarantees[0].Report.Context.LookupAnchorSlot + VectorSlotOffset
}

// RunVector hydrates the pre-state and applies the input batch in
// canonical order, returning the resulting snapshot.
func RunVector(v Vector, invoker pvm.Invoker) (state.Snapshot, error) {
	s, err := HydrateState(v.PreState)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("hydrate pre-state: %w", err)
	}

	blk := block.Block{Slot: v.Slot()}
	for _, g := range v.Input.Guarantees {
		blk.Extrinsic.EG.Guarantees = append(blk.Extrinsic.EG.Guarantees, block.Guarantee{WorkReport: g.Report.ToModel()})
	}
	blk.Extrinsic.EA.Assurances = v.Input.Assurances
	blk.Extrinsic.ED.Disputes = v.Input.Disputes

	acc := statetransition.NewAccumulator(s, invoker)
	acc.UpdateState(blk)

	return s.Snapshot(), nil
}

// HydrateState rebuilds an OnchainState from its snapshot rendering.
func HydrateState(snap state.Snapshot) (*state.OnchainState, error) {
	s := state.NewOnchainState()

	for hexDigest, pending := range snap.Rho {
		d, err := crypto.ParseHash(hexDigest)
		if err != nil {
			return nil, fmt.Errorf("rho key: %w", err)
		}
		s.Rho[d] = &state.PendingReport{
			Report:             pending.Report,
			ReceivedSignatures: crypto.NewIdentitySet(pending.ReceivedSignatures...),
			SubmissionSlot:     pending.SubmissionSlot,
		}
	}
	for hexDigest, queued := range snap.Omega {
		d, err := crypto.ParseHash(hexDigest)
		if err != nil {
			return nil, fmt.Errorf("omega key: %w", err)
		}
		status := queued.Status
		if status == "" {
			status = state.StatusReady
		}
		s.Omega[d] = &state.QueuedReport{Report: queued.Report, Status: status}
	}
	for hexDigest, report := range snap.Xi {
		d, err := crypto.ParseHash(hexDigest)
		if err != nil {
			return nil, fmt.Errorf("xi key: %w", err)
		}
		s.Xi[d] = report
	}
	for hexDigest, bad := range snap.PsiB {
		d, err := crypto.ParseHash(hexDigest)
		if err != nil {
			return nil, fmt.Errorf("psi_b key: %w", err)
		}
		s.PsiB[d] = &state.BadReport{
			Reason:     bad.Reason,
			DisputedBy: crypto.NewIdentitySet(bad.DisputedBy...),
		}
	}
	for identity, record := range snap.PsiO {
		s.PsiO[crypto.Identity(identity)] = state.OffenderRecord{
			DisputeCount:    record.DisputeCount,
			LastDisputeSlot: record.LastDisputeSlot,
		}
	}

	if snap.Global.Accounts != nil || snap.Global.CoreStatus != nil ||
		snap.Global.ServiceRegistry != nil || snap.Global.Data != nil || snap.Global.Log != nil {
		s.Global = snap.Global.Clone()
	}
	if s.Global.Accounts == nil {
		s.Global.Accounts = make(map[string]state.Account)
	}
	if s.Global.CoreStatus == nil {
		s.Global.CoreStatus = make(map[uint16]state.CoreState)
	}
	if s.Global.ServiceRegistry == nil {
		s.Global.ServiceRegistry = make(map[string]state.ServiceRegistration)
	}
	if s.Global.Data == nil {
		s.Global.Data = make(map[string]string)
	}

	return s, nil
}

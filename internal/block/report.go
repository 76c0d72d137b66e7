package block

import (
	"errors"
	"fmt"

	"github.com/mossberry/mossberry/internal/common"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/internal/work"
	"github.com/mossberry/mossberry/pkg/serialization/codec/canonical"
)

// RefinementContext describes the view of chain state the guarantor
// worked against when refining the work-package.
type RefinementContext struct {
	AnchorBlockRoot    crypto.Hash       `json:"anchorBlockRoot"`
	AnchorBlockNumber  jamtime.Timeslot  `json:"anchorBlockNumber"`
	BeefyMmrRoot       crypto.Hash       `json:"beefyMmrRoot"`
	CurrentSlot        jamtime.Timeslot  `json:"currentSlot"`
	CurrentEpoch       jamtime.Epoch     `json:"currentEpoch"`
	CurrentGuarantors  []crypto.Identity `json:"currentGuarantors"`
	PreviousGuarantors []crypto.Identity `json:"previousGuarantors"`
}

// RosterSize returns N: the combined size of the two guarantor rosters.
// The endorsement threshold is ⌈N · 2/3⌉.
func (c RefinementContext) RosterSize() int {
	return len(c.CurrentGuarantors) + len(c.PreviousGuarantors)
}

// AvailabilitySpec represents Y: the erasure-coded fragment descriptor
// for a report.
type AvailabilitySpec struct {
	TotalFragments uint32        `json:"totalFragments"`
	DataFragments  uint32        `json:"dataFragments"`
	FragmentHashes []crypto.Hash `json:"fragmentHashes"`
}

var (
	ErrAvailabilityFragmentBounds = errors.New("availability spec requires 1 <= dataFragments <= totalFragments")
	ErrAvailabilityHashCount      = errors.New("availability spec fragment hash count must equal totalFragments")
)

// Validate checks the fragment-count invariants.
func (a AvailabilitySpec) Validate() error {
	if a.DataFragments < 1 || a.DataFragments > a.TotalFragments {
		return fmt.Errorf("%w: data=%d total=%d", ErrAvailabilityFragmentBounds, a.DataFragments, a.TotalFragments)
	}
	if uint32(len(a.FragmentHashes)) != a.TotalFragments {
		return fmt.Errorf("%w: hashes=%d total=%d", ErrAvailabilityHashCount, len(a.FragmentHashes), a.TotalFragments)
	}
	return nil
}

// WorkReport represents R: the guarantor's post-refinement artifact.
type WorkReport struct {
	WorkPackage        work.Package      `json:"workPackage"`
	RefinementContext  RefinementContext `json:"refinementContext"`
	PvmOutput          string            `json:"pvmOutput"`
	GasUsed            int64             `json:"gasUsed"`
	AvailabilitySpec   *AvailabilitySpec `json:"availabilitySpec"`
	GuarantorSignature string            `json:"guarantorSignature"`
	GuarantorPublicKey crypto.Identity   `json:"guarantorPublicKey"`
	CoreIndex          uint16            `json:"coreIndex"`
	Slot               jamtime.Timeslot  `json:"slot"`
	Dependencies       []crypto.Hash     `json:"dependencies"`
}

// signableReport mirrors WorkReport with the guarantor endorsement
// (signature and public key) omitted. The digest and the signed message
// are both defined over this form, so submissions of the same work by
// different guarantors share a digest; the ρ endorsement merge relies
// on this.
type signableReport struct {
	WorkPackage       work.Package      `json:"workPackage"`
	RefinementContext RefinementContext `json:"refinementContext"`
	PvmOutput         string            `json:"pvmOutput"`
	GasUsed           int64             `json:"gasUsed"`
	AvailabilitySpec  *AvailabilitySpec `json:"availabilitySpec"`
	CoreIndex         uint16            `json:"coreIndex"`
	Slot              jamtime.Timeslot  `json:"slot"`
	Dependencies      []crypto.Hash     `json:"dependencies"`
}

// SignableEncode produces the canonical bytes of the report with the
// guarantor endorsement omitted.
func (r WorkReport) SignableEncode() ([]byte, error) {
	return canonical.Marshal(signableReport{
		WorkPackage:       r.WorkPackage,
		RefinementContext: r.RefinementContext,
		PvmOutput:         r.PvmOutput,
		GasUsed:           r.GasUsed,
		AvailabilitySpec:  r.AvailabilitySpec,
		CoreIndex:         r.CoreIndex,
		Slot:              r.Slot,
		Dependencies:      r.Dependencies,
	})
}

// Hash computes D: the SHA-256 work-digest over the signable form.
func (r WorkReport) Hash() (crypto.Hash, error) {
	encoded, err := r.SignableEncode()
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashData(encoded), nil
}

// Encode produces the full canonical bytes, signature included.
func (r WorkReport) Encode() ([]byte, error) {
	return canonical.Marshal(r)
}

// VerifySignature checks the guarantor's Ed25519 signature over the
// signable form. Every report admitted past validation satisfies this.
func (r WorkReport) VerifySignature() (bool, error) {
	message, err := r.SignableEncode()
	if err != nil {
		return false, err
	}
	return r.GuarantorPublicKey.VerifySignature(message, r.GuarantorSignature), nil
}

// Validate checks the data-model invariants of the report.
func (r WorkReport) Validate() error {
	if err := r.WorkPackage.Validate(); err != nil {
		return fmt.Errorf("work-package: %w", err)
	}
	if r.GasUsed < 0 {
		return errors.New("work-report gasUsed must be non-negative")
	}
	if r.AvailabilitySpec != nil {
		if err := r.AvailabilitySpec.Validate(); err != nil {
			return fmt.Errorf("availability spec: %w", err)
		}
	}
	if r.GuarantorPublicKey == "" {
		return errors.New("work-report guarantor public key must be non-empty")
	}
	if r.CoreIndex > common.MaxCoreIndex {
		return fmt.Errorf("work-report core index %d exceeds %d", r.CoreIndex, common.MaxCoreIndex)
	}
	return nil
}

package statetransition

import (
	"fmt"
	"log"
	"slices"
	"sort"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/common"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/internal/state"
)

// ProcessGuaranteeExtrinsic ingests one signed work-report. On a
// validation failure the report's digest is routed to ψ_B and its
// guarantor charged in ψ_O. On success the guarantor's endorsement is
// merged into ρ; the return value is true iff this endorsement promoted
// the digest into the accumulation queue ω.
//
// currentBlockDigests carries the digests of reports admitted earlier
// in the same block, so later reports may cite them as dependencies.
func ProcessGuaranteeExtrinsic(r block.WorkReport, s *state.OnchainState, slot jamtime.Timeslot, currentBlockDigests []crypto.Hash) bool {
	if err := r.Validate(); err != nil {
		// Malformed model values are rejected before any state touch.
		log.Printf("rejecting malformed work-report: %v", err)
		return false
	}

	d, err := r.Hash()
	if err != nil {
		log.Printf("rejecting unhashable work-report: %v", err)
		return false
	}

	if err := validateWorkReport(d, r, s, slot, currentBlockDigests); err != nil {
		s.RecordBadReport(d, err.Error(), SystemValidation)
		s.ChargeOffender(r.GuarantorPublicKey, slot)
		return false
	}

	return mergeEndorsement(d, r, s, slot)
}

// validateWorkReport runs the admission checks in their fixed order and
// returns the first failure, tagged with its protocol reason.
func validateWorkReport(d crypto.Hash, r block.WorkReport, s *state.OnchainState, slot jamtime.Timeslot, currentBlockDigests []crypto.Hash) error {
	// 1. The guarantor's signature must cover the signable form.
	ok, err := r.VerifySignature()
	if err != nil || !ok {
		return ErrBadSignature
	}

	// 2. The anchor block must be recent.
	if int64(slot)-int64(r.RefinementContext.AnchorBlockNumber) > common.AnchorMaxAgeSlots {
		return fmt.Errorf("%w: anchor %d is older than %d slots at slot %d",
			ErrAnchorNotRecent, r.RefinementContext.AnchorBlockNumber, common.AnchorMaxAgeSlots, slot)
	}

	// 3. The authorizing service must be registered.
	registration, registered := s.Global.ServiceRegistry[r.WorkPackage.AuthorizationServiceDetails.URL]
	if !registered {
		return fmt.Errorf("%w: %q", ErrBadServiceID, r.WorkPackage.AuthorizationServiceDetails.URL)
	}

	// 4. A declared service code hash binds the first work-item's program.
	if registration.CodeHash != "" && r.WorkPackage.WorkItems[0].ProgramHash != registration.CodeHash {
		return fmt.Errorf("%w: program %q, registered %q",
			ErrBadCodeHash, r.WorkPackage.WorkItems[0].ProgramHash, registration.CodeHash)
	}

	// 5. The guarantor must belong to the roster of the report's epoch.
	if err := validateGuarantorAssignment(r); err != nil {
		return err
	}

	// 6. The target core must not be engaged.
	if s.Global.CoreStatus[r.CoreIndex] == state.CoreEngaged {
		return fmt.Errorf("%w: core %d", ErrCoreEngaged, r.CoreIndex)
	}

	// 7. The report slot must not be in the future.
	if r.Slot > slot {
		return fmt.Errorf("%w: report slot %d, current slot %d", ErrFutureReportSlot, r.Slot, slot)
	}

	// 8. The report must not predate the last rotation window.
	if int64(slot)-int64(r.Slot) > common.ReportTimeoutSlots {
		return fmt.Errorf("%w: report slot %d, current slot %d", ErrReportBeforeLastRotation, r.Slot, slot)
	}

	// 9. Dependency count is bounded.
	if len(r.Dependencies) > common.MaxDependencies {
		return fmt.Errorf("%w: %d > %d", ErrTooManyDependencies, len(r.Dependencies), common.MaxDependencies)
	}

	// 10. Every dependency must already be known: finalized, pending, or
	// admitted earlier in this block.
	for _, dep := range r.Dependencies {
		if _, ok := s.Xi[dep]; ok {
			continue
		}
		if _, ok := s.Rho[dep]; ok {
			continue
		}
		if slices.Contains(currentBlockDigests, dep) {
			continue
		}
		return fmt.Errorf("%w: %s", ErrDependencyMissing, dep.Hex())
	}

	// 11. Total gas claim is bounded.
	if r.GasUsed > common.MaxWorkReportGas {
		return fmt.Errorf("%w: %d > %d", ErrTooHighWorkReportGas, r.GasUsed, common.MaxWorkReportGas)
	}

	// 12. Every work-item carries at least the service minimum gas.
	for _, item := range r.WorkPackage.WorkItems {
		if item.GasLimit < common.MinServiceItemGas {
			return fmt.Errorf("%w: item %q has %d < %d", ErrServiceItemGasTooLow, item.ID, item.GasLimit, common.MinServiceItemGas)
		}
	}

	// 13. The package must not already be finalized.
	if _, ok := s.Xi[d]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePackage, d.Hex())
	}

	return nil
}

// validateGuarantorAssignment checks that the guarantor appears in the
// roster matching the report's epoch: the current roster for the
// context's epoch, the previous roster for the epoch before it.
func validateGuarantorAssignment(r block.WorkReport) error {
	reportEpoch := r.Slot.ToEpoch()
	context := r.RefinementContext

	var roster []crypto.Identity
	switch {
	case reportEpoch == context.CurrentEpoch:
		roster = context.CurrentGuarantors
	case context.CurrentEpoch > 0 && reportEpoch == context.CurrentEpoch-1:
		roster = context.PreviousGuarantors
	default:
		return fmt.Errorf("%w: report epoch %d, context epoch %d", ErrWrongAssignment, reportEpoch, context.CurrentEpoch)
	}

	if !slices.Contains(roster, r.GuarantorPublicKey) {
		return fmt.Errorf("%w: guarantor not in epoch %d roster", ErrNotAuthorized, reportEpoch)
	}
	return nil
}

// mergeEndorsement folds the guarantor's endorsement into ρ and
// promotes the digest to ω once the super-majority threshold is met.
// The first observed submission fixes the submission slot; timeout is
// measured against it on every later touch.
func mergeEndorsement(d crypto.Hash, r block.WorkReport, s *state.OnchainState, slot jamtime.Timeslot) bool {
	pending, ok := s.Rho[d]
	if !ok {
		// A digest already queued or finalized never re-enters ρ.
		if _, queued := s.Omega[d]; queued {
			return false
		}
		pending = &state.PendingReport{
			Report:             r,
			ReceivedSignatures: crypto.NewIdentitySet(r.GuarantorPublicKey),
			SubmissionSlot:     slot,
		}
		s.Rho[d] = pending
	} else {
		if pending.ReceivedSignatures.Has(r.GuarantorPublicKey) {
			return false
		}
		pending.ReceivedSignatures.Add(r.GuarantorPublicKey)
	}

	threshold := common.SuperMajorityThreshold(r.RefinementContext.RosterSize())
	if len(pending.ReceivedSignatures) >= threshold {
		delete(s.Rho, d)
		s.Omega[d] = &state.QueuedReport{Report: pending.Report, Status: state.StatusReady}
		return true
	}

	if int64(slot)-int64(pending.SubmissionSlot) > common.ReportTimeoutSlots {
		delete(s.Rho, d)
		s.RecordBadReport(d, ErrTimedOut.Error(), SystemTimeout)
	}
	return false
}

// SweepPendingTimeouts evicts every pending report older than the
// timeout window into ψ_B, independent of guarantee traffic. Digests
// are visited in lexicographic order for determinism.
func SweepPendingTimeouts(s *state.OnchainState, slot jamtime.Timeslot) {
	var expired []crypto.Hash
	for d, pending := range s.Rho {
		if int64(slot)-int64(pending.SubmissionSlot) > common.ReportTimeoutSlots {
			expired = append(expired, d)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].Hex() < expired[j].Hex() })
	for _, d := range expired {
		delete(s.Rho, d)
		s.RecordBadReport(d, ErrTimedOut.Error(), SystemTimeout)
	}
}

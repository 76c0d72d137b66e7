package statetransition

import (
	"fmt"
	"log"
	"sort"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/internal/pvm"
	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/store"
)

// Accumulator drains the accumulation queue: it orders ready reports by
// their intra-queue dependencies, executes each report's work-items
// through Ψ_A, and commits the resulting deltas atomically per report.
type Accumulator struct {
	state   *state.OnchainState
	invoker pvm.Invoker
	reports *store.Reports
}

func NewAccumulator(s *state.OnchainState, invoker pvm.Invoker) *Accumulator {
	return &Accumulator{state: s, invoker: invoker}
}

// AttachStore enables archival of finalized reports and state
// fingerprints. Archival failures are logged, never propagated: the
// in-memory state transition is the source of truth.
func (a *Accumulator) AttachStore(r *store.Reports) {
	a.reports = r
}

// ProcessAccumulationQueue performs one sweep over ω. Reports whose
// items all succeed move to ξ and their staged deltas commit; a report
// whose execution fails is routed to ψ_B with its guarantor charged,
// and none of its deltas survive. Digests caught in a dependency cycle
// stay in ω as ready; they may resolve once the missing link arrives.
func (a *Accumulator) ProcessAccumulationQueue(slot jamtime.Timeslot) {
	s := a.state
	order := topologicalOrder(s.Omega)

	var finalized []block.WorkReport
	for _, d := range order {
		queued, ok := s.Omega[d]
		if !ok || queued.Status != state.StatusReady {
			continue
		}
		queued.Status = state.StatusProcessing

		staged, err := a.executeReport(queued.Report)
		if err != nil {
			delete(s.Omega, d)
			s.RecordBadReport(d, fmt.Sprintf("%s: %v", ErrAccumulationFailed.Error(), err), SystemAccumulation)
			s.ChargeOffender(queued.Report.GuarantorPublicKey, slot)
			continue
		}

		s.Global = staged
		delete(s.Omega, d)
		s.Xi[d] = queued.Report
		finalized = append(finalized, queued.Report)
	}

	if a.reports != nil && len(finalized) > 0 {
		root, err := s.Root()
		if err != nil {
			log.Printf("computing state root after sweep: %v", err)
			return
		}
		if err := a.reports.PutFinalizedBatch(finalized, slot, root); err != nil {
			log.Printf("archiving finalized reports: %v", err)
		}
	}
}

// executeReport runs every work-item against a staged copy of the
// global state, in item order, each item observing the deltas of the
// ones before it. The staged copy is returned only if all items
// succeed; on any failure it is discarded, giving report-boundary
// atomicity.
func (a *Accumulator) executeReport(r block.WorkReport) (state.GlobalState, error) {
	staged := a.state.Global.Clone()
	for i, item := range r.WorkPackage.WorkItems {
		delta, err := a.invoker.Invoke(item, staged)
		if err != nil {
			return state.GlobalState{}, fmt.Errorf("work-item %d (%s): %w", i, item.ID, err)
		}
		pvm.ApplyDelta(&staged, delta)
	}
	return staged, nil
}

// topologicalOrder runs Kahn's algorithm over the intra-ω dependency
// graph. Dependencies on digests outside ω were enforced at admission
// and carry no edges here. Ties among zero-in-degree nodes break by
// lexicographic order of the digest hex, giving an order independent
// of map iteration. Digests on a cycle are absent from the result.
func topologicalOrder(omega map[crypto.Hash]*state.QueuedReport) []crypto.Hash {
	inDegree := make(map[crypto.Hash]int, len(omega))
	dependents := make(map[crypto.Hash][]crypto.Hash, len(omega))

	for d := range omega {
		inDegree[d] = 0
	}
	for d, queued := range omega {
		for _, dep := range queued.Report.Dependencies {
			if _, intra := omega[dep]; !intra {
				continue
			}
			inDegree[d]++
			dependents[dep] = append(dependents[dep], d)
		}
	}

	var ready []crypto.Hash
	for d, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, d)
		}
	}
	sortDigests(ready)

	order := make([]crypto.Hash, 0, len(omega))
	for len(ready) > 0 {
		d := ready[0]
		ready = ready[1:]
		order = append(order, d)

		var unlocked []crypto.Hash
		for _, dependent := range dependents[d] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sortDigests(ready)
		}
	}

	return order
}

func sortDigests(digests []crypto.Hash) {
	sort.Slice(digests, func(i, j int) bool { return digests[i].Hex() < digests[j].Hex() })
}

package statetransition_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/pvm"
	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/statetransition"
)

func TestAccumulationHappyPath(t *testing.T) {
	g1, g2 := newGuarantor(t), newGuarantor(t)
	s := newTestState()
	report := baseReport(roster(g1, g2), nil)
	d := digestOf(t, report)

	statetransition.ProcessGuaranteeExtrinsic(signedBy(t, report, g1), s, testSlot, nil)
	statetransition.ProcessGuaranteeExtrinsic(signedBy(t, report, g2), s, testSlot, nil)
	require.Contains(t, s.Omega, d)

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot)

	assert.Empty(t, s.Omega)
	require.Contains(t, s.Xi, d)
	assert.Equal(t, int64(900), s.Global.Accounts["alice"].Balance)
	assert.Equal(t, int64(600), s.Global.Accounts["bob"].Balance)
	assert.Empty(t, s.PsiB)
}

func TestAccumulationLeavesPendingAlone(t *testing.T) {
	g1, g2, g3 := newGuarantor(t), newGuarantor(t), newGuarantor(t)
	s := newTestState()
	report := baseReport(roster(g1, g2, g3), nil)
	d := digestOf(t, report)

	statetransition.ProcessGuaranteeExtrinsic(signedBy(t, report, g1), s, testSlot, nil)

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot)

	assert.Contains(t, s.Rho, d)
	assert.Empty(t, s.Xi)
	assert.Equal(t, int64(1000), s.Global.Accounts["alice"].Balance)
}

// queueReport plants a report directly into ω with the given log marker
// and dependencies.
func queueReport(t *testing.T, s *state.OnchainState, g guarantor, marker string, deps []crypto.Hash) crypto.Hash {
	t.Helper()
	report := baseReport(roster(g), nil)
	report.WorkPackage.WorkItems[0].InputData = `[{"op":"log","message":"` + marker + `"}]`
	report.Dependencies = deps
	signed := signedBy(t, report, g)
	d := digestOf(t, signed)
	s.Omega[d] = &state.QueuedReport{Report: signed, Status: state.StatusReady}
	return d
}

func TestAccumulationDependencyOrder(t *testing.T) {
	g1 := newGuarantor(t)
	s := newTestState()

	dA := queueReport(t, s, g1, "A", nil)
	dB := queueReport(t, s, g1, "B", []crypto.Hash{dA})

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot)

	assert.Contains(t, s.Xi, dA)
	assert.Contains(t, s.Xi, dB)
	// The dependency edge forces A before B regardless of digest order.
	assert.Equal(t, []string{"A", "B"}, s.Global.Log)
}

func TestAccumulationLexicographicTieBreak(t *testing.T) {
	g1 := newGuarantor(t)
	s := newTestState()

	dX := queueReport(t, s, g1, "X", nil)
	dY := queueReport(t, s, g1, "Y", nil)

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot)

	markerByDigest := map[string]string{dX.Hex(): "X", dY.Hex(): "Y"}
	hexes := []string{dX.Hex(), dY.Hex()}
	sort.Strings(hexes)
	expected := []string{markerByDigest[hexes[0]], markerByDigest[hexes[1]]}
	assert.Equal(t, expected, s.Global.Log)
}

func TestAccumulationCycleStaysQueued(t *testing.T) {
	g1 := newGuarantor(t)
	s := newTestState()

	// Mutual dependencies: neither report can be ordered. Plant the
	// edges after hashing so the digests reference each other.
	dA := queueReport(t, s, g1, "A", nil)
	dB := queueReport(t, s, g1, "B", []crypto.Hash{dA})
	s.Omega[dA].Report.Dependencies = []crypto.Hash{dB}

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot)

	require.Contains(t, s.Omega, dA)
	require.Contains(t, s.Omega, dB)
	assert.Equal(t, state.StatusReady, s.Omega[dA].Status)
	assert.Equal(t, state.StatusReady, s.Omega[dB].Status)
	assert.Empty(t, s.PsiB)
	assert.Empty(t, s.Xi)
}

func TestAccumulationFailureRollsBack(t *testing.T) {
	g1 := newGuarantor(t)
	s := newTestState()

	report := baseReport(roster(g1), nil)
	report.WorkPackage.WorkItems[0].InputData = `[{"op":"transfer","from":"alice","to":"bob","amount":100},{"op":"halt"}]`
	signed := signedBy(t, report, g1)
	d := digestOf(t, signed)
	s.Omega[d] = &state.QueuedReport{Report: signed, Status: state.StatusReady}

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot + 1)

	assert.Empty(t, s.Omega)
	assert.Empty(t, s.Xi)
	require.Contains(t, s.PsiB, d)
	assert.True(t, strings.HasPrefix(s.PsiB[d].Reason, "accumulation_failed"))
	assert.True(t, s.PsiB[d].DisputedBy.Has(statetransition.SystemAccumulation))
	require.Contains(t, s.PsiO, g1.id)
	assert.Equal(t, uint32(1), s.PsiO[g1.id].DisputeCount)

	// The first item's transfer must not survive the report failure.
	assert.Equal(t, int64(1000), s.Global.Accounts["alice"].Balance)
	assert.Equal(t, int64(500), s.Global.Accounts["bob"].Balance)
}

func TestAccumulationGasOverrunFailsReport(t *testing.T) {
	g1 := newGuarantor(t)
	s := newTestState()

	report := baseReport(roster(g1), nil)
	// Transfer costs 10 gas and log 1; a ceiling of 10 overruns on the log.
	report.WorkPackage.WorkItems[0].GasLimit = 10
	report.WorkPackage.WorkItems[0].InputData = `[{"op":"transfer","from":"alice","to":"bob","amount":100},{"op":"log","message":"done"}]`
	signed := signedBy(t, report, g1)
	d := digestOf(t, signed)
	s.Omega[d] = &state.QueuedReport{Report: signed, Status: state.StatusReady}

	acc := statetransition.NewAccumulator(s, pvm.NewInterpreter())
	acc.ProcessAccumulationQueue(testSlot)

	require.Contains(t, s.PsiB, d)
	assert.Contains(t, s.PsiB[d].Reason, "out of gas")
	assert.Equal(t, int64(1000), s.Global.Accounts["alice"].Balance)
}

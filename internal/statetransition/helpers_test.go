package statetransition_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/work"
)

const (
	testServiceURL  = "https://auth.example.com/authorize"
	testProgramHash = "d2c7a9e1f03b58644a0c9b2d7e5f18a3c6b4d0e9f1a2b3c4d5e6f7081920aabb"
	testSlot        = 100
)

type guarantor struct {
	id   crypto.Identity
	priv ed25519.PrivateKey
}

func newGuarantor(t *testing.T) guarantor {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return guarantor{id: crypto.IdentityFromPublicKey(pub), priv: priv}
}

func roster(guarantors ...guarantor) []crypto.Identity {
	ids := make([]crypto.Identity, len(guarantors))
	for i, g := range guarantors {
		ids[i] = g.id
	}
	return ids
}

// baseReport builds a report that passes every admission check against
// newTestState at testSlot, before signing.
func baseReport(current, previous []crypto.Identity) block.WorkReport {
	return block.WorkReport{
		WorkPackage: work.Package{
			AuthorizationToken: "auth-token-1",
			AuthorizationServiceDetails: work.AuthorizationServiceDetails{
				Host:     "auth.example.com",
				URL:      testServiceURL,
				Function: "authorize",
			},
			Context: "ctx-1",
			WorkItems: []work.Item{
				{
					ID:          "item-1",
					ProgramHash: testProgramHash,
					InputData:   `[{"op":"transfer","from":"alice","to":"bob","amount":100}]`,
					GasLimit:    100,
				},
			},
		},
		RefinementContext: block.RefinementContext{
			AnchorBlockRoot:    crypto.HashData([]byte("anchor")),
			AnchorBlockNumber:  90,
			BeefyMmrRoot:       crypto.HashData([]byte("beefy")),
			CurrentSlot:        testSlot,
			CurrentEpoch:       1,
			CurrentGuarantors:  current,
			PreviousGuarantors: previous,
		},
		PvmOutput: "ok",
		GasUsed:   1000,
		CoreIndex: 0,
		Slot:      testSlot,
	}
}

// signedBy signs the report's signable form and stamps the guarantor's
// endorsement onto a copy.
func signedBy(t *testing.T, r block.WorkReport, g guarantor) block.WorkReport {
	t.Helper()
	message, err := r.SignableEncode()
	require.NoError(t, err)
	r.GuarantorSignature = crypto.SignMessage(g.priv, message)
	r.GuarantorPublicKey = g.id
	return r
}

func digestOf(t *testing.T, r block.WorkReport) crypto.Hash {
	t.Helper()
	d, err := r.Hash()
	require.NoError(t, err)
	return d
}

// newTestState seeds the global state the fixtures run against: a
// registered authorization service and two funded accounts.
func newTestState() *state.OnchainState {
	s := state.NewOnchainState()
	s.Global.ServiceRegistry[testServiceURL] = state.ServiceRegistration{
		CodeHash: testProgramHash,
		Owner:    "ops",
	}
	s.Global.Accounts["alice"] = state.Account{Balance: 1000}
	s.Global.Accounts["bob"] = state.Account{Balance: 500}
	s.Global.CoreStatus[0] = state.CoreAvailable
	return s
}

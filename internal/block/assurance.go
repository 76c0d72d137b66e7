package block

import (
	"errors"

	"github.com/mossberry/mossberry/internal/crypto"
)

// AssurancesExtrinsic represents the E_A extrinsic: the batch of
// availability affirmations included in a block.
type AssurancesExtrinsic struct {
	Assurances []Assurance
}

// Assurance is an affirmation that a report's data is available. In this
// iteration it mutates no state; the extrinsic exists to preserve the
// block ordering contract and to leave room for affirmations that
// accelerate finality or tilt unresolved disputes.
type Assurance struct {
	ReportHash        crypto.Hash     `json:"reportHash"`
	AffirmingParty    crypto.Identity `json:"affirmingParty"`
	TargetDisputeHash *crypto.Hash    `json:"targetDisputeHash"`
	Reason            string          `json:"reason"`
}

// Validate checks the data-model invariants of the assurance.
func (a Assurance) Validate() error {
	if a.ReportHash.IsZero() {
		return errors.New("assurance report hash must be non-zero")
	}
	if a.AffirmingParty == "" {
		return errors.New("affirming party must be non-empty")
	}
	if a.TargetDisputeHash != nil && a.TargetDisputeHash.IsZero() {
		return errors.New("target dispute hash, when present, must be non-zero")
	}
	return nil
}

package block

import (
	"errors"

	"github.com/mossberry/mossberry/internal/crypto"
)

// DisputesExtrinsic represents the E_D extrinsic: the batch of disputes
// included in a block.
type DisputesExtrinsic struct {
	Disputes []Dispute
}

// Dispute challenges a previously submitted work-report by digest.
type Dispute struct {
	DisputedDigestHash crypto.Hash     `json:"disputedDigestHash"`
	DisputerPublicKey  crypto.Identity `json:"disputerPublicKey"`
	Reason             string          `json:"reason"`
}

// Validate checks the data-model invariants of the dispute.
func (d Dispute) Validate() error {
	if d.DisputedDigestHash.IsZero() {
		return errors.New("dispute digest must be non-zero")
	}
	if d.DisputerPublicKey == "" {
		return errors.New("disputer public key must be non-empty")
	}
	if d.Reason == "" {
		return errors.New("dispute reason must be non-empty")
	}
	return nil
}

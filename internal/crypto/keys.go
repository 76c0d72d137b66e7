package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// Identity is a guarantor identity: a base64-encoded Ed25519 public key.
// It is the key type of the offender ledger and of endorsement sets.
type Identity string

// IdentityFromPublicKey renders an Ed25519 public key as an Identity.
func IdentityFromPublicKey(key ed25519.PublicKey) Identity {
	return Identity(base64.StdEncoding.EncodeToString(key))
}

// PublicKey decodes the identity back into an Ed25519 public key.
func (id Identity) PublicKey() (ed25519.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(string(id))
	if err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if len(b) != Ed25519PublicSize {
		return nil, fmt.Errorf("identity must decode to %d bytes, got %d", Ed25519PublicSize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// VerifySignature checks a base64 Ed25519 signature made by the identity
// over the given message bytes.
func (id Identity) VerifySignature(message []byte, signature string) bool {
	key, err := id.PublicKey()
	if err != nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != Ed25519SignSize {
		return false
	}
	return ed25519.Verify(key, message, sig)
}

// SignMessage signs the message and renders the signature as base64.
// Used by off-chain producers and by tests.
func SignMessage(priv ed25519.PrivateKey, message []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, message))
}

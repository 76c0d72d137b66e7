package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash is a 32-byte digest, rendered as 64 lowercase hex characters on
// the wire and in snapshots.
type Hash [HashSize]byte

// HashData hashes the input data using SHA-256. Work-report digests are
// defined over this function.
func HashData(data []byte) Hash {
	return sha256.Sum256(data)
}

// FingerprintData hashes the input data using blake2b-256. Used for
// state fingerprints, not for report digests.
func FingerprintData(data []byte) Hash {
	return blake2b.Sum256(data)
}

// Hex renders the hash as a 64-character lowercase hex string.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zeroes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes a 64-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decode hash hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// MarshalText implements encoding.TextMarshaler so hashes serialize as
// hex strings in the canonical encoding and in JSON snapshots.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

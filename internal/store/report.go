package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mossberry/mossberry/internal/block"
	"github.com/mossberry/mossberry/internal/crypto"
	"github.com/mossberry/mossberry/internal/jamtime"
	"github.com/mossberry/mossberry/pkg/db"
	"github.com/mossberry/mossberry/pkg/db/pebble"
	"github.com/mossberry/mossberry/pkg/serialization/codec/canonical"
)

var ErrReportNotFound = errors.New("finalized work-report not found")

// Reports archives finalized work-reports and per-sweep state
// fingerprints in a key-value store. The in-memory ξ remains the source
// of truth for the state machine; the archive serves history queries.
type Reports struct {
	db.KVStore
}

// NewReports creates a new report archive over the given KVStore.
func NewReports(kv db.KVStore) *Reports {
	return &Reports{KVStore: kv}
}

// PutFinalized stores one finalized report keyed by its digest.
func (r *Reports) PutFinalized(report block.WorkReport) error {
	h, err := report.Hash()
	if err != nil {
		return fmt.Errorf("hash work-report: %w", err)
	}

	b, err := report.Encode()
	if err != nil {
		return fmt.Errorf("marshal work-report: %w", err)
	}

	return r.Put(makeKey(prefixFinalizedReport, h[:]), b)
}

// PutFinalizedBatch stores a sweep's finalized reports and the
// post-sweep state fingerprint atomically.
func (r *Reports) PutFinalizedBatch(reports []block.WorkReport, slot jamtime.Timeslot, stateRoot crypto.Hash) error {
	batch := r.NewBatch()
	defer batch.Close()

	for _, report := range reports {
		h, err := report.Hash()
		if err != nil {
			return fmt.Errorf("hash work-report: %w", err)
		}
		b, err := report.Encode()
		if err != nil {
			return fmt.Errorf("marshal work-report: %w", err)
		}
		if err := batch.Put(makeKey(prefixFinalizedReport, h[:]), b); err != nil {
			return err
		}
	}

	var slotKey [4]byte
	binary.BigEndian.PutUint32(slotKey[:], uint32(slot))
	if err := batch.Put(makeKey(prefixStateRoot, slotKey[:]), stateRoot[:]); err != nil {
		return err
	}

	return batch.Commit()
}

// GetFinalized fetches a finalized report by digest.
func (r *Reports) GetFinalized(h crypto.Hash) (block.WorkReport, error) {
	b, err := r.Get(makeKey(prefixFinalizedReport, h[:]))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return block.WorkReport{}, ErrReportNotFound
		}
		return block.WorkReport{}, err
	}

	var report block.WorkReport
	if err := canonical.Unmarshal(b, &report); err != nil {
		return block.WorkReport{}, fmt.Errorf("unmarshal work-report: %w", err)
	}

	return report, nil
}

// StateRoot fetches the state fingerprint recorded for a sweep slot.
func (r *Reports) StateRoot(slot jamtime.Timeslot) (crypto.Hash, error) {
	var slotKey [4]byte
	binary.BigEndian.PutUint32(slotKey[:], uint32(slot))

	b, err := r.Get(makeKey(prefixStateRoot, slotKey[:]))
	if err != nil {
		return crypto.Hash{}, err
	}
	var h crypto.Hash
	copy(h[:], b)
	return h, nil
}

// ListFinalizedDigests walks the archive and returns every stored
// digest in key order.
func (r *Reports) ListFinalizedDigests() ([]crypto.Hash, error) {
	start := []byte{prefixFinalizedReport}
	end := []byte{prefixFinalizedReport + 1}
	iter, err := r.NewIterator(start, end)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var digests []crypto.Hash
	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+crypto.HashSize {
			continue
		}
		var h crypto.Hash
		copy(h[:], key[1:])
		digests = append(digests, h)
	}
	return digests, nil
}

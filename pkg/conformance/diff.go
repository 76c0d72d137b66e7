package conformance

import (
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mossberry/mossberry/internal/state"
)

// DiffSnapshots renders a unified diff between two snapshots. An empty
// string means the snapshots are identical.
func DiffSnapshots(expected, actual state.Snapshot) (string, error) {
	expectedDump, err := dumpSnapshot(expected)
	if err != nil {
		return "", fmt.Errorf("dump expected snapshot: %w", err)
	}
	actualDump, err := dumpSnapshot(actual)
	if err != nil {
		return "", fmt.Errorf("dump actual snapshot: %w", err)
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expectedDump),
		B:        difflib.SplitLines(actualDump),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	if err != nil {
		return "", err
	}
	return diff, nil
}

// dumpSnapshot pretty-prints a snapshot with sorted map keys, one field
// per line, so the unified diff is line-addressable.
func dumpSnapshot(snap state.Snapshot) (string, error) {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

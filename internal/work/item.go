package work

import (
	"errors"
	"fmt"
)

// Item represents W: one program+input execution unit with a gas ceiling.
type Item struct {
	ID          string `json:"id"`
	ProgramHash string `json:"programHash"`
	InputData   string `json:"inputData"`
	GasLimit    int64  `json:"gasLimit"`
}

var (
	ErrItemEmptyID    = errors.New("work-item id must be non-empty")
	ErrItemGasCeiling = errors.New("work-item gas limit must be positive")
)

// Validate checks the data-model invariants of the item.
func (w Item) Validate() error {
	if w.ID == "" {
		return ErrItemEmptyID
	}
	if w.GasLimit <= 0 {
		return fmt.Errorf("%w: item %q has gasLimit %d", ErrItemGasCeiling, w.ID, w.GasLimit)
	}
	return nil
}

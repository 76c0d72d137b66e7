package pvm

import (
	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/work"
)

// Invoker is Ψ_A: the on-chain execution engine mapping a work-item to
// a state delta. Invoke must be pure with respect to the global state:
// it may read it but never mutate it; all effects travel in the delta.
type Invoker interface {
	Invoke(item work.Item, global state.GlobalState) (Delta, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(item work.Item, global state.GlobalState) (Delta, error)

func (f InvokerFunc) Invoke(item work.Item, global state.GlobalState) (Delta, error) {
	return f(item, global)
}

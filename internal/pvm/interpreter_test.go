package pvm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossberry/mossberry/internal/pvm"
	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/work"
)

func testGlobal() state.GlobalState {
	g := state.NewGlobalState()
	g.Accounts["alice"] = state.Account{Balance: 1000}
	g.Accounts["bob"] = state.Account{Balance: 500}
	return g
}

func item(input string, gas int64) work.Item {
	return work.Item{ID: "item-1", ProgramHash: "ph", InputData: input, GasLimit: gas}
}

func TestInterpreterTransfer(t *testing.T) {
	interp := pvm.NewInterpreter()
	global := testGlobal()

	delta, err := interp.Invoke(item(`[{"op":"transfer","from":"alice","to":"bob","amount":100}]`, 100), global)
	require.NoError(t, err)

	assert.Equal(t, int64(900), delta.Accounts["alice"].Balance)
	assert.Equal(t, int64(600), delta.Accounts["bob"].Balance)
	// The invoker never touches the global state directly.
	assert.Equal(t, int64(1000), global.Accounts["alice"].Balance)
}

func TestInterpreterChainedTransfersObserveStagedWrites(t *testing.T) {
	interp := pvm.NewInterpreter()

	delta, err := interp.Invoke(item(
		`[{"op":"transfer","from":"alice","to":"bob","amount":100},{"op":"transfer","from":"bob","to":"alice","amount":600}]`, 100), testGlobal())
	require.NoError(t, err)

	// The second transfer sees bob at 600, not 500.
	assert.Equal(t, int64(1500), delta.Accounts["alice"].Balance)
	assert.Equal(t, int64(0), delta.Accounts["bob"].Balance)
}

func TestInterpreterSetAndLog(t *testing.T) {
	interp := pvm.NewInterpreter()

	delta, err := interp.Invoke(item(`[{"op":"set","key":"k","value":"v"},{"op":"log","message":"hello"}]`, 10), testGlobal())
	require.NoError(t, err)

	assert.Equal(t, "v", delta.Data["k"])
	assert.Equal(t, []string{"hello"}, delta.Log)
}

func TestInterpreterFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		gas     int64
		wantErr error
	}{
		{"out of gas", `[{"op":"transfer","from":"alice","to":"bob","amount":1}]`, 9, pvm.ErrOutOfGas},
		{"unknown op", `[{"op":"halt"}]`, 100, pvm.ErrUnknownOp},
		{"unknown account", `[{"op":"transfer","from":"carol","to":"bob","amount":1}]`, 100, pvm.ErrUnknownAccount},
		{"insufficient balance", `[{"op":"transfer","from":"bob","to":"alice","amount":501}]`, 100, pvm.ErrInsufficientBalance},
		{"malformed program", `not json`, 100, pvm.ErrBadProgram},
	}

	interp := pvm.NewInterpreter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := interp.Invoke(item(tc.input, tc.gas), testGlobal())
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestApplyDelta(t *testing.T) {
	global := testGlobal()
	pvm.ApplyDelta(&global, pvm.Delta{
		Accounts: map[string]state.Account{"alice": {Balance: 900}},
		Data:     map[string]string{"k": "v"},
		Log:      []string{"line"},
	})

	assert.Equal(t, int64(900), global.Accounts["alice"].Balance)
	assert.Equal(t, int64(500), global.Accounts["bob"].Balance)
	assert.Equal(t, "v", global.Data["k"])
	assert.Equal(t, []string{"line"}, global.Log)
}

func TestDeltaMergeLaterWritesWin(t *testing.T) {
	var d pvm.Delta
	d.Merge(pvm.Delta{Accounts: map[string]state.Account{"alice": {Balance: 900}}, Log: []string{"a"}})
	d.Merge(pvm.Delta{Accounts: map[string]state.Account{"alice": {Balance: 800}}, Log: []string{"b"}})

	assert.Equal(t, int64(800), d.Accounts["alice"].Balance)
	assert.Equal(t, []string{"a", "b"}, d.Log)
}

package pvm

import "github.com/mossberry/mossberry/internal/state"

// Delta is the pure-data outcome of one work-item invocation: per-field
// overrides to be applied to the global state. Absent sections leave the
// corresponding state untouched.
type Delta struct {
	Accounts map[string]state.Account `json:"accounts"`
	Data     map[string]string        `json:"data"`
	Log      []string                 `json:"log"`
}

// Merge folds another delta into this one, later writes winning.
func (d *Delta) Merge(other Delta) {
	if other.Accounts != nil {
		if d.Accounts == nil {
			d.Accounts = make(map[string]state.Account, len(other.Accounts))
		}
		for id, account := range other.Accounts {
			d.Accounts[id] = account
		}
	}
	if other.Data != nil {
		if d.Data == nil {
			d.Data = make(map[string]string, len(other.Data))
		}
		for k, v := range other.Data {
			d.Data[k] = v
		}
	}
	d.Log = append(d.Log, other.Log...)
}

// ApplyDelta applies the delta to the global state: account records are
// replaced by key, the data map is shallow-merged, log lines append.
func ApplyDelta(g *state.GlobalState, d Delta) {
	for id, account := range d.Accounts {
		if g.Accounts == nil {
			g.Accounts = make(map[string]state.Account)
		}
		g.Accounts[id] = account
	}
	for k, v := range d.Data {
		if g.Data == nil {
			g.Data = make(map[string]string)
		}
		g.Data[k] = v
	}
	g.Log = append(g.Log, d.Log...)
}

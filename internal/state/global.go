package state

import "maps"

// CoreState is the availability status of a core.
type CoreState string

const (
	CoreAvailable CoreState = "available"
	CoreEngaged   CoreState = "engaged"
)

// Account is a balance-holding entry in the conceptual global state.
type Account struct {
	Balance int64 `json:"balance"`
}

// ServiceRegistration describes a registered authorization service,
// keyed in the registry by its URL.
type ServiceRegistration struct {
	CodeHash string `json:"codeHash"`
	Owner    string `json:"owner"`
}

// GlobalState is the conceptual global state that accumulation mutates.
// Work-items never touch it directly; they yield deltas which are
// applied atomically at the work-report boundary.
type GlobalState struct {
	Accounts        map[string]Account             `json:"accounts"`
	CoreStatus      map[uint16]CoreState           `json:"coreStatus"`
	ServiceRegistry map[string]ServiceRegistration `json:"serviceRegistry"`
	Data            map[string]string              `json:"data"`
	Log             []string                       `json:"log"`
}

// NewGlobalState returns an empty global state with all maps allocated.
func NewGlobalState() GlobalState {
	return GlobalState{
		Accounts:        make(map[string]Account),
		CoreStatus:      make(map[uint16]CoreState),
		ServiceRegistry: make(map[string]ServiceRegistration),
		Data:            make(map[string]string),
	}
}

// Clone returns a deep copy. Accumulation stages deltas against a clone
// and commits only on full report success.
func (g GlobalState) Clone() GlobalState {
	out := GlobalState{
		Accounts:        maps.Clone(g.Accounts),
		CoreStatus:      maps.Clone(g.CoreStatus),
		ServiceRegistry: maps.Clone(g.ServiceRegistry),
		Data:            maps.Clone(g.Data),
	}
	if g.Log != nil {
		out.Log = make([]string, len(g.Log))
		copy(out.Log, g.Log)
	}
	return out
}

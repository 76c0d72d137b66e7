package pvm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mossberry/mossberry/internal/state"
	"github.com/mossberry/mossberry/internal/work"
)

var (
	ErrOutOfGas            = errors.New("out of gas")
	ErrUnknownOp           = errors.New("unknown instruction op")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBadProgram          = errors.New("malformed program input")
)

// Per-op gas charges.
const (
	gasTransfer = 10
	gasSet      = 5
	gasLog      = 1
)

// Instruction is one step of a work-item program.
type Instruction struct {
	Op      string `json:"op"`
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  int64  `json:"amount"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Interpreter is the builtin Ψ_A implementation: a deterministic
// instruction interpreter over the work-item's input data. The input is
// a JSON array of instructions; each op charges a fixed amount of gas
// against the item's gas ceiling.
type Interpreter struct{}

func NewInterpreter() Interpreter {
	return Interpreter{}
}

// Invoke executes the item's program against a read-only view of the
// global state and returns the accumulated delta.
func (Interpreter) Invoke(item work.Item, global state.GlobalState) (Delta, error) {
	var program []Instruction
	if err := json.Unmarshal([]byte(item.InputData), &program); err != nil {
		return Delta{}, fmt.Errorf("%w: %v", ErrBadProgram, err)
	}

	var delta Delta
	gasRemaining := item.GasLimit

	// Reads must observe earlier writes within the same item, so account
	// lookups consult the staged delta before the global state.
	balanceOf := func(id string) (int64, bool) {
		if account, ok := delta.Accounts[id]; ok {
			return account.Balance, true
		}
		account, ok := global.Accounts[id]
		return account.Balance, ok
	}

	for i, instr := range program {
		switch instr.Op {
		case "transfer":
			gasRemaining -= gasTransfer
			if gasRemaining < 0 {
				return Delta{}, fmt.Errorf("%w: item %q instruction %d", ErrOutOfGas, item.ID, i)
			}
			fromBalance, ok := balanceOf(instr.From)
			if !ok {
				return Delta{}, fmt.Errorf("%w: %q", ErrUnknownAccount, instr.From)
			}
			toBalance, ok := balanceOf(instr.To)
			if !ok {
				return Delta{}, fmt.Errorf("%w: %q", ErrUnknownAccount, instr.To)
			}
			if fromBalance < instr.Amount {
				return Delta{}, fmt.Errorf("%w: %q has %d, needs %d", ErrInsufficientBalance, instr.From, fromBalance, instr.Amount)
			}
			delta.Merge(Delta{Accounts: map[string]state.Account{
				instr.From: {Balance: fromBalance - instr.Amount},
				instr.To:   {Balance: toBalance + instr.Amount},
			}})
		case "set":
			gasRemaining -= gasSet
			if gasRemaining < 0 {
				return Delta{}, fmt.Errorf("%w: item %q instruction %d", ErrOutOfGas, item.ID, i)
			}
			delta.Merge(Delta{Data: map[string]string{instr.Key: instr.Value}})
		case "log":
			gasRemaining -= gasLog
			if gasRemaining < 0 {
				return Delta{}, fmt.Errorf("%w: item %q instruction %d", ErrOutOfGas, item.ID, i)
			}
			delta.Merge(Delta{Log: []string{instr.Message}})
		default:
			return Delta{}, fmt.Errorf("%w: %q", ErrUnknownOp, instr.Op)
		}
	}

	return delta, nil
}

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// State is the world state a native contract runs against.
type State interface {
	GetStorage(addr common.Address, key common.Hash) (common.Hash, error)
	SetStorage(addr common.Address, key, value common.Hash)
	GetBalance(addr common.Address) (*uint256.Int, error)
	Transfer(from, to common.Address, amount *uint256.Int) error
}

// Log is an event emitted by a native contract.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Transfer is a value transfer made by a native contract.
type Transfer struct {
	Sender    common.Address
	Recipient common.Address
	Amount    *big.Int
}

// Env is the environment of one native call.
type Env struct {
	State  State
	Self   common.Address
	Caller common.Address
	Value  *big.Int

	Logs      []*Log
	Transfers []*Transfer

	abi     *abi.ABI
	input   []byte
	method  *abi.Method
	gasUsed uint64
}

// NewEnv creates the env of a call from caller to self carrying value.
func NewEnv(state State, self, caller common.Address, value *big.Int) *Env {
	if value == nil {
		value = new(big.Int)
	}
	return &Env{
		State:  state,
		Self:   self,
		Caller: caller,
		Value:  value,
	}
}

// GasUsed returns the gas consumed so far.
func (e *Env) GasUsed() uint64 {
	return e.gasUsed
}

// UseGas charges gas to the call.
func (e *Env) UseGas(gas uint64) {
	e.gasUsed += gas
}

// Args unpacks the call input into v.
func (e *Env) Args(v any) {
	values, err := e.method.Inputs.Unpack(e.input)
	if err != nil {
		// Contract.Call recovers it
		panic(err)
	}
	if err := e.method.Inputs.Copy(v, values); err != nil {
		panic(err)
	}
}

// Storage reads a storage slot of the contract.
func (e *Env) Storage(slot common.Hash) common.Hash {
	e.UseGas(ethparams.SloadGasEIP2200)
	v, err := e.State.GetStorage(e.Self, slot)
	if err != nil {
		panic(err)
	}
	return v
}

// SetStorage writes a storage slot of the contract.
func (e *Env) SetStorage(slot, value common.Hash) {
	if e.Storage(slot) == (common.Hash{}) {
		e.UseGas(ethparams.SstoreSetGas)
	} else {
		e.UseGas(ethparams.SstoreResetGas)
	}
	e.State.SetStorage(e.Self, slot, value)
}

// Balance returns the balance of the contract.
func (e *Env) Balance() *big.Int {
	bal, err := e.State.GetBalance(e.Self)
	if err != nil {
		panic(err)
	}
	return bal.ToBig()
}

// Send transfers amount from the contract to recipient.
func (e *Env) Send(recipient common.Address, amount *big.Int) error {
	e.UseGas(ethparams.CallValueTransferGas)
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("amount overflow: %v", amount)
	}
	if err := e.State.Transfer(e.Self, recipient, value); err != nil {
		return err
	}
	e.Transfers = append(e.Transfers, &Transfer{e.Self, recipient, new(big.Int).Set(amount)})
	return nil
}

// Emit logs the named event with args in declaration order.
func (e *Env) Emit(name string, args ...any) {
	event, ok := e.abi.Events[name]
	if !ok {
		panic(fmt.Errorf("event not found: %s", name))
	}
	if len(args) != len(event.Inputs) {
		panic(fmt.Errorf("event %s: want %d args, got %d", name, len(event.Inputs), len(args)))
	}

	topics := []common.Hash{event.ID}
	var nonIndexed []any
	for i, input := range event.Inputs {
		if !input.Indexed {
			nonIndexed = append(nonIndexed, args[i])
			continue
		}
		t, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			panic(err)
		}
		topics = append(topics, t[0][0])
	}
	data, err := event.Inputs.NonIndexed().Pack(nonIndexed...)
	if err != nil {
		panic(err)
	}

	e.UseGas(ethparams.LogGas + ethparams.LogTopicGas*uint64(len(topics)) + ethparams.LogDataGas*uint64(len(data)))
	e.Logs = append(e.Logs, &Log{Address: e.Self, Topics: topics, Data: data})
}

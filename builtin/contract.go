// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/gurufinglobal/guruxkeeper/builtin/reverts"
	"github.com/gurufinglobal/guruxkeeper/keeper/gen"
)

var registry = make(map[string]*Contract)

// Contract is a contract implemented in Go and dispatched by method id.
type Contract struct {
	Name string
	ABI  *abi.ABI

	methods   map[string]*nativeMethod
	construct func(env *Env) error
	receive   func(env *Env) error
}

type nativeMethod struct {
	method *abi.Method
	gas    uint64
	run    func(env *Env) ([]any, error)
}

func mustLoadContract(name string, abiData []byte) *Contract {
	parsed, err := abi.JSON(bytes.NewReader(abiData))
	if err != nil {
		panic(fmt.Errorf("load ABI for '%s': %w", name, err))
	}
	c := &Contract{
		Name:    name,
		ABI:     &parsed,
		methods: make(map[string]*nativeMethod),
	}
	registry[name] = c
	return c
}

func (c *Contract) impl(name string, gas uint64, run func(env *Env) ([]any, error)) {
	method, ok := c.ABI.Methods[name]
	if !ok {
		panic("method not found: " + name)
	}
	c.methods[string(method.ID)] = &nativeMethod{&method, gas, run}
}

// Lookup resolves creation code to a native contract.
func Lookup(code []byte) (*Contract, bool) {
	name, ok := strings.CutPrefix(string(code), gen.NativeCodePrefix)
	if !ok {
		return nil, false
	}
	c, ok := registry[name]
	return c, ok
}

// Code returns the creation code of the contract.
func (c *Contract) Code() []byte {
	return []byte(gen.NativeCodePrefix + c.Name)
}

// Construct runs the constructor.
func (c *Contract) Construct(env *Env) (err error) {
	if c.construct == nil {
		return nil
	}
	defer func() {
		if e := recover(); e != nil {
			err = recoveredError(e)
		}
	}()
	env.abi = c.ABI
	return c.construct(env)
}

// Call dispatches input to the matching native method.
func (c *Contract) Call(env *Env, input []byte) (output []byte, err error) {
	env.abi = c.ABI

	if len(input) == 0 {
		if c.receive == nil {
			return nil, reverts.Revert()
		}
		return nil, c.receive(env)
	}
	if len(input) < 4 {
		return nil, reverts.Revert()
	}

	m, ok := c.methods[string(input[:4])]
	if !ok {
		return nil, reverts.Revert()
	}
	if !m.method.IsPayable() && env.Value.Sign() != 0 {
		return nil, reverts.Revert()
	}
	env.UseGas(m.gas)

	defer func() {
		// handle panic in Env.Args and storage access
		if e := recover(); e != nil {
			err = recoveredError(e)
		}
	}()

	env.input = input[4:]
	env.method = m.method
	out, err := m.run(env)
	if err != nil {
		return nil, err
	}
	return m.method.Outputs.Pack(out...)
}

// recoveredError keeps a revert raised by panic, anything else is an execution fault.
func recoveredError(e any) error {
	if reverts.IsRevertErr(e) {
		return e.(error)
	}
	return fmt.Errorf("native: %v", e)
}

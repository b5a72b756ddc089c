// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bind

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// TxOptions are the optional parameters of a transaction. A zero Gas is estimated.
type TxOptions struct {
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
}

type Contract struct {
	backend Backend
	abi     *abi.ABI
	addr    common.Address
	from    common.Address
}

// NewContract creates a new contract instance with the given backend, ABI data and address.
func NewContract(backend Backend, abiData []byte, address common.Address) (*Contract, error) {
	if address == (common.Address{}) {
		return nil, errors.New("empty contract address")
	}
	contractABI, err := abi.JSON(bytes.NewReader(abiData))
	if err != nil {
		return nil, err
	}
	return &Contract{
		backend: backend,
		abi:     &contractABI,
		addr:    address,
	}, nil
}

// Deploy deploys a contract from the given account and creates a contract instance
// connected to it.
func Deploy(ctx context.Context, backend Backend, from common.Address, abiData, bytecode []byte, opts *TxOptions, args ...any) (*Contract, *Receipt, error) {
	contractABI, err := abi.JSON(bytes.NewReader(abiData))
	if err != nil {
		return nil, nil, err
	}
	input, err := contractABI.Pack("", args...)
	if err != nil {
		return nil, nil, err
	}

	msg := newMsg(from, nil, append(append([]byte{}, bytecode...), input...), opts)
	receipt, err := send(ctx, backend, msg)
	if err != nil {
		return nil, nil, err
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, nil, fmt.Errorf("unable to deploy contract: tx %v", receipt.TxHash)
	}

	return &Contract{
		backend: backend,
		abi:     &contractABI,
		addr:    receipt.ContractAddress,
		from:    from,
	}, receipt, nil
}

// Connect returns a copy of the contract sending from the given account.
func (c *Contract) Connect(from common.Address) *Contract {
	cpy := *c
	cpy.from = from
	return &cpy
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.addr
}

// From returns the account calls and transactions are sent from.
func (c *Contract) From() common.Address {
	return c.from
}

// ABI returns the contract ABI.
func (c *Contract) ABI() *abi.ABI {
	return c.abi
}

// Backend returns the underlying backend.
func (c *Contract) Backend() Backend {
	return c.backend
}

// Call invokes a constant method and unpacks its outputs into out.
func (c *Contract) Call(ctx context.Context, out any, method string, args ...any) error {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return err
	}
	to := c.addr
	output, err := c.backend.CallContract(ctx, CallMsg{From: c.from, To: &to, Data: input})
	if err != nil {
		return err
	}
	return c.abi.UnpackIntoInterface(out, method, output)
}

// Transact sends a transaction invoking method and returns its receipt.
func (c *Contract) Transact(ctx context.Context, opts *TxOptions, method string, args ...any) (*Receipt, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	to := c.addr
	return send(ctx, c.backend, newMsg(c.from, &to, input, opts))
}

// Events returns the logs of the named event this contract emitted in receipt.
func (c *Contract) Events(receipt *Receipt, name string) ([]*Log, error) {
	event, ok := c.abi.Events[name]
	if !ok {
		return nil, errors.New("event not found: " + name)
	}
	var logs []*Log
	for _, l := range receipt.Logs {
		if l.Address == c.addr && len(l.Topics) > 0 && l.Topics[0] == event.ID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// FilterEvents queries the named event of this contract from fromBlock on.
func (c *Contract) FilterEvents(ctx context.Context, name string, fromBlock uint64) ([]*Log, error) {
	event, ok := c.abi.Events[name]
	if !ok {
		return nil, errors.New("event not found: " + name)
	}
	id := event.ID
	return c.backend.FilterLogs(ctx, FilterQuery{
		FromBlock: fromBlock,
		Addresses: []common.Address{c.addr},
		Topics:    []*common.Hash{&id},
	})
}

// UnpackLog unpacks a log of the named event into out.
func (c *Contract) UnpackLog(out any, name string, log *Log) error {
	event, ok := c.abi.Events[name]
	if !ok {
		return errors.New("event not found: " + name)
	}
	if len(log.Topics) == 0 {
		return errors.New("anonymous event")
	}
	if log.Topics[0] != event.ID {
		return fmt.Errorf("event signature mismatch: %v", log.Topics[0])
	}
	if len(log.Data) > 0 {
		if err := c.abi.UnpackIntoInterface(out, name, log.Data); err != nil {
			return err
		}
	}
	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return abi.ParseTopics(out, indexed, log.Topics[1:])
}

func newMsg(from common.Address, to *common.Address, data []byte, opts *TxOptions) CallMsg {
	msg := CallMsg{From: from, To: to, Data: data, Value: new(big.Int)}
	if opts != nil {
		if opts.Value != nil {
			msg.Value = opts.Value
		}
		msg.Gas = opts.Gas
		msg.GasPrice = opts.GasPrice
	}
	return msg
}

func send(ctx context.Context, backend Backend, msg CallMsg) (*Receipt, error) {
	if msg.Gas == 0 {
		gas, err := backend.EstimateGas(ctx, msg)
		if err != nil {
			return nil, err
		}
		msg.Gas = gas
	}
	receipt, err := backend.SendTransaction(ctx, msg)
	if err != nil {
		return nil, err
	}
	if receipt.Status != ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction failed: %v", receipt.TxHash)
	}
	return receipt, nil
}

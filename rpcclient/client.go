// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rpcclient binds contracts to a remote JSON-RPC node.
package rpcclient

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/gurufinglobal/guruxkeeper/api"
	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/log"
	"github.com/gurufinglobal/guruxkeeper/revert"
)

var logger = log.WithContext("pkg", "rpcclient")

// DefaultPollInterval is how often receipts are polled.
const DefaultPollInterval = 100 * time.Millisecond

// Client is a bind.Backend talking to a JSON-RPC node.
type Client struct {
	rpc          *rpc.Client
	network      revert.Backend
	pollInterval time.Duration
}

var _ bind.Backend = (*Client)(nil)

// Dial connects to the node at url, which is reported as network.
func Dial(ctx context.Context, url string, network revert.Backend) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return NewClient(c, network), nil
}

// NewClient creates a client on top of an rpc connection.
func NewClient(c *rpc.Client, network revert.Backend) *Client {
	return &Client{
		rpc:          c,
		network:      network,
		pollInterval: DefaultPollInterval,
	}
}

// WithPollInterval sets how often receipts are polled.
func (c *Client) WithPollInterval(d time.Duration) *Client {
	c.pollInterval = d
	return c
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) Network() revert.Backend {
	return c.network
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := c.rpc.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return nil, errors.Wrap(err, "eth_chainId")
	}
	return id.ToInt(), nil
}

func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, errors.Wrap(err, "eth_accounts")
	}
	return accounts, nil
}

func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	var bal hexutil.Big
	if err := c.rpc.CallContext(ctx, &bal, "eth_getBalance", addr, "latest"); err != nil {
		return nil, errors.Wrap(err, "eth_getBalance")
	}
	return bal.ToInt(), nil
}

func toCallArg(msg bind.CallMsg) *api.TransactionArgs {
	args := &api.TransactionArgs{
		From: &msg.From,
		To:   msg.To,
	}
	if len(msg.Data) > 0 {
		data := hexutil.Bytes(msg.Data)
		args.Input = &data
	}
	if msg.Value != nil {
		args.Value = (*hexutil.Big)(msg.Value)
	}
	if msg.Gas != 0 {
		gas := hexutil.Uint64(msg.Gas)
		args.Gas = &gas
	}
	if msg.GasPrice != nil {
		args.GasPrice = (*hexutil.Big)(msg.GasPrice)
	}
	return args
}

func (c *Client) CallContract(ctx context.Context, msg bind.CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &out, "eth_call", toCallArg(msg), "latest"); err != nil {
		return nil, remoteError(err, "eth_call", false)
	}
	return out, nil
}

func (c *Client) EstimateGas(ctx context.Context, msg bind.CallMsg) (uint64, error) {
	var gas hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &gas, "eth_estimateGas", toCallArg(msg)); err != nil {
		return 0, remoteError(err, "eth_estimateGas", false)
	}
	return uint64(gas), nil
}

// SendTransaction submits msg from an account unlocked on the node and waits for the receipt.
func (c *Client) SendTransaction(ctx context.Context, msg bind.CallMsg) (*bind.Receipt, error) {
	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", toCallArg(msg)); err != nil {
		return nil, remoteError(err, "eth_sendTransaction", true)
	}
	logger.Debug("transaction sent", "hash", hash)
	return c.WaitReceipt(ctx, hash)
}

// TransactionReceipt returns the receipt of hash, nil if not mined yet.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*bind.Receipt, error) {
	var r *api.Receipt
	if err := c.rpc.CallContext(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, errors.Wrap(err, "eth_getTransactionReceipt")
	}
	if r == nil {
		return nil, nil
	}
	receipt := &bind.Receipt{
		TxHash:      r.TxHash,
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
		Status:      uint64(r.Status),
	}
	if r.EffectiveGasPrice != nil {
		receipt.EffectiveGasPrice = r.EffectiveGasPrice.ToInt()
	}
	if r.ContractAddress != nil {
		receipt.ContractAddress = *r.ContractAddress
	}
	for _, l := range r.Logs {
		receipt.Logs = append(receipt.Logs, convertLog(l))
	}
	return receipt, nil
}

// WaitReceipt polls the receipt of hash until it is mined or ctx is done.
func (c *Client) WaitReceipt(ctx context.Context, hash common.Hash) (*bind.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "wait receipt %v", hash)
		case <-ticker.C:
		}
	}
}

func (c *Client) FilterLogs(ctx context.Context, q bind.FilterQuery) ([]*bind.Log, error) {
	arg := map[string]any{
		"fromBlock": hexutil.Uint64(q.FromBlock),
		"toBlock":   "latest",
		"address":   q.Addresses,
		"topics":    q.Topics,
	}
	if q.ToBlock != 0 {
		arg["toBlock"] = hexutil.Uint64(q.ToBlock)
	}
	if q.Addresses == nil {
		arg["address"] = []common.Address{}
	}

	var logs []*api.Log
	if err := c.rpc.CallContext(ctx, &logs, "eth_getLogs", arg); err != nil {
		return nil, errors.Wrap(err, "eth_getLogs")
	}
	out := make([]*bind.Log, 0, len(logs))
	for _, l := range logs {
		out = append(out, convertLog(l))
	}
	return out, nil
}

func convertLog(l *api.Log) *bind.Log {
	return &bind.Log{
		Address:     l.Address,
		Topics:      l.Topics,
		Data:        l.Data,
		BlockNumber: uint64(l.BlockNumber),
		TxHash:      l.TxHash,
		Index:       uint(l.Index),
	}
}

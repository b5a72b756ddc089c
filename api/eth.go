// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

var (
	errMissingFrom    = errors.New("missing from address")
	errInvalidAddress = errors.New("invalid address")
)

// EthAPI serves the eth namespace against the solo chain.
type EthAPI struct {
	chain        *solo.Chain
	callGasLimit uint64
	logsLimit    uint64
}

func (api *EthAPI) Accounts() []common.Address {
	return api.chain.Accounts()
}

func (api *EthAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(api.chain.ChainID())
}

func (api *EthAPI) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(api.chain.BlockNumber())
}

func (api *EthAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(api.chain.GasPrice())
}

// Only the latest state is kept, the block argument is accepted and ignored.

func (api *EthAPI) GetBalance(addr common.Address, _ *rpc.BlockNumberOrHash) (*hexutil.Big, error) {
	bal, err := api.chain.Balance(addr)
	if err != nil {
		return nil, err
	}
	return (*hexutil.Big)(bal), nil
}

func (api *EthAPI) GetTransactionCount(addr common.Address, _ *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	nonce, err := api.chain.Nonce(addr)
	return hexutil.Uint64(nonce), err
}

func (api *EthAPI) GetCode(addr common.Address, _ *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	return api.chain.Code(addr)
}

func (api *EthAPI) capGas(msg bind.CallMsg) bind.CallMsg {
	if msg.Gas == 0 || msg.Gas > api.callGasLimit {
		msg.Gas = api.callGasLimit
	}
	return msg
}

// Call executes a message call without creating a transaction.
func (api *EthAPI) Call(args TransactionArgs, _ *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	out, err := api.chain.Call(api.capGas(args.toMsg()))
	if err != nil {
		return nil, rpcError(err, false)
	}
	return out, nil
}

func (api *EthAPI) EstimateGas(args TransactionArgs, _ *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	gas, err := api.chain.EstimateGas(args.toMsg())
	if err != nil {
		return 0, rpcError(err, false)
	}
	return hexutil.Uint64(gas), nil
}

// SendTransaction executes and mines a transaction from one of the dev accounts.
func (api *EthAPI) SendTransaction(args TransactionArgs) (common.Hash, error) {
	if args.From == nil {
		return common.Hash{}, errMissingFrom
	}
	if !slices.Contains(api.chain.Accounts(), *args.From) {
		return common.Hash{}, fmt.Errorf("unknown account %v", *args.From)
	}
	receipt, err := api.chain.SendTransaction(args.toMsg())
	if err != nil {
		return common.Hash{}, rpcError(err, true)
	}
	return receipt.TxHash, nil
}

// GetTransactionReceipt returns nil for unknown transactions.
func (api *EthAPI) GetTransactionReceipt(hash common.Hash) (*Receipt, error) {
	receipt, ok := api.chain.Receipt(hash)
	if !ok {
		return nil, nil
	}
	return convertReceipt(receipt), nil
}

func (api *EthAPI) GetLogs(ctx context.Context, crit FilterCriteria) ([]*Log, error) {
	latest := api.chain.BlockNumber()
	q := bind.FilterQuery{
		FromBlock: blockNumber(crit.FromBlock, latest),
		ToBlock:   blockNumber(crit.ToBlock, latest),
		Addresses: crit.Addresses,
		Topics:    crit.Topics,
	}
	if q.FromBlock > q.ToBlock {
		return []*Log{}, nil
	}
	logs, err := api.chain.FilterEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	if api.logsLimit > 0 && uint64(len(logs)) > api.logsLimit {
		return nil, fmt.Errorf("query returned more than %d results", api.logsLimit)
	}
	out := make([]*Log, 0, len(logs))
	for _, l := range logs {
		out = append(out, convertLog(l))
	}
	return out, nil
}

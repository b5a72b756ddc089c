// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/logdb"
)

// TransactionArgs are the arguments of eth_call, eth_estimateGas and eth_sendTransaction.
type TransactionArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
}

func (args *TransactionArgs) data() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

func (args *TransactionArgs) toMsg() bind.CallMsg {
	msg := bind.CallMsg{
		To:    args.To,
		Value: new(big.Int),
		Data:  args.data(),
	}
	if args.From != nil {
		msg.From = *args.From
	}
	if args.Gas != nil {
		msg.Gas = uint64(*args.Gas)
	}
	if args.GasPrice != nil {
		msg.GasPrice = args.GasPrice.ToInt()
	}
	if args.Value != nil {
		msg.Value = args.Value.ToInt()
	}
	return msg
}

type Log struct {
	Address     common.Address `json:"address"`
	Topics      []common.Hash  `json:"topics"`
	Data        hexutil.Bytes  `json:"data"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	Index       hexutil.Uint   `json:"logIndex"`
}

func convertLog(l *bind.Log) *Log {
	topics := l.Topics
	if topics == nil {
		topics = []common.Hash{}
	}
	return &Log{
		Address:     l.Address,
		Topics:      topics,
		Data:        l.Data,
		BlockNumber: hexutil.Uint64(l.BlockNumber),
		TxHash:      l.TxHash,
		Index:       hexutil.Uint(l.Index),
	}
}

type Receipt struct {
	TxHash            common.Hash     `json:"transactionHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	Status            hexutil.Uint64  `json:"status"`
	ContractAddress   *common.Address `json:"contractAddress"`
	Logs              []*Log          `json:"logs"`
}

func convertReceipt(r *bind.Receipt) *Receipt {
	out := &Receipt{
		TxHash:            r.TxHash,
		BlockNumber:       hexutil.Uint64(r.BlockNumber),
		GasUsed:           hexutil.Uint64(r.GasUsed),
		EffectiveGasPrice: (*hexutil.Big)(r.EffectiveGasPrice),
		Status:            hexutil.Uint64(r.Status),
		Logs:              make([]*Log, 0, len(r.Logs)),
	}
	if r.ContractAddress != (common.Address{}) {
		addr := r.ContractAddress
		out.ContractAddress = &addr
	}
	for _, l := range r.Logs {
		out.Logs = append(out.Logs, convertLog(l))
	}
	return out
}

// FilterCriteria is the argument of eth_getLogs. Topics hold at most one hash per position.
type FilterCriteria struct {
	FromBlock *rpc.BlockNumber `json:"fromBlock"`
	ToBlock   *rpc.BlockNumber `json:"toBlock"`
	Addresses []common.Address `json:"address"`
	Topics    []*common.Hash   `json:"topics"`
}

// blockNumber resolves a block tag, zero meaning latest.
func blockNumber(n *rpc.BlockNumber, latest uint64) uint64 {
	switch {
	case n == nil:
		return latest
	case *n == rpc.EarliestBlockNumber:
		return 0
	case *n < 0:
		return latest
	default:
		return uint64(*n)
	}
}

type Transfer struct {
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	Sender      common.Address `json:"sender"`
	Recipient   common.Address `json:"recipient"`
	Amount      *hexutil.Big   `json:"amount"`
}

func convertTransfer(tr *logdb.Transfer) *Transfer {
	return &Transfer{
		BlockNumber: hexutil.Uint64(tr.BlockNumber),
		TxHash:      tr.TxHash,
		Sender:      tr.Sender,
		Recipient:   tr.Recipient,
		Amount:      (*hexutil.Big)(tr.Amount),
	}
}

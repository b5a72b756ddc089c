// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bind

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gurufinglobal/guruxkeeper/revert"
)

// Receipt statuses.
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// CallMsg contains parameters for contract calls and transactions.
type CallMsg struct {
	From     common.Address
	To       *common.Address // nil for contract creation
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Data     []byte
}

// Log is an event emitted by a mined transaction.
type Log struct {
	Address     common.Address
	Topics      []common.Hash
	Data        []byte
	BlockNumber uint64
	TxHash      common.Hash
	Index       uint
}

// Receipt is the result of a mined transaction.
type Receipt struct {
	TxHash            common.Hash
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	Status            uint64
	ContractAddress   common.Address
	Logs              []*Log
}

// FilterQuery selects logs. A ToBlock of zero means the latest block, a nil topic
// matches anything in its position.
type FilterQuery struct {
	FromBlock uint64
	ToBlock   uint64
	Addresses []common.Address
	Topics    []*common.Hash
}

// Backend is the chain a contract is bound to.
type Backend interface {
	// Network tells which execution environment reports the errors.
	Network() revert.Backend
	ChainID(ctx context.Context) (*big.Int, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
	CallContract(ctx context.Context, msg CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg CallMsg) (uint64, error)
	// SendTransaction submits msg and returns its receipt once mined.
	SendTransaction(ctx context.Context, msg CallMsg) (*Receipt, error)
	FilterLogs(ctx context.Context, q FilterQuery) ([]*Log, error)
}

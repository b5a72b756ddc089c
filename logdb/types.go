// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event is a contract log as stored in the db.
type Event struct {
	BlockNumber uint64
	Index       uint32
	TxHash      common.Hash
	TxOrigin    common.Address
	Address     common.Address // always a contract address
	Topics      [4]*common.Hash
	Data        []byte
}

// Transfer is a value transfer as stored in the db.
type Transfer struct {
	BlockNumber uint64
	Index       uint32
	TxHash      common.Hash
	TxOrigin    common.Address
	Sender      common.Address
	Recipient   common.Address
	Amount      *big.Int
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive block range. To < From means open ended.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *common.Address
	Topics  [4]*common.Hash
}

// EventFilter matches events satisfying any of CriteriaSet.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	TxOrigin  *common.Address
	Sender    *common.Address
	Recipient *common.Address
}

type TransferFilter struct {
	TxHash      *common.Hash
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

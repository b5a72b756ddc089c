// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/logdb"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

// SoloAPI serves the solo namespace.
type SoloAPI struct {
	chain *solo.Chain
}

// Deploy creates a contract from native creation code and returns its receipt.
func (api *SoloAPI) Deploy(from common.Address, code hexutil.Bytes) (*Receipt, error) {
	receipt, err := api.chain.SendTransaction(bind.CallMsg{From: from, Data: code})
	if err != nil {
		return nil, rpcError(err, true)
	}
	return convertReceipt(receipt), nil
}

// Transfers returns the value transfers made by a transaction.
func (api *SoloAPI) Transfers(ctx context.Context, txHash common.Hash) ([]*Transfer, error) {
	transfers, err := api.chain.FilterTransfers(ctx, &logdb.TransferFilter{TxHash: &txHash})
	if err != nil {
		return nil, err
	}
	out := make([]*Transfer, 0, len(transfers))
	for _, tr := range transfers {
		out = append(out, convertTransfer(tr))
	}
	return out, nil
}

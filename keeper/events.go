// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gurufinglobal/guruxkeeper/bind"
)

type OwnershipTransferred struct {
	PreviousOwner common.Address
	NewOwner      common.Address
	Raw           *bind.Log
}

type Approval struct {
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
	Raw     *bind.Log
}

type ApprovalRevoked struct {
	Owner   common.Address
	Spender common.Address
	Raw     *bind.Log
}

type Transfer struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Raw   *bind.Log
}

func parseEvents[T any](k *Keeper, receipt *bind.Receipt, name string, raw func(*T, *bind.Log)) ([]*T, error) {
	logs, err := k.contract.Events(receipt, name)
	if err != nil {
		return nil, err
	}
	events := make([]*T, 0, len(logs))
	for _, l := range logs {
		ev := new(T)
		if err := k.contract.UnpackLog(ev, name, l); err != nil {
			return nil, err
		}
		raw(ev, l)
		events = append(events, ev)
	}
	return events, nil
}

// OwnershipTransferredEvents returns the OwnershipTransferred events in receipt.
func (k *Keeper) OwnershipTransferredEvents(receipt *bind.Receipt) ([]*OwnershipTransferred, error) {
	return parseEvents(k, receipt, "OwnershipTransferred", func(ev *OwnershipTransferred, l *bind.Log) { ev.Raw = l })
}

// ApprovalEvents returns the Approval events in receipt.
func (k *Keeper) ApprovalEvents(receipt *bind.Receipt) ([]*Approval, error) {
	return parseEvents(k, receipt, "Approval", func(ev *Approval, l *bind.Log) { ev.Raw = l })
}

// ApprovalRevokedEvents returns the ApprovalRevoked events in receipt.
func (k *Keeper) ApprovalRevokedEvents(receipt *bind.Receipt) ([]*ApprovalRevoked, error) {
	return parseEvents(k, receipt, "ApprovalRevoked", func(ev *ApprovalRevoked, l *bind.Log) { ev.Raw = l })
}

// TransferEvents returns the Transfer events in receipt.
func (k *Keeper) TransferEvents(receipt *bind.Receipt) ([]*Transfer, error) {
	return parseEvents(k, receipt, "Transfer", func(ev *Transfer, l *bind.Log) { ev.Raw = l })
}

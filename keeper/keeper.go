// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keeper is the typed binding of the GuruxKeeper contract.
package keeper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/keeper/gen"
)

type Keeper struct {
	contract *bind.Contract
}

// Deploy deploys GuruxKeeper from the given account, which becomes its owner.
func Deploy(ctx context.Context, backend bind.Backend, from common.Address, opts *bind.TxOptions) (*Keeper, *bind.Receipt, error) {
	contract, receipt, err := bind.Deploy(ctx, backend, from, gen.ABI, gen.Bin, opts)
	if err != nil {
		return nil, nil, err
	}
	return &Keeper{contract}, receipt, nil
}

// New binds a deployed GuruxKeeper.
func New(backend bind.Backend, address common.Address) (*Keeper, error) {
	contract, err := bind.NewContract(backend, gen.ABI, address)
	if err != nil {
		return nil, err
	}
	return &Keeper{contract}, nil
}

// Connect returns a copy of the keeper sending from the given account.
func (k *Keeper) Connect(from common.Address) *Keeper {
	return &Keeper{k.contract.Connect(from)}
}

func (k *Keeper) Address() common.Address {
	return k.contract.Address()
}

func (k *Keeper) Contract() *bind.Contract {
	return k.contract
}

func (k *Keeper) Owner(ctx context.Context) (common.Address, error) {
	var owner common.Address
	if err := k.contract.Call(ctx, &owner, "owner"); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

func (k *Keeper) Allowance(ctx context.Context, spender common.Address) (*big.Int, error) {
	var allowance *big.Int
	if err := k.contract.Call(ctx, &allowance, "allowance", spender); err != nil {
		return nil, err
	}
	return allowance, nil
}

func (k *Keeper) TransferOwnership(ctx context.Context, opts *bind.TxOptions, newOwner common.Address) (*bind.Receipt, error) {
	return k.contract.Transact(ctx, opts, "transferOwnership", newOwner)
}

func (k *Keeper) Approve(ctx context.Context, opts *bind.TxOptions, spender common.Address, amount *big.Int) (*bind.Receipt, error) {
	return k.contract.Transact(ctx, opts, "approve", spender, amount)
}

func (k *Keeper) RevokeApproval(ctx context.Context, opts *bind.TxOptions, spender common.Address) (*bind.Receipt, error) {
	return k.contract.Transact(ctx, opts, "revokeApproval", spender)
}

// Transfer pays amount out of the keeper's balance, drawing on the caller's allowance.
func (k *Keeper) Transfer(ctx context.Context, opts *bind.TxOptions, to common.Address, amount *big.Int) (*bind.Receipt, error) {
	return k.contract.Transact(ctx, opts, "transfer", to, amount)
}

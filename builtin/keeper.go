// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ethparams "github.com/ethereum/go-ethereum/params"

	"github.com/gurufinglobal/guruxkeeper/builtin/reverts"
	"github.com/gurufinglobal/guruxkeeper/keeper/gen"
)

// GuruxKeeper holds ether for its owner and lets approved spenders draw from it.
var GuruxKeeper = mustLoadContract("GuruxKeeper", gen.ABI)

var (
	ownerSlot     = common.Hash{}
	allowanceSlot = common.BigToHash(big.NewInt(1))
)

func allowanceKey(spender common.Address) common.Hash {
	return crypto.Keccak256Hash(common.LeftPadBytes(spender.Bytes(), 32), allowanceSlot.Bytes())
}

func keeperOwner(env *Env) common.Address {
	return common.BytesToAddress(env.Storage(ownerSlot).Bytes())
}

func onlyOwner(env *Env) error {
	if keeperOwner(env) != env.Caller {
		return reverts.NewRequireError("GuruxKeeper: caller is not the owner")
	}
	return nil
}

func init() {
	c := GuruxKeeper

	c.construct = func(env *Env) error {
		env.SetStorage(ownerSlot, common.BytesToHash(env.Caller.Bytes()))
		env.Emit("OwnershipTransferred", common.Address{}, env.Caller)
		return nil
	}

	c.receive = func(env *Env) error {
		return nil
	}

	c.impl("owner", 0, func(env *Env) ([]any, error) {
		return []any{keeperOwner(env)}, nil
	})

	c.impl("allowance", 0, func(env *Env) ([]any, error) {
		var args struct {
			Spender common.Address
		}
		env.Args(&args)
		return []any{env.Storage(allowanceKey(args.Spender)).Big()}, nil
	})

	c.impl("transferOwnership", ethparams.CallGasEIP150, func(env *Env) ([]any, error) {
		var args struct {
			NewOwner common.Address
		}
		env.Args(&args)
		if err := onlyOwner(env); err != nil {
			return nil, err
		}
		if args.NewOwner == (common.Address{}) {
			return nil, reverts.NewRequireError("GuruxKeeper: new owner is the zero address")
		}
		previous := keeperOwner(env)
		env.SetStorage(ownerSlot, common.BytesToHash(args.NewOwner.Bytes()))
		env.Emit("OwnershipTransferred", previous, args.NewOwner)
		return nil, nil
	})

	c.impl("approve", ethparams.CallGasEIP150, func(env *Env) ([]any, error) {
		var args struct {
			Spender common.Address
			Amount  *big.Int
		}
		env.Args(&args)
		if err := onlyOwner(env); err != nil {
			return nil, err
		}
		if args.Spender == (common.Address{}) {
			return nil, reverts.NewRequireError("GuruxKeeper: approve to the zero address")
		}
		env.SetStorage(allowanceKey(args.Spender), common.BigToHash(args.Amount))
		env.Emit("Approval", env.Caller, args.Spender, args.Amount)
		return nil, nil
	})

	c.impl("revokeApproval", ethparams.CallGasEIP150, func(env *Env) ([]any, error) {
		var args struct {
			Spender common.Address
		}
		env.Args(&args)
		if err := onlyOwner(env); err != nil {
			return nil, err
		}
		env.SetStorage(allowanceKey(args.Spender), common.Hash{})
		env.Emit("ApprovalRevoked", env.Caller, args.Spender)
		return nil, nil
	})

	c.impl("transfer", ethparams.CallGasEIP150, func(env *Env) ([]any, error) {
		var args struct {
			To     common.Address
			Amount *big.Int
		}
		env.Args(&args)
		if args.To == (common.Address{}) {
			return nil, reverts.NewRequireError("GuruxKeeper: transfer to the zero address")
		}
		key := allowanceKey(env.Caller)
		allowance := env.Storage(key).Big()
		if allowance.Cmp(args.Amount) < 0 {
			return nil, reverts.NewRequireError("GuruxKeeper: insufficient allowance")
		}
		if env.Balance().Cmp(args.Amount) < 0 {
			return nil, reverts.NewRequireError("GuruxKeeper: insufficient balance")
		}
		remaining := new(big.Int).Sub(allowance, args.Amount)
		env.SetStorage(key, common.BigToHash(remaining))
		env.Emit("Approval", keeperOwner(env), env.Caller, remaining)
		if err := env.Send(args.To, args.Amount); err != nil {
			return nil, err
		}
		env.Emit("Transfer", env.Caller, args.To, args.Amount)
		return nil, nil
	})
}

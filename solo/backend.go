// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/builtin/reverts"
	"github.com/gurufinglobal/guruxkeeper/revert"
)

// Backend binds contracts to the chain in process. Reverts are reported the way a
// local development node reports them.
type Backend struct {
	chain *Chain
}

var _ bind.Backend = (*Backend)(nil)

func NewBackend(chain *Chain) *Backend {
	return &Backend{chain: chain}
}

func (b *Backend) Chain() *Chain {
	return b.chain
}

func (b *Backend) Network() revert.Backend {
	return revert.Local
}

func (b *Backend) ChainID(_ context.Context) (*big.Int, error) {
	return b.chain.ChainID(), nil
}

func (b *Backend) Accounts(_ context.Context) ([]common.Address, error) {
	return b.chain.Accounts(), nil
}

func (b *Backend) BalanceAt(_ context.Context, addr common.Address) (*big.Int, error) {
	return b.chain.Balance(addr)
}

func (b *Backend) CallContract(_ context.Context, msg bind.CallMsg) ([]byte, error) {
	out, err := b.chain.Call(msg)
	return out, localError(err)
}

func (b *Backend) EstimateGas(_ context.Context, msg bind.CallMsg) (uint64, error) {
	gas, err := b.chain.EstimateGas(msg)
	return gas, localError(err)
}

func (b *Backend) SendTransaction(_ context.Context, msg bind.CallMsg) (*bind.Receipt, error) {
	receipt, err := b.chain.SendTransaction(msg)
	return receipt, localError(err)
}

func (b *Backend) FilterLogs(ctx context.Context, q bind.FilterQuery) ([]*bind.Log, error) {
	return b.chain.FilterEvents(ctx, q)
}

func localError(err error) error {
	var re *reverts.ErrRequire
	if errors.As(err, &re) {
		return revert.NewLocal(re.Reason(), re.Bytes())
	}
	return err
}

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/builtin"
	"github.com/gurufinglobal/guruxkeeper/builtin/reverts"
	"github.com/gurufinglobal/guruxkeeper/keeper/gen"
	"github.com/gurufinglobal/guruxkeeper/logdb"
	"github.com/gurufinglobal/guruxkeeper/revert"
)

func newChain(t *testing.T, opts Options) *Chain {
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew(t *testing.T) {
	c := newChain(t, Options{Accounts: 3})

	accounts := c.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, crypto.PubkeyToAddress(DevKey(0).PublicKey), accounts[0])
	assert.Equal(t, big.NewInt(DefaultChainID), c.ChainID())
	assert.Equal(t, DefaultGasPrice, c.GasPrice())
	assert.Zero(t, c.BlockNumber())

	for _, acc := range accounts {
		bal, err := c.Balance(acc)
		require.NoError(t, err)
		assert.Equal(t, DefaultBalance, bal)

		key, ok := c.Key(acc)
		require.True(t, ok)
		assert.Equal(t, acc, crypto.PubkeyToAddress(key.PublicKey))
	}
	_, ok := c.Key(common.Address{})
	assert.False(t, ok)

	// same keys across chains
	other := newChain(t, Options{Accounts: 1})
	assert.Equal(t, accounts[0], other.Accounts()[0])
}

func TestValueTransfer(t *testing.T) {
	c := newChain(t, Options{Accounts: 2})
	from, to := c.Accounts()[0], c.Accounts()[1]

	value := big.NewInt(1e18)
	receipt, err := c.SendTransaction(bind.CallMsg{From: from, To: &to, Value: value})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, bind.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, uint64(1), c.BlockNumber())

	fee := new(big.Int).Mul(big.NewInt(21000), DefaultGasPrice)
	bal, err := c.Balance(from)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(new(big.Int).Sub(DefaultBalance, value), fee), bal)

	bal, err = c.Balance(to)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(DefaultBalance, value), bal)

	nonce, err := c.Nonce(from)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	got, ok := c.Receipt(receipt.TxHash)
	require.True(t, ok)
	assert.Equal(t, receipt, got)

	transfers, err := c.FilterTransfers(context.Background(), &logdb.TransferFilter{TxHash: &receipt.TxHash})
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, from, transfers[0].Sender)
	assert.Equal(t, to, transfers[0].Recipient)
	assert.Equal(t, value, transfers[0].Amount)

	// same message, new nonce, new hash
	receipt2, err := c.SendTransaction(bind.CallMsg{From: from, To: &to, Value: value})
	require.NoError(t, err)
	assert.NotEqual(t, receipt.TxHash, receipt2.TxHash)
}

func TestInsufficientFunds(t *testing.T) {
	c := newChain(t, Options{Accounts: 2})
	from, to := c.Accounts()[0], c.Accounts()[1]

	_, err := c.SendTransaction(bind.CallMsg{From: from, To: &to, Value: new(big.Int).Add(DefaultBalance, big.NewInt(1))})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// value fits, fee does not
	_, err = c.SendTransaction(bind.CallMsg{From: from, To: &to, Value: DefaultBalance})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Zero(t, c.BlockNumber())
	bal, err := c.Balance(from)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalance, bal)
}

func TestDeployAndRevert(t *testing.T) {
	c := newChain(t, Options{Accounts: 2})
	owner, bob := c.Accounts()[0], c.Accounts()[1]

	_, err := c.Deploy(owner, []byte("native:Nothing"))
	assert.ErrorIs(t, err, ErrUnknownCode)

	receipt, err := c.Deploy(owner, gen.Bin)
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(owner, 0), receipt.ContractAddress)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, builtin.GuruxKeeper.ABI.Events["OwnershipTransferred"].ID, receipt.Logs[0].Topics[0])

	code, err := c.Code(receipt.ContractAddress)
	require.NoError(t, err)
	assert.Equal(t, gen.Bin, code)

	keeperAddr := receipt.ContractAddress
	input, err := builtin.GuruxKeeper.ABI.Pack("transferOwnership", bob)
	require.NoError(t, err)

	balBefore, err := c.Balance(bob)
	require.NoError(t, err)
	number := c.BlockNumber()

	_, err = c.SendTransaction(bind.CallMsg{From: bob, To: &keeperAddr, Data: input})
	var re *reverts.ErrRequire
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "GuruxKeeper: caller is not the owner", re.Reason())

	// nothing mined, nothing charged
	assert.Equal(t, number, c.BlockNumber())
	balAfter, err := c.Balance(bob)
	require.NoError(t, err)
	assert.Equal(t, balBefore, balAfter)
	nonce, err := c.Nonce(bob)
	require.NoError(t, err)
	assert.Zero(t, nonce)

	_, err = c.Call(bind.CallMsg{From: bob, To: &keeperAddr, Data: input})
	require.ErrorAs(t, err, &re)

	gas, err := c.EstimateGas(bind.CallMsg{From: owner, To: &keeperAddr, Data: input})
	require.NoError(t, err)
	receipt, err = c.SendTransaction(bind.CallMsg{From: owner, To: &keeperAddr, Data: input, Gas: gas})
	require.NoError(t, err)
	assert.Equal(t, gas, receipt.GasUsed)

	// bob owns it now
	_, err = c.SendTransaction(bind.CallMsg{From: bob, To: &keeperAddr, Data: input, Gas: 21000})
	assert.ErrorIs(t, err, ErrOutOfGas)
}

func TestFilterEvents(t *testing.T) {
	c := newChain(t, Options{Accounts: 2})
	owner, bob := c.Accounts()[0], c.Accounts()[1]

	receipt, err := c.Deploy(owner, gen.Bin)
	require.NoError(t, err)
	keeperAddr := receipt.ContractAddress

	input, err := builtin.GuruxKeeper.ABI.Pack("approve", bob, big.NewInt(5))
	require.NoError(t, err)
	_, err = c.SendTransaction(bind.CallMsg{From: owner, To: &keeperAddr, Data: input})
	require.NoError(t, err)

	ctx := context.Background()
	logs, err := c.FilterEvents(ctx, bind.FilterQuery{Addresses: []common.Address{keeperAddr}})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, uint64(1), logs[0].BlockNumber)
	assert.Equal(t, uint64(2), logs[1].BlockNumber)

	approval := builtin.GuruxKeeper.ABI.Events["Approval"].ID
	logs, err = c.FilterEvents(ctx, bind.FilterQuery{Topics: []*common.Hash{&approval}})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Len(t, logs[0].Topics, 3)
	assert.Equal(t, common.BigToHash(big.NewInt(5)).Bytes(), logs[0].Data)

	logs, err = c.FilterEvents(ctx, bind.FilterQuery{FromBlock: 3})
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = c.FilterEvents(ctx, bind.FilterQuery{Topics: make([]*common.Hash, 5)})
	assert.Error(t, err)
}

func TestBackendReverts(t *testing.T) {
	c := newChain(t, Options{Accounts: 2})
	b := NewBackend(c)
	owner, bob := c.Accounts()[0], c.Accounts()[1]
	ctx := context.Background()

	assert.Equal(t, revert.Local, b.Network())
	assert.Equal(t, c, b.Chain())

	receipt, err := b.SendTransaction(ctx, bind.CallMsg{From: owner, Data: gen.Bin})
	require.NoError(t, err)
	keeperAddr := receipt.ContractAddress

	input, err := builtin.GuruxKeeper.ABI.Pack("approve", common.Address{}, big.NewInt(1))
	require.NoError(t, err)

	_, err = b.EstimateGas(ctx, bind.CallMsg{From: owner, To: &keeperAddr, Data: input})
	var local *revert.LocalMessageError
	require.ErrorAs(t, err, &local)
	assert.Equal(t, "VM Exception while processing transaction: reverted with reason string 'GuruxKeeper: approve to the zero address'", local.Message)
	assert.Equal(t, revert.Encode("GuruxKeeper: approve to the zero address"), local.Data)

	reason, err := revert.Extract(err, b.Network())
	require.NoError(t, err)
	assert.Equal(t, "GuruxKeeper: approve to the zero address", reason)

	_, err = b.SendTransaction(ctx, bind.CallMsg{From: bob, To: &keeperAddr, Data: input})
	reason, err = revert.Extract(err, b.Network())
	require.NoError(t, err)
	assert.Equal(t, "GuruxKeeper: caller is not the owner", reason)

	// non revert errors pass through
	_, err = b.SendTransaction(ctx, bind.CallMsg{From: bob, Data: []byte("native:Nothing")})
	assert.ErrorIs(t, err, ErrUnknownCode)
	assert.False(t, revert.IsRevert(err))
}

func TestFailedIndexWriteKeepsState(t *testing.T) {
	c := newChain(t, Options{Accounts: 2})
	from, to := c.Accounts()[0], c.Accounts()[1]

	require.NoError(t, c.logDB.Close())

	_, err := c.SendTransaction(bind.CallMsg{From: from, To: &to, Value: big.NewInt(1)})
	require.Error(t, err)
	assert.Zero(t, c.BlockNumber())

	for _, acc := range []common.Address{from, to} {
		bal, err := c.Balance(acc)
		require.NoError(t, err)
		assert.Equal(t, DefaultBalance, bal)
	}
	nonce, err := c.Nonce(from)
	require.NoError(t, err)
	assert.Zero(t, nonce)
}

func TestDataDir(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Options{DataDir: dir, Accounts: 1})
	require.NoError(t, err)
	owner := c.Accounts()[0]
	receipt, err := c.Deploy(owner, gen.Bin)
	require.NoError(t, err)
	code, err := c.Code(receipt.ContractAddress)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	require.NoError(t, c.Close())

	assert.DirExists(t, filepath.Join(dir, stateDirName))
	assert.FileExists(t, filepath.Join(dir, logDBFileName))

	// reopening starts from genesis again
	c = newChain(t, Options{DataDir: dir, Accounts: 1})
	assert.Zero(t, c.BlockNumber())
	code, err = c.Code(receipt.ContractAddress)
	require.NoError(t, err)
	assert.Empty(t, code)
	bal, err := c.Balance(owner)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalance, bal)

	events, err := c.FilterEvents(context.Background(), bind.FilterQuery{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

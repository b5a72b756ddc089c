// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rpcclient

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurufinglobal/guruxkeeper/api"
	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/builtin"
	"github.com/gurufinglobal/guruxkeeper/keeper/gen"
	"github.com/gurufinglobal/guruxkeeper/revert"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

const testNetwork = revert.Backend("remote")

func newClient(t *testing.T) (*Client, *solo.Chain) {
	chain, err := solo.New(solo.Options{Accounts: 2})
	require.NoError(t, err)
	handler, closeFn := api.New(chain, api.Options{})
	ts := httptest.NewServer(handler)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, ts.URL, testNetwork)
	require.NoError(t, err)
	client.WithPollInterval(10 * time.Millisecond)

	t.Cleanup(func() {
		client.Close()
		ts.Close()
		closeFn()
		chain.Close()
	})
	return client, chain
}

func TestClient(t *testing.T) {
	client, chain := newClient(t)
	ctx := context.Background()

	assert.Equal(t, testNetwork, client.Network())

	id, err := client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, chain.ChainID(), id)

	accounts, err := client.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, chain.Accounts(), accounts)
	owner, bob := accounts[0], accounts[1]

	bal, err := client.BalanceAt(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, solo.DefaultBalance, bal)

	receipt, err := client.SendTransaction(ctx, bind.CallMsg{From: owner, Data: gen.Bin})
	require.NoError(t, err)
	keeperAddr := receipt.ContractAddress
	assert.NotEqual(t, common.Address{}, keeperAddr)
	assert.Equal(t, solo.DefaultGasPrice, receipt.EffectiveGasPrice)
	require.Len(t, receipt.Logs, 1)

	input, err := builtin.GuruxKeeper.ABI.Pack("owner")
	require.NoError(t, err)
	out, err := client.CallContract(ctx, bind.CallMsg{To: &keeperAddr, Data: input})
	require.NoError(t, err)
	assert.Equal(t, common.LeftPadBytes(owner.Bytes(), 32), out)

	gas, err := client.EstimateGas(ctx, bind.CallMsg{From: owner, To: &keeperAddr, Value: big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)

	logs, err := client.FilterLogs(ctx, bind.FilterQuery{Addresses: []common.Address{keeperAddr}})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, receipt.Logs[0], logs[0])

	missing, err := client.TransactionReceipt(ctx, common.Hash{1})
	require.NoError(t, err)
	assert.Nil(t, missing)

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = client.WaitReceipt(ctx2, common.Hash{1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientReverts(t *testing.T) {
	client, chain := newClient(t)
	ctx := context.Background()
	owner, bob := chain.Accounts()[0], chain.Accounts()[1]

	receipt, err := client.SendTransaction(ctx, bind.CallMsg{From: owner, Data: gen.Bin})
	require.NoError(t, err)
	keeperAddr := receipt.ContractAddress

	input, err := builtin.GuruxKeeper.ABI.Pack("transfer", bob, big.NewInt(1))
	require.NoError(t, err)
	msg := bind.CallMsg{From: bob, To: &keeperAddr, Data: input}
	const reason = "GuruxKeeper: insufficient allowance"

	_, err = client.CallContract(ctx, msg)
	var remote *revert.RemoteReasonError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "execution reverted: "+reason, remote.Reason)
	assert.Equal(t, 3, remote.Code)
	assert.Equal(t, revert.Encode(reason), remote.Data)

	_, err = client.EstimateGas(ctx, msg)
	got, err := revert.Extract(err, client.Network())
	require.NoError(t, err)
	assert.Equal(t, reason, got)

	msg.Gas = 100_000
	_, err = client.SendTransaction(ctx, msg)
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "execution reverted: "+reason+": invalid request", remote.Reason)
	got, err = revert.Extract(err, client.Network())
	require.NoError(t, err)
	assert.Equal(t, reason, got)

	// not a revert
	_, err = client.SendTransaction(ctx, bind.CallMsg{From: common.HexToAddress("0x1234"), To: &keeperAddr, Gas: 100_000})
	require.Error(t, err)
	assert.False(t, revert.IsRevert(err))
	assert.Contains(t, err.Error(), "eth_sendTransaction")
}

type fakeRPCError struct {
	msg  string
	code int
	data any
}

func (e *fakeRPCError) Error() string  { return e.msg }
func (e *fakeRPCError) ErrorCode() int { return e.code }
func (e *fakeRPCError) ErrorData() any { return e.data }

func TestRemoteError(t *testing.T) {
	data := revert.Encode("GuruxKeeper: insufficient balance")

	tests := []struct {
		name       string
		err        error
		submission bool
		reason     string // empty for a non revert
	}{
		{"plain", errors.New("connection refused"), false, ""},
		{"other rpc error", &fakeRPCError{"nonce too low", -32000, nil}, false, ""},
		{"reason", &fakeRPCError{"execution reverted: GuruxKeeper: insufficient balance", 3, hexutil.Encode(data)}, false, "execution reverted: GuruxKeeper: insufficient balance"},
		{"suffix", &fakeRPCError{"execution reverted: GuruxKeeper: insufficient balance: invalid request", -32603, nil}, true, "execution reverted: GuruxKeeper: insufficient balance: invalid request"},
		{"rebuilt", &fakeRPCError{"execution reverted", 3, hexutil.Encode(data)}, false, "execution reverted: GuruxKeeper: insufficient balance"},
		{"rebuilt submission", &fakeRPCError{"execution reverted", 3, hexutil.Encode(data)}, true, "execution reverted: GuruxKeeper: insufficient balance: invalid request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := remoteError(tt.err, "eth_call", tt.submission)
			var remote *revert.RemoteReasonError
			if tt.reason == "" {
				assert.False(t, errors.As(err, &remote))
				assert.ErrorIs(t, err, tt.err)
				assert.Contains(t, err.Error(), "eth_call")
				return
			}
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tt.reason, remote.Reason)

			got, err := revert.Extract(remote, testNetwork)
			require.NoError(t, err)
			assert.Equal(t, "GuruxKeeper: insufficient balance", got)
		})
	}
}

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper_test

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/gurufinglobal/guruxkeeper/api"
	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/config"
	"github.com/gurufinglobal/guruxkeeper/keeper"
	"github.com/gurufinglobal/guruxkeeper/revert"
	"github.com/gurufinglobal/guruxkeeper/rpcclient"
	"github.com/gurufinglobal/guruxkeeper/solo"
	"github.com/gurufinglobal/guruxkeeper/test"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(ethparams.Ether))
}

var keeperInitAmount = ether(1000)

// KeeperSuite runs the GuruxKeeper scenarios against one backend. Every test gets a
// freshly deployed keeper owned by alice.
type KeeperSuite struct {
	suite.Suite

	connect  func(t *testing.T) bind.Backend
	gasPrice *big.Int
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	backend             bind.Backend
	alice, bob, charlie common.Address
	owner               common.Address
	keeper              *keeper.Keeper
}

func (s *KeeperSuite) SetupTest() {
	t := s.T()
	s.ctx, s.cancel = context.WithTimeout(context.Background(), s.timeout)
	s.backend = s.connect(t)

	accounts, err := s.backend.Accounts(s.ctx)
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(accounts), 3)
	s.alice, s.bob, s.charlie = accounts[0], accounts[1], accounts[2]
	s.owner = s.alice

	s.keeper, _, err = keeper.Deploy(s.ctx, s.backend, s.owner, s.opts())
	s.Require().NoError(err)
}

func (s *KeeperSuite) TearDownTest() {
	s.cancel()
}

func (s *KeeperSuite) opts() *bind.TxOptions {
	return &bind.TxOptions{GasPrice: s.gasPrice}
}

func (s *KeeperSuite) expectRevert(err error, reason string) {
	test.ExpectRevert(s.T(), err, s.backend.Network(), reason)
}

func (s *KeeperSuite) allowance(spender common.Address) *big.Int {
	allowance, err := s.keeper.Allowance(s.ctx, spender)
	s.Require().NoError(err)
	return allowance
}

func (s *KeeperSuite) balance(addr common.Address) *big.Int {
	bal, err := s.backend.BalanceAt(s.ctx, addr)
	s.Require().NoError(err)
	return bal
}

func (s *KeeperSuite) approve(spender common.Address, amount *big.Int) {
	_, err := s.keeper.Approve(s.ctx, s.opts(), spender, amount)
	s.Require().NoError(err)
}

// fund sends keeperInitAmount from alice to the keeper.
func (s *KeeperSuite) fund() {
	s.Require().GreaterOrEqual(s.balance(s.alice).Cmp(keeperInitAmount), 0)

	to := s.keeper.Address()
	_, err := s.backend.SendTransaction(s.ctx, bind.CallMsg{
		From:     s.alice,
		To:       &to,
		Value:    keeperInitAmount,
		GasPrice: big.NewInt(630_000_000_000),
	})
	s.Require().NoError(err)
}

// owner

func (s *KeeperSuite) TestInitialOwnerIsDeployer() {
	owner, err := s.keeper.Owner(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.owner, owner)
}

func (s *KeeperSuite) TestTransferOwnershipEmitsEvent() {
	receipt, err := s.keeper.TransferOwnership(s.ctx, s.opts(), s.bob)
	s.Require().NoError(err)

	events, err := s.keeper.OwnershipTransferredEvents(receipt)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(s.owner, events[0].PreviousOwner)
	s.Equal(s.bob, events[0].NewOwner)
}

func (s *KeeperSuite) TestTransferOwnershipChangesOwner() {
	_, err := s.keeper.TransferOwnership(s.ctx, s.opts(), s.bob)
	s.Require().NoError(err)

	owner, err := s.keeper.Owner(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.bob, owner)
}

func (s *KeeperSuite) TestTransferOwnershipToZeroAddress() {
	_, err := s.keeper.TransferOwnership(s.ctx, s.opts(), common.Address{})
	s.expectRevert(err, "GuruxKeeper: new owner is the zero address")
}

func (s *KeeperSuite) TestTransferOwnershipOnlyOwner() {
	_, err := s.keeper.Connect(s.bob).TransferOwnership(s.ctx, s.opts(), s.charlie)
	s.expectRevert(err, "GuruxKeeper: caller is not the owner")
}

// approve

func (s *KeeperSuite) TestInitialAllowanceIsZero() {
	s.Zero(s.allowance(s.bob).Sign())
}

func (s *KeeperSuite) TestApprove() {
	s.approve(s.bob, ether(10))
	s.Equal(ether(10), s.allowance(s.bob))
}

func (s *KeeperSuite) TestApproveEmitsEvent() {
	receipt, err := s.keeper.Approve(s.ctx, s.opts(), s.bob, ether(10))
	s.Require().NoError(err)

	events, err := s.keeper.ApprovalEvents(receipt)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(s.owner, events[0].Owner)
	s.Equal(s.bob, events[0].Spender)
	s.Equal(ether(10), events[0].Value)
}

func (s *KeeperSuite) TestApproveZeroValue() {
	s.approve(s.bob, big.NewInt(0))
	s.Zero(s.allowance(s.bob).Sign())
}

func (s *KeeperSuite) TestAllowanceSurvivesOwnershipChange() {
	s.approve(s.bob, ether(10))

	_, err := s.keeper.TransferOwnership(s.ctx, s.opts(), s.charlie)
	s.Require().NoError(err)

	s.Equal(ether(10), s.allowance(s.bob))
}

func (s *KeeperSuite) TestModifyApprove() {
	s.approve(s.bob, ether(10))
	s.Equal(ether(10), s.allowance(s.bob))

	s.approve(s.bob, ether(9999))
	s.Equal(ether(9999), s.allowance(s.bob))
}

func (s *KeeperSuite) TestApproveToZeroAddress() {
	_, err := s.keeper.Approve(s.ctx, s.opts(), common.Address{}, big.NewInt(0))
	s.expectRevert(err, "GuruxKeeper: approve to the zero address")
}

func (s *KeeperSuite) TestApproveOnlyOwner() {
	_, err := s.keeper.Connect(s.bob).Approve(s.ctx, s.opts(), s.charlie, ether(10))
	s.expectRevert(err, "GuruxKeeper: caller is not the owner")
}

// revokeApproval

func (s *KeeperSuite) TestRevokeApproval() {
	s.approve(s.bob, ether(10))

	_, err := s.keeper.RevokeApproval(s.ctx, s.opts(), s.bob)
	s.Require().NoError(err)
	s.Zero(s.allowance(s.bob).Sign())
}

func (s *KeeperSuite) TestRevokeApprovalEmitsEvent() {
	s.approve(s.bob, ether(10))

	receipt, err := s.keeper.RevokeApproval(s.ctx, s.opts(), s.bob)
	s.Require().NoError(err)

	events, err := s.keeper.ApprovalRevokedEvents(receipt)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(s.owner, events[0].Owner)
	s.Equal(s.bob, events[0].Spender)
}

func (s *KeeperSuite) TestRevokeApprovalOnlyOwner() {
	s.approve(s.bob, ether(10))

	_, err := s.keeper.Connect(s.charlie).RevokeApproval(s.ctx, s.opts(), s.charlie)
	s.expectRevert(err, "GuruxKeeper: caller is not the owner")
}

// transfer

func (s *KeeperSuite) TestTransferWithoutAllowance() {
	_, err := s.keeper.Transfer(s.ctx, s.opts(), s.charlie, ether(1))
	s.expectRevert(err, "GuruxKeeper: insufficient allowance")
}

func (s *KeeperSuite) TestTransferToZeroAddress() {
	s.approve(s.bob, ether(10))

	_, err := s.keeper.Connect(s.bob).Transfer(s.ctx, s.opts(), common.Address{}, ether(1))
	s.expectRevert(err, "GuruxKeeper: transfer to the zero address")
}

func (s *KeeperSuite) TestFundedBalance() {
	s.fund()
	s.Equal(keeperInitAmount, s.balance(s.keeper.Address()))
}

func (s *KeeperSuite) TestTransferMovesBalanceAndAllowance() {
	s.fund()
	allowance, amount := ether(10), ether(5)
	s.approve(s.bob, allowance)

	before := s.balance(s.charlie)

	_, err := s.keeper.Connect(s.bob).Transfer(s.ctx, s.opts(), s.charlie, amount)
	s.Require().NoError(err)

	s.Equal(new(big.Int).Sub(keeperInitAmount, amount), s.balance(s.keeper.Address()))
	s.Equal(new(big.Int).Add(before, amount), s.balance(s.charlie))
	s.Equal(new(big.Int).Sub(allowance, amount), s.allowance(s.bob))
}

func (s *KeeperSuite) TestTransferEmitsTransfer() {
	s.fund()
	amount := ether(5)
	s.approve(s.bob, ether(10))

	receipt, err := s.keeper.Connect(s.bob).Transfer(s.ctx, s.opts(), s.charlie, amount)
	s.Require().NoError(err)

	events, err := s.keeper.TransferEvents(receipt)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(s.bob, events[0].From)
	s.Equal(s.charlie, events[0].To)
	s.Equal(amount, events[0].Value)
}

func (s *KeeperSuite) TestTransferEmitsApproval() {
	s.fund()
	allowance, amount := ether(10), ether(5)
	s.approve(s.bob, allowance)

	receipt, err := s.keeper.Connect(s.bob).Transfer(s.ctx, s.opts(), s.charlie, amount)
	s.Require().NoError(err)

	events, err := s.keeper.ApprovalEvents(receipt)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(s.owner, events[0].Owner)
	s.Equal(s.bob, events[0].Spender)
	s.Equal(new(big.Int).Sub(allowance, amount), events[0].Value)
}

func (s *KeeperSuite) TestTransferMoreThanAllowance() {
	s.fund()
	allowance := ether(5)
	s.approve(s.bob, allowance)

	_, err := s.keeper.Connect(s.bob).Transfer(s.ctx, s.opts(), s.charlie, new(big.Int).Add(allowance, big.NewInt(1)))
	s.expectRevert(err, "GuruxKeeper: insufficient allowance")
}

func (s *KeeperSuite) TestTransferMoreThanBalance() {
	s.fund()
	amount := new(big.Int).Add(keeperInitAmount, big.NewInt(1))
	s.approve(s.bob, amount)

	_, err := s.keeper.Connect(s.bob).Transfer(s.ctx, s.opts(), s.charlie, amount)
	s.expectRevert(err, "GuruxKeeper: insufficient balance")
}

// TestKeeperSolo runs the suite in process.
func TestKeeperSolo(t *testing.T) {
	suite.Run(t, &KeeperSuite{
		timeout: 10 * time.Second,
		connect: func(t *testing.T) bind.Backend {
			chain, err := solo.New(solo.Options{Accounts: 3})
			require.NoError(t, err)
			t.Cleanup(func() { chain.Close() })
			return solo.NewBackend(chain)
		},
	})
}

// TestKeeperRemote runs the suite over JSON-RPC against a solo chain served by the api.
func TestKeeperRemote(t *testing.T) {
	suite.Run(t, &KeeperSuite{
		timeout: 10 * time.Second,
		connect: func(t *testing.T) bind.Backend {
			chain, err := solo.New(solo.Options{Accounts: 3})
			require.NoError(t, err)
			handler, closeFn := api.New(chain, api.Options{})
			ts := httptest.NewServer(handler)

			client, err := rpcclient.Dial(context.Background(), ts.URL, "localhost")
			require.NoError(t, err)
			client.WithPollInterval(10 * time.Millisecond)

			t.Cleanup(func() {
				client.Close()
				ts.Close()
				closeFn()
				chain.Close()
			})
			return client
		},
	})
}

// TestKeeperNetwork runs the suite against the network selected by KEEPER_NETWORK.
func TestKeeperNetwork(t *testing.T) {
	cfg, err := config.Load("testdata/networks.yaml")
	require.NoError(t, err)
	network, err := cfg.Select("")
	require.NoError(t, err)
	if network.IsLocal() {
		t.Skipf("set %s to run against a remote network", config.NetworkEnv)
	}

	var client *rpcclient.Client
	err = test.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), network.Timeout)
		defer cancel()
		c, err := rpcclient.Dial(ctx, network.URL, network.Backend())
		if err != nil {
			return err
		}
		if _, err := c.ChainID(ctx); err != nil {
			c.Close()
			return err
		}
		client = c
		return nil
	}, time.Second, network.Timeout)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	require.NotEqual(t, revert.Local, client.Network())
	suite.Run(t, &KeeperSuite{
		timeout:  network.Timeout,
		gasPrice: network.GasPriceWei(),
		connect:  func(*testing.T) bind.Backend { return client },
	})
}

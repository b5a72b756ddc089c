// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solo runs an in-process development chain that mines one block per
// successful transaction.
package solo

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/gurufinglobal/guruxkeeper/bind"
	"github.com/gurufinglobal/guruxkeeper/builtin"
	"github.com/gurufinglobal/guruxkeeper/builtin/reverts"
	"github.com/gurufinglobal/guruxkeeper/kv"
	"github.com/gurufinglobal/guruxkeeper/log"
	"github.com/gurufinglobal/guruxkeeper/logdb"
	"github.com/gurufinglobal/guruxkeeper/state"
)

var logger = log.WithContext("pkg", "solo")

var (
	// ErrInsufficientFunds is returned when the sender cannot pay value plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")
	// ErrOutOfGas is returned when a transaction uses more than its gas limit.
	ErrOutOfGas = errors.New("out of gas")
	// ErrUnknownCode is returned when creation code resolves to no native contract.
	ErrUnknownCode = errors.New("unknown creation code")
)

const (
	DefaultAccounts = 10
	DefaultChainID  = 31337
	DefaultGasLimit = 30_000_000
)

var (
	DefaultBalance  = new(big.Int).Mul(big.NewInt(10000), big.NewInt(ethparams.Ether))
	DefaultGasPrice = big.NewInt(ethparams.GWei)
)

// Options configures a new chain. Zero values take the defaults.
type Options struct {
	// DataDir holds the chain databases on disk, in memory if empty.
	// Databases found there are reset, every chain starts from genesis.
	DataDir  string
	Accounts int
	Balance  *big.Int
	GasPrice *big.Int
	ChainID  *big.Int
	GasLimit uint64
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Accounts <= 0 {
		out.Accounts = DefaultAccounts
	}
	if out.Balance == nil {
		out.Balance = DefaultBalance
	}
	if out.GasPrice == nil {
		out.GasPrice = DefaultGasPrice
	}
	if out.ChainID == nil {
		out.ChainID = big.NewInt(DefaultChainID)
	}
	if out.GasLimit == 0 {
		out.GasLimit = DefaultGasLimit
	}
	return out
}

// Chain is the local simulated chain.
type Chain struct {
	mu sync.Mutex

	opts     Options
	db       *kv.LevelDB
	logDB    *logdb.LogDB
	state    *state.State
	keys     []*ecdsa.PrivateKey
	accounts []common.Address

	blockNumber uint64
	receipts    map[common.Hash]*bind.Receipt
}

// DevKey returns the deterministic private key of the i-th dev account.
func DevKey(i int) *ecdsa.PrivateKey {
	key, err := crypto.ToECDSA(crypto.Keccak256([]byte(fmt.Sprintf("guruxkeeper solo account %d", i))))
	if err != nil {
		panic(err)
	}
	return key
}

// New creates a chain with funded dev accounts.
func New(opts Options) (*Chain, error) {
	opts = opts.withDefaults()

	db, logDB, err := openDatabases(opts.DataDir)
	if err != nil {
		return nil, err
	}

	balance, overflow := uint256.FromBig(opts.Balance)
	if overflow {
		db.Close()
		logDB.Close()
		return nil, fmt.Errorf("balance overflow: %v", opts.Balance)
	}

	c := &Chain{
		opts:     opts,
		db:       db,
		logDB:    logDB,
		state:    state.New(db),
		receipts: make(map[common.Hash]*bind.Receipt),
	}
	for i := 0; i < opts.Accounts; i++ {
		key := DevKey(i)
		addr := crypto.PubkeyToAddress(key.PublicKey)
		c.keys = append(c.keys, key)
		c.accounts = append(c.accounts, addr)
		c.state.SetBalance(addr, balance)
	}
	if err := c.state.Commit(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Debug("solo chain created", "accounts", len(c.accounts), "chainID", opts.ChainID)
	return c, nil
}

const (
	stateDirName  = "state"
	logDBFileName = "logs.db"
	stateCacheMB  = 16
)

func openDatabases(dataDir string) (*kv.LevelDB, *logdb.LogDB, error) {
	if dataDir == "" {
		db, err := kv.NewMem()
		if err != nil {
			return nil, nil, err
		}
		logDB, err := logdb.NewMem()
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, logDB, nil
	}

	statePath := filepath.Join(dataDir, stateDirName)
	logDBPath := filepath.Join(dataDir, logDBFileName)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	for _, p := range []string{statePath, logDBPath} {
		if err := os.RemoveAll(p); err != nil {
			return nil, nil, fmt.Errorf("reset %s: %w", p, err)
		}
	}

	db, err := kv.NewLevelDB(statePath, stateCacheMB)
	if err != nil {
		return nil, nil, err
	}
	logDB, err := logdb.New(logDBPath)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Debug("chain databases opened", "dir", dataDir)
	return db, logDB, nil
}

// Close releases the chain databases.
func (c *Chain) Close() error {
	err := c.logDB.Close()
	if e := c.db.Close(); err == nil {
		err = e
	}
	return err
}

func (c *Chain) ChainID() *big.Int {
	return new(big.Int).Set(c.opts.ChainID)
}

func (c *Chain) GasPrice() *big.Int {
	return new(big.Int).Set(c.opts.GasPrice)
}

// Accounts returns the funded dev accounts.
func (c *Chain) Accounts() []common.Address {
	return append([]common.Address(nil), c.accounts...)
}

// Key returns the private key of a dev account.
func (c *Chain) Key(addr common.Address) (*ecdsa.PrivateKey, bool) {
	for i, a := range c.accounts {
		if a == addr {
			return c.keys[i], true
		}
	}
	return nil, false
}

func (c *Chain) BlockNumber() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockNumber
}

func (c *Chain) Balance(addr common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal, err := c.state.GetBalance(addr)
	if err != nil {
		return nil, err
	}
	return bal.ToBig(), nil
}

func (c *Chain) Nonce(addr common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.GetNonce(addr)
}

func (c *Chain) Code(addr common.Address) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.GetCode(addr)
}

// Receipt returns the receipt of a mined transaction.
func (c *Chain) Receipt(hash common.Hash) (*bind.Receipt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	return r, ok
}

// Call executes msg against the latest state and discards every change.
func (c *Chain) Call(msg bind.CallMsg) ([]byte, error) {
	res, err := c.dryRun(msg)
	if err != nil {
		return nil, err
	}
	return res.output, nil
}

// EstimateGas returns the gas msg would use.
func (c *Chain) EstimateGas(msg bind.CallMsg) (uint64, error) {
	msg.Gas = 0
	res, err := c.dryRun(msg)
	if err != nil {
		return 0, err
	}
	return res.gasUsed, nil
}

func (c *Chain) dryRun(msg bind.CallMsg) (*result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nonce, err := c.state.GetNonce(msg.From)
	if err != nil {
		return nil, err
	}
	cp := c.state.NewCheckpoint()
	defer c.state.RevertTo(cp)
	return c.execute(msg, nonce)
}

// Deploy creates a contract from the native creation code.
func (c *Chain) Deploy(from common.Address, code []byte) (*bind.Receipt, error) {
	return c.SendTransaction(bind.CallMsg{From: from, Data: code})
}

// SendTransaction executes msg and mines it into a new block. A failed transaction
// mines nothing and leaves the state untouched.
func (c *Chain) SendTransaction(msg bind.CallMsg) (receipt *bind.Receipt, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Value == nil {
		msg.Value = new(big.Int)
	}
	if msg.GasPrice == nil {
		msg.GasPrice = c.opts.GasPrice
	}
	if msg.Gas == 0 || msg.Gas > c.opts.GasLimit {
		msg.Gas = c.opts.GasLimit
	}

	nonce, err := c.state.GetNonce(msg.From)
	if err != nil {
		return nil, err
	}

	cp := c.state.NewCheckpoint()
	defer func() {
		if err != nil {
			c.state.RevertTo(cp)
			var re *reverts.ErrRequire
			if errors.As(err, &re) {
				metricRevertCount().AddWithLabel(1, map[string]string{"reason": re.Reason()})
				logger.Debug("transaction reverted", "from", msg.From, "reason", re.Reason())
			}
		}
	}()

	res, err := c.execute(msg, nonce)
	if err != nil {
		return nil, err
	}

	fee, overflow := uint256.FromBig(new(big.Int).Mul(new(big.Int).SetUint64(res.gasUsed), msg.GasPrice))
	if overflow {
		return nil, ErrInsufficientFunds
	}
	if err := c.state.SubBalance(msg.From, fee); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}
	c.state.SetNonce(msg.From, nonce+1)

	txHash, err := hashTx(c.opts.ChainID, nonce, msg)
	if err != nil {
		return nil, err
	}
	return c.mine(txHash, msg, res)
}

func (c *Chain) mine(txHash common.Hash, msg bind.CallMsg, res *result) (*bind.Receipt, error) {
	number := c.blockNumber + 1

	receipt := &bind.Receipt{
		TxHash:            txHash,
		BlockNumber:       number,
		GasUsed:           res.gasUsed,
		EffectiveGasPrice: new(big.Int).Set(msg.GasPrice),
		Status:            bind.ReceiptStatusSuccessful,
		ContractAddress:   res.contract,
	}

	batch := c.logDB.NewBlockBatch(number)
	for i, l := range res.logs {
		receipt.Logs = append(receipt.Logs, &bind.Log{
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			BlockNumber: number,
			TxHash:      txHash,
			Index:       uint(i),
		})
		batch.AddEvent(txHash, msg.From, l.Address, l.Topics, l.Data)
	}
	for _, tr := range res.transfers {
		batch.AddTransfer(txHash, msg.From, tr.Sender, tr.Recipient, tr.Amount)
	}

	// logs first, a failed index write still rolls back the staged state
	if err := batch.Commit(); err != nil {
		return nil, err
	}
	if err := c.state.Commit(); err != nil {
		return nil, err
	}

	c.blockNumber = number
	c.receipts[txHash] = receipt

	metricTxCount().Add(1)
	metricBlockNumber().Set(int64(number))
	logger.Debug("transaction mined", "hash", txHash, "block", number, "gas", res.gasUsed)
	return receipt, nil
}

type result struct {
	output    []byte
	gasUsed   uint64
	contract  common.Address
	logs      []*builtin.Log
	transfers []*builtin.Transfer
}

func intrinsicGas(data []byte, creation bool) uint64 {
	gas := ethparams.TxGas
	if creation {
		gas = ethparams.TxGasContractCreation
	}
	for _, b := range data {
		if b == 0 {
			gas += ethparams.TxDataZeroGas
		} else {
			gas += ethparams.TxDataNonZeroGasEIP2028
		}
	}
	return gas
}

func (c *Chain) execute(msg bind.CallMsg, nonce uint64) (*result, error) {
	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	amount, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid value: %v", value)
	}

	res := &result{gasUsed: intrinsicGas(msg.Data, msg.To == nil)}

	var (
		to       common.Address
		contract *builtin.Contract
	)
	if msg.To == nil {
		var ok bool
		if contract, ok = builtin.Lookup(msg.Data); !ok {
			return nil, ErrUnknownCode
		}
		to = crypto.CreateAddress(msg.From, nonce)
		res.contract = to
		c.state.SetCode(to, contract.Code())
	} else {
		to = *msg.To
		code, err := c.state.GetCode(to)
		if err != nil {
			return nil, err
		}
		if len(code) > 0 {
			var ok bool
			if contract, ok = builtin.Lookup(code); !ok {
				return nil, ErrUnknownCode
			}
		}
	}

	if err := c.state.Transfer(msg.From, to, amount); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}
	if value.Sign() > 0 {
		res.transfers = append(res.transfers, &builtin.Transfer{Sender: msg.From, Recipient: to, Amount: new(big.Int).Set(value)})
	}

	if contract != nil {
		env := builtin.NewEnv(c.state, to, msg.From, value)
		var err error
		if msg.To == nil {
			err = contract.Construct(env)
		} else {
			res.output, err = contract.Call(env, msg.Data)
		}
		res.gasUsed += env.GasUsed()
		if err != nil {
			return nil, err
		}
		res.logs = env.Logs
		res.transfers = append(res.transfers, env.Transfers...)
	}

	if msg.Gas != 0 && res.gasUsed > msg.Gas {
		return nil, ErrOutOfGas
	}
	return res, nil
}

func hashTx(chainID *big.Int, nonce uint64, msg bind.CallMsg) (common.Hash, error) {
	data, err := rlp.EncodeToBytes([]any{
		chainID,
		nonce,
		msg.GasPrice,
		msg.Gas,
		msg.To,
		msg.Value,
		msg.Data,
		msg.From,
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// FilterEvents returns the logs matching q.
func (c *Chain) FilterEvents(ctx context.Context, q bind.FilterQuery) ([]*bind.Log, error) {
	filter := &logdb.EventFilter{
		Range: &logdb.Range{From: q.FromBlock, To: q.ToBlock},
	}
	if q.ToBlock == 0 {
		filter.Range.To = c.BlockNumber()
	}

	var topics [4]*common.Hash
	if len(q.Topics) > len(topics) {
		return nil, fmt.Errorf("too many topics: %d", len(q.Topics))
	}
	copy(topics[:], q.Topics)

	if len(q.Addresses) == 0 {
		filter.CriteriaSet = append(filter.CriteriaSet, &logdb.EventCriteria{Topics: topics})
	}
	for _, addr := range q.Addresses {
		addr := addr
		filter.CriteriaSet = append(filter.CriteriaSet, &logdb.EventCriteria{Address: &addr, Topics: topics})
	}

	events, err := c.logDB.FilterEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	logs := make([]*bind.Log, 0, len(events))
	for _, ev := range events {
		l := &bind.Log{
			Address:     ev.Address,
			Data:        ev.Data,
			BlockNumber: ev.BlockNumber,
			TxHash:      ev.TxHash,
			Index:       uint(ev.Index),
		}
		for _, t := range ev.Topics {
			if t == nil {
				break
			}
			l.Topics = append(l.Topics, *t)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// FilterTransfers returns the value transfers matching filter.
func (c *Chain) FilterTransfers(ctx context.Context, filter *logdb.TransferFilter) ([]*logdb.Transfer, error) {
	return c.logDB.FilterTransfers(ctx, filter)
}

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state keeps the world state of the solo chain: balances, nonces, native code
// and contract storage. Writes are staged in memory until Commit, and can be rolled
// back to a checkpoint.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/gurufinglobal/guruxkeeper/kv"
)

// ErrInsufficientBalance is returned by SubBalance.
var ErrInsufficientBalance = errors.New("insufficient balance")

const (
	balancePrefix = 'b'
	noncePrefix   = 'n'
	codePrefix    = 'c'
	storagePrefix = 's'
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

type change struct {
	value   []byte
	deleted bool
}

type journalEntry struct {
	key  string
	prev *change // nil if the key was untouched
}

// State manages the world state on top of a kv store.
type State struct {
	db      kv.Store
	changes map[string]*change
	journal []journalEntry
}

// New creates a state backed by db.
func New(db kv.Store) *State {
	return &State{
		db:      db,
		changes: make(map[string]*change),
	}
}

func accountKey(prefix byte, addr common.Address) []byte {
	return append([]byte{prefix}, addr[:]...)
}

func storageKey(addr common.Address, key common.Hash) []byte {
	return append(accountKey(storagePrefix, addr), key[:]...)
}

func (s *State) get(key []byte) ([]byte, error) {
	if c, ok := s.changes[string(key)]; ok {
		if c.deleted {
			return nil, nil
		}
		return c.value, nil
	}
	v, err := s.db.Get(key)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, &Error{err}
	}
	return v, nil
}

func (s *State) set(key []byte, value []byte) {
	k := string(key)
	s.journal = append(s.journal, journalEntry{k, s.changes[k]})
	if len(value) == 0 {
		s.changes[k] = &change{deleted: true}
		return
	}
	s.changes[k] = &change{value: value}
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr common.Address) (*uint256.Int, error) {
	v, err := s.get(accountKey(balancePrefix, addr))
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(v), nil
}

// SetBalance sets balance for the given address.
func (s *State) SetBalance(addr common.Address, balance *uint256.Int) {
	if balance.IsZero() {
		s.set(accountKey(balancePrefix, addr), nil)
		return
	}
	s.set(accountKey(balancePrefix, addr), balance.Bytes())
}

// AddBalance adds amount to the balance of addr.
func (s *State) AddBalance(addr common.Address, amount *uint256.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(bal, amount)
	if overflow {
		return &Error{errors.New("balance overflow")}
	}
	s.SetBalance(addr, sum)
	return nil
}

// SubBalance subtracts amount from the balance of addr.
func (s *State) SubBalance(addr common.Address, amount *uint256.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	s.SetBalance(addr, new(uint256.Int).Sub(bal, amount))
	return nil
}

// Transfer moves amount from one account to another.
func (s *State) Transfer(from, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := s.SubBalance(from, amount); err != nil {
		return err
	}
	return s.AddBalance(to, amount)
}

// GetNonce returns the number of transactions sent by addr.
func (s *State) GetNonce(addr common.Address) (uint64, error) {
	v, err := s.get(accountKey(noncePrefix, addr))
	if err != nil || len(v) == 0 {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetNonce sets the nonce of addr.
func (s *State) SetNonce(addr common.Address, nonce uint64) {
	if nonce == 0 {
		s.set(accountKey(noncePrefix, addr), nil)
		return
	}
	s.set(accountKey(noncePrefix, addr), binary.BigEndian.AppendUint64(nil, nonce))
}

// GetCode returns the code deployed at addr.
func (s *State) GetCode(addr common.Address) ([]byte, error) {
	return s.get(accountKey(codePrefix, addr))
}

// SetCode sets the code of addr.
func (s *State) SetCode(addr common.Address, code []byte) {
	s.set(accountKey(codePrefix, addr), code)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr common.Address, key common.Hash) (common.Hash, error) {
	v, err := s.get(storageKey(addr, key))
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(v), nil
}

// SetStorage sets storage value for the given address and key.
func (s *State) SetStorage(addr common.Address, key, value common.Hash) {
	if value == (common.Hash{}) {
		s.set(storageKey(addr, key), nil)
		return
	}
	s.set(storageKey(addr, key), value.Bytes())
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the checkpoint revision.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo reverts every change made after the checkpoint.
func (s *State) RevertTo(revision int) {
	if revision < 0 || revision > len(s.journal) {
		panic("invalid revision")
	}
	for i := len(s.journal) - 1; i >= revision; i-- {
		entry := s.journal[i]
		if entry.prev == nil {
			delete(s.changes, entry.key)
		} else {
			s.changes[entry.key] = entry.prev
		}
	}
	s.journal = s.journal[:revision]
}

// Commit writes the staged changes to the store atomically.
func (s *State) Commit() error {
	batch := s.db.NewBatch()
	for k, c := range s.changes {
		var err error
		if c.deleted {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), c.value)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	s.changes = make(map[string]*change)
	s.journal = nil
	return nil
}

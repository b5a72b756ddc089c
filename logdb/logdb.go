// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// LogDB indexes events and transfers of mined blocks.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{path, db, driverVer}, nil
}

// NewMem creates a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite version linked in.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// FilterEvents returns the events matching filter, all events for a nil filter.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY blockNumber ASC, eventIndex ASC")
	}

	var (
		args []any
		sb   strings.Builder
	)
	sb.WriteString("SELECT * FROM event WHERE 1")
	args = appendRange(&sb, args, filter.Range)

	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			sb.WriteString(" AND (( 1")
		} else {
			sb.WriteString(" OR ( 1")
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			sb.WriteString(" AND address = ?")
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				fmt.Fprintf(&sb, " AND topic%d = ?", j)
			}
		}
		sb.WriteString(" )")
	}
	if len(filter.CriteriaSet) > 0 {
		sb.WriteString(" )")
	}

	if filter.Order == DESC {
		sb.WriteString(" ORDER BY blockNumber DESC, eventIndex DESC")
	} else {
		sb.WriteString(" ORDER BY blockNumber ASC, eventIndex ASC")
	}
	args = appendOptions(&sb, args, filter.Options)

	return db.queryEvents(ctx, sb.String(), args...)
}

// FilterTransfers returns the transfers matching filter, all transfers for a nil filter.
func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		return db.queryTransfers(ctx, "SELECT * FROM transfer ORDER BY blockNumber ASC, transferIndex ASC")
	}

	var (
		args []any
		sb   strings.Builder
	)
	sb.WriteString("SELECT * FROM transfer WHERE 1")
	args = appendRange(&sb, args, filter.Range)
	if filter.TxHash != nil {
		args = append(args, filter.TxHash.Bytes())
		sb.WriteString(" AND txHash = ?")
	}

	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			sb.WriteString(" AND (( 1")
		} else {
			sb.WriteString(" OR ( 1")
		}
		if criteria.TxOrigin != nil {
			args = append(args, criteria.TxOrigin.Bytes())
			sb.WriteString(" AND txOrigin = ?")
		}
		if criteria.Sender != nil {
			args = append(args, criteria.Sender.Bytes())
			sb.WriteString(" AND sender = ?")
		}
		if criteria.Recipient != nil {
			args = append(args, criteria.Recipient.Bytes())
			sb.WriteString(" AND recipient = ?")
		}
		sb.WriteString(" )")
	}
	if len(filter.CriteriaSet) > 0 {
		sb.WriteString(" )")
	}

	if filter.Order == DESC {
		sb.WriteString(" ORDER BY blockNumber DESC, transferIndex DESC")
	} else {
		sb.WriteString(" ORDER BY blockNumber ASC, transferIndex ASC")
	}
	args = appendOptions(&sb, args, filter.Options)

	return db.queryTransfers(ctx, sb.String(), args...)
}

func appendRange(sb *strings.Builder, args []any, r *Range) []any {
	if r == nil {
		return args
	}
	args = append(args, r.From)
	sb.WriteString(" AND blockNumber >= ?")
	if r.To >= r.From {
		args = append(args, r.To)
		sb.WriteString(" AND blockNumber <= ?")
	}
	return args
}

func appendOptions(sb *strings.Builder, args []any, opts *Options) []any {
	if opts == nil {
		return args
	}
	sb.WriteString(" LIMIT ?, ?")
	return append(args, opts.Offset, opts.Limit)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			blockNumber uint64
			index       uint32
			txHash      []byte
			txOrigin    []byte
			address     []byte
			topics      [4][]byte
			data        []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&index,
			&txHash,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: blockNumber,
			Index:       index,
			TxHash:      common.BytesToHash(txHash),
			TxOrigin:    common.BytesToAddress(txOrigin),
			Address:     common.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := common.BytesToHash(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			blockNumber uint64
			index       uint32
			txHash      []byte
			txOrigin    []byte
			sender      []byte
			recipient   []byte
			amount      []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&index,
			&txHash,
			&txOrigin,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			BlockNumber: blockNumber,
			Index:       index,
			TxHash:      common.BytesToHash(txHash),
			TxOrigin:    common.BytesToAddress(txOrigin),
			Sender:      common.BytesToAddress(sender),
			Recipient:   common.BytesToAddress(recipient),
			Amount:      new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// NewBlockBatch collects the events and transfers of one block.
func (db *LogDB) NewBlockBatch(blockNumber uint64) *BlockBatch {
	return &BlockBatch{db: db.db, blockNumber: blockNumber}
}

// BlockBatch is written in a single sql transaction by Commit.
type BlockBatch struct {
	db          *sql.DB
	blockNumber uint64
	events      []*Event
	transfers   []*Transfer
}

// AddEvent queues an event. Index is assigned in insertion order.
func (b *BlockBatch) AddEvent(txHash common.Hash, txOrigin, address common.Address, topics []common.Hash, data []byte) *BlockBatch {
	ev := &Event{
		BlockNumber: b.blockNumber,
		Index:       uint32(len(b.events)),
		TxHash:      txHash,
		TxOrigin:    txOrigin,
		Address:     address,
		Data:        data,
	}
	for i := 0; i < len(topics) && i < len(ev.Topics); i++ {
		topic := topics[i]
		ev.Topics[i] = &topic
	}
	b.events = append(b.events, ev)
	return b
}

// AddTransfer queues a value transfer.
func (b *BlockBatch) AddTransfer(txHash common.Hash, txOrigin, sender, recipient common.Address, amount *big.Int) *BlockBatch {
	b.transfers = append(b.transfers, &Transfer{
		BlockNumber: b.blockNumber,
		Index:       uint32(len(b.transfers)),
		TxHash:      txHash,
		TxOrigin:    txOrigin,
		Sender:      sender,
		Recipient:   recipient,
		Amount:      amount,
	})
	return b
}

func topicValue(h *common.Hash) any {
	if h == nil {
		return nil
	}
	return h.Bytes()
}

// Commit writes the batch.
func (b *BlockBatch) Commit() (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, ev := range b.events {
		if _, err = tx.Exec("INSERT INTO event VALUES (?,?,?,?,?,?,?,?,?,?)",
			ev.BlockNumber,
			ev.Index,
			ev.TxHash.Bytes(),
			ev.TxOrigin.Bytes(),
			ev.Address.Bytes(),
			topicValue(ev.Topics[0]),
			topicValue(ev.Topics[1]),
			topicValue(ev.Topics[2]),
			topicValue(ev.Topics[3]),
			ev.Data,
		); err != nil {
			return err
		}
	}
	for _, tr := range b.transfers {
		if _, err = tx.Exec("INSERT INTO transfer VALUES (?,?,?,?,?,?,?)",
			tr.BlockNumber,
			tr.Index,
			tr.TxHash.Bytes(),
			tr.TxOrigin.Bytes(),
			tr.Sender.Bytes(),
			tr.Recipient.Bytes(),
			tr.Amount.Bytes(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

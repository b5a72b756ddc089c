// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	blockNumber INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	txHash BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	data BLOB
);

CREATE INDEX IF NOT EXISTS event_block ON event(blockNumber);
CREATE INDEX IF NOT EXISTS event_address ON event(address);
CREATE INDEX IF NOT EXISTS event_topic0 ON event(topic0);
`

const transferTableSchema = `
CREATE TABLE IF NOT EXISTS transfer (
	blockNumber INTEGER NOT NULL,
	transferIndex INTEGER NOT NULL,
	txHash BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB(32)
);

CREATE INDEX IF NOT EXISTS transfer_block ON transfer(blockNumber);
CREATE INDEX IF NOT EXISTS transfer_sender ON transfer(sender);
CREATE INDEX IF NOT EXISTS transfer_recipient ON transfer(recipient);
`

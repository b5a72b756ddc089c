// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsInit(t *testing.T) {
	logger := WithContext("pkg", "solo")
	defer Discard()

	var buf bytes.Buffer
	Init(Options{Writer: &buf, Verbosity: 3, JSON: true})

	logger.With("block", 1).Info("mined", "txs", 2)
	logger.Debug("dropped")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "mined", record["msg"])
	assert.Equal(t, "solo", record["pkg"])
	assert.EqualValues(t, 1, record["block"])
	assert.EqualValues(t, 2, record["txs"])
}

func TestTerminalHandler(t *testing.T) {
	defer Discard()

	var buf bytes.Buffer
	Init(Options{Writer: &buf, Verbosity: 4})

	WithContext("pkg", "api").Debug("request", "method", "eth_call")
	assert.Contains(t, buf.String(), "request")
	assert.Contains(t, buf.String(), "method=eth_call")
}

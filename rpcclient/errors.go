// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rpcclient

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/gurufinglobal/guruxkeeper/revert"
)

// revertCode is the JSON-RPC error code nodes use for reverted executions.
const revertCode = 3

// remoteError turns a revert reported by the node into a revert.RemoteReasonError.
// Other errors are wrapped with the method name.
func remoteError(err error, method string, submission bool) error {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return errors.Wrap(err, method)
	}

	msg := err.Error()
	if rpcErr.ErrorCode() != revertCode && !strings.Contains(msg, "reverted") {
		return errors.Wrap(err, method)
	}

	var data []byte
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			data, _ = hexutil.Decode(s)
		}
	}

	if !strings.Contains(msg, "reverted:") {
		// no reason text, rebuild it from the revert data
		if reason, derr := revert.Decode(data); derr == nil {
			return revert.NewRemote(reason, submission, data)
		}
	}
	return &revert.RemoteReasonError{
		Reason: msg,
		Code:   rpcErr.ErrorCode(),
		Data:   data,
	}
}

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gurufinglobal/guruxkeeper/builtin/reverts"
	"github.com/gurufinglobal/guruxkeeper/revert"
)

// revertError is a JSON-RPC error carrying the revert data, like the one nodes
// return for reverted calls.
type revertError struct {
	*revert.RemoteReasonError
}

func (e *revertError) ErrorCode() int { return e.Code }

func (e *revertError) ErrorData() any { return hexutil.Encode(e.Data) }

// rpcError converts a native revert into a revert error. Transaction submissions
// carry the invalid request suffix.
func rpcError(err error, submission bool) error {
	var re *reverts.ErrRequire
	if errors.As(err, &re) {
		return &revertError{revert.NewRemote(re.Reason(), submission, re.Bytes())}
	}
	return err
}

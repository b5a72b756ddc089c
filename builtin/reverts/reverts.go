// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"

	"github.com/gurufinglobal/guruxkeeper/revert"
)

// ErrRequire is a failed require() of a native contract. All state changes of the call
// are discarded.
type ErrRequire struct {
	message string
}

func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{
		message: message,
	}
}

// Revert is a revert without reason string.
func Revert() *ErrRequire {
	return &ErrRequire{}
}

func (e *ErrRequire) Error() string {
	if e.message == "" {
		return "reverted without a reason string"
	}
	return e.message
}

// Reason returns the revert reason, empty if none was given.
func (e *ErrRequire) Reason() string {
	return e.message
}

// Bytes returns the Error(string) revert data, nil without reason.
func (e *ErrRequire) Bytes() []byte {
	if e == nil || e.message == "" {
		return nil
	}
	return revert.Encode(e.message)
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRequire
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}

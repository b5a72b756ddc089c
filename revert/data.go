// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package revert

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// errorSelector is the 4-byte selector of Error(string).
var errorSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

var stringArgs = func() abi.Arguments {
	typ, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: typ}}
}()

// Encode returns the ABI encoded Error(string) revert data for reason.
func Encode(reason string) []byte {
	packed, err := stringArgs.Pack(reason)
	if err != nil {
		// packing a string never fails
		panic(err)
	}
	return append(append([]byte{}, errorSelector...), packed...)
}

// Decode unpacks Error(string) or Panic(uint256) revert data.
func Decode(data []byte) (string, error) {
	return abi.UnpackRevert(data)
}

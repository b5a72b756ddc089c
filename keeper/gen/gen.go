// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gen carries the GuruxKeeper interface and creation code.
package gen

import (
	_ "embed"
)

// NativeCodePrefix marks creation code resolved to a native contract by the solo chain.
const NativeCodePrefix = "native:"

//go:embed GuruxKeeper.abi
var ABI []byte

// Bin is the creation code of GuruxKeeper on the solo chain.
var Bin = []byte(NativeCodePrefix + "GuruxKeeper")

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package test holds assertion helpers shared by the behavioural suites.
package test

import (
	"github.com/stretchr/testify/require"

	"github.com/gurufinglobal/guruxkeeper/revert"
)

// ExpectRevert asserts that err is a revert whose reason, as reported by backend, is want.
// A nil err fails the assertion.
func ExpectRevert(t require.TestingT, err error, backend revert.Backend, want string) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	require.Error(t, err, "expected revert with reason %q", want)
	require.True(t, revert.IsRevert(err), "expected revert with reason %q, got: %v", want, err)

	reason, xerr := revert.Extract(err, backend)
	require.NoError(t, xerr, "unexpected error: %v", err)
	require.Equal(t, want, reason)
}

// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import "github.com/gurufinglobal/guruxkeeper/metrics"

var (
	metricRevertCount = metrics.LazyLoadCounterVec("solo_revert_count", []string{"reason"})
	metricTxCount     = metrics.LazyLoadCounter("solo_tx_count")
	metricBlockNumber = metrics.LazyLoadGauge("solo_block_number")
)

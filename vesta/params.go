// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesta

import "math/big"

// Constants of the staking rewards protocol.
const (
	// InitialRewardsDuration default length of a reward period, in seconds.
	InitialRewardsDuration uint64 = 7 * 24 * 3600
)

// AccrualScale fixed-point scale of the cumulative reward-per-staked-unit counters.
var AccrualScale = big.NewInt(1e18)

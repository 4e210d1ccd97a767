// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the well-known contracts to their addresses.
package builtin

import (
	"github.com/vestalabs/vesta/builtin/addrlist"
	"github.com/vestalabs/vesta/builtin/distributor"
	"github.com/vestalabs/vesta/builtin/rewards"
	"github.com/vestalabs/vesta/builtin/token"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

// Builtin contracts binding.
var (
	DepositToken = &tokenContract{addressOf("vesta.token.deposit")}
	RewardTokenA = &tokenContract{addressOf("vesta.token.reward-a")}
	RewardTokenB = &tokenContract{addressOf("vesta.token.reward-b")}
	Rewards      = &rewardsContract{addressOf("vesta.rewards")}
	Distributor  = &distributorContract{addressOf("vesta.distributor")}
	Markets      = &addrlistContract{addressOf("vesta.markets")}

	// Escrow is the plain sink receiving distribution residuals.
	Escrow = addressOf("vesta.escrow")
)

type (
	tokenContract       struct{ Address vesta.Address }
	rewardsContract     struct{ Address vesta.Address }
	distributorContract struct{ Address vesta.Address }
	addrlistContract    struct{ Address vesta.Address }
)

func addressOf(name string) vesta.Address {
	hash := vesta.Blake2b([]byte(name))
	return vesta.BytesToAddress(hash.Bytes()[12:])
}

func (c *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(c.Address, state)
}

func (c *rewardsContract) WithState(state *state.State) *rewards.Rewards {
	return rewards.New(c.Address, state)
}

func (c *distributorContract) WithState(state *state.State) *distributor.Distributor {
	return distributor.New(c.Address, state)
}

func (c *addrlistContract) WithState(state *state.State) *addrlist.List {
	return addrlist.New(c.Address, state)
}

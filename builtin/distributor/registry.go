// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

// Receiver is advised after a distribution pays its destination, with the
// amounts of each token it just received. The advice is best-effort: an error
// reverts only the receiver's own mutations, never the distribution.
type Receiver interface {
	OnRewardsReceived(st *state.State, amountA, amountB *big.Int, now uint64) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(st *state.State, amountA, amountB *big.Int, now uint64) error

func (f ReceiverFunc) OnRewardsReceived(st *state.State, amountA, amountB *big.Int, now uint64) error {
	return f(st, amountA, amountB, now)
}

// Registry maps destination addresses to their receivers.
// Destinations without a receiver are paid without advice.
type Registry struct {
	receivers map[vesta.Address]Receiver
}

// NewRegistry create an empty registry.
func NewRegistry() *Registry {
	return &Registry{receivers: make(map[vesta.Address]Receiver)}
}

// Register binds a receiver to a destination address.
func (r *Registry) Register(addr vesta.Address, receiver Receiver) {
	r.receivers[addr] = receiver
}

func (r *Registry) lookup(addr vesta.Address) Receiver {
	if r == nil {
		return nil
	}
	return r.receivers[addr]
}

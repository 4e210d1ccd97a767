// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"

	"github.com/vestalabs/vesta/state"
)

// Runtime serializes externally-triggered calls against one state instance
// and gives each call all-or-nothing semantics: a call that returns an error
// leaves no trace in state, a successful call is committed as a whole.
type Runtime struct {
	mu    sync.Mutex
	state *state.State
}

// New create a runtime bound to the given state.
func New(state *state.State) *Runtime {
	return &Runtime{state: state}
}

// Execute runs a state-mutating call.
// Mutations are reverted if fn returns an error, committed otherwise.
func (rt *Runtime) Execute(fn func(*state.State) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rev := rt.state.NewCheckpoint()
	if err := fn(rt.state); err != nil {
		rt.state.RevertTo(rev)
		return err
	}
	return rt.state.Commit()
}

// Read runs a read-only call. Any mutation fn makes is discarded.
func (rt *Runtime) Read(fn func(*state.State) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rev := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(rev)
	return fn(rt.state)
}

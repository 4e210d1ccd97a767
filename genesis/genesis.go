// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds a fresh world state with the builtin contracts,
// token supplies and fan-out wiring.
package genesis

import (
	"encoding/binary"

	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

// Genesis is a named world state preset.
type Genesis struct {
	builder *Builder
	id      vesta.Bytes32
	name    string
}

func newGenesis(name string, builder *Builder) *Genesis {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], builder.timestamp)
	id := vesta.Blake2b([]byte(name), ts[:])
	return &Genesis{builder, id, name}
}

// Build seeds the given state and commits.
func (g *Genesis) Build(state *state.State) error {
	return g.builder.Build(state)
}

// ID identifies the preset.
func (g *Genesis) ID() vesta.Bytes32 {
	return g.id
}

// Name returns the preset name.
func (g *Genesis) Name() string {
	return g.name
}

// LaunchTime returns the preset launch timestamp.
func (g *Genesis) LaunchTime() uint64 {
	return g.builder.timestamp
}

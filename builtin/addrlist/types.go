// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package addrlist

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vestalabs/vesta/vesta"
)

// entry links a member into the list.
type entry struct {
	Listed bool
	Prev   *vesta.Address `rlp:"nil"`
	Next   *vesta.Address `rlp:"nil"`
}

func (e *entry) Encode() ([]byte, error) {
	if e.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(e)
}

func (e *entry) Decode(data []byte) error {
	if len(data) == 0 {
		*e = entry{}
		return nil
	}
	return rlp.DecodeBytes(data, e)
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *entry) IsEmpty() bool {
	return !e.Listed && e.Prev == nil && e.Next == nil
}

type addressPtr struct {
	Address *vesta.Address `rlp:"nil"`
}

func (ap *addressPtr) Encode() ([]byte, error) {
	if ap.Address == nil {
		return nil, nil
	}
	return rlp.EncodeToBytes(&ap.Address)
}

func (ap *addressPtr) Decode(data []byte) error {
	if len(data) == 0 {
		ap.Address = nil
		return nil
	}
	return rlp.DecodeBytes(data, &ap.Address)
}

type count struct {
	N uint64
}

func (c *count) Encode() ([]byte, error) {
	if c.N == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(c.N)
}

func (c *count) Decode(data []byte) error {
	if len(data) == 0 {
		c.N = 0
		return nil
	}
	return rlp.DecodeBytes(data, &c.N)
}

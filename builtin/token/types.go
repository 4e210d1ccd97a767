// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// amount storage codec for a big.Int slot. A zero value releases the slot.
type amount struct {
	Int *big.Int
}

func (a *amount) Encode() ([]byte, error) {
	if a.Int == nil || a.Int.Sign() == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(a.Int)
}

func (a *amount) Decode(data []byte) error {
	if len(data) == 0 {
		a.Int = &big.Int{}
		return nil
	}
	a.Int = &big.Int{}
	return rlp.DecodeBytes(data, a.Int)
}

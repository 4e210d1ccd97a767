// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vestalabs/vesta/vesta"
)

// Entry is one fan-out payout: destination and fixed amounts per token.
type Entry struct {
	Destination vesta.Address `json:"destination"`
	AmountA     *big.Int      `json:"amountA"`
	AmountB     *big.Int      `json:"amountB"`
}

func (e *Entry) Encode() ([]byte, error) {
	if e.Destination.IsZero() &&
		(e.AmountA == nil || e.AmountA.Sign() == 0) &&
		(e.AmountB == nil || e.AmountB.Sign() == 0) {
		return nil, nil
	}
	return rlp.EncodeToBytes(e)
}

func (e *Entry) Decode(data []byte) error {
	if len(data) == 0 {
		*e = Entry{AmountA: &big.Int{}, AmountB: &big.Int{}}
		return nil
	}
	return rlp.DecodeBytes(data, e)
}

// config is the administrative state of the fan-out.
type config struct {
	Owner     vesta.Address
	Authority vesta.Address
	TokenA    vesta.Address
	TokenB    vesta.Address
	Escrow    vesta.Address
}

func (c *config) Encode() ([]byte, error) {
	if c.Owner.IsZero() &&
		c.Authority.IsZero() &&
		c.TokenA.IsZero() &&
		c.TokenB.IsZero() &&
		c.Escrow.IsZero() {
		return nil, nil
	}
	return rlp.EncodeToBytes(c)
}

func (c *config) Decode(data []byte) error {
	if len(data) == 0 {
		*c = config{}
		return nil
	}
	return rlp.DecodeBytes(data, c)
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

// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/vestalabs/vesta/builtin/reverts"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var totalSupplyKey = vesta.Blake2b([]byte("total-supply"))

func accountKey(addr vesta.Address) vesta.Bytes32 {
	return vesta.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}

func allowanceKey(owner, spender vesta.Address) vesta.Bytes32 {
	return vesta.Blake2b(owner.Bytes(), spender.Bytes())
}

// Token is a fungible-balance ledger bound to a token address.
// Balances, allowances and total supply live in the token's own storage.
type Token struct {
	addr  vesta.Address
	state *state.State
}

// New create a new instance.
func New(addr vesta.Address, state *state.State) *Token {
	return &Token{addr, state}
}

// Address returns the token address.
func (t *Token) Address() vesta.Address {
	return t.addr
}

func (t *Token) getAmount(key vesta.Bytes32) (*big.Int, error) {
	var v amount
	if err := t.state.DecodeStorage(t.addr, key, v.Decode); err != nil {
		return nil, err
	}
	return v.Int, nil
}

func (t *Token) setAmount(key vesta.Bytes32, val *big.Int) error {
	return t.state.EncodeStorage(t.addr, key, (&amount{val}).Encode)
}

// TotalSupply returns the amount ever minted.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.getAmount(totalSupplyKey)
}

// BalanceOf returns balance of an account.
func (t *Token) BalanceOf(addr vesta.Address) (*big.Int, error) {
	return t.getAmount(accountKey(addr))
}

// Mint credits an account and grows total supply.
// Intended for genesis and test setup only.
func (t *Token) Mint(to vesta.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.setAmount(accountKey(to), new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	supply, err := t.TotalSupply()
	if err != nil {
		return err
	}
	return t.setAmount(totalSupplyKey, new(big.Int).Add(supply, amount))
}

// Transfer moves amount from one account to another.
// A zero amount is a no-op.
func (t *Token) Transfer(from, to vesta.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	if err := t.setAmount(accountKey(from), new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	return t.setAmount(accountKey(to), new(big.Int).Add(toBal, amount))
}

// Approve lets spender move up to amount from owner's balance via TransferFrom.
func (t *Token) Approve(owner, spender vesta.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	return t.setAmount(allowanceKey(owner, spender), amount)
}

// Allowance returns the remaining amount spender may move from owner.
func (t *Token) Allowance(owner, spender vesta.Address) (*big.Int, error) {
	return t.getAmount(allowanceKey(owner, spender))
}

// TransferFrom moves amount from 'from' to 'to', charged against
// spender's allowance.
func (t *Token) TransferFrom(spender, from, to vesta.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientAllowance
	}
	if err := t.setAmount(allowanceKey(from, spender), new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}
	return t.Transfer(from, to, amount)
}

// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vestalabs/vesta/vesta"
)

type (
	// pool is the pool-wide accrual state, one slot per ledger.
	pool struct {
		TotalStaked          *big.Int
		RewardRateA          *big.Int
		RewardRateB          *big.Int
		RewardPerUnitAStored *big.Int
		RewardPerUnitBStored *big.Int
		PeriodFinish         uint64
		LastUpdateTime       uint64
		RewardsDuration      uint64
	}

	// account is per-staker state, created on first stake, never deleted.
	account struct {
		Balance *big.Int

		// checkpoint against the pool counters
		PaidA    *big.Int
		PaidB    *big.Int
		AccruedA *big.Int
		AccruedB *big.Int
	}

	// config is the administrative state of the ledger.
	config struct {
		Owner         vesta.Address
		RateAuthority vesta.Address
		StakingToken  vesta.Address
		RewardTokenA  vesta.Address
		RewardTokenB  vesta.Address
		Paused        bool
	}
)

func (p *pool) Encode() ([]byte, error) {
	if p.TotalStaked.Sign() == 0 &&
		p.RewardRateA.Sign() == 0 &&
		p.RewardRateB.Sign() == 0 &&
		p.RewardPerUnitAStored.Sign() == 0 &&
		p.RewardPerUnitBStored.Sign() == 0 &&
		p.PeriodFinish == 0 &&
		p.LastUpdateTime == 0 &&
		p.RewardsDuration == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(p)
}

func (p *pool) Decode(data []byte) error {
	if len(data) == 0 {
		*p = pool{
			TotalStaked:          &big.Int{},
			RewardRateA:          &big.Int{},
			RewardRateB:          &big.Int{},
			RewardPerUnitAStored: &big.Int{},
			RewardPerUnitBStored: &big.Int{},
		}
		return nil
	}
	return rlp.DecodeBytes(data, p)
}

// applicableTime clamps now into the current reward period.
func (p *pool) applicableTime(now uint64) uint64 {
	if now < p.PeriodFinish {
		return now
	}
	return p.PeriodFinish
}

// rewardPerUnit projects a cumulative reward-per-staked-unit counter to now.
func (p *pool) rewardPerUnit(stored, rate *big.Int, now uint64) *big.Int {
	at := p.applicableTime(now)
	if p.TotalStaked.Sign() == 0 || at <= p.LastUpdateTime {
		return new(big.Int).Set(stored)
	}
	x := new(big.Int).SetUint64(at - p.LastUpdateTime)
	x.Mul(x, rate)
	x.Mul(x, vesta.AccrualScale)
	x.Div(x, p.TotalStaked)
	return x.Add(x, stored)
}

// checkpoint advances the stored counters to now.
// Must run before any balance or rate mutation; TotalStaked read here is the
// pre-mutation value, which is what makes interleaved stakes fair.
func (p *pool) checkpoint(now uint64) {
	p.RewardPerUnitAStored = p.rewardPerUnit(p.RewardPerUnitAStored, p.RewardRateA, now)
	p.RewardPerUnitBStored = p.rewardPerUnit(p.RewardPerUnitBStored, p.RewardRateB, now)
	if at := p.applicableTime(now); at > p.LastUpdateTime {
		p.LastUpdateTime = at
	}
}

func (a *account) Encode() ([]byte, error) {
	if a.Balance.Sign() == 0 &&
		a.PaidA.Sign() == 0 &&
		a.PaidB.Sign() == 0 &&
		a.AccruedA.Sign() == 0 &&
		a.AccruedB.Sign() == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(a)
}

func (a *account) Decode(data []byte) error {
	if len(data) == 0 {
		*a = account{&big.Int{}, &big.Int{}, &big.Int{}, &big.Int{}, &big.Int{}}
		return nil
	}
	return rlp.DecodeBytes(data, a)
}

// earned computes balance*(perUnit-paid)/scale + accrued.
func earned(balance, perUnit, paid, accrued *big.Int) *big.Int {
	x := new(big.Int).Sub(perUnit, paid)
	x.Mul(x, balance)
	x.Div(x, vesta.AccrualScale)
	return x.Add(x, accrued)
}

// checkpoint snapshots the account against the just-updated pool counters.
func (a *account) checkpoint(p *pool) {
	a.AccruedA = earned(a.Balance, p.RewardPerUnitAStored, a.PaidA, a.AccruedA)
	a.AccruedB = earned(a.Balance, p.RewardPerUnitBStored, a.PaidB, a.AccruedB)
	a.PaidA = new(big.Int).Set(p.RewardPerUnitAStored)
	a.PaidB = new(big.Int).Set(p.RewardPerUnitBStored)
}

func (c *config) Encode() ([]byte, error) {
	if c.Owner.IsZero() &&
		c.RateAuthority.IsZero() &&
		c.StakingToken.IsZero() &&
		c.RewardTokenA.IsZero() &&
		c.RewardTokenB.IsZero() &&
		!c.Paused {
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

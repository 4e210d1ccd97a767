// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the dual-token staking rewards ledger.
//
// Reward accrual is checkpoint based: a pool-wide cumulative
// reward-per-staked-unit counter is advanced lazily on every
// balance-changing call, then the calling account is snapshotted against the
// advanced counter. No operation ever iterates over stakers.
package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vestalabs/vesta/builtin/reverts"
	"github.com/vestalabs/vesta/builtin/token"
	"github.com/vestalabs/vesta/log"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var logger = log.WithContext("pkg", "rewards")

var (
	poolKey   = vesta.Blake2b([]byte("pool"))
	configKey = vesta.Blake2b([]byte("config"))
	lockKey   = vesta.Blake2b([]byte("lock"))

	lockTaken = vesta.BytesToBytes32([]byte{1})
)

func accountKey(addr vesta.Address) vesta.Bytes32 {
	return vesta.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}

// Rewards is the staking rewards ledger bound to a contract address.
// Deposit and reward tokens held in custody sit at the ledger's own address
// in the respective token ledgers.
type Rewards struct {
	addr  vesta.Address
	state *state.State
}

// New create a new instance.
func New(addr vesta.Address, state *state.State) *Rewards {
	return &Rewards{addr, state}
}

// Address returns the ledger address.
func (r *Rewards) Address() vesta.Address {
	return r.addr
}

func (r *Rewards) getPool() (*pool, error) {
	var p pool
	if err := r.state.DecodeStorage(r.addr, poolKey, p.Decode); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Rewards) setPool(p *pool) error {
	return r.state.EncodeStorage(r.addr, poolKey, p.Encode)
}

func (r *Rewards) getAccount(addr vesta.Address) (*account, error) {
	var a account
	if err := r.state.DecodeStorage(r.addr, accountKey(addr), a.Decode); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Rewards) setAccount(addr vesta.Address, a *account) error {
	return r.state.EncodeStorage(r.addr, accountKey(addr), a.Encode)
}

func (r *Rewards) getConfig() (*config, error) {
	var c config
	if err := r.state.DecodeStorage(r.addr, configKey, c.Decode); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Rewards) setConfig(c *config) error {
	return r.state.EncodeStorage(r.addr, configKey, c.Encode)
}

// enter takes the reentrancy lock.
// A nested call into any guarded operation fails with ErrReentrancy.
func (r *Rewards) enter() error {
	v, err := r.state.GetStorage(r.addr, lockKey)
	if err != nil {
		return err
	}
	if !v.IsZero() {
		return reverts.ErrReentrancy
	}
	r.state.SetStorage(r.addr, lockKey, lockTaken)
	return nil
}

func (r *Rewards) leave() {
	r.state.SetStorage(r.addr, lockKey, vesta.Bytes32{})
}

// Initialize seeds the ledger configuration. Called once at genesis.
func (r *Rewards) Initialize(owner, rateAuthority, stakingToken, rewardTokenA, rewardTokenB vesta.Address, duration uint64) error {
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	if !cfg.Owner.IsZero() {
		return errors.New("rewards: already initialized")
	}
	if owner.IsZero() {
		return reverts.ErrInvalidDestination
	}
	if duration == 0 {
		return reverts.ErrInvalidAmount
	}
	if err := r.setConfig(&config{
		Owner:         owner,
		RateAuthority: rateAuthority,
		StakingToken:  stakingToken,
		RewardTokenA:  rewardTokenA,
		RewardTokenB:  rewardTokenB,
	}); err != nil {
		return err
	}
	p, err := r.getPool()
	if err != nil {
		return err
	}
	p.RewardsDuration = duration
	return r.setPool(p)
}

// checkpoint advances the pool to now and, when acct is non-nil, snapshots
// the account against the advanced counters. Global state is written back;
// the account is returned for the caller to mutate and store.
func (r *Rewards) checkpoint(addr *vesta.Address, now uint64) (*pool, *account, error) {
	p, err := r.getPool()
	if err != nil {
		return nil, nil, err
	}
	p.checkpoint(now)
	if err := r.setPool(p); err != nil {
		return nil, nil, err
	}
	if addr == nil {
		return p, nil, nil
	}
	acc, err := r.getAccount(*addr)
	if err != nil {
		return nil, nil, err
	}
	acc.checkpoint(p)
	return p, acc, nil
}

// Stake locks amount of the deposit token for caller.
func (r *Rewards) Stake(caller vesta.Address, amount *big.Int, now uint64) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()

	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	if cfg.Paused {
		return reverts.ErrPaused
	}

	p, acc, err := r.checkpoint(&caller, now)
	if err != nil {
		return err
	}
	p.TotalStaked = new(big.Int).Add(p.TotalStaked, amount)
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	if err := r.setPool(p); err != nil {
		return err
	}
	if err := r.setAccount(caller, acc); err != nil {
		return err
	}

	if err := token.New(cfg.StakingToken, r.state).Transfer(caller, r.addr, amount); err != nil {
		return reverts.WithCause(reverts.ErrTransferFailed, err)
	}
	return nil
}

// Withdraw unlocks amount of the deposit token back to caller.
// Available while paused.
func (r *Rewards) Withdraw(caller vesta.Address, amount *big.Int, now uint64) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	return r.withdraw(caller, amount, now)
}

func (r *Rewards) withdraw(caller vesta.Address, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	p, acc, err := r.checkpoint(&caller, now)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	p.TotalStaked = new(big.Int).Sub(p.TotalStaked, amount)
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	if err := r.setPool(p); err != nil {
		return err
	}
	if err := r.setAccount(caller, acc); err != nil {
		return err
	}

	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	if err := token.New(cfg.StakingToken, r.state).Transfer(r.addr, caller, amount); err != nil {
		return reverts.WithCause(reverts.ErrTransferFailed, err)
	}
	return nil
}

// Claim pays out accrued rewards of both tokens to caller.
// A token with nothing accrued is skipped; claiming zero is not an error.
func (r *Rewards) Claim(caller vesta.Address, now uint64) (paidA, paidB *big.Int, err error) {
	if err := r.enter(); err != nil {
		return nil, nil, err
	}
	defer r.leave()
	return r.claim(caller, now)
}

func (r *Rewards) claim(caller vesta.Address, now uint64) (paidA, paidB *big.Int, err error) {
	_, acc, err := r.checkpoint(&caller, now)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := r.getConfig()
	if err != nil {
		return nil, nil, err
	}

	paidA, paidB = &big.Int{}, &big.Int{}
	if acc.AccruedA.Sign() > 0 {
		paidA, acc.AccruedA = acc.AccruedA, &big.Int{}
	}
	if acc.AccruedB.Sign() > 0 {
		paidB, acc.AccruedB = acc.AccruedB, &big.Int{}
	}
	if err := r.setAccount(caller, acc); err != nil {
		return nil, nil, err
	}

	if paidA.Sign() > 0 {
		if err := token.New(cfg.RewardTokenA, r.state).Transfer(r.addr, caller, paidA); err != nil {
			return nil, nil, reverts.WithCause(reverts.ErrTransferFailed, err)
		}
	}
	if paidB.Sign() > 0 {
		if err := token.New(cfg.RewardTokenB, r.state).Transfer(r.addr, caller, paidB); err != nil {
			return nil, nil, reverts.WithCause(reverts.ErrTransferFailed, err)
		}
	}
	return paidA, paidB, nil
}

// Exit withdraws the caller's whole staked balance and claims all accrued
// rewards as one unit.
func (r *Rewards) Exit(caller vesta.Address, now uint64) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()

	acc, err := r.getAccount(caller)
	if err != nil {
		return err
	}
	if err := r.withdraw(caller, acc.Balance, now); err != nil {
		return err
	}
	_, _, err = r.claim(caller, now)
	return err
}

// NotifyReward folds fresh reward amounts, plus whatever the current period
// has not yet emitted, into new emission rates over a full rewards duration.
// Restricted to the rate authority.
func (r *Rewards) NotifyReward(caller vesta.Address, amountA, amountB *big.Int, now uint64) error {
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	if caller != cfg.RateAuthority {
		return reverts.ErrUnauthorized
	}
	if amountA == nil {
		amountA = &big.Int{}
	}
	if amountB == nil {
		amountB = &big.Int{}
	}
	if amountA.Sign() < 0 || amountB.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}

	p, _, err := r.checkpoint(nil, now)
	if err != nil {
		return err
	}
	if p.RewardsDuration == 0 {
		return errors.New("rewards: not initialized")
	}
	duration := new(big.Int).SetUint64(p.RewardsDuration)

	rate := func(amount, oldRate *big.Int) *big.Int {
		x := new(big.Int).Set(amount)
		if now < p.PeriodFinish {
			remaining := new(big.Int).SetUint64(p.PeriodFinish - now)
			x.Add(x, remaining.Mul(remaining, oldRate)) // roll unemitted leftover forward
		}
		return x.Div(x, duration)
	}
	rateA := rate(amountA, p.RewardRateA)
	rateB := rate(amountB, p.RewardRateB)

	// the rates must be fundable from custody over a whole duration
	for _, x := range []struct {
		tokenAddr vesta.Address
		rate      *big.Int
	}{
		{cfg.RewardTokenA, rateA},
		{cfg.RewardTokenB, rateB},
	} {
		bal, err := token.New(x.tokenAddr, r.state).BalanceOf(r.addr)
		if err != nil {
			return err
		}
		if x.rate.Cmp(new(big.Int).Div(bal, duration)) > 0 {
			return reverts.ErrRewardTooHigh
		}
	}

	p.RewardRateA = rateA
	p.RewardRateB = rateB
	p.LastUpdateTime = now
	p.PeriodFinish = now + p.RewardsDuration
	if err := r.setPool(p); err != nil {
		return err
	}

	logger.Info("reward rates updated",
		"rateA", rateA, "rateB", rateB, "periodFinish", p.PeriodFinish)
	return nil
}

// SetRewardsDuration changes the period length.
// Only allowed once the current period has finished.
func (r *Rewards) SetRewardsDuration(caller vesta.Address, duration, now uint64) error {
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	if duration == 0 {
		return reverts.ErrInvalidAmount
	}
	p, err := r.getPool()
	if err != nil {
		return err
	}
	if now <= p.PeriodFinish {
		return reverts.ErrPeriodNotFinished
	}
	p.RewardsDuration = duration
	return r.setPool(p)
}

// SetPeriodFinish overwrites the period end after a global checkpoint,
// stopping or extending emission without touching the rates. Remaining-reward
// accounting is resynced by the next NotifyReward.
func (r *Rewards) SetPeriodFinish(caller vesta.Address, timestamp, now uint64) error {
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	p, _, err := r.checkpoint(nil, now)
	if err != nil {
		return err
	}
	p.PeriodFinish = timestamp
	if err := r.setPool(p); err != nil {
		return err
	}
	logger.Info("period finish overridden", "periodFinish", timestamp)
	return nil
}

// SetPaused toggles the stake gate. Withdraw, claim and exit stay available.
func (r *Rewards) SetPaused(caller vesta.Address, paused bool) error {
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	cfg.Paused = paused
	return r.setConfig(cfg)
}

// SetRateAuthority changes the identity allowed to call NotifyReward.
func (r *Rewards) SetRateAuthority(caller, authority vesta.Address) error {
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	cfg.RateAuthority = authority
	return r.setConfig(cfg)
}

// TransferOwnership hands the ledger to a new owner.
func (r *Rewards) TransferOwnership(caller, newOwner vesta.Address) error {
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.ErrInvalidDestination
	}
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	cfg.Owner = newOwner
	return r.setConfig(cfg)
}

// RecoverToken moves tokens accidentally sent to the ledger out to the owner.
// The deposit token is off limits.
func (r *Rewards) RecoverToken(caller, tokenAddr vesta.Address, amount *big.Int) error {
	if err := r.requireOwner(caller); err != nil {
		return err
	}
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	if tokenAddr == cfg.StakingToken {
		return reverts.ErrForbiddenToken
	}
	if err := token.New(tokenAddr, r.state).Transfer(r.addr, caller, amount); err != nil {
		return reverts.WithCause(reverts.ErrTransferFailed, err)
	}
	return nil
}

func (r *Rewards) requireOwner(caller vesta.Address) error {
	cfg, err := r.getConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Owner {
		return reverts.ErrUnauthorized
	}
	return nil
}

//
// Views - no state change
//

// TotalStaked returns the sum of all staked balances.
func (r *Rewards) TotalStaked() (*big.Int, error) {
	p, err := r.getPool()
	if err != nil {
		return nil, err
	}
	return p.TotalStaked, nil
}

// BalanceOf returns the staked balance of an account.
func (r *Rewards) BalanceOf(addr vesta.Address) (*big.Int, error) {
	acc, err := r.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// RewardPerUnit projects both cumulative counters to now without mutating.
func (r *Rewards) RewardPerUnit(now uint64) (perUnitA, perUnitB *big.Int, err error) {
	p, err := r.getPool()
	if err != nil {
		return nil, nil, err
	}
	return p.rewardPerUnit(p.RewardPerUnitAStored, p.RewardRateA, now),
		p.rewardPerUnit(p.RewardPerUnitBStored, p.RewardRateB, now), nil
}

// Earned returns rewards accrued and not yet claimed by an account, per token.
func (r *Rewards) Earned(addr vesta.Address, now uint64) (earnedA, earnedB *big.Int, err error) {
	p, err := r.getPool()
	if err != nil {
		return nil, nil, err
	}
	acc, err := r.getAccount(addr)
	if err != nil {
		return nil, nil, err
	}
	perUnitA := p.rewardPerUnit(p.RewardPerUnitAStored, p.RewardRateA, now)
	perUnitB := p.rewardPerUnit(p.RewardPerUnitBStored, p.RewardRateB, now)
	return earned(acc.Balance, perUnitA, acc.PaidA, acc.AccruedA),
		earned(acc.Balance, perUnitB, acc.PaidB, acc.AccruedB), nil
}

// RewardForDuration returns total emission of a full period at current rates.
func (r *Rewards) RewardForDuration() (totalA, totalB *big.Int, err error) {
	p, err := r.getPool()
	if err != nil {
		return nil, nil, err
	}
	duration := new(big.Int).SetUint64(p.RewardsDuration)
	return new(big.Int).Mul(p.RewardRateA, duration),
		new(big.Int).Mul(p.RewardRateB, duration), nil
}

// LastTimeRewardApplicable returns min(now, periodFinish).
func (r *Rewards) LastTimeRewardApplicable(now uint64) (uint64, error) {
	p, err := r.getPool()
	if err != nil {
		return 0, err
	}
	return p.applicableTime(now), nil
}

// Status is a snapshot of pool-wide state for inspection.
type Status struct {
	TotalStaked          *big.Int      `json:"totalStaked"`
	RewardRateA          *big.Int      `json:"rewardRateA"`
	RewardRateB          *big.Int      `json:"rewardRateB"`
	RewardPerUnitAStored *big.Int      `json:"rewardPerUnitAStored"`
	RewardPerUnitBStored *big.Int      `json:"rewardPerUnitBStored"`
	PeriodFinish         uint64        `json:"periodFinish"`
	LastUpdateTime       uint64        `json:"lastUpdateTime"`
	RewardsDuration      uint64        `json:"rewardsDuration"`
	Paused               bool          `json:"paused"`
	Owner                vesta.Address `json:"owner"`
	RateAuthority        vesta.Address `json:"rateAuthority"`
	StakingToken         vesta.Address `json:"stakingToken"`
	RewardTokenA         vesta.Address `json:"rewardTokenA"`
	RewardTokenB         vesta.Address `json:"rewardTokenB"`
}

// Status returns the pool-wide snapshot.
func (r *Rewards) Status() (*Status, error) {
	p, err := r.getPool()
	if err != nil {
		return nil, err
	}
	cfg, err := r.getConfig()
	if err != nil {
		return nil, err
	}
	return &Status{
		TotalStaked:          p.TotalStaked,
		RewardRateA:          p.RewardRateA,
		RewardRateB:          p.RewardRateB,
		RewardPerUnitAStored: p.RewardPerUnitAStored,
		RewardPerUnitBStored: p.RewardPerUnitBStored,
		PeriodFinish:         p.PeriodFinish,
		LastUpdateTime:       p.LastUpdateTime,
		RewardsDuration:      p.RewardsDuration,
		Paused:               cfg.Paused,
		Owner:                cfg.Owner,
		RateAuthority:        cfg.RateAuthority,
		StakingToken:         cfg.StakingToken,
		RewardTokenA:         cfg.RewardTokenA,
		RewardTokenB:         cfg.RewardTokenB,
	}, nil
}

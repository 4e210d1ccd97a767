// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestalabs/vesta/builtin/reverts"
	"github.com/vestalabs/vesta/builtin/token"
	"github.com/vestalabs/vesta/lvldb"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var (
	owner      = vesta.BytesToAddress([]byte("owner"))
	authority  = vesta.BytesToAddress([]byte("authority"))
	staker1    = vesta.BytesToAddress([]byte("staker1"))
	staker2    = vesta.BytesToAddress([]byte("staker2"))
	depositTok = vesta.BytesToAddress([]byte("tok-deposit"))
	rewardTokA = vesta.BytesToAddress([]byte("tok-reward-a"))
	rewardTokB = vesta.BytesToAddress([]byte("tok-reward-b"))
	ledgerAddr = vesta.BytesToAddress([]byte("rewards"))
)

// newTestLedger initializes a ledger with duration, funds its reward custody
// and gives both stakers plenty of deposit tokens.
func newTestLedger(t *testing.T, duration uint64, custodyA, custodyB int64) (*state.State, *Rewards) {
	kv, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(kv)

	ledger := New(ledgerAddr, st)
	require.NoError(t, ledger.Initialize(owner, authority, depositTok, rewardTokA, rewardTokB, duration))

	for _, staker := range []vesta.Address{staker1, staker2} {
		require.NoError(t, token.New(depositTok, st).Mint(staker, big.NewInt(1_000_000)))
	}
	if custodyA > 0 {
		require.NoError(t, token.New(rewardTokA, st).Mint(ledgerAddr, big.NewInt(custodyA)))
	}
	if custodyB > 0 {
		require.NoError(t, token.New(rewardTokB, st).Mint(ledgerAddr, big.NewInt(custodyB)))
	}
	return st, ledger
}

func earnedA(t *testing.T, ledger *Rewards, addr vesta.Address, now uint64) *big.Int {
	a, _, err := ledger.Earned(addr, now)
	require.NoError(t, err)
	return a
}

func earnedB(t *testing.T, ledger *Rewards, addr vesta.Address, now uint64) *big.Int {
	_, b, err := ledger.Earned(addr, now)
	require.NoError(t, err)
	return b
}

func TestInitialize(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 0, 0)

	status, err := ledger.Status()
	require.NoError(t, err)
	assert.Equal(t, owner, status.Owner)
	assert.Equal(t, authority, status.RateAuthority)
	assert.Equal(t, uint64(100), status.RewardsDuration)
	assert.False(t, status.Paused)

	// only once
	assert.Error(t, ledger.Initialize(owner, authority, depositTok, rewardTokA, rewardTokB, 100))
}

func TestStakeWithdraw(t *testing.T) {
	st, ledger := newTestLedger(t, 100, 0, 0)

	assert.ErrorIs(t, ledger.Stake(staker1, big.NewInt(0), 0), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, ledger.Stake(staker1, big.NewInt(-1), 0), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, ledger.Stake(staker1, nil, 0), reverts.ErrInvalidAmount)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(500), 0))

	total, err := ledger.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), total)

	bal, err := ledger.BalanceOf(staker1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), bal)

	// deposit tokens moved into custody
	custody, err := token.New(depositTok, st).BalanceOf(ledgerAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), custody)

	assert.ErrorIs(t, ledger.Withdraw(staker1, big.NewInt(501), 10), reverts.ErrInsufficientBalance)
	require.NoError(t, ledger.Withdraw(staker1, big.NewInt(500), 10))

	total, err = ledger.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())

	free, err := token.New(depositTok, st).BalanceOf(staker1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), free)
}

func TestStakeBeyondFunds(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 0, 0)

	err := ledger.Stake(staker1, big.NewInt(2_000_000), 0)
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)
}

func TestConservation(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(300), 0))
	require.NoError(t, ledger.Stake(staker2, big.NewInt(200), 0))
	require.NoError(t, ledger.Withdraw(staker2, big.NewInt(50), 5))

	total, err := ledger.TotalStaked()
	require.NoError(t, err)
	bal1, err := ledger.BalanceOf(staker1)
	require.NoError(t, err)
	bal2, err := ledger.BalanceOf(staker2)
	require.NoError(t, err)
	assert.Equal(t, total, new(big.Int).Add(bal1, bal2))
}

func TestAccrualSingleStaker(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 2000)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(500), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), big.NewInt(2000), 0))

	// full period, sole staker takes the whole emission
	assert.Equal(t, big.NewInt(1000), earnedA(t, ledger, staker1, 100))
	assert.Equal(t, big.NewInt(2000), earnedB(t, ledger, staker1, 100))

	// accrual stops at period finish
	assert.Equal(t, big.NewInt(1000), earnedA(t, ledger, staker1, 500))
}

func TestAccrualTwoStakers(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	// staker2 joins halfway with an equal stake
	require.NoError(t, ledger.Stake(staker2, big.NewInt(100), 50))

	e1 := earnedA(t, ledger, staker1, 100)
	e2 := earnedA(t, ledger, staker2, 100)

	// 50s alone at 10/s, then 50s sharing half
	assert.Equal(t, big.NewInt(750), e1)
	assert.Equal(t, big.NewInt(250), e2)
	assert.Equal(t, big.NewInt(1000), new(big.Int).Add(e1, e2))
}

func TestNoDilutionOnJoin(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	before := earnedA(t, ledger, staker1, 60)
	require.NoError(t, ledger.Stake(staker2, big.NewInt(900), 60))
	after := earnedA(t, ledger, staker1, 60)

	assert.Equal(t, before, after)
}

func TestRewardPerUnitMonotone(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	prev := &big.Int{}
	for _, now := range []uint64{0, 10, 25, 50, 99, 100, 200} {
		cur, _, err := ledger.RewardPerUnit(now)
		require.NoError(t, err)
		assert.True(t, cur.Cmp(prev) >= 0, "rewardPerUnit decreased at t=%d", now)
		prev = cur
	}
}

func TestClaim(t *testing.T) {
	st, ledger := newTestLedger(t, 100, 1000, 2000)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(500), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), big.NewInt(2000), 0))

	paidA, paidB, err := ledger.Claim(staker1, 50)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), paidA)
	assert.Equal(t, big.NewInt(1000), paidB)

	balA, err := token.New(rewardTokA, st).BalanceOf(staker1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), balA)

	// nothing left right after the claim
	assert.Equal(t, 0, earnedA(t, ledger, staker1, 50).Sign())

	// claiming zero is a no-op, not an error
	paidA, paidB, err = ledger.Claim(staker1, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, paidA.Sign())
	assert.Equal(t, 0, paidB.Sign())
}

func TestExit(t *testing.T) {
	st, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(500), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	require.NoError(t, ledger.Exit(staker1, 100))

	bal, err := ledger.BalanceOf(staker1)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	free, err := token.New(depositTok, st).BalanceOf(staker1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), free)

	rew, err := token.New(rewardTokA, st).BalanceOf(staker1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), rew)

	// nothing staked, nothing to exit
	assert.ErrorIs(t, ledger.Exit(staker1, 100), reverts.ErrInvalidAmount)
}

func TestNotifyRewardAuth(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	assert.ErrorIs(t, ledger.NotifyReward(owner, big.NewInt(10), nil, 0), reverts.ErrUnauthorized)
	assert.ErrorIs(t, ledger.NotifyReward(authority, big.NewInt(-1), nil, 0), reverts.ErrInvalidAmount)
}

func TestNotifyRewardRollover(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 4000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	// halfway, 500 unemitted; topping up 1000 makes the new rate (1000+500)/100
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 50))

	status, err := ledger.Status()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(15), status.RewardRateA)
	assert.Equal(t, uint64(150), status.PeriodFinish)

	// sole staker collects both notifications in full
	assert.Equal(t, big.NewInt(2000), earnedA(t, ledger, staker1, 150))
}

func TestNotifyRewardSolvencyGuard(t *testing.T) {
	_, ledger := newTestLedger(t, 10, 1000, 0)

	// 1010 over 10s needs rate 101, custody funds only 100
	assert.ErrorIs(t, ledger.NotifyReward(authority, big.NewInt(1010), nil, 0), reverts.ErrRewardTooHigh)

	// exactly fundable
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))
}

func TestSetRewardsDuration(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	assert.ErrorIs(t, ledger.SetRewardsDuration(staker1, 50, 0), reverts.ErrUnauthorized)
	assert.ErrorIs(t, ledger.SetRewardsDuration(owner, 0, 0), reverts.ErrInvalidAmount)

	require.NoError(t, ledger.NotifyReward(authority, nil, nil, 0))

	// locked while a period is live, its finish included
	assert.ErrorIs(t, ledger.SetRewardsDuration(owner, 50, 60), reverts.ErrPeriodNotFinished)
	assert.ErrorIs(t, ledger.SetRewardsDuration(owner, 50, 100), reverts.ErrPeriodNotFinished)
	require.NoError(t, ledger.SetRewardsDuration(owner, 50, 101))

	status, err := ledger.Status()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), status.RewardsDuration)
}

func TestSetPeriodFinish(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	assert.ErrorIs(t, ledger.SetPeriodFinish(staker1, 50, 40), reverts.ErrUnauthorized)

	// cut emission short at t=50; accrual up to then is kept
	require.NoError(t, ledger.SetPeriodFinish(owner, 50, 40))
	assert.Equal(t, big.NewInt(500), earnedA(t, ledger, staker1, 100))

	status, err := ledger.Status()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), status.PeriodFinish)
	// the rate is deliberately left as is
	assert.Equal(t, big.NewInt(10), status.RewardRateA)
}

func TestPause(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 0)

	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 0))
	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0))

	assert.ErrorIs(t, ledger.SetPaused(staker1, true), reverts.ErrUnauthorized)
	require.NoError(t, ledger.SetPaused(owner, true))

	// stake gated, everything else open
	assert.ErrorIs(t, ledger.Stake(staker1, big.NewInt(100), 10), reverts.ErrPaused)
	require.NoError(t, ledger.Withdraw(staker1, big.NewInt(50), 10))
	_, _, err := ledger.Claim(staker1, 10)
	require.NoError(t, err)

	require.NoError(t, ledger.SetPaused(owner, false))
	require.NoError(t, ledger.Stake(staker1, big.NewInt(100), 10))
}

func TestAdmin(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 0, 0)

	newAuthority := vesta.BytesToAddress([]byte("authority2"))
	assert.ErrorIs(t, ledger.SetRateAuthority(staker1, newAuthority), reverts.ErrUnauthorized)
	require.NoError(t, ledger.SetRateAuthority(owner, newAuthority))
	assert.ErrorIs(t, ledger.NotifyReward(authority, nil, nil, 0), reverts.ErrUnauthorized)
	require.NoError(t, ledger.NotifyReward(newAuthority, nil, nil, 0))

	newOwner := vesta.BytesToAddress([]byte("owner2"))
	assert.ErrorIs(t, ledger.TransferOwnership(owner, vesta.Address{}), reverts.ErrInvalidDestination)
	require.NoError(t, ledger.TransferOwnership(owner, newOwner))
	assert.ErrorIs(t, ledger.SetPaused(owner, true), reverts.ErrUnauthorized)
	require.NoError(t, ledger.SetPaused(newOwner, true))
}

func TestRecoverToken(t *testing.T) {
	st, ledger := newTestLedger(t, 100, 1000, 0)

	strayTok := vesta.BytesToAddress([]byte("tok-stray"))
	require.NoError(t, token.New(strayTok, st).Mint(ledgerAddr, big.NewInt(77)))

	assert.ErrorIs(t, ledger.RecoverToken(staker1, strayTok, big.NewInt(77)), reverts.ErrUnauthorized)
	assert.ErrorIs(t, ledger.RecoverToken(owner, depositTok, big.NewInt(1)), reverts.ErrForbiddenToken)

	require.NoError(t, ledger.RecoverToken(owner, strayTok, big.NewInt(77)))
	bal, err := token.New(strayTok, st).BalanceOf(owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(77), bal)

	// reward custody is recoverable too, solvency is rechecked at next notify
	require.NoError(t, ledger.RecoverToken(owner, rewardTokA, big.NewInt(1000)))
	assert.ErrorIs(t, ledger.NotifyReward(authority, big.NewInt(1000), nil, 0), reverts.ErrRewardTooHigh)
}

func TestRewardForDuration(t *testing.T) {
	_, ledger := newTestLedger(t, 100, 1000, 500)

	require.NoError(t, ledger.NotifyReward(authority, big.NewInt(1000), big.NewInt(500), 0))

	totalA, totalB, err := ledger.RewardForDuration()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), totalA)
	assert.Equal(t, big.NewInt(500), totalB)

	at, err := ledger.LastTimeRewardApplicable(250)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), at)
}

// Seven-day period, 35000 tokens, one staker of 500 units joining at launch:
// the whole emission lands on that staker by period end.
func TestEndToEndWeek(t *testing.T) {
	const day = 24 * 3600
	const week = 7 * day

	kv, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(kv)

	scale := vesta.AccrualScale
	reward := new(big.Int).Mul(big.NewInt(35000), scale)

	ledger := New(ledgerAddr, st)
	require.NoError(t, ledger.Initialize(owner, authority, depositTok, rewardTokA, rewardTokB, week))
	require.NoError(t, token.New(depositTok, st).Mint(staker1, new(big.Int).Mul(big.NewInt(500), scale)))
	require.NoError(t, token.New(rewardTokA, st).Mint(ledgerAddr, reward))

	launch := uint64(1767225600)
	require.NoError(t, ledger.Stake(staker1, new(big.Int).Mul(big.NewInt(500), scale), launch))
	require.NoError(t, ledger.NotifyReward(authority, reward, nil, launch))

	rate := new(big.Int).Div(reward, big.NewInt(week))
	emitted := new(big.Int).Mul(rate, big.NewInt(week))

	// daily checkpoints keep the running total consistent
	for d := uint64(1); d <= 7; d++ {
		now := launch + d*day
		e := earnedA(t, ledger, staker1, now)
		expected := new(big.Int).Mul(rate, new(big.Int).SetUint64(d*day))
		assert.Equal(t, expected, e, "day %d", d)
	}

	paidA, _, err := ledger.Claim(staker1, launch+week)
	require.NoError(t, err)
	assert.Equal(t, emitted, paidA)

	// rate truncation dust stays in custody
	dust := new(big.Int).Sub(reward, emitted)
	custody, err := token.New(rewardTokA, st).BalanceOf(ledgerAddr)
	require.NoError(t, err)
	assert.Equal(t, dust, custody)
}

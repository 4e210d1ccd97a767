// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/genesis"
	"github.com/vestalabs/vesta/lvldb"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

func newTestState(t *testing.T) *state.State {
	kv, err := lvldb.NewMem()
	require.NoError(t, err)
	return state.New(kv)
}

func TestDevnet(t *testing.T) {
	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())
	assert.False(t, gene.ID().IsZero())

	// deterministic
	assert.Equal(t, gene.ID(), genesis.NewDevnet().ID())

	st := newTestState(t)
	require.NoError(t, gene.Build(st))

	accs := genesis.DevAccounts()
	require.Len(t, accs, 10)

	bal, err := builtin.DepositToken.WithState(st).BalanceOf(accs[0].Address)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(1_000_000), vesta.AccrualScale), bal)

	treasury, err := builtin.RewardTokenA.WithState(st).BalanceOf(builtin.Distributor.Address)
	require.NoError(t, err)
	assert.True(t, treasury.Sign() > 0)

	status, err := builtin.Rewards.WithState(st).Status()
	require.NoError(t, err)
	assert.Equal(t, accs[0].Address, status.Owner)
	assert.Equal(t, builtin.Distributor.Address, status.RateAuthority)
	assert.Equal(t, vesta.InitialRewardsDuration, status.RewardsDuration)

	dStatus, err := builtin.Distributor.WithState(st).Status()
	require.NoError(t, err)
	assert.Equal(t, builtin.Escrow, dStatus.Escrow)

	listed, err := builtin.Markets.WithState(st).Contains(builtin.Rewards.Address)
	require.NoError(t, err)
	assert.True(t, listed)

	// stakers can use the ledger right away
	stake := new(big.Int).Mul(big.NewInt(10), vesta.AccrualScale)
	require.NoError(t, builtin.Rewards.WithState(st).Stake(accs[1].Address, stake, gene.LaunchTime()))
}

func TestCustomnet(t *testing.T) {
	profile := `
name: testnet
launchTime: 1767225600
owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
rewardsDuration: 3600
accounts:
  - address: "0xd3ae78222beadb038203be21ed5ce7c9b1bff602"
    deposit: "1000"
treasury:
  rewardA: "5000"
  rewardB: "2500"
entries:
  - destination: "0x733b7269443c70de16bbf9b0615307884bcc5636"
    amountA: "100"
    amountB: "50"
`
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o600))

	custom, err := genesis.LoadCustomGenesis(path)
	require.NoError(t, err)
	gene, err := genesis.NewCustomNet(custom)
	require.NoError(t, err)
	assert.Equal(t, "testnet", gene.Name())
	assert.NotEqual(t, genesis.NewDevnet().ID(), gene.ID())

	st := newTestState(t)
	require.NoError(t, gene.Build(st))

	owner := vesta.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	staker := vesta.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")

	bal, err := builtin.DepositToken.WithState(st).BalanceOf(staker)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), bal)

	treasury, err := builtin.RewardTokenA.WithState(st).BalanceOf(builtin.Distributor.Address)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5000), treasury)

	status, err := builtin.Rewards.WithState(st).Status()
	require.NoError(t, err)
	assert.Equal(t, owner, status.Owner)
	assert.Equal(t, uint64(3600), status.RewardsDuration)

	n, err := builtin.Distributor.WithState(st).Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestCustomnetRejectsBadProfile(t *testing.T) {
	_, err := genesis.NewCustomNet(&genesis.CustomGenesis{Owner: "nonsense"})
	assert.Error(t, err)

	_, err = genesis.NewCustomNet(&genesis.CustomGenesis{
		Owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed",
		Accounts: []genesis.Account{
			{Address: "0xd3ae78222beadb038203be21ed5ce7c9b1bff602", Deposit: "-5"},
		},
	})
	assert.Error(t, err)

	_, err = genesis.LoadCustomGenesis(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

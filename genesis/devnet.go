// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

// DevAccount account for development.
type DevAccount struct {
	Address    vesta.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for dev mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"99f0500549792796c14fed62011a51081dc5b5e68fe8bd8a13b86be829c4fd36",
		"7b067f53d350f1cf20ec13df416b7b73e88a1dc7331bc904b92108b1e76a08b1",
		"f4a1a17039216f535d42ec23732c79943ffb45a089fbb78a14daad0dae93e991",
		"35b5cc144faca7d7f220fca7ad3420090861d5231d80eb23e1013426847371c4",
		"10c851d8d6c6ed9e6f625742063f292f4cf57c2dbeea8099fa3aca53ef90aef1",
		"2dd2c5b5d65913214783a6bd5679d8c6ef29ca9f2e2eae98b4add061d0b85ea0",
		"e1b72a1761ae189c10ec3783dd124b902ffd8c6b93cd9ff443d5490ce70047ff",
		"35cbc5ac0c3a2de0eb4f230ced958fd6a6c19ed36b5d2b1803a9f11978f96072",
		"b639c258292096306d2f60bc1a8da9bc434ad37f15cd44ee9a2526685f592220",
		"9d68178cdc934178cca0a0051f40ed46be153cf23cb1805b59cc612c0ad2bbe0",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{vesta.BytesToAddress(addr.Bytes()), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet create genesis for dev mode. Every dev account is funded with
// deposit tokens, the first one owns the ledger and the fan-out, and the
// fan-out holds a reward treasury ready to distribute.
func NewDevnet() *Genesis {
	launchTime := uint64(1767225600) // 'Thu Jan 01 2026 00:00:00 GMT+0000'
	owner := DevAccounts()[0].Address

	deposit := new(big.Int).Mul(big.NewInt(1_000_000), vesta.AccrualScale)
	treasury := new(big.Int).Mul(big.NewInt(10_000_000), vesta.AccrualScale)

	builder := new(Builder).
		Timestamp(launchTime).
		State(func(state *state.State) error {
			for _, a := range DevAccounts() {
				if err := builtin.DepositToken.WithState(state).Mint(a.Address, deposit); err != nil {
					return err
				}
			}
			if err := builtin.RewardTokenA.WithState(state).Mint(builtin.Distributor.Address, treasury); err != nil {
				return err
			}
			return builtin.RewardTokenB.WithState(state).Mint(builtin.Distributor.Address, treasury)
		}).
		State(func(state *state.State) error {
			return builtin.Rewards.WithState(state).Initialize(
				owner,
				builtin.Distributor.Address,
				builtin.DepositToken.Address,
				builtin.RewardTokenA.Address,
				builtin.RewardTokenB.Address,
				vesta.InitialRewardsDuration,
			)
		}).
		State(func(state *state.State) error {
			return builtin.Distributor.WithState(state).Initialize(
				owner,
				owner,
				builtin.RewardTokenA.Address,
				builtin.RewardTokenB.Address,
				builtin.Escrow,
			)
		}).
		State(func(state *state.State) error {
			_, err := builtin.Markets.WithState(state).Add(builtin.Rewards.Address)
			return err
		})

	return newGenesis("devnet", builder)
}

// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

// CustomGenesis is a user customized network profile.
type CustomGenesis struct {
	Name            string    `yaml:"name"`
	LaunchTime      uint64    `yaml:"launchTime"`
	Owner           string    `yaml:"owner"`
	RateAuthority   string    `yaml:"rateAuthority"`
	RewardsDuration uint64    `yaml:"rewardsDuration"`
	Accounts        []Account `yaml:"accounts"`
	Treasury        Treasury  `yaml:"treasury"`
	Entries         []Entry   `yaml:"entries"`
}

// Account is a pre-funded account.
type Account struct {
	Address string `yaml:"address"`
	Deposit string `yaml:"deposit"`
	RewardA string `yaml:"rewardA"`
	RewardB string `yaml:"rewardB"`
}

// Treasury is the reward balance pre-minted to the fan-out.
type Treasury struct {
	RewardA string `yaml:"rewardA"`
	RewardB string `yaml:"rewardB"`
}

// Entry is a pre-configured fan-out entry.
type Entry struct {
	Destination string `yaml:"destination"`
	AmountA     string `yaml:"amountA"`
	AmountB     string `yaml:"amountB"`
}

// LoadCustomGenesis reads a yaml profile from path.
func LoadCustomGenesis(path string) (*CustomGenesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read genesis profile")
	}
	var gen CustomGenesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.WithMessage(err, "parse genesis profile")
	}
	return &gen, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := ethmath.ParseBig256(s)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative amount %q", s)
	}
	return v, nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	name := gen.Name
	if name == "" {
		name = "customnet"
	}
	owner, err := vesta.ParseAddress(gen.Owner)
	if err != nil {
		return nil, errors.WithMessage(err, "owner")
	}
	rateAuthority := builtin.Distributor.Address
	if gen.RateAuthority != "" {
		if rateAuthority, err = vesta.ParseAddress(gen.RateAuthority); err != nil {
			return nil, errors.WithMessage(err, "rateAuthority")
		}
	}
	duration := gen.RewardsDuration
	if duration == 0 {
		duration = vesta.InitialRewardsDuration
	}

	type funding struct {
		addr                      vesta.Address
		deposit, rewardA, rewardB *big.Int
	}
	fundings := make([]funding, 0, len(gen.Accounts))
	for _, a := range gen.Accounts {
		addr, err := vesta.ParseAddress(a.Address)
		if err != nil {
			return nil, errors.WithMessage(err, "account address")
		}
		f := funding{addr: addr}
		if f.deposit, err = parseAmount(a.Deposit); err != nil {
			return nil, err
		}
		if f.rewardA, err = parseAmount(a.RewardA); err != nil {
			return nil, err
		}
		if f.rewardB, err = parseAmount(a.RewardB); err != nil {
			return nil, err
		}
		fundings = append(fundings, f)
	}
	treasuryA, err := parseAmount(gen.Treasury.RewardA)
	if err != nil {
		return nil, err
	}
	treasuryB, err := parseAmount(gen.Treasury.RewardB)
	if err != nil {
		return nil, err
	}

	type fanout struct {
		destination      vesta.Address
		amountA, amountB *big.Int
	}
	fanouts := make([]fanout, 0, len(gen.Entries))
	for _, e := range gen.Entries {
		dest, err := vesta.ParseAddress(e.Destination)
		if err != nil {
			return nil, errors.WithMessage(err, "entry destination")
		}
		f := fanout{destination: dest}
		if f.amountA, err = parseAmount(e.AmountA); err != nil {
			return nil, err
		}
		if f.amountB, err = parseAmount(e.AmountB); err != nil {
			return nil, err
		}
		fanouts = append(fanouts, f)
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		State(func(state *state.State) error {
			for _, f := range fundings {
				if f.deposit.Sign() > 0 {
					if err := builtin.DepositToken.WithState(state).Mint(f.addr, f.deposit); err != nil {
						return err
					}
				}
				if f.rewardA.Sign() > 0 {
					if err := builtin.RewardTokenA.WithState(state).Mint(f.addr, f.rewardA); err != nil {
						return err
					}
				}
				if f.rewardB.Sign() > 0 {
					if err := builtin.RewardTokenB.WithState(state).Mint(f.addr, f.rewardB); err != nil {
						return err
					}
				}
			}
			if treasuryA.Sign() > 0 {
				if err := builtin.RewardTokenA.WithState(state).Mint(builtin.Distributor.Address, treasuryA); err != nil {
					return err
				}
			}
			if treasuryB.Sign() > 0 {
				if err := builtin.RewardTokenB.WithState(state).Mint(builtin.Distributor.Address, treasuryB); err != nil {
					return err
				}
			}
			return nil
		}).
		State(func(state *state.State) error {
			return builtin.Rewards.WithState(state).Initialize(
				owner,
				rateAuthority,
				builtin.DepositToken.Address,
				builtin.RewardTokenA.Address,
				builtin.RewardTokenB.Address,
				duration,
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
			for _, f := range fanouts {
				if err := builtin.Distributor.WithState(state).AddEntry(owner, f.amountA, f.amountB, f.destination); err != nil {
					return err
				}
			}
			_, err := builtin.Markets.WithState(state).Add(builtin.Rewards.Address)
			return err
		})

	return newGenesis(name, builder), nil
}

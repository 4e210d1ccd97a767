// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vestalabs/vesta/api/utils"
	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/builtin/rewards"
	"github.com/vestalabs/vesta/metrics"
	"github.com/vestalabs/vesta/runtime"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var (
	metricStakes      = metrics.Counter("stake_count")
	metricWithdraws   = metrics.Counter("withdraw_count")
	metricClaims      = metrics.Counter("claim_count")
	metricTotalStaked = metrics.Gauge("total_staked")
)

// Rewards serves the staking rewards ledger over HTTP.
type Rewards struct {
	rt  *runtime.Runtime
	now func() uint64
}

// New create the handler group.
func New(rt *runtime.Runtime, now func() uint64) *Rewards {
	return &Rewards{rt, now}
}

func (r *Rewards) ledger(st *state.State) *rewards.Rewards {
	return builtin.Rewards.WithState(st)
}

func (r *Rewards) updateTotalStakedGauge(st *state.State) {
	total, err := r.ledger(st).TotalStaked()
	if err == nil && total.IsInt64() {
		metricTotalStaked.Set(total.Int64())
	}
}

func (r *Rewards) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address         `json:"caller"`
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	if err := r.rt.Execute(func(st *state.State) error {
		if err := r.ledger(st).Stake(body.Caller, (*big.Int)(body.Amount), now); err != nil {
			return err
		}
		r.updateTotalStakedGauge(st)
		return nil
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	metricStakes.Add(1)
	return r.writeAccount(w, body.Caller)
}

func (r *Rewards) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address         `json:"caller"`
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	if err := r.rt.Execute(func(st *state.State) error {
		if err := r.ledger(st).Withdraw(body.Caller, (*big.Int)(body.Amount), now); err != nil {
			return err
		}
		r.updateTotalStakedGauge(st)
		return nil
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	metricWithdraws.Add(1)
	return r.writeAccount(w, body.Caller)
}

func (r *Rewards) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address `json:"caller"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	var paidA, paidB *big.Int
	if err := r.rt.Execute(func(st *state.State) (err error) {
		paidA, paidB, err = r.ledger(st).Claim(body.Caller, now)
		return err
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	metricClaims.Add(1)
	return utils.WriteJSON(w, utils.M{
		"paidA": (*math.HexOrDecimal256)(paidA),
		"paidB": (*math.HexOrDecimal256)(paidB),
	})
}

func (r *Rewards) handleExit(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address `json:"caller"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	if err := r.rt.Execute(func(st *state.State) error {
		if err := r.ledger(st).Exit(body.Caller, now); err != nil {
			return err
		}
		r.updateTotalStakedGauge(st)
		return nil
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	metricWithdraws.Add(1)
	metricClaims.Add(1)
	return r.writeAccount(w, body.Caller)
}

func (r *Rewards) handleNotify(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller  vesta.Address         `json:"caller"`
		AmountA *math.HexOrDecimal256 `json:"amountA"`
		AmountB *math.HexOrDecimal256 `json:"amountB"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).NotifyReward(body.Caller, (*big.Int)(body.AmountA), (*big.Int)(body.AmountB), now)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return r.writeStatus(w)
}

func (r *Rewards) handleSetDuration(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller   vesta.Address `json:"caller"`
		Duration uint64        `json:"duration"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).SetRewardsDuration(body.Caller, body.Duration, now)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return r.writeStatus(w)
}

func (r *Rewards) handleSetPeriodFinish(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller    vesta.Address `json:"caller"`
		Timestamp uint64        `json:"timestamp"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := r.now()
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).SetPeriodFinish(body.Caller, body.Timestamp, now)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return r.writeStatus(w)
}

func (r *Rewards) handleSetPaused(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address `json:"caller"`
		Paused bool          `json:"paused"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).SetPaused(body.Caller, body.Paused)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return r.writeStatus(w)
}

func (r *Rewards) handleSetRateAuthority(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller    vesta.Address `json:"caller"`
		Authority vesta.Address `json:"authority"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).SetRateAuthority(body.Caller, body.Authority)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return r.writeStatus(w)
}

func (r *Rewards) handleTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller   vesta.Address `json:"caller"`
		NewOwner vesta.Address `json:"newOwner"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).TransferOwnership(body.Caller, body.NewOwner)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return r.writeStatus(w)
}

func (r *Rewards) handleRecoverToken(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address         `json:"caller"`
		Token  vesta.Address         `json:"token"`
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := r.rt.Execute(func(st *state.State) error {
		return r.ledger(st).RecoverToken(body.Caller, body.Token, (*big.Int)(body.Amount))
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return utils.WriteJSON(w, utils.M{"recovered": true})
}

func (r *Rewards) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	return r.writeStatus(w)
}

func (r *Rewards) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := vesta.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return r.writeAccount(w, addr)
}

func (r *Rewards) writeAccount(w http.ResponseWriter, addr vesta.Address) error {
	now := r.now()
	var balance, earnedA, earnedB *big.Int
	if err := r.rt.Read(func(st *state.State) (err error) {
		ledger := r.ledger(st)
		if balance, err = ledger.BalanceOf(addr); err != nil {
			return err
		}
		earnedA, earnedB, err = ledger.Earned(addr, now)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"address": addr,
		"balance": (*math.HexOrDecimal256)(balance),
		"earnedA": (*math.HexOrDecimal256)(earnedA),
		"earnedB": (*math.HexOrDecimal256)(earnedB),
	})
}

func (r *Rewards) writeStatus(w http.ResponseWriter) error {
	var status *rewards.Status
	if err := r.rt.Read(func(st *state.State) (err error) {
		status, err = r.ledger(st).Status()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

// Mount attaches handlers to the router under pathPrefix.
func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetStatus))
	sub.Path("/accounts/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetAccount))
	sub.Path("/stake").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleStake))
	sub.Path("/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleWithdraw))
	sub.Path("/claim").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleClaim))
	sub.Path("/exit").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleExit))
	sub.Path("/notify").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleNotify))
	sub.Path("/admin/duration").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleSetDuration))
	sub.Path("/admin/period-finish").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleSetPeriodFinish))
	sub.Path("/admin/paused").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleSetPaused))
	sub.Path("/admin/rate-authority").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleSetRateAuthority))
	sub.Path("/admin/owner").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleTransferOwnership))
	sub.Path("/admin/recover").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleRecoverToken))
}

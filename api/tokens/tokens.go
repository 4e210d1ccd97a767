// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vestalabs/vesta/api/utils"
	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/builtin/token"
	"github.com/vestalabs/vesta/runtime"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

// Tokens serves the builtin token ledgers over HTTP. Ledgers are addressed
// by symbol: "deposit", "rewardA" and "rewardB".
type Tokens struct {
	rt *runtime.Runtime
}

// New create the handler group.
func New(rt *runtime.Runtime) *Tokens {
	return &Tokens{rt}
}

func resolve(symbol string, st *state.State) (*token.Token, error) {
	switch symbol {
	case "deposit":
		return builtin.DepositToken.WithState(st), nil
	case "rewardA":
		return builtin.RewardTokenA.WithState(st), nil
	case "rewardB":
		return builtin.RewardTokenB.WithState(st), nil
	default:
		return nil, errors.Errorf("unknown token %q", symbol)
	}
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	symbol := mux.Vars(req)["symbol"]
	var addr vesta.Address
	var supply *big.Int
	if err := t.rt.Read(func(st *state.State) error {
		ledger, err := resolve(symbol, st)
		if err != nil {
			return utils.BadRequest(err)
		}
		addr = ledger.Address()
		supply, err = ledger.TotalSupply()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"symbol":      symbol,
		"address":     addr,
		"totalSupply": (*math.HexOrDecimal256)(supply),
	})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := vesta.ParseAddress(vars["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var balance *big.Int
	if err := t.rt.Read(func(st *state.State) error {
		ledger, err := resolve(vars["symbol"], st)
		if err != nil {
			return utils.BadRequest(err)
		}
		balance, err = ledger.BalanceOf(addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"address": addr,
		"balance": (*math.HexOrDecimal256)(balance),
	})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	owner, err := vesta.ParseAddress(query.Get("owner"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	spender, err := vesta.ParseAddress(query.Get("spender"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "spender"))
	}
	var allowance *big.Int
	if err := t.rt.Read(func(st *state.State) error {
		ledger, err := resolve(mux.Vars(req)["symbol"], st)
		if err != nil {
			return utils.BadRequest(err)
		}
		allowance, err = ledger.Allowance(owner, spender)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"owner":     owner,
		"spender":   spender,
		"allowance": (*math.HexOrDecimal256)(allowance),
	})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address         `json:"caller"`
		To     vesta.Address         `json:"to"`
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := t.rt.Execute(func(st *state.State) error {
		ledger, err := resolve(mux.Vars(req)["symbol"], st)
		if err != nil {
			return utils.BadRequest(err)
		}
		return ledger.Transfer(body.Caller, body.To, (*big.Int)(body.Amount))
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return utils.WriteJSON(w, utils.M{"transferred": true})
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller  vesta.Address         `json:"caller"`
		Spender vesta.Address         `json:"spender"`
		Amount  *math.HexOrDecimal256 `json:"amount"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := t.rt.Execute(func(st *state.State) error {
		ledger, err := resolve(mux.Vars(req)["symbol"], st)
		if err != nil {
			return utils.BadRequest(err)
		}
		return ledger.Approve(body.Caller, body.Spender, (*big.Int)(body.Amount))
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return utils.WriteJSON(w, utils.M{"approved": true})
}

func (t *Tokens) handleTransferFrom(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller vesta.Address         `json:"caller"`
		From   vesta.Address         `json:"from"`
		To     vesta.Address         `json:"to"`
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := t.rt.Execute(func(st *state.State) error {
		ledger, err := resolve(mux.Vars(req)["symbol"], st)
		if err != nil {
			return utils.BadRequest(err)
		}
		return ledger.TransferFrom(body.Caller, body.From, body.To, (*big.Int)(body.Amount))
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return utils.WriteJSON(w, utils.M{"transferred": true})
}

// Mount attaches handlers to the router under pathPrefix.
func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{symbol}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{symbol}/accounts/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{symbol}/allowance").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/{symbol}/transfer").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{symbol}/approve").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
	sub.Path("/{symbol}/transfer-from").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(t.handleTransferFrom))
}

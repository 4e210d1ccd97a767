// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vestalabs/vesta/api/utils"
	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/builtin/distributor"
	"github.com/vestalabs/vesta/metrics"
	"github.com/vestalabs/vesta/runtime"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var metricDistributions = metrics.Counter("distribute_count")

// Distributor serves the distribution fan-out over HTTP.
type Distributor struct {
	rt       *runtime.Runtime
	registry *distributor.Registry
	now      func() uint64
}

// New create the handler group. The registry supplies receiver callbacks
// for distribute calls.
func New(rt *runtime.Runtime, registry *distributor.Registry, now func() uint64) *Distributor {
	return &Distributor{rt, registry, now}
}

func (d *Distributor) fanout(st *state.State) *distributor.Distributor {
	return builtin.Distributor.WithState(st)
}

func (d *Distributor) handleAddEntry(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller      vesta.Address         `json:"caller"`
		Destination vesta.Address         `json:"destination"`
		AmountA     *math.HexOrDecimal256 `json:"amountA"`
		AmountB     *math.HexOrDecimal256 `json:"amountB"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := d.rt.Execute(func(st *state.State) error {
		return d.fanout(st).AddEntry(body.Caller, (*big.Int)(body.AmountA), (*big.Int)(body.AmountB), body.Destination)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return d.writeStatus(w)
}

func (d *Distributor) handleEditEntry(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	var body struct {
		Caller      vesta.Address         `json:"caller"`
		Destination vesta.Address         `json:"destination"`
		AmountA     *math.HexOrDecimal256 `json:"amountA"`
		AmountB     *math.HexOrDecimal256 `json:"amountB"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := d.rt.Execute(func(st *state.State) error {
		return d.fanout(st).EditEntry(body.Caller, index, (*big.Int)(body.AmountA), (*big.Int)(body.AmountB), body.Destination)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return d.writeStatus(w)
}

func (d *Distributor) handleRemoveEntry(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	var body struct {
		Caller vesta.Address `json:"caller"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := d.rt.Execute(func(st *state.State) error {
		return d.fanout(st).RemoveEntry(body.Caller, index)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	return d.writeStatus(w)
}

func (d *Distributor) handleDistribute(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller  vesta.Address         `json:"caller"`
		AmountA *math.HexOrDecimal256 `json:"amountA"`
		AmountB *math.HexOrDecimal256 `json:"amountB"`
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := d.now()
	if err := d.rt.Execute(func(st *state.State) error {
		return d.fanout(st).Distribute(body.Caller, (*big.Int)(body.AmountA), (*big.Int)(body.AmountB), now, d.registry)
	}); err != nil {
		return utils.ConvertCallError(err)
	}
	metricDistributions.Add(1)
	return d.writeStatus(w)
}

func (d *Distributor) handleGetEntries(w http.ResponseWriter, req *http.Request) error {
	offset, limit, err := parsePage(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	var entries []*distributor.Entry
	if err := d.rt.Read(func(st *state.State) (err error) {
		entries, err = d.fanout(st).Entries(offset, limit)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, entries)
}

func (d *Distributor) handleGetRecipients(w http.ResponseWriter, req *http.Request) error {
	offset, limit, err := parsePage(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	var recipients []vesta.Address
	if err := d.rt.Read(func(st *state.State) (err error) {
		recipients, err = d.fanout(st).Recipients().Page(offset, limit)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, recipients)
}

func (d *Distributor) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	return d.writeStatus(w)
}

func (d *Distributor) writeStatus(w http.ResponseWriter) error {
	var status *distributor.Status
	if err := d.rt.Read(func(st *state.State) (err error) {
		status, err = d.fanout(st).Status()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

func parseIndex(req *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
}

func parsePage(req *http.Request) (offset, limit uint64, err error) {
	query := req.URL.Query()
	if v := query.Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, errors.WithMessage(err, "offset")
		}
	}
	limit = 100
	if v := query.Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, errors.WithMessage(err, "limit")
		}
	}
	return offset, limit, nil
}

// Mount attaches handlers to the router under pathPrefix.
func (d *Distributor) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(d.handleGetStatus))
	sub.Path("/entries").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(d.handleGetEntries))
	sub.Path("/entries").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(d.handleAddEntry))
	sub.Path("/entries/{index}").Methods(http.MethodPut).HandlerFunc(utils.WrapHandlerFunc(d.handleEditEntry))
	sub.Path("/entries/{index}").Methods(http.MethodDelete).HandlerFunc(utils.WrapHandlerFunc(d.handleRemoveEntry))
	sub.Path("/recipients").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(d.handleGetRecipients))
	sub.Path("/distribute").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(d.handleDistribute))
}

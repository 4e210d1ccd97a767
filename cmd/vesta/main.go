// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vestalabs/vesta/api"
	"github.com/vestalabs/vesta/builtin"
	"github.com/vestalabs/vesta/builtin/distributor"
	"github.com/vestalabs/vesta/log"
	"github.com/vestalabs/vesta/metrics"
	"github.com/vestalabs/vesta/runtime"
	"github.com/vestalabs/vesta/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Vesta",
		Usage:     "dual-token staking rewards engine",
		Copyright: "2026 Vesta Labs",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			memFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			pprofFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene := selectGenesis(ctx)

	mainDB, instanceDir := openMainDB(ctx, gene)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	st, err := initState(mainDB, gene)
	if err != nil {
		fatal(err)
	}

	rt := runtime.New(st)
	registry := newReceiverRegistry()
	now := func() uint64 { return uint64(time.Now().Unix()) }

	handler := api.New(rt, registry, now, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})

	apiURL, srvCloser, err := startAPIServer(ctx, handler)
	if err != nil {
		fatal(err)
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(gene, instanceDir, apiURL)

	return handleExitSignal()
}

// newReceiverRegistry wires the rewards ledger as a distribution receiver.
// Amounts forwarded by the fan-out are turned into a funding notification,
// re-syncing the emission rates.
func newReceiverRegistry() *distributor.Registry {
	registry := distributor.NewRegistry()
	registry.Register(builtin.Rewards.Address, distributor.ReceiverFunc(
		func(st *state.State, amountA, amountB *big.Int, now uint64) error {
			return builtin.Rewards.WithState(st).NotifyReward(builtin.Distributor.Address, amountA, amountB, now)
		}))
	return registry
}

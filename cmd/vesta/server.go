// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vestalabs/vesta/co"
	"github.com/vestalabs/vesta/genesis"
)

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen API addr [%v]: %w", addr, err)
	}
	srv := &http.Server{Handler: handler}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleExitSignal() error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("exit signal received", "signal", s)
	return nil
}

func printStartupMessage(gene *genesis.Genesis, instanceDir string, apiURL string) {
	fmt.Printf(`Starting %v
    Network     [ %v %x ]
    Instance    [ %v ]
    API portal  [ %v ]
`,
		"Vesta "+fullVersion(),
		gene.Name(),
		gene.ID().Bytes()[28:],
		instanceDir,
		apiURL,
	)
}

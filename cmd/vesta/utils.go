// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vestalabs/vesta/genesis"
	"github.com/vestalabs/vesta/kv"
	"github.com/vestalabs/vesta/log"
	"github.com/vestalabs/vesta/lvldb"
	"github.com/vestalabs/vesta/state"
)

var genesisIDKey = []byte("genesis-id")

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	log.Init(ctx.Int(verbosityFlag.Name))
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	network := ctx.String(networkFlag.Name)
	if network == "dev" {
		return genesis.NewDevnet()
	}
	custom, err := genesis.LoadCustomGenesis(network)
	if err != nil {
		fatal(err)
	}
	gene, err := genesis.NewCustomNet(custom)
	if err != nil {
		fatal(err)
	}
	return gene
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".vesta")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

func openMainDB(ctx *cli.Context, gene *genesis.Genesis) (*lvldb.LevelDB, string) {
	if ctx.Bool(memFlag.Name) {
		db, err := lvldb.NewMem()
		if err != nil {
			fatal(err)
		}
		return db, "Memory"
	}
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal("unable to locate a data directory, set --data-dir")
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		fatal(errors.WithMessage(err, "create instance dir"))
	}
	db, err := lvldb.New(filepath.Join(instanceDir, "main.db"), lvldb.Options{})
	if err != nil {
		fatal(errors.WithMessage(err, "open main database"))
	}
	return db, instanceDir
}

// initState seeds the genesis preset on first launch and verifies the
// stored genesis ID on later ones.
func initState(db kv.GetPutter, gene *genesis.Genesis) (*state.State, error) {
	st := state.New(db)

	stored, err := db.Get(genesisIDKey)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, err
		}
		if err := gene.Build(st); err != nil {
			return nil, errors.WithMessage(err, "build genesis")
		}
		if err := db.Put(genesisIDKey, gene.ID().Bytes()); err != nil {
			return nil, err
		}
		return st, nil
	}
	if !bytes.Equal(stored, gene.ID().Bytes()) {
		return nil, errors.Errorf("database is seeded with another genesis (stored %x, want %x)", stored, gene.ID().Bytes())
	}
	return st, nil
}

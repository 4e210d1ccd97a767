// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestalabs/vesta/lvldb"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var (
	addr = vesta.BytesToAddress([]byte("addr"))
	key  = vesta.Blake2b([]byte("key"))
	v1   = vesta.Blake2b([]byte("v1"))
	v2   = vesta.Blake2b([]byte("v2"))
)

func newTestRuntime(t *testing.T) (*lvldb.LevelDB, *Runtime) {
	kv, err := lvldb.NewMem()
	require.NoError(t, err)
	return kv, New(state.New(kv))
}

func TestExecuteCommits(t *testing.T) {
	kv, rt := newTestRuntime(t)

	require.NoError(t, rt.Execute(func(st *state.State) error {
		st.SetStorage(addr, key, v1)
		return nil
	}))

	// committed to the kv store, visible to a brand new state
	st := state.New(kv)
	got, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, v1, got)
}

func TestExecuteRevertsOnError(t *testing.T) {
	_, rt := newTestRuntime(t)

	require.NoError(t, rt.Execute(func(st *state.State) error {
		st.SetStorage(addr, key, v1)
		return nil
	}))

	boom := errors.New("boom")
	err := rt.Execute(func(st *state.State) error {
		st.SetStorage(addr, key, v2)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, rt.Read(func(st *state.State) error {
		got, err := st.GetStorage(addr, key)
		require.NoError(t, err)
		assert.Equal(t, v1, got)
		return nil
	}))
}

func TestReadDiscardsMutations(t *testing.T) {
	_, rt := newTestRuntime(t)

	require.NoError(t, rt.Read(func(st *state.State) error {
		st.SetStorage(addr, key, v1)
		return nil
	}))

	require.NoError(t, rt.Read(func(st *state.State) error {
		got, err := st.GetStorage(addr, key)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
		return nil
	}))
}

// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestalabs/vesta/builtin/reverts"
	"github.com/vestalabs/vesta/builtin/token"
	"github.com/vestalabs/vesta/lvldb"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var (
	owner      = vesta.BytesToAddress([]byte("owner"))
	authority  = vesta.BytesToAddress([]byte("authority"))
	tokA       = vesta.BytesToAddress([]byte("tok-a"))
	tokB       = vesta.BytesToAddress([]byte("tok-b"))
	escrow     = vesta.BytesToAddress([]byte("escrow"))
	fanoutAddr = vesta.BytesToAddress([]byte("distributor"))
	dest1      = vesta.BytesToAddress([]byte("dest1"))
	dest2      = vesta.BytesToAddress([]byte("dest2"))
)

func newTestFanout(t *testing.T, custodyA, custodyB int64) (*state.State, *Distributor) {
	kv, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(kv)

	d := New(fanoutAddr, st)
	require.NoError(t, d.Initialize(owner, authority, tokA, tokB, escrow))
	if custodyA > 0 {
		require.NoError(t, token.New(tokA, st).Mint(fanoutAddr, big.NewInt(custodyA)))
	}
	if custodyB > 0 {
		require.NoError(t, token.New(tokB, st).Mint(fanoutAddr, big.NewInt(custodyB)))
	}
	return st, d
}

func balanceOf(t *testing.T, st *state.State, tok, addr vesta.Address) *big.Int {
	bal, err := token.New(tok, st).BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func TestInitialize(t *testing.T) {
	_, d := newTestFanout(t, 0, 0)

	status, err := d.Status()
	require.NoError(t, err)
	assert.Equal(t, owner, status.Owner)
	assert.Equal(t, authority, status.Authority)
	assert.Equal(t, escrow, status.Escrow)
	assert.Equal(t, uint64(0), status.EntryCount)

	assert.Error(t, d.Initialize(owner, authority, tokA, tokB, escrow))
}

func TestEntryCRUD(t *testing.T) {
	_, d := newTestFanout(t, 0, 0)

	assert.ErrorIs(t, d.AddEntry(dest1, big.NewInt(1), big.NewInt(1), dest1), reverts.ErrUnauthorized)
	assert.ErrorIs(t, d.AddEntry(owner, big.NewInt(1), big.NewInt(1), vesta.Address{}), reverts.ErrInvalidDestination)
	assert.ErrorIs(t, d.AddEntry(owner, big.NewInt(0), big.NewInt(0), dest1), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, d.AddEntry(owner, big.NewInt(-1), big.NewInt(1), dest1), reverts.ErrInvalidAmount)

	require.NoError(t, d.AddEntry(owner, big.NewInt(100), big.NewInt(0), dest1))
	require.NoError(t, d.AddEntry(owner, big.NewInt(0), big.NewInt(200), dest2))
	require.NoError(t, d.AddEntry(owner, big.NewInt(50), big.NewInt(50), dest1))

	n, err := d.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	entries, err := d.Entries(0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, dest1, entries[0].Destination)
	assert.Equal(t, big.NewInt(100), entries[0].AmountA)
	assert.Equal(t, dest2, entries[1].Destination)

	// recipients listed once each, in first-seen order
	recipients, err := d.Recipients().All()
	require.NoError(t, err)
	assert.Equal(t, []vesta.Address{dest1, dest2}, recipients)

	assert.ErrorIs(t, d.EditEntry(owner, 3, big.NewInt(1), big.NewInt(1), dest1), reverts.ErrIndexOutOfRange)
	require.NoError(t, d.EditEntry(owner, 1, big.NewInt(10), big.NewInt(20), dest1))

	// dest2 lost its only entry
	recipients, err = d.Recipients().All()
	require.NoError(t, err)
	assert.Equal(t, []vesta.Address{dest1}, recipients)

	// remove shifts the tail down
	require.NoError(t, d.RemoveEntry(owner, 0))
	entries, err = d.Entries(0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, big.NewInt(10), entries[0].AmountA)
	assert.Equal(t, big.NewInt(50), entries[1].AmountA)

	assert.ErrorIs(t, d.RemoveEntry(owner, 2), reverts.ErrIndexOutOfRange)

	// dest1 still referenced by both remaining entries
	recipients, err = d.Recipients().All()
	require.NoError(t, err)
	assert.Equal(t, []vesta.Address{dest1}, recipients)

	require.NoError(t, d.RemoveEntry(owner, 1))
	require.NoError(t, d.RemoveEntry(owner, 0))
	recipients, err = d.Recipients().All()
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestDistribute(t *testing.T) {
	st, d := newTestFanout(t, 1000, 500)

	require.NoError(t, d.AddEntry(owner, big.NewInt(300), big.NewInt(100), dest1))
	require.NoError(t, d.AddEntry(owner, big.NewInt(200), big.NewInt(0), dest2))

	assert.ErrorIs(t, d.Distribute(owner, big.NewInt(1000), big.NewInt(500), 0, nil), reverts.ErrUnauthorized)
	assert.ErrorIs(t, d.Distribute(authority, nil, nil, 0, nil), reverts.ErrNothingToDistribute)
	assert.ErrorIs(t, d.Distribute(authority, big.NewInt(2000), nil, 0, nil), reverts.ErrInsufficientBalance)

	require.NoError(t, d.Distribute(authority, big.NewInt(1000), big.NewInt(500), 0, nil))

	assert.Equal(t, big.NewInt(300), balanceOf(t, st, tokA, dest1))
	assert.Equal(t, big.NewInt(100), balanceOf(t, st, tokB, dest1))
	assert.Equal(t, big.NewInt(200), balanceOf(t, st, tokA, dest2))

	// residuals swept to escrow, both tokens
	assert.Equal(t, big.NewInt(500), balanceOf(t, st, tokA, escrow))
	assert.Equal(t, big.NewInt(400), balanceOf(t, st, tokB, escrow))
	assert.Equal(t, 0, balanceOf(t, st, tokA, fanoutAddr).Sign())
	assert.Equal(t, 0, balanceOf(t, st, tokB, fanoutAddr).Sign())
}

func TestDistributeUnderfunded(t *testing.T) {
	_, d := newTestFanout(t, 1000, 0)

	require.NoError(t, d.AddEntry(owner, big.NewInt(300), big.NewInt(0), dest1))

	// the distributed amount must cover every entry
	assert.ErrorIs(t, d.Distribute(authority, big.NewInt(100), nil, 0, nil), reverts.ErrInsufficientBalance)
}

func TestDistributeAdvisesReceiver(t *testing.T) {
	st, d := newTestFanout(t, 1000, 0)

	require.NoError(t, d.AddEntry(owner, big.NewInt(300), big.NewInt(1), dest1))
	require.NoError(t, token.New(tokB, st).Mint(fanoutAddr, big.NewInt(1)))

	var gotA, gotB *big.Int
	var gotNow uint64
	registry := NewRegistry()
	registry.Register(dest1, ReceiverFunc(func(_ *state.State, amountA, amountB *big.Int, now uint64) error {
		gotA, gotB, gotNow = amountA, amountB, now
		return nil
	}))

	require.NoError(t, d.Distribute(authority, big.NewInt(300), big.NewInt(1), 42, registry))
	assert.Equal(t, big.NewInt(300), gotA)
	assert.Equal(t, big.NewInt(1), gotB)
	assert.Equal(t, uint64(42), gotNow)
}

func TestDistributeReceiverFailureIsBestEffort(t *testing.T) {
	st, d := newTestFanout(t, 1000, 0)

	require.NoError(t, d.AddEntry(owner, big.NewInt(300), big.NewInt(1), dest1))
	require.NoError(t, token.New(tokB, st).Mint(fanoutAddr, big.NewInt(1)))

	marker := vesta.Blake2b([]byte("marker"))
	registry := NewRegistry()
	registry.Register(dest1, ReceiverFunc(func(st *state.State, _, _ *big.Int, _ uint64) error {
		// mutate, then fail: the mutation must not survive
		st.SetStorage(dest1, marker, vesta.BytesToBytes32([]byte{1}))
		return errors.New("receiver broken")
	}))

	require.NoError(t, d.Distribute(authority, big.NewInt(300), big.NewInt(1), 0, registry))

	// payment stands even though the advice failed
	assert.Equal(t, big.NewInt(300), balanceOf(t, st, tokA, dest1))

	v, err := st.GetStorage(dest1, marker)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestDistributeReentrancyBlocked(t *testing.T) {
	st, d := newTestFanout(t, 1000, 0)

	require.NoError(t, d.AddEntry(owner, big.NewInt(300), big.NewInt(1), dest1))
	require.NoError(t, token.New(tokB, st).Mint(fanoutAddr, big.NewInt(1)))

	var nested error
	registry := NewRegistry()
	registry.Register(dest1, ReceiverFunc(func(st *state.State, _, _ *big.Int, now uint64) error {
		nested = New(fanoutAddr, st).Distribute(authority, big.NewInt(1), nil, now, nil)
		return nested
	}))

	require.NoError(t, d.Distribute(authority, big.NewInt(300), big.NewInt(1), 0, registry))
	assert.ErrorIs(t, nested, reverts.ErrReentrancy)
}

// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package distributor implements the reward fan-out: it pays an ordered,
// owner-curated list of (destination, amountA, amountB) entries out of its
// own two-token custody, advises each destination of what it received, and
// sweeps the residuals to an escrow sink.
package distributor

import (
	"encoding/binary"
	"math/big"

	"github.com/vestalabs/vesta/builtin/addrlist"
	"github.com/vestalabs/vesta/builtin/reverts"
	"github.com/vestalabs/vesta/builtin/token"
	"github.com/vestalabs/vesta/log"
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var logger = log.WithContext("pkg", "distributor")

var (
	configKey = vesta.Blake2b([]byte("config"))
	countKey  = vesta.Blake2b([]byte("entry-count"))
	lockKey   = vesta.Blake2b([]byte("lock"))

	lockTaken = vesta.BytesToBytes32([]byte{1})
)

func entryKey(index uint64) vesta.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return vesta.Blake2b([]byte("entry"), b[:])
}

// Distributor is the fan-out contract bound to an address.
// The recipients address list shares the contract's storage space.
type Distributor struct {
	addr  vesta.Address
	state *state.State

	recipients *addrlist.List
}

// New create a new instance.
func New(addr vesta.Address, state *state.State) *Distributor {
	return &Distributor{addr, state, addrlist.New(addr, state)}
}

// Address returns the distributor address.
func (d *Distributor) Address() vesta.Address {
	return d.addr
}

// Recipients exposes the bookkeeping list of entry destinations.
func (d *Distributor) Recipients() *addrlist.List {
	return d.recipients
}

func (d *Distributor) getConfig() (*config, error) {
	var c config
	if err := d.state.DecodeStorage(d.addr, configKey, c.Decode); err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *Distributor) setConfig(c *config) error {
	return d.state.EncodeStorage(d.addr, configKey, c.Encode)
}

func (d *Distributor) getCount() (uint64, error) {
	var c count
	if err := d.state.DecodeStorage(d.addr, countKey, c.Decode); err != nil {
		return 0, err
	}
	return c.N, nil
}

func (d *Distributor) setCount(n uint64) error {
	return d.state.EncodeStorage(d.addr, countKey, (&count{n}).Encode)
}

func (d *Distributor) getEntry(index uint64) (*Entry, error) {
	var e Entry
	if err := d.state.DecodeStorage(d.addr, entryKey(index), e.Decode); err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *Distributor) setEntry(index uint64, e *Entry) error {
	return d.state.EncodeStorage(d.addr, entryKey(index), e.Encode)
}

func (d *Distributor) enter() error {
	v, err := d.state.GetStorage(d.addr, lockKey)
	if err != nil {
		return err
	}
	if !v.IsZero() {
		return reverts.ErrReentrancy
	}
	d.state.SetStorage(d.addr, lockKey, lockTaken)
	return nil
}

func (d *Distributor) leave() {
	d.state.SetStorage(d.addr, lockKey, vesta.Bytes32{})
}

// Initialize seeds the fan-out configuration. Called once at genesis.
func (d *Distributor) Initialize(owner, authority, tokenA, tokenB, escrow vesta.Address) error {
	cfg, err := d.getConfig()
	if err != nil {
		return err
	}
	if !cfg.Owner.IsZero() {
		return reverts.ErrUnauthorized
	}
	if owner.IsZero() || escrow.IsZero() {
		return reverts.ErrInvalidDestination
	}
	return d.setConfig(&config{
		Owner:     owner,
		Authority: authority,
		TokenA:    tokenA,
		TokenB:    tokenB,
		Escrow:    escrow,
	})
}

func (d *Distributor) requireOwner(caller vesta.Address) error {
	cfg, err := d.getConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Owner {
		return reverts.ErrUnauthorized
	}
	return nil
}

func validateEntry(amountA, amountB *big.Int, destination vesta.Address) error {
	if destination.IsZero() {
		return reverts.ErrInvalidDestination
	}
	if amountA == nil || amountB == nil || amountA.Sign() < 0 || amountB.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amountA.Sign() == 0 && amountB.Sign() == 0 {
		return reverts.ErrInvalidAmount
	}
	return nil
}

// refCount counts entries paying the given destination.
func (d *Distributor) refCount(destination vesta.Address) (int, error) {
	n, err := d.getCount()
	if err != nil {
		return 0, err
	}
	refs := 0
	for i := uint64(0); i < n; i++ {
		e, err := d.getEntry(i)
		if err != nil {
			return 0, err
		}
		if e.Destination == destination {
			refs++
		}
	}
	return refs, nil
}

// dropRecipient unlists destination if no entry references it anymore.
func (d *Distributor) dropRecipient(destination vesta.Address) error {
	refs, err := d.refCount(destination)
	if err != nil {
		return err
	}
	if refs == 0 {
		_, err = d.recipients.Remove(destination)
	}
	return err
}

// AddEntry appends a payout entry. Owner only.
func (d *Distributor) AddEntry(caller vesta.Address, amountA, amountB *big.Int, destination vesta.Address) error {
	if err := d.requireOwner(caller); err != nil {
		return err
	}
	if err := validateEntry(amountA, amountB, destination); err != nil {
		return err
	}
	n, err := d.getCount()
	if err != nil {
		return err
	}
	if err := d.setEntry(n, &Entry{destination, amountA, amountB}); err != nil {
		return err
	}
	if err := d.setCount(n + 1); err != nil {
		return err
	}
	_, err = d.recipients.Add(destination)
	return err
}

// EditEntry replaces the entry at index. Owner only.
func (d *Distributor) EditEntry(caller vesta.Address, index uint64, amountA, amountB *big.Int, destination vesta.Address) error {
	if err := d.requireOwner(caller); err != nil {
		return err
	}
	n, err := d.getCount()
	if err != nil {
		return err
	}
	if index >= n {
		return reverts.ErrIndexOutOfRange
	}
	if err := validateEntry(amountA, amountB, destination); err != nil {
		return err
	}
	old, err := d.getEntry(index)
	if err != nil {
		return err
	}
	if err := d.setEntry(index, &Entry{destination, amountA, amountB}); err != nil {
		return err
	}
	if old.Destination != destination {
		if err := d.dropRecipient(old.Destination); err != nil {
			return err
		}
	}
	_, err = d.recipients.Add(destination)
	return err
}

// RemoveEntry deletes the entry at index, shifting later entries down one
// position. O(n), acceptable for the small owner-curated list.
func (d *Distributor) RemoveEntry(caller vesta.Address, index uint64) error {
	if err := d.requireOwner(caller); err != nil {
		return err
	}
	n, err := d.getCount()
	if err != nil {
		return err
	}
	if index >= n {
		return reverts.ErrIndexOutOfRange
	}
	removed, err := d.getEntry(index)
	if err != nil {
		return err
	}
	for i := index; i+1 < n; i++ {
		next, err := d.getEntry(i + 1)
		if err != nil {
			return err
		}
		if err := d.setEntry(i, next); err != nil {
			return err
		}
	}
	if err := d.setEntry(n-1, &Entry{}); err != nil {
		return err
	}
	if err := d.setCount(n - 1); err != nil {
		return err
	}
	return d.dropRecipient(removed.Destination)
}

// Count returns the number of entries.
func (d *Distributor) Count() (uint64, error) {
	return d.getCount()
}

// Entries reads up to limit entries starting at offset, in list order.
func (d *Distributor) Entries(offset, limit uint64) ([]*Entry, error) {
	n, err := d.getCount()
	if err != nil {
		return nil, err
	}
	entries := make([]*Entry, 0, limit)
	for i := offset; i < n && uint64(len(entries)) < limit; i++ {
		e, err := d.getEntry(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Distribute pays every entry its configured amounts out of custody, advises
// each paid destination, and sweeps both residuals to the escrow sink.
// Restricted to the configured authority.
//
// The running remainders are decremented before any transfer or advice for
// an entry, so a reentrant or misbehaving receiver can never double-spend
// the residual.
func (d *Distributor) Distribute(caller vesta.Address, amountA, amountB *big.Int, now uint64, registry *Registry) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()

	cfg, err := d.getConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Authority {
		return reverts.ErrUnauthorized
	}
	if amountA == nil {
		amountA = &big.Int{}
	}
	if amountB == nil {
		amountB = &big.Int{}
	}
	if amountA.Sign() < 0 || amountB.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amountA.Sign() == 0 && amountB.Sign() == 0 {
		return reverts.ErrNothingToDistribute
	}

	tokenA := token.New(cfg.TokenA, d.state)
	tokenB := token.New(cfg.TokenB, d.state)
	for _, x := range []struct {
		t      *token.Token
		amount *big.Int
	}{{tokenA, amountA}, {tokenB, amountB}} {
		bal, err := x.t.BalanceOf(d.addr)
		if err != nil {
			return err
		}
		if bal.Cmp(x.amount) < 0 {
			return reverts.ErrInsufficientBalance
		}
	}

	remainderA := new(big.Int).Set(amountA)
	remainderB := new(big.Int).Set(amountB)

	n, err := d.getCount()
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		e, err := d.getEntry(i)
		if err != nil {
			return err
		}
		if e.Destination.IsZero() {
			continue
		}
		if remainderA.Cmp(e.AmountA) < 0 || remainderB.Cmp(e.AmountB) < 0 {
			return reverts.ErrInsufficientBalance
		}
		remainderA.Sub(remainderA, e.AmountA)
		remainderB.Sub(remainderB, e.AmountB)

		if err := tokenA.Transfer(d.addr, e.Destination, e.AmountA); err != nil {
			return reverts.WithCause(reverts.ErrTransferFailed, err)
		}
		if err := tokenB.Transfer(d.addr, e.Destination, e.AmountB); err != nil {
			return reverts.WithCause(reverts.ErrTransferFailed, err)
		}

		d.advise(registry, e, now)
	}

	if remainderA.Sign() > 0 {
		if err := tokenA.Transfer(d.addr, cfg.Escrow, remainderA); err != nil {
			return reverts.WithCause(reverts.ErrTransferFailed, err)
		}
	}
	if remainderB.Sign() > 0 {
		if err := tokenB.Transfer(d.addr, cfg.Escrow, remainderB); err != nil {
			return reverts.WithCause(reverts.ErrTransferFailed, err)
		}
	}

	logger.Info("distributed rewards",
		"entries", n, "amountA", amountA, "amountB", amountB,
		"escrowA", remainderA, "escrowB", remainderB)
	return nil
}

// Status is a snapshot of the fan-out configuration for inspection.
type Status struct {
	Owner      vesta.Address `json:"owner"`
	Authority  vesta.Address `json:"authority"`
	TokenA     vesta.Address `json:"tokenA"`
	TokenB     vesta.Address `json:"tokenB"`
	Escrow     vesta.Address `json:"escrow"`
	EntryCount uint64        `json:"entryCount"`
}

// Status returns the fan-out snapshot.
func (d *Distributor) Status() (*Status, error) {
	cfg, err := d.getConfig()
	if err != nil {
		return nil, err
	}
	n, err := d.getCount()
	if err != nil {
		return nil, err
	}
	return &Status{
		Owner:      cfg.Owner,
		Authority:  cfg.Authority,
		TokenA:     cfg.TokenA,
		TokenB:     cfg.TokenB,
		Escrow:     cfg.Escrow,
		EntryCount: n,
	}, nil
}

// advise notifies the destination's receiver, if any, of what it received.
// Failure reverts the receiver's mutations and is otherwise ignored.
func (d *Distributor) advise(registry *Registry, e *Entry, now uint64) {
	receiver := registry.lookup(e.Destination)
	if receiver == nil {
		return
	}
	rev := d.state.NewCheckpoint()
	if err := receiver.OnRewardsReceived(d.state, e.AmountA, e.AmountB, now); err != nil {
		d.state.RevertTo(rev)
		logger.Warn("receiver advice failed",
			"destination", e.Destination, "err", err)
	}
}

// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vestalabs/vesta/kv"
	"github.com/vestalabs/vesta/stackedmap"
	"github.com/vestalabs/vesta/vesta"
)

const (
	storagePrefix = "s"

	cacheSize = 2048
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr vesta.Address
	key  vesta.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(storagePrefix)+len(k.addr)+len(k.key))
	b = append(b, storagePrefix...)
	b = append(b, k.addr[:]...)
	b = append(b, k.key[:]...)
	return b
}

// State manages the world state.
// It maintains per-address keyed storage over a kv store, journaled in a
// stacked map so that any slice of mutations can be reverted to a checkpoint.
type State struct {
	kv    kv.GetPutter
	cache *lru.Cache // raw values ever loaded from kv
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object bound to the given kv store.
func New(kv kv.GetPutter) *State {
	cache, _ := lru.New(cacheSize)
	state := &State{
		kv:    kv,
		cache: cache,
	}
	state.sm = stackedmap.New(state.rawGetter)
	// base layer, never popped
	state.sm.Push()
	return state
}

// rawGetter implements stackedmap.MapGetter.
func (s *State) rawGetter(key storageKey) (rlp.RawValue, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.(rlp.RawValue), true, nil
	}
	data, err := s.kv.Get(key.dbKey())
	if err != nil {
		if !s.kv.IsNotFound(err) {
			return nil, false, err
		}
		data = nil
	}
	raw := rlp.RawValue(data)
	s.cache.Add(key, raw)
	return raw, true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr vesta.Address, key vesta.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr vesta.Address, key vesta.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr vesta.Address, key vesta.Bytes32) (vesta.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return vesta.Bytes32{}, err
	}
	if len(raw) == 0 {
		return vesta.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return vesta.Bytes32{}, &Error{err}
	}
	return vesta.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr vesta.Address, key, value vesta.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// An empty encoded value deletes the storage slot.
func (s *State) EncodeStorage(addr vesta.Address, key vesta.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// dec is fed the raw value, which is empty if the slot was never written.
func (s *State) DecodeStorage(addr vesta.Address, key vesta.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit writes all journaled mutations into the kv store and resets the
// journal. Empty values delete their slots.
func (s *State) Commit() error {
	batch := s.kv.NewBatch()
	written := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(key storageKey, raw rlp.RawValue) bool {
		written[key] = raw
		return true
	})
	for key, raw := range written {
		if len(raw) == 0 {
			if err := batch.Delete(key.dbKey()); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put(key.dbKey(), raw); err != nil {
				return &Error{err}
			}
		}
		s.cache.Add(key, raw)
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	s.sm = stackedmap.New(s.rawGetter)
	s.sm.Push()
	return nil
}

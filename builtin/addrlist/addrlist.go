// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package addrlist provides an order-preserving address set over state
// storage. Members form a doubly-linked list so that add, remove and
// membership checks touch a constant number of slots, while reads walk the
// list in insertion order.
package addrlist

import (
	"github.com/vestalabs/vesta/state"
	"github.com/vestalabs/vesta/vesta"
)

var (
	headKey  = vesta.Blake2b([]byte("addrlist.head"))
	tailKey  = vesta.Blake2b([]byte("addrlist.tail"))
	countKey = vesta.Blake2b([]byte("addrlist.count"))
)

func memberKey(member vesta.Address) vesta.Bytes32 {
	return vesta.BytesToBytes32(append([]byte("m"), member.Bytes()...))
}

// List an order-preserving address set bound to a contract address.
type List struct {
	addr  vesta.Address
	state *state.State
}

// New create a new instance.
func New(addr vesta.Address, state *state.State) *List {
	return &List{addr, state}
}

func (l *List) getEntry(member vesta.Address) (*entry, error) {
	var e entry
	if err := l.state.DecodeStorage(l.addr, memberKey(member), e.Decode); err != nil {
		return nil, err
	}
	return &e, nil
}

func (l *List) setEntry(member vesta.Address, e *entry) error {
	return l.state.EncodeStorage(l.addr, memberKey(member), e.Encode)
}

func (l *List) getAddressPtr(key vesta.Bytes32) (*vesta.Address, error) {
	var ap addressPtr
	if err := l.state.DecodeStorage(l.addr, key, ap.Decode); err != nil {
		return nil, err
	}
	return ap.Address, nil
}

func (l *List) setAddressPtr(key vesta.Bytes32, addr *vesta.Address) error {
	return l.state.EncodeStorage(l.addr, key, (&addressPtr{addr}).Encode)
}

func (l *List) addCount(delta int64) error {
	var c count
	if err := l.state.DecodeStorage(l.addr, countKey, c.Decode); err != nil {
		return err
	}
	c.N = uint64(int64(c.N) + delta)
	return l.state.EncodeStorage(l.addr, countKey, c.Encode)
}

// Contains returns whether member is listed.
func (l *List) Contains(member vesta.Address) (bool, error) {
	e, err := l.getEntry(member)
	if err != nil {
		return false, err
	}
	return e.Listed, nil
}

// Count returns the number of listed members.
func (l *List) Count() (uint64, error) {
	var c count
	if err := l.state.DecodeStorage(l.addr, countKey, c.Decode); err != nil {
		return 0, err
	}
	return c.N, nil
}

// Add appends member at the tail.
// Returns false if member is already listed.
func (l *List) Add(member vesta.Address) (bool, error) {
	e, err := l.getEntry(member)
	if err != nil {
		return false, err
	}
	if e.Listed {
		return false, nil
	}

	tailPtr, err := l.getAddressPtr(tailKey)
	if err != nil {
		return false, err
	}
	e.Listed = true
	e.Prev = tailPtr

	if err := l.setAddressPtr(tailKey, &member); err != nil {
		return false, err
	}
	if tailPtr == nil {
		if err := l.setAddressPtr(headKey, &member); err != nil {
			return false, err
		}
	} else {
		tailEntry, err := l.getEntry(*tailPtr)
		if err != nil {
			return false, err
		}
		tailEntry.Next = &member
		if err := l.setEntry(*tailPtr, tailEntry); err != nil {
			return false, err
		}
	}

	if err := l.setEntry(member, e); err != nil {
		return false, err
	}
	return true, l.addCount(1)
}

// Remove unlinks member from the list.
// Returns false if member is not listed.
func (l *List) Remove(member vesta.Address) (bool, error) {
	e, err := l.getEntry(member)
	if err != nil {
		return false, err
	}
	if !e.Listed {
		return false, nil
	}

	if e.Prev == nil {
		if err := l.setAddressPtr(headKey, e.Next); err != nil {
			return false, err
		}
	} else {
		prevEntry, err := l.getEntry(*e.Prev)
		if err != nil {
			return false, err
		}
		prevEntry.Next = e.Next
		if err := l.setEntry(*e.Prev, prevEntry); err != nil {
			return false, err
		}
	}

	if e.Next == nil {
		if err := l.setAddressPtr(tailKey, e.Prev); err != nil {
			return false, err
		}
	} else {
		nextEntry, err := l.getEntry(*e.Next)
		if err != nil {
			return false, err
		}
		nextEntry.Prev = e.Prev
		if err := l.setEntry(*e.Next, nextEntry); err != nil {
			return false, err
		}
	}

	if err := l.setEntry(member, &entry{}); err != nil {
		return false, err
	}
	return true, l.addCount(-1)
}

// First returns the first member, nil when the list is empty.
func (l *List) First() (*vesta.Address, error) {
	return l.getAddressPtr(headKey)
}

// Next returns the member after the given one, nil at the tail.
func (l *List) Next(member vesta.Address) (*vesta.Address, error) {
	e, err := l.getEntry(member)
	if err != nil {
		return nil, err
	}
	return e.Next, nil
}

// Page reads up to limit members in insertion order, skipping offset.
func (l *List) Page(offset, limit uint64) ([]vesta.Address, error) {
	ptr, err := l.getAddressPtr(headKey)
	if err != nil {
		return nil, err
	}
	for ; offset > 0 && ptr != nil; offset-- {
		e, err := l.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		ptr = e.Next
	}

	members := make([]vesta.Address, 0, limit)
	for ptr != nil && uint64(len(members)) < limit {
		members = append(members, *ptr)
		e, err := l.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		ptr = e.Next
	}
	return members, nil
}

// All lists every member in insertion order.
func (l *List) All() ([]vesta.Address, error) {
	var members []vesta.Address
	ptr, err := l.getAddressPtr(headKey)
	if err != nil {
		return nil, err
	}
	for ptr != nil {
		members = append(members, *ptr)
		e, err := l.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		ptr = e.Next
	}
	return members, nil
}

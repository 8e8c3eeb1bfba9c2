/*
Copyright (C) 2026  LVM Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package table

import "iter"

// Key is the key type of a table: integer keys are hashed directly, string
// keys are folded to 64 bit first.
type Key interface {
	int64 | string
}

/*
slot layout:

	| hash  | uint64: 0 = free, ^0 = deleted, everything else occupied
	| key   | int64 or string
	| value | V
*/
type slot[K Key, V any] struct {
	hash  uint64
	key   K
	value V
}

// Table is an open addressing hash table with quadratic probing and prime
// capacities. Pointers returned by Put and Get stay valid until the next Put,
// Remove or Resize.
type Table[K Key, V any] struct {
	length  int
	deleted int
	slots   []slot[K, V]
}

// New creates a table with at least the given capacity.
func New[K Key, V any](capacity int) *Table[K, V] {
	return &Table[K, V]{slots: make([]slot[K, V], SnapToPrime(capacity))}
}

// Len is the number of occupied slots.
func (t *Table[K, V]) Len() int { return t.length }

// Cap is the number of slots.
func (t *Table[K, V]) Cap() int { return len(t.slots) }

// search walks the probe sequence (hash + i²) mod capacity. If the key is
// present its index is returned with found=true. Otherwise index is the slot an
// insert should use: the first tombstone seen, else the first free slot, or -1
// if the sequence was exhausted without finding either.
func (t *Table[K, V]) search(key K, hash uint64) (index int, found bool) {
	capacity := uint64(len(t.slots))
	firstDeleted := -1
	for i := uint64(0); i < capacity; i++ {
		idx := int((hash + i*i) % capacity)
		s := &t.slots[idx]
		switch {
		case s.hash == slotDeleted:
			if firstDeleted < 0 {
				firstDeleted = idx
			}
		case s.hash == slotFree:
			if firstDeleted >= 0 {
				return firstDeleted, false
			}
			return idx, false
		case s.hash == hash && s.key == key:
			return idx, true
		}
	}
	return firstDeleted, false
}

// Put returns the value slot for key, inserting a zero value if the key is new.
// Grows to the next prime >= 2*capacity when the insert would push the load
// factor over 0.75.
func (t *Table[K, V]) Put(key K) *V {
	if float64(t.length+1) > 0.75*float64(len(t.slots)) {
		t.Resize(2 * len(t.slots))
	} else if float64(t.length+t.deleted+1) > 0.75*float64(len(t.slots)) {
		// too many tombstones: rebuild in place
		t.Resize(len(t.slots))
	}

	hash := hashKey(key)
	idx, found := t.search(key, hash)
	for !found && idx < 0 {
		// the quadratic sequence only reaches half of the slots
		t.Resize(2 * len(t.slots))
		idx, found = t.search(key, hash)
	}
	if found {
		return &t.slots[idx].value
	}

	s := &t.slots[idx]
	if s.hash == slotDeleted {
		t.deleted--
	}
	var zero V
	s.hash = hash
	s.key = key
	s.value = zero
	t.length++
	return &s.value
}

// Set stores value under key.
func (t *Table[K, V]) Set(key K, value V) {
	*t.Put(key) = value
}

// Get returns the value slot for key or nil if the key is absent.
func (t *Table[K, V]) Get(key K) *V {
	idx, found := t.search(key, hashKey(key))
	if !found {
		return nil
	}
	return &t.slots[idx].value
}

// Lookup returns a copy of the value stored under key.
func (t *Table[K, V]) Lookup(key K) (value V, ok bool) {
	if p := t.Get(key); p != nil {
		return *p, true
	}
	return value, false
}

// Contains reports whether key is present.
func (t *Table[K, V]) Contains(key K) bool {
	return t.Get(key) != nil
}

// Remove marks the slot of key as deleted. Shrinks to the previous member of
// the growth sequence once less than 20% of the slots are occupied.
func (t *Table[K, V]) Remove(key K) bool {
	idx, found := t.search(key, hashKey(key))
	if !found {
		return false
	}
	var zero slot[K, V]
	t.slots[idx] = zero
	t.slots[idx].hash = slotDeleted
	t.length--
	t.deleted++

	if float64(t.length) < 0.2*float64(len(t.slots)) {
		if target := ShrinkTarget(len(t.slots)); target < len(t.slots) {
			t.Resize(target)
		}
	}
	return true
}

// Resize rebuilds the table with the smallest prime capacity >= newCapacity.
// Tombstones are dropped on the way. Requests smaller than the current length
// are ignored.
func (t *Table[K, V]) Resize(newCapacity int) {
	newCapacity = SnapToPrime(newCapacity)
	if newCapacity < t.length {
		return
	}
	old := t.slots
	for !t.rebuild(old, newCapacity) {
		newCapacity = SnapToPrime(2 * newCapacity)
	}
}

func (t *Table[K, V]) rebuild(old []slot[K, V], capacity int) bool {
	t.slots = make([]slot[K, V], capacity)
	t.deleted = 0
	for i := range old {
		s := &old[i]
		if s.hash == slotFree || s.hash == slotDeleted {
			continue
		}
		idx, _ := t.search(s.key, s.hash)
		if idx < 0 {
			return false
		}
		t.slots[idx] = *s
	}
	return true
}

// All yields every occupied slot in unspecified order. The value pointer may be
// written through; the table must not be modified otherwise while iterating.
func (t *Table[K, V]) All() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		for i := range t.slots {
			s := &t.slots[i]
			if s.hash == slotFree || s.hash == slotDeleted {
				continue
			}
			if !yield(s.key, &s.value) {
				return
			}
		}
	}
}

// Keys yields every key in unspecified order.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

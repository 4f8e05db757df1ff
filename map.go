// Copyright 2026 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flat provides compact containers over contiguous memory: Map, an
// open-addressing hash table from string keys to values of any type, and Vec,
// a growable sequence. Both keep their data in a single flat allocation and
// share one growth policy.
//
// # Map
//
// Map resolves collisions with plain linear probing: a key's natural position
// is hash(key) mod capacity and lookup scans forward from there (wrapping at
// the end of the slot array) until it finds the key or an empty slot. If
// you're not familiar with open-addressing see
// https://en.wikipedia.org/wiki/Open_addressing.
//
// There are no tombstones. An empty slot always means "no key whose probe
// sequence passes through here is stored beyond here", and deletion actively
// maintains that property: after clearing a slot, every entry in the rest of
// the cluster (the contiguous run of occupied slots that follows) is removed
// and reinserted from its own natural position. Entries beyond the first
// empty slot cannot have depended on the deleted one, so the walk stops
// there. This makes Delete O(cluster length) rather than O(1), the usual
// trade of tombstone-free open addressing: lookups never pay for dead slots
// and the table never needs a garbage-collection rehash, but deletes in a
// long cluster do real work.
//
// Growth is proactive. Before an insert that would bring the table to its
// load-factor threshold, the slot array is reallocated at the next capacity
// (growth factor times the current capacity, at minimum one slot larger) and
// every live entry is reinserted against the new capacity. This is a full
// rehash; resizing is infrequent enough, amortized by the growth factor, that
// incremental schemes aren't worth their complexity here. Because growth runs
// before the probe scan, a Put never has to revalidate a slot index across a
// relocation.
//
// The vacant-slot sentinel is the empty string: Map stores keys inline and a
// slot with key "" is vacant. Keys must therefore be non-empty; Put panics on
// an empty key. Both the load factor and the growth factor are tunable per
// table and take effect on the next growth decision.
//
// A Map is NOT goroutine-safe. Callers must supply their own synchronization
// around any use that overlaps a mutating operation.
package flat

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Hash is a seeded hash function over string keys. The seed is fixed per
// table and is used to vary probe sequences between tables.
type Hash func(key string, seed uint64) uint64

// defaultHash hashes the key with xxhash, mixing in the per-table seed.
func defaultHash(key string, seed uint64) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.WriteString(key)
	return d.Sum64()
}

// Slot holds a key and value. An empty key marks a vacant slot.
type Slot[V any] struct {
	key   string
	value V
}

// Key returns the slot's key.
func (s *Slot[V]) Key() string { return s.key }

// Value returns the slot's value.
func (s *Slot[V]) Value() V { return s.value }

// Map is an unordered map from non-empty string keys to values with Put, Get,
// Delete, and All operations, built on linear probing with tombstone-free
// deletion. See the package documentation for the design.
//
// The zero value of a Map is an empty table ready for use; storage is
// allocated on the first insert or reservation. A nil *Map behaves as the
// canonical absent table: queries return empty results and Delete is a no-op,
// but Put on a nil *Map panics.
//
// A Map is NOT goroutine-safe.
type Map[V any] struct {
	// The hash function applied to keys. Nil means defaultHash.
	hash Hash
	seed uint64
	// The allocator for the slot array. Nil means Go's builtin make.
	allocator Allocator[V]
	// slots is the flat bucket array; len(slots) is the table capacity. A
	// slot with an empty key is vacant.
	slots []Slot[V]
	// The number of filled slots.
	count int
	// Tuning parameters. Zero means the package default; both only
	// influence the next growth decision.
	loadFactor   float64
	growthFactor float64
}

// New constructs a Map. If initialCapacity is 0 the map starts with zero
// capacity and allocates on the first insert; otherwise the map is
// preallocated with at least initialCapacity slots and never fewer than the
// default initial capacity (16).
func New[V any](initialCapacity int, options ...Option[V]) *Map[V] {
	m := &Map[V]{
		seed: rand.Uint64(),
	}
	for _, op := range options {
		op.apply(m)
	}
	if initialCapacity > 0 {
		m.Reserve(initialCapacity)
	}
	return m
}

// Put inserts an entry into the map, overwriting the existing value if an
// entry with the same key already exists. The key must be non-empty.
func (m *Map[V]) Put(key string, value V) {
	m.PutFunc(key, value, nil)
}

// PutFunc is Put with a replacement hook: if the key is already present,
// onReplace is called with the outgoing value before the new value becomes
// visible. The hook is not called for a fresh insert. onReplace may be nil.
func (m *Map[V]) PutFunc(key string, value V, onReplace func(old V)) {
	if key == "" {
		panic("flat: Put with empty key")
	}

	// Grow before probing. Growth relocates the slot array and would
	// invalidate any index the scan below produces.
	if m.count+1 >= int(float64(len(m.slots))*m.LoadFactor()) {
		newCapacity := defaultCapacity
		if len(m.slots) > 0 {
			newCapacity = nextCapacity(len(m.slots), m.GrowthFactor())
		}
		m.resize(newCapacity)
	}

	i, ok := m.find(key)
	if i < 0 {
		// Unreachable while the load factor is <= 1: the growth above
		// always leaves at least one vacant slot.
		panic("flat: no vacant slot")
	}
	if ok {
		if onReplace != nil {
			onReplace(m.slots[i].value)
		}
		m.slots[i].value = value
		m.checkInvariants()
		return
	}
	m.slots[i] = Slot[V]{key: key, value: value}
	m.count++
	m.checkInvariants()
}

// Get retrieves the value for the specified key, returning ok=false if the
// key is not present. Get on a nil or empty map returns ok=false.
func (m *Map[V]) Get(key string) (value V, ok bool) {
	if p := m.GetRef(key); p != nil {
		return *p, true
	}
	return value, false
}

// GetRef returns a pointer to the value stored for key, or nil if the key is
// not present. The pointer aliases the table's storage: it allows in-place
// mutation of the value, but is invalidated by any subsequent Put, Delete,
// Reserve, or Close.
func (m *Map[V]) GetRef(key string) *V {
	if m == nil || len(m.slots) == 0 || key == "" {
		return nil
	}
	if i, ok := m.find(key); ok {
		return &m.slots[i].value
	}
	return nil
}

// Delete deletes the entry corresponding to the specified key from the map.
// It is a no-op to delete a non-existent key or to delete from a nil map.
func (m *Map[V]) Delete(key string) {
	m.DeleteFunc(key, nil)
}

// DeleteFunc is Delete with a removal hook: if the key is present, onRemove
// is called with the outgoing value before the entry is removed. onRemove may
// be nil.
//
// Removal repairs the probe cluster in place: every entry after the vacated
// slot, up to the next empty slot, is lifted out and reinserted from its own
// natural hash position so that no surviving key becomes unreachable.
func (m *Map[V]) DeleteFunc(key string, onRemove func(old V)) {
	if m == nil || len(m.slots) == 0 {
		return
	}
	i, ok := m.find(key)
	if !ok {
		return
	}
	if onRemove != nil {
		onRemove(m.slots[i].value)
	}
	m.slots[i] = Slot[V]{}
	m.count--

	// Walk the remainder of the cluster. Each entry is lifted out and
	// reinserted from scratch; it may land back in its current slot, in the
	// vacated one, or anywhere later depending on collisions. The first
	// empty slot bounds the walk: entries beyond it never probed through
	// slot i.
	capacity := uint64(len(m.slots))
	for j := (uint64(i) + 1) % capacity; m.slots[j].key != ""; j = (j + 1) % capacity {
		s := m.slots[j]
		m.slots[j] = Slot[V]{}
		h := m.hashKey(s.key) % capacity
		for m.slots[h].key != "" {
			h++
			if h == capacity {
				h = 0
			}
		}
		m.slots[h] = s
	}
	m.checkInvariants()
}

// All calls yield sequentially, in slot order, for each key and value present
// in the map. If yield returns false, iteration stops. The map may be mutated
// during iteration, though mutations are not guaranteed to be visible to the
// iteration.
func (m *Map[V]) All(yield func(key string, value V) bool) {
	if m == nil {
		return
	}
	// Snapshot the slots so that iteration remains valid if the map grows
	// during iteration.
	slots := m.slots
	for i := range slots {
		if slots[i].key == "" {
			continue
		}
		if !yield(slots[i].key, slots[i].value) {
			return
		}
	}
}

// Len returns the number of entries in the map. Zero for a nil map.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Cap returns the total number of slots in the map. Zero for a nil map.
func (m *Map[V]) Cap() int {
	if m == nil {
		return 0
	}
	return len(m.slots)
}

// LoadFactor returns the table's load-factor threshold: the maximum tolerated
// ratio of entries to slots before an insert triggers growth.
func (m *Map[V]) LoadFactor() float64 {
	if m == nil || m.loadFactor == 0 {
		return defaultLoadFactor
	}
	return m.loadFactor
}

// SetLoadFactor sets the table's load-factor threshold, taking effect on the
// next growth decision. The value must be in (0, 1]: the growth trigger runs
// before the insert that would reach the threshold, so even a load factor of
// 1 leaves at least one vacant slot and probing still terminates.
func (m *Map[V]) SetLoadFactor(f float64) error {
	if f <= 0 || f > 1 {
		return errors.Errorf("flat: load factor %g out of range (0, 1]", f)
	}
	m.loadFactor = f
	return nil
}

// GrowthFactor returns the capacity multiplier applied when the map grows.
func (m *Map[V]) GrowthFactor() float64 {
	if m == nil || m.growthFactor == 0 {
		return defaultGrowthFactor
	}
	return m.growthFactor
}

// SetGrowthFactor sets the capacity multiplier applied when the map grows,
// taking effect on the next growth decision. The value must be greater
// than 1.
func (m *Map[V]) SetGrowthFactor(f float64) error {
	if f <= 1 {
		return errors.Errorf("flat: growth factor %g must be > 1", f)
	}
	m.growthFactor = f
	return nil
}

// Reserve ensures the map has at least minCapacity slots, growing (never
// shrinking) if necessary. Reserving on an unallocated map allocates at least
// the default initial capacity.
func (m *Map[V]) Reserve(minCapacity int) {
	if len(m.slots) == 0 {
		if minCapacity < defaultCapacity {
			minCapacity = defaultCapacity
		}
		m.resize(minCapacity)
		return
	}
	if minCapacity > len(m.slots) {
		m.resize(minCapacity)
	}
}

// Clone returns an independent copy of the map with identical metadata and a
// shallow copy of every slot, vacant slots included. Values (and the strings
// backing keys) are copied as stored, not deep-cloned. Clone of a nil map
// returns nil.
func (m *Map[V]) Clone() *Map[V] {
	if m == nil {
		return nil
	}
	c := &Map[V]{
		hash:         m.hash,
		seed:         m.seed,
		allocator:    m.allocator,
		count:        m.count,
		loadFactor:   m.loadFactor,
		growthFactor: m.growthFactor,
	}
	if m.slots != nil {
		c.slots = c.alloc().Alloc(len(m.slots))
		copy(c.slots, m.slots)
	}
	c.checkInvariants()
	return c
}

// Close releases the map's storage back to its configured allocator, leaving
// the map empty. It is unnecessary to close a map using the default
// allocator. Close is idempotent and a no-op on a nil map.
func (m *Map[V]) Close() {
	m.CloseFunc(nil)
}

// CloseFunc is Close with a cleanup hook: onEach is called once per live
// entry, in slot order, before the storage is released. onEach may be nil.
func (m *Map[V]) CloseFunc(onEach func(key string, value V)) {
	if m == nil || m.slots == nil {
		return
	}
	if onEach != nil {
		for i := range m.slots {
			if m.slots[i].key != "" {
				onEach(m.slots[i].key, m.slots[i].value)
			}
		}
	}
	m.alloc().Free(m.slots)
	m.slots = nil
	m.count = 0
}

func (m *Map[V]) hashKey(key string) uint64 {
	if m.hash == nil {
		return defaultHash(key, m.seed)
	}
	return m.hash(key, m.seed)
}

func (m *Map[V]) alloc() Allocator[V] {
	if m.allocator == nil {
		return defaultAllocator[V]{}
	}
	return m.allocator
}

// find locates key's slot via linear probing. It returns (index, true) if the
// key is present, and otherwise (index of the first vacant slot on the probe
// path, false). If the scan visits every slot without finding the key or a
// vacancy it returns (-1, false); that cannot happen while the load-factor
// invariant holds, but the guard keeps a pathologically full table from
// probing forever. The map must have at least one slot.
func (m *Map[V]) find(key string) (int, bool) {
	capacity := uint64(len(m.slots))
	h := m.hashKey(key) % capacity
	for n := uint64(0); n < capacity; n++ {
		s := &m.slots[h]
		if s.key == "" {
			return int(h), false
		}
		if s.key == key {
			return int(h), true
		}
		h++
		if h == capacity {
			h = 0
		}
	}
	return -1, false
}

// resize reallocates the slot array at newCapacity and reinserts every live
// entry, in original slot order, against the new capacity. The keys are known
// distinct so each reinsertion scans only for a vacancy. The old array is
// released to the allocator.
func (m *Map[V]) resize(newCapacity int) {
	old := m.slots
	m.slots = m.alloc().Alloc(newCapacity)
	m.count = 0

	capacity := uint64(newCapacity)
	for i := range old {
		if old[i].key == "" {
			continue
		}
		h := m.hashKey(old[i].key) % capacity
		for m.slots[h].key != "" {
			h++
			if h == capacity {
				h = 0
			}
		}
		m.slots[h] = old[i]
		m.count++
	}

	if old != nil {
		m.alloc().Free(old)
	}
	m.checkInvariants()
}

// checkInvariants verifies, under the invariants build tag, that every live
// key is reachable from its natural hash position without crossing a vacant
// slot and that the entry count matches the slot array.
func (m *Map[V]) checkInvariants() {
	if !invariants {
		return
	}
	var count int
	for i := range m.slots {
		if m.slots[i].key == "" {
			continue
		}
		count++
		j, ok := m.find(m.slots[i].key)
		if !ok {
			panic(fmt.Sprintf("invariant failed: slot(%d): %q not found\n%s",
				i, m.slots[i].key, m.debugString()))
		}
		if j != i {
			panic(fmt.Sprintf("invariant failed: slot(%d): %q found at slot(%d)\n%s",
				i, m.slots[i].key, j, m.debugString()))
		}
	}
	if count != m.count {
		panic(fmt.Sprintf("invariant failed: found %d live slots, but count is %d\n%s",
			count, m.count, m.debugString()))
	}
}

func (m *Map[V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  count=%d\n", len(m.slots), m.count)
	for i := range m.slots {
		if m.slots[i].key == "" {
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
			continue
		}
		h := m.hashKey(m.slots[i].key) % uint64(len(m.slots))
		fmt.Fprintf(&buf, "  %4d: %q [home=%d]\n", i, m.slots[i].key, h)
	}
	return buf.String()
}

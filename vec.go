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

package flat

import "github.com/pkg/errors"

// Vec is a growable sequence of elements backed by a single contiguous
// allocation. Unlike append on a plain slice, Vec grows by a tunable growth
// factor shared with Map's growth policy, supports order-preserving removal,
// and can run a cleanup hook over its elements when released.
//
// The zero value is an empty sequence ready for use; a nil *Vec behaves as
// the canonical absent sequence for queries. A Vec is NOT goroutine-safe.
type Vec[T any] struct {
	items        []T
	growthFactor float64
}

// NewVec constructs a Vec preallocated for at least initialCapacity elements,
// never fewer than the default initial capacity (16). If initialCapacity is 0
// the sequence allocates on the first push.
func NewVec[T any](initialCapacity int) *Vec[T] {
	v := &Vec[T]{}
	if initialCapacity > 0 {
		v.Reserve(initialCapacity)
	}
	return v
}

// Push appends an item, growing the storage by the growth factor if full.
func (v *Vec[T]) Push(item T) {
	if len(v.items) == cap(v.items) {
		newCapacity := defaultCapacity
		if cap(v.items) > 0 {
			newCapacity = nextCapacity(cap(v.items), v.GrowthFactor())
		}
		v.grow(newCapacity)
	}
	v.items = append(v.items, item)
}

// Pop removes and returns the last item, returning ok=false if the sequence
// is empty or nil.
func (v *Vec[T]) Pop() (item T, ok bool) {
	if v == nil || len(v.items) == 0 {
		return item, false
	}
	n := len(v.items) - 1
	item = v.items[n]
	v.items[n] = *new(T) // release references held by the vacated element
	v.items = v.items[:n]
	return item, true
}

// Delete removes the element at index i, shifting subsequent elements down.
// Out-of-range indices are a no-op.
func (v *Vec[T]) Delete(i int) {
	if v == nil || i < 0 || i >= len(v.items) {
		return
	}
	n := len(v.items) - 1
	copy(v.items[i:], v.items[i+1:])
	v.items[n] = *new(T)
	v.items = v.items[:n]
}

// At returns a pointer to the element at index i. The pointer aliases the
// sequence's storage and is invalidated by any growth.
func (v *Vec[T]) At(i int) *T {
	return &v.items[i]
}

// Slice returns the live elements as a slice sharing the Vec's storage. The
// slice is invalidated by any growth.
func (v *Vec[T]) Slice() []T {
	if v == nil {
		return nil
	}
	return v.items
}

// Len returns the number of elements. Zero for a nil sequence.
func (v *Vec[T]) Len() int {
	if v == nil {
		return 0
	}
	return len(v.items)
}

// Cap returns the total element capacity. Zero for a nil sequence.
func (v *Vec[T]) Cap() int {
	if v == nil {
		return 0
	}
	return cap(v.items)
}

// GrowthFactor returns the capacity multiplier applied when the sequence
// grows.
func (v *Vec[T]) GrowthFactor() float64 {
	if v == nil || v.growthFactor == 0 {
		return defaultGrowthFactor
	}
	return v.growthFactor
}

// SetGrowthFactor sets the capacity multiplier applied when the sequence
// grows, taking effect on the next growth. The value must be greater than 1.
func (v *Vec[T]) SetGrowthFactor(f float64) error {
	if f <= 1 {
		return errors.Errorf("flat: growth factor %g must be > 1", f)
	}
	v.growthFactor = f
	return nil
}

// Reserve ensures capacity for at least minCapacity elements, growing (never
// shrinking) if necessary. Reserving on an unallocated sequence allocates at
// least the default initial capacity.
func (v *Vec[T]) Reserve(minCapacity int) {
	if cap(v.items) == 0 && minCapacity < defaultCapacity {
		minCapacity = defaultCapacity
	}
	if minCapacity > cap(v.items) {
		v.grow(minCapacity)
	}
}

// Clone returns an independent shallow copy with the same capacity and
// metadata. Clone of a nil sequence returns nil.
func (v *Vec[T]) Clone() *Vec[T] {
	if v == nil {
		return nil
	}
	c := &Vec[T]{growthFactor: v.growthFactor}
	if v.items != nil {
		c.items = make([]T, len(v.items), cap(v.items))
		copy(c.items, v.items)
	}
	return c
}

// Clear removes all elements, keeping the storage.
func (v *Vec[T]) Clear() {
	if v == nil {
		return
	}
	clear(v.items)
	v.items = v.items[:0]
}

// Close releases the sequence's storage, leaving it empty. Idempotent and a
// no-op on a nil sequence.
func (v *Vec[T]) Close() {
	v.CloseFunc(nil)
}

// CloseFunc is Close with a cleanup hook: free is called once per element, in
// order, before the storage is released. free may be nil.
func (v *Vec[T]) CloseFunc(free func(item T)) {
	if v == nil || v.items == nil {
		return
	}
	if free != nil {
		for i := range v.items {
			free(v.items[i])
		}
	}
	v.items = nil
}

func (v *Vec[T]) grow(newCapacity int) {
	grown := make([]T, len(v.items), newCapacity)
	copy(grown, v.items)
	v.items = grown
}

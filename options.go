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

// Option provides an interface to do work on a Map while it is being created.
type Option[V any] interface {
	apply(m *Map[V])
}

type hashOption[V any] struct {
	hash Hash
}

func (op hashOption[V]) apply(m *Map[V]) {
	m.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a Map[V].
// The default hashes keys with xxhash.
func WithHash[V any](hash Hash) Option[V] {
	return hashOption[V]{hash}
}

type loadFactorOption[V any] struct {
	f float64
}

func (op loadFactorOption[V]) apply(m *Map[V]) {
	if err := m.SetLoadFactor(op.f); err != nil {
		panic(err)
	}
}

// WithLoadFactor is an option to specify the load-factor threshold for a
// Map[V]. It panics if the value is outside (0, 1]; see Map.SetLoadFactor.
func WithLoadFactor[V any](f float64) Option[V] {
	return loadFactorOption[V]{f}
}

type growthFactorOption[V any] struct {
	f float64
}

func (op growthFactorOption[V]) apply(m *Map[V]) {
	if err := m.SetGrowthFactor(op.f); err != nil {
		panic(err)
	}
}

// WithGrowthFactor is an option to specify the growth multiplier for a
// Map[V]. It panics if the value is not greater than 1; see
// Map.SetGrowthFactor.
func WithGrowthFactor[V any](f float64) Option[V] {
	return growthFactorOption[V]{f}
}

// Allocator specifies an interface for allocating and releasing the slot
// storage used by a Map. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that slots be
// freed then Map.Close must be called in order to ensure Free is called.
type Allocator[V any] interface {
	// Alloc should return a slice equivalent to make([]Slot[V], n).
	Alloc(n int) []Slot[V]

	// Free can optionally release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by Alloc.
	Free(v []Slot[V])
}

type defaultAllocator[V any] struct{}

func (defaultAllocator[V]) Alloc(n int) []Slot[V] {
	return make([]Slot[V], n)
}

func (defaultAllocator[V]) Free(v []Slot[V]) {
}

type allocatorOption[V any] struct {
	allocator Allocator[V]
}

func (op allocatorOption[V]) apply(m *Map[V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option to specify the Allocator to use for a Map[V].
func WithAllocator[V any](allocator Allocator[V]) Option[V] {
	return allocatorOption[V]{allocator}
}

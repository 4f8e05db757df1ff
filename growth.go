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

// Growth policy shared by Map and Vec. Storage starts at defaultCapacity on
// the first insert and is multiplied by the growth factor on each subsequent
// growth.
const (
	defaultCapacity     = 16
	defaultLoadFactor   = 0.75
	defaultGrowthFactor = 2.0
)

// nextCapacity returns the capacity to grow to from the current capacity. The
// result is always strictly larger than capacity: at small sizes (or with a
// growth factor barely above 1) the multiplied capacity can round down to the
// current value, in which case we fall back to capacity+1.
func nextCapacity(capacity int, growthFactor float64) int {
	next := int(float64(capacity) * growthFactor)
	if next <= capacity {
		next = capacity + 1
	}
	return next
}

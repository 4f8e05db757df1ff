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

import (
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	cases := []int{16, 128, 1024, 8192, 1 << 16}
	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n) })
		}
	}
}

func genKeys(start, end int) []string {
	keys := make([]string, end-start)
	for i := range keys {
		keys[i] = strconv.Itoa(start + i)
	}
	return keys
}

func BenchmarkMapGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[string]int, n)
		keys := genKeys(0, n)
		for i, k := range keys {
			m[k] = i
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = m[keys[i%n]]
		}
	}))
	b.Run("impl=flatMap", benchSizes(func(b *testing.B, n int) {
		m := New[int](n)
		keys := genKeys(0, n)
		for i, k := range keys {
			m.Put(k, i)
		}
		_ = perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = m.Get(keys[i%n])
		}
	}))
}

func BenchmarkMapGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[string]int, n)
		for i, k := range genKeys(0, n) {
			m[k] = i
		}
		miss := genKeys(-n, 0)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = m[miss[i%n]]
		}
	}))
	b.Run("impl=flatMap", benchSizes(func(b *testing.B, n int) {
		m := New[int](n)
		for i, k := range genKeys(0, n) {
			m.Put(k, i)
		}
		miss := genKeys(-n, 0)
		_ = perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = m.Get(miss[i%n])
		}
	}))
}

func BenchmarkMapPutGrow(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		keys := genKeys(0, n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := make(map[string]int)
			for j, k := range keys {
				m[k] = j
			}
		}
	}))
	b.Run("impl=flatMap", benchSizes(func(b *testing.B, n int) {
		keys := genKeys(0, n)
		_ = perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := New[int](0)
			for j, k := range keys {
				m.Put(k, j)
			}
		}
	}))
}

func BenchmarkMapPutDelete(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[string]int, n)
		keys := genKeys(0, n)
		for i, k := range keys {
			m[k] = i
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := keys[i%n]
			delete(m, k)
			m[k] = i
		}
	}))
	b.Run("impl=flatMap", benchSizes(func(b *testing.B, n int) {
		m := New[int](n)
		keys := genKeys(0, n)
		for i, k := range keys {
			m.Put(k, i)
		}
		_ = perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := keys[i%n]
			m.Delete(k)
			m.Put(k, i)
		}
	}))
}

func BenchmarkMapIter(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[string]int, n)
		for i, k := range genKeys(0, n) {
			m[k] = i
		}
		b.ResetTimer()
		var tmp int
		for i := 0; i < b.N; i++ {
			for _, v := range m {
				tmp += v
			}
		}
	}))
	b.Run("impl=flatMap", benchSizes(func(b *testing.B, n int) {
		m := New[int](n)
		for i, k := range genKeys(0, n) {
			m.Put(k, i)
		}
		_ = perfbench.Open(b)
		b.ResetTimer()
		var tmp int
		for i := 0; i < b.N; i++ {
			m.All(func(_ string, v int) bool {
				tmp += v
				return true
			})
		}
	}))
}

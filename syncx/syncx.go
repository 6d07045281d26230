// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package syncx contains synchronization helpers shared by the tools.
package syncx

import (
	"sync"

	"github.com/go4org/hashtriemap"
)

// Lazy holds a value computed on first use.
type Lazy[T any] struct {
	once sync.Once
	val  T
}

// Get returns the value, calling f to compute it on the first call.
func (l *Lazy[T]) Get(f func() T) T {
	l.once.Do(func() { l.val = f() })
	return l.val
}

// LimitedWaitGroup is a [sync.WaitGroup] that allows at most a fixed number
// of goroutines to work at the same time.
type LimitedWaitGroup struct {
	wg    sync.WaitGroup
	slots chan struct{}
}

// NewLimitedWaitGroup returns a [LimitedWaitGroup] allowing limit workers.
// A limit below one is treated as one.
func NewLimitedWaitGroup(limit int) *LimitedWaitGroup {
	return &LimitedWaitGroup{slots: make(chan struct{}, max(limit, 1))}
}

// Go runs f in a new goroutine, blocking while all slots are taken.
func (lwg *LimitedWaitGroup) Go(f func()) {
	lwg.Add(1)
	go func() {
		defer lwg.Done()
		f()
	}()
}

// Add takes delta slots, blocking until they are available.
func (lwg *LimitedWaitGroup) Add(delta int) {
	for range delta {
		lwg.slots <- struct{}{}
		lwg.wg.Add(1)
	}
}

// Done releases one slot.
func (lwg *LimitedWaitGroup) Done() {
	<-lwg.slots
	lwg.wg.Done()
}

// Wait blocks until every started goroutine has called Done.
func (lwg *LimitedWaitGroup) Wait() { lwg.wg.Wait() }

// Map is a concurrent map built on a hash-trie. The zero Map is empty and
// ready for use.
type Map[K comparable, V any] struct {
	m hashtriemap.HashTrieMap[K, V]
}

// Load returns the value stored under key.
func (m *Map[K, V]) Load(key K) (value V, ok bool) { return m.m.Load(key) }

// Store sets the value for key.
func (m *Map[K, V]) Store(key K, value V) { m.m.Store(key, value) }

// Range calls f for each key and value in the map until f returns false.
func (m *Map[K, V]) Range(f func(key K, value V) bool) { m.m.Range(f) }

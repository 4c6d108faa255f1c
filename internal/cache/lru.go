// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package cache

import (
	"container/list"
	"sync"
)

// LRU is a fixed-capacity least-recently-used cache of string pairs,
// used for geo target constant names where entries never expire but
// must stay bounded. Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type lruItem struct {
	key   string
	value string
}

// NewLRU returns an LRU holding at most capacity entries. A capacity
// below one is treated as one.
func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the value for key, marking it most recently used.
func (l *LRU) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	el, ok := l.items[key]
	if !ok {
		return "", false
	}
	l.order.MoveToFront(el)
	return el.Value.(*lruItem).value, true
}

// Put stores value under key, evicting the least recently used entry
// when the cache is full.
func (l *LRU) Put(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.items[key]; ok {
		el.Value.(*lruItem).value = value
		l.order.MoveToFront(el)
		return
	}
	if l.order.Len() >= l.capacity {
		oldest := l.order.Back()
		if oldest != nil {
			l.order.Remove(oldest)
			delete(l.items, oldest.Value.(*lruItem).key)
		}
	}
	l.items[key] = l.order.PushFront(&lruItem{key: key, value: value})
}

// Len returns the number of cached entries.
func (l *LRU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

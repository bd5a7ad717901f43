// Copyright (C) 2024 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package format

import (
	"container/list"
	"sync"
)

// Cache memoizes compiled programs by source text, evicting the least
// recently used entry past its capacity. Programs are immutable once
// compiled, so sharing them between callers is safe.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	src     string
	program *Program
}

// NewCache returns a cache holding up to capacity compiled programs. A
// capacity below one disables retention.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  map[string]*list.Element{},
	}
}

// Compile returns the cached program for src, compiling and retaining it on
// a miss. Compile failures are not retained.
func (c *Cache) Compile(src string) (*Program, error) {
	c.mu.Lock()
	if e, ok := c.entries[src]; ok {
		c.order.MoveToFront(e)
		p := e.Value.(cacheEntry).program
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := Compile(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capacity < 1 {
		return p, nil
	}
	if e, ok := c.entries[src]; ok {
		// Lost a compile race; keep the resident program.
		c.order.MoveToFront(e)
		return e.Value.(cacheEntry).program, nil
	}
	c.entries[src] = c.order.PushFront(cacheEntry{src: src, program: p})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(cacheEntry).src)
	}
	return p, nil
}

// Evict drops the program compiled from src, if resident.
func (c *Cache) Evict(src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[src]; ok {
		c.order.Remove(e)
		delete(c.entries, src)
	}
}

// Clear drops every resident program.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = map[string]*list.Element{}
}

// Len returns the number of resident programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// DefaultCache backs the package-level Pack, Unpack and Build helpers.
var DefaultCache = NewCache(256)

// CompileCached compiles src through DefaultCache.
func CompileCached(src string) (*Program, error) {
	return DefaultCache.Compile(src)
}

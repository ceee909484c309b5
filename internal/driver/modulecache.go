package driver

import (
	"sync"

	"oxide/internal/project"
)

// ModuleCache: кеш результатов в памяти процесса по тому же ключу, что и
// DiskCache. Нужен repl и повторным разборам одного крейта.
type ModuleCache struct {
	mu    sync.RWMutex
	byKey map[project.Digest]*DiskPayload
	hits  int
}

// NewModuleCache creates a ModuleCache with the given capacity hint.
func NewModuleCache(capHint int) *ModuleCache {
	return &ModuleCache{byKey: make(map[project.Digest]*DiskPayload, capHint)}
}

func (c *ModuleCache) Get(key project.Digest) (*DiskPayload, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byKey[key]
	if ok {
		c.hits++
	}
	return p, ok
}

func (c *ModuleCache) Put(key project.Digest, p *DiskPayload) {
	if c == nil || p == nil {
		return
	}
	c.mu.Lock()
	c.byKey[key] = p
	c.mu.Unlock()
}

func (c *ModuleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

// Hits counts successful lookups.
func (c *ModuleCache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}

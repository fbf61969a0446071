package token

import (
	"strings"
	"sync"

	"traceScope/internal/model"
)

// Cache holds token metadata keyed by lowercased contract address.
type Cache struct {
	mu   sync.RWMutex
	data map[string]model.TokenMeta
}

func NewCache() *Cache {
	return &Cache{data: make(map[string]model.TokenMeta)}
}

func (c *Cache) Get(address string) (model.TokenMeta, bool) {
	key := strings.ToLower(address)
	c.mu.RLock()
	meta, ok := c.data[key]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(address string, meta model.TokenMeta) {
	key := strings.ToLower(address)
	c.mu.Lock()
	c.data[key] = meta
	c.mu.Unlock()
}

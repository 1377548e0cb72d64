package memprt

import (
	"context"
	"sync"

	"github.com/specialistvlad/palladiogo/internal/prt"
)

// Cache keeps parsed rule packages by path.
type Cache struct {
	mu       sync.Mutex
	packages map[string]*rulePackage
}

var _ prt.Cache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{packages: make(map[string]*rulePackage)}
}

// FlushAll drops all parsed packages.
func (c *Cache) FlushAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.packages)
}

// Len returns the number of cached packages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.packages)
}

func (c *Cache) pkg(ctx context.Context, path string) (*rulePackage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.packages[path]; ok {
		return p, nil
	}
	p, err := loadPackage(ctx, path)
	if err != nil {
		return nil, err
	}
	c.packages[path] = p
	return p, nil
}

// asCache returns c if it is a memprt cache and a fresh cache otherwise.
func asCache(c prt.Cache) *Cache {
	if mc, ok := c.(*Cache); ok && mc != nil {
		return mc
	}
	return NewCache()
}

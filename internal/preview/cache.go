package preview

import "sync"

// MaxCacheEntries bounds a Cache. A full cache is emptied before the next
// insert, which is enough for names seen during one interactive session.
const MaxCacheEntries = 4096

// Cache memoizes Classify by file name. The zero value is ready to use and
// safe for concurrent use.
type Cache struct {
	mu sync.RWMutex
	m  map[string]Category
}

func (c *Cache) Classify(fileName string) Category {
	c.mu.RLock()
	cat, ok := c.m[fileName]
	c.mu.RUnlock()
	if ok {
		return cat
	}

	cat = Classify(fileName)

	c.mu.Lock()
	if c.m == nil || len(c.m) >= MaxCacheEntries {
		c.m = make(map[string]Category)
	}
	c.m[fileName] = cat
	c.mu.Unlock()

	return cat
}

// Len returns the number of cached names.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

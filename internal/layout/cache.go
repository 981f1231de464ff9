package layout

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byName map[string]cacheEntry
}

func newCache() *cache {
	return &cache{byName: make(map[string]cacheEntry, 256)}
}

func (c *cache) get(key string) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	l, ok := c.byName[key]
	return l, ok
}

func (c *cache) put(key string, l *cacheEntry) {
	if c == nil {
		return
	}
	if l == nil {
		delete(c.byName, key)
		return
	}
	c.byName[key] = *l
}

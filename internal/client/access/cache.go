package access

import "sync"

// URLCache maps file ids to signed URLs. Entries are only ever added or
// dropped all at once.
type URLCache struct {
	mu   sync.RWMutex
	urls map[int64]string
}

func NewURLCache() *URLCache {
	return &URLCache{urls: make(map[int64]string)}
}

func (c *URLCache) Get(fileID int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.urls[fileID]
	return u, ok
}

func (c *URLCache) Put(fileID int64, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls[fileID] = url
}

func (c *URLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.urls)
}

func (c *URLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.urls)
}

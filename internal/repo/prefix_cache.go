package repo

import "sync"

// prefixCache maps community IDs to their command prefix. An entry, once
// present, is never removed. The mutex only guards the map and is never held
// across store I/O.
type prefixCache struct {
	mu      sync.Mutex
	entries map[int64]*prefixEntry
}

type entryState int

const (
	// fetching: a claimer is reading the store; other readers use the
	// claimed value meanwhile.
	fetching entryState = iota
	// confirmed: the value was read from or written to the store.
	confirmed
	// stale: the value is served but the next claim refetches it.
	stale
)

type prefixEntry struct {
	prefix string
	// gen is bumped by every confirmed update and every invalidation;
	// reconcile compares it to detect changes made during a create-or-fetch.
	gen   uint64
	state entryState
}

func newPrefixCache() *prefixCache {
	return &prefixCache{entries: make(map[int64]*prefixEntry)}
}

// get returns the cached prefix, if any.
func (c *prefixCache) get(id int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e.prefix, true
	}
	return "", false
}

// claim returns the cached entry. hit is false when the caller must fetch
// from the store: on a miss the entry is first written with def, so that
// concurrent readers see a stable value while the caller talks to the store.
// A stale entry keeps its value and is claimed for refetching.
func (c *prefixCache) claim(id int64, def string) (prefix string, gen uint64, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		c.entries[id] = &prefixEntry{prefix: def, state: fetching}
		return def, 0, false
	}
	if e.state != stale {
		return e.prefix, e.gen, true
	}
	e.state = fetching
	return e.prefix, e.gen, false
}

// reconcile replaces the claimed value with the stored prefix unless the
// entry changed since the claim. It returns the resulting value.
func (c *prefixCache) reconcile(id int64, gen uint64, stored string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		e = &prefixEntry{prefix: stored, state: confirmed}
		c.entries[id] = e
		return stored
	}
	if e.gen == gen {
		e.prefix = stored
		e.state = confirmed
	}
	return e.prefix
}

// abandon marks a claim whose fetch failed, so the next claim retries.
func (c *prefixCache) abandon(id int64, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && e.gen == gen && e.state == fetching {
		e.state = stale
	}
}

// invalidate keeps serving the cached value but makes the next claim
// refetch it. In-flight claims no longer confirm their result.
func (c *prefixCache) invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		e.state = stale
		e.gen++
	}
}

// store records a confirmed update.
func (c *prefixCache) store(id int64, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		e = &prefixEntry{}
		c.entries[id] = e
	}
	e.prefix = prefix
	e.gen++
	e.state = confirmed
}

// len is the number of populated entries.
func (c *prefixCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package property

import "sync"

// cache is the process-wide property-definition cache keyed by
// manufacturer root path, guarded by a coarse reader-writer lock released
// before any cached value is handed back to the caller.
var cache = struct {
	mu      sync.RWMutex
	entries map[string]*Index
}{entries: map[string]*Index{}}

// LoadCached returns the cached Index for root if present, otherwise loads
// it via Load and stores the result before returning it.
func LoadCached(root string) (*Index, error) {
	cache.mu.RLock()
	idx, ok := cache.entries[root]
	cache.mu.RUnlock()
	if ok {
		return idx, nil
	}

	idx, err := Load(root)
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	cache.entries[root] = idx
	cache.mu.Unlock()
	return idx, nil
}

// ClearCache drops every cached entry. Intended for test isolation.
func ClearCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries = map[string]*Index{}
}

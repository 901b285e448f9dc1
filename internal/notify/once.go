// Package notify deduplicates repeated warnings. The owner decides how long a
// Once lives; nothing here is global.
package notify

import "sync"

// Once remembers which keys it has seen. The zero value is ready to use.
type Once struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// First reports whether key is new, and records it.
func (o *Once) First(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = make(map[string]struct{})
	}
	if _, ok := o.seen[key]; ok {
		return false
	}
	o.seen[key] = struct{}{}
	return true
}

// Reset forgets every key.
func (o *Once) Reset() {
	o.mu.Lock()
	o.seen = nil
	o.mu.Unlock()
}

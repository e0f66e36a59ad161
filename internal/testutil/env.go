package testutil

import "sync"

// Env is a map-backed environment. Its Lookup method satisfies
// params.LookupFunc so tests never touch the process environment.
type Env map[string]string

// Lookup reports the binding for name.
func (e Env) Lookup(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}

// FixedIDs returns the given ids in order and then repeats the last one.
// With no ids it always returns "test-request".
type FixedIDs struct {
	mu   sync.Mutex
	ids  []string
	next int
}

// NewFixedIDs creates a deterministic id source.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// Generate returns the next id.
func (f *FixedIDs) Generate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ids) == 0 {
		return "test-request"
	}
	id := f.ids[min(f.next, len(f.ids)-1)]
	f.next++
	return id
}

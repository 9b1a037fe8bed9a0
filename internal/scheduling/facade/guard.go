package facade

import (
	"sort"
	"sync"

	"clinicsched/pkg/model"
)

// ScopeGuard serializes check-and-commit sequences per booking scope within
// this process. Keys are tenant|provider (or tenant|user:<id> without a
// provider) and tenant|resource:<id>.
type ScopeGuard struct {
	mu    sync.Mutex
	locks map[string]*guardEntry
}

type guardEntry struct {
	mu   sync.Mutex
	refs int
}

func NewScopeGuard() *ScopeGuard {
	return &ScopeGuard{locks: make(map[string]*guardEntry)}
}

// Keys returns the sorted lock keys for scope.
func Keys(scope model.Scope) []string {
	keys := make([]string, 0, 2)
	if scope.HasProvider() {
		keys = append(keys, scope.TenantID+"|provider:"+scope.ProviderID)
	} else {
		keys = append(keys, scope.TenantID+"|user:"+scope.UserID)
	}
	if scope.HasResource() {
		keys = append(keys, scope.TenantID+"|resource:"+scope.ResourceID)
	}
	sort.Strings(keys)
	return keys
}

// Lock acquires every key of scope in sorted order and returns the release func.
func (g *ScopeGuard) Lock(scope model.Scope) func() {
	keys := Keys(scope)
	entries := make([]*guardEntry, 0, len(keys))

	g.mu.Lock()
	for _, k := range keys {
		e, ok := g.locks[k]
		if !ok {
			e = &guardEntry{}
			g.locks[k] = e
		}
		e.refs++
		entries = append(entries, e)
	}
	g.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		g.mu.Lock()
		for i, k := range keys {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(g.locks, k)
			}
		}
		g.mu.Unlock()
	}
}

func (g *ScopeGuard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}

// Package health aggregates readiness checks for the scanner's dependencies,
// typically the database and the reference data snapshot.
package health

import (
	"context"
	"sync"
)

// Status is the outcome of one dependency check.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker probes one dependency. Checkers must respect ctx deadlines; a slow
// dependency should report unhealthy, not hang the readiness endpoint.
type Checker func(ctx context.Context) Status

// Registry holds named checkers and runs them on demand.
type Registry struct {
	mu     sync.RWMutex
	checks []namedCheck
}

type namedCheck struct {
	name string
	fn   Checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named checker. Registration order is the reporting order.
func (r *Registry) Register(name string, fn Checker) {
	r.mu.Lock()
	r.checks = append(r.checks, namedCheck{name: name, fn: fn})
	r.mu.Unlock()
}

// CheckAll runs every registered checker and reports the aggregate along with
// the per-dependency results. The aggregate is healthy only when every
// dependency is.
func (r *Registry) CheckAll(ctx context.Context) (healthy bool, statuses []Status) {
	r.mu.RLock()
	checks := make([]namedCheck, len(r.checks))
	copy(checks, r.checks)
	r.mu.RUnlock()

	healthy = true
	statuses = make([]Status, len(checks))
	for i, c := range checks {
		statuses[i] = c.fn(ctx)
		if !statuses[i].Healthy {
			healthy = false
		}
	}
	return healthy, statuses
}

// Package txhooks defers side effects until the database transaction that
// produced them has committed.
package txhooks

import (
	"context"
	"sync"
)

type hooksKey struct{}

// Hooks collects functions to run after a commit.
type Hooks struct {
	mu  sync.Mutex
	fns []func()
}

// New binds an empty hook list to the context.
func New(ctx context.Context) (context.Context, *Hooks) {
	h := &Hooks{}
	return context.WithValue(ctx, hooksKey{}, h), h
}

// AfterCommit queues fn on the hook list bound to ctx. Without one there is
// no transaction to wait for and fn runs right away.
func AfterCommit(ctx context.Context, fn func()) {
	h, _ := ctx.Value(hooksKey{}).(*Hooks)
	if h == nil {
		fn()
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Run calls the queued functions in order and empties the list.
func (h *Hooks) Run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports how many functions are queued.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fns)
}

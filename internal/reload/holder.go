package reload

import (
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/siteplan/internal/config"
)

// ChangeFunc is called after a new result has been published.
type ChangeFunc func(prev, next *config.Result)

// Holder publishes the current configuration result. Readers never block.
type Holder struct {
	current atomic.Pointer[config.Result]

	mu   sync.Mutex
	subs []ChangeFunc
}

// NewHolder returns a Holder publishing initial, which may be nil.
func NewHolder(initial *config.Result) *Holder {
	h := &Holder{}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Current returns the published result.
func (h *Holder) Current() *config.Result { return h.current.Load() }

// OnChange registers fn to run after every swap. Subscribers run in
// registration order on the goroutine that performed the swap.
func (h *Holder) OnChange(fn ChangeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}

// Swap publishes next and notifies subscribers.
func (h *Holder) Swap(next *config.Result) *config.Result {
	prev := h.current.Swap(next)
	h.mu.Lock()
	subs := append([]ChangeFunc(nil), h.subs...)
	h.mu.Unlock()
	for _, fn := range subs {
		fn(prev, next)
	}
	return prev
}

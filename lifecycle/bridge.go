// Package lifecycle provides an in-process walletpay.LifecycleBridge the host
// application drives by calling Foreground and Background on its own
// lifecycle transitions.
package lifecycle

import (
	"sync"

	"github.com/walletpay/walletpay-go/walletpay"
)

type Bridge struct {
	mu        sync.Mutex
	observers []walletpay.LifecycleObserver
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) Register(o walletpay.LifecycleObserver) {
	if o == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.observers {
		if existing == o {
			return
		}
	}
	b.observers = append(b.observers, o)
}

func (b *Bridge) Unregister(o walletpay.LifecycleObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.observers {
		if existing == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Foreground notifies every observer the host returned to the foreground.
func (b *Bridge) Foreground() {
	for _, o := range b.snapshot() {
		o.OnForegrounded()
	}
}

// Background notifies every observer the host left the foreground.
func (b *Bridge) Background() {
	for _, o := range b.snapshot() {
		o.OnBackgrounded()
	}
}

func (b *Bridge) snapshot() []walletpay.LifecycleObserver {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]walletpay.LifecycleObserver(nil), b.observers...)
}

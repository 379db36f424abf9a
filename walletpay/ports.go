package walletpay

import (
	"context"
	"time"
)

// Gateway performs customer request operations against the remote wallet
// service. Implementations bind the client identity and transport; errors
// should carry the GatewayError taxonomy so the orchestrator can classify
// failures.
type Gateway interface {
	CreateCustomerRequest(ctx context.Context, params CreateRequestParams) (*CustomerRequest, error)
	UpdateCustomerRequest(ctx context.Context, requestID string, actions []PaymentAction) (*CustomerRequest, error)
	RetrieveCustomerRequest(ctx context.Context, requestID string) (*CustomerRequest, error)
}

// CreateRequestParams is the payload for creating a customer request.
type CreateRequestParams struct {
	Actions     []PaymentAction
	RedirectURI string
	ReferenceID string
}

// Listener receives exactly one callback per state transition.
type Listener interface {
	OnStateChange(s State)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(State)

func (f ListenerFunc) OnStateChange(s State) { f(s) }

// Dispatcher is the analytics side-channel: one call per state transition
// plus SDK lifecycle events.
type Dispatcher interface {
	SDKInitialized()
	ListenerAdded()
	ListenerRemoved()
	Shutdown()
	StateChanged(s State)
	RequestApproved(req *CustomerRequest)
	ExceptionOccurred(err error, last *CustomerRequest)
}

// LifecycleObserver is notified of host foreground/background transitions.
type LifecycleObserver interface {
	OnForegrounded()
	OnBackgrounded()
}

// LifecycleBridge attaches observers to the host application's lifecycle.
type LifecycleBridge interface {
	Register(o LifecycleObserver)
	Unregister(o LifecycleObserver)
}

// AuthorizationLauncher opens the external authorization surface at the given
// URL. It returns ErrNoHandler when the host has nothing able to handle it.
type AuthorizationLauncher interface {
	Open(ctx context.Context, url string) error
}

// Clock abstracts time so the refresh and poll protocols can be driven
// deterministically in tests. Sleep must return early with the context error
// when the context is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopDispatcher struct{}

func (nopDispatcher) SDKInitialized()                           {}
func (nopDispatcher) ListenerAdded()                            {}
func (nopDispatcher) ListenerRemoved()                          {}
func (nopDispatcher) Shutdown()                                 {}
func (nopDispatcher) StateChanged(State)                        {}
func (nopDispatcher) RequestApproved(*CustomerRequest)          {}
func (nopDispatcher) ExceptionOccurred(error, *CustomerRequest) {}

type nopBridge struct{}

func (nopBridge) Register(LifecycleObserver)   {}
func (nopBridge) Unregister(LifecycleObserver) {}

type noHandlerLauncher struct{}

func (noHandlerLauncher) Open(context.Context, string) error { return ErrNoHandler }

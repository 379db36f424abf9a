package walletpay

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeClock drives the protocols deterministically. With a gate, every Sleep
// parks until tick() releases it or the context is cancelled; without one,
// Sleep returns immediately. Released sleeps advance the clock by their
// duration.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	gate   chan struct{}
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func newGatedClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, gate: make(chan struct{})}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// tick releases exactly one parked sleeper, blocking until it is consumed.
func (c *fakeClock) tick() { c.gate <- struct{}{} }

func (c *fakeClock) sleepDurations() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type fakeGateway struct {
	mu            sync.Mutex
	createFn      func(ctx context.Context, params CreateRequestParams) (*CustomerRequest, error)
	updateFn      func(ctx context.Context, requestID string, actions []PaymentAction) (*CustomerRequest, error)
	retrieveFn    func(ctx context.Context, requestID string) (*CustomerRequest, error)
	createCalls   int
	updateCalls   int
	retrieveCalls int
}

func (g *fakeGateway) CreateCustomerRequest(ctx context.Context, params CreateRequestParams) (*CustomerRequest, error) {
	g.mu.Lock()
	g.createCalls++
	fn := g.createFn
	g.mu.Unlock()
	if fn == nil {
		return nil, errors.New("fake gateway: unexpected create")
	}
	return fn(ctx, params)
}

func (g *fakeGateway) UpdateCustomerRequest(ctx context.Context, requestID string, actions []PaymentAction) (*CustomerRequest, error) {
	g.mu.Lock()
	g.updateCalls++
	fn := g.updateFn
	g.mu.Unlock()
	if fn == nil {
		return nil, errors.New("fake gateway: unexpected update")
	}
	return fn(ctx, requestID, actions)
}

func (g *fakeGateway) RetrieveCustomerRequest(ctx context.Context, requestID string) (*CustomerRequest, error) {
	g.mu.Lock()
	g.retrieveCalls++
	fn := g.retrieveFn
	g.mu.Unlock()
	if fn == nil {
		return nil, errors.New("fake gateway: unexpected retrieve")
	}
	return fn(ctx, requestID)
}

func (g *fakeGateway) created() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls
}

func (g *fakeGateway) retrieved() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.retrieveCalls
}

type fakeDispatcher struct {
	mu          sync.Mutex
	initialized int
	added       int
	removed     int
	shutdowns   int
	changed     []StateKind
	approvals   int
	exceptions  []error
}

func (d *fakeDispatcher) SDKInitialized()  { d.mu.Lock(); d.initialized++; d.mu.Unlock() }
func (d *fakeDispatcher) ListenerAdded()   { d.mu.Lock(); d.added++; d.mu.Unlock() }
func (d *fakeDispatcher) ListenerRemoved() { d.mu.Lock(); d.removed++; d.mu.Unlock() }
func (d *fakeDispatcher) Shutdown()        { d.mu.Lock(); d.shutdowns++; d.mu.Unlock() }

func (d *fakeDispatcher) StateChanged(s State) {
	d.mu.Lock()
	d.changed = append(d.changed, s.Kind)
	d.mu.Unlock()
}

func (d *fakeDispatcher) RequestApproved(*CustomerRequest) {
	d.mu.Lock()
	d.approvals++
	d.mu.Unlock()
}

func (d *fakeDispatcher) ExceptionOccurred(err error, _ *CustomerRequest) {
	d.mu.Lock()
	d.exceptions = append(d.exceptions, err)
	d.mu.Unlock()
}

func (d *fakeDispatcher) approvedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.approvals
}

func (d *fakeDispatcher) exceptionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.exceptions)
}

func (d *fakeDispatcher) shutdownCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdowns
}

type recordingListener struct {
	mu     sync.Mutex
	states []State
}

func (l *recordingListener) OnStateChange(s State) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
}

func (l *recordingListener) kinds() []StateKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]StateKind, 0, len(l.states))
	for _, s := range l.states {
		out = append(out, s.Kind)
	}
	return out
}

func (l *recordingListener) last() (State, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.states) == 0 {
		return State{}, false
	}
	return l.states[len(l.states)-1], true
}

type fakeLauncher struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (f *fakeLauncher) Open(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeLauncher) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

type fakeBridge struct {
	mu           sync.Mutex
	registered   int
	unregistered int
}

func (b *fakeBridge) Register(LifecycleObserver) {
	b.mu.Lock()
	b.registered++
	b.mu.Unlock()
}

func (b *fakeBridge) Unregister(LifecycleObserver) {
	b.mu.Lock()
	b.unregistered++
	b.mu.Unlock()
}

func (b *fakeBridge) unregisteredCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unregistered
}

// pendingRequest builds a request whose token refreshes 300s after creation
// and which expires an hour out.
func pendingRequest(now time.Time) *CustomerRequest {
	return &CustomerRequest{
		ID:     "req-1",
		Status: StatusPending,
		AuthFlow: AuthFlowTriggers{
			MobileURL:   "https://wallet.example/authorize/req-1",
			RefreshesAt: now.Add(300 * time.Second),
		},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

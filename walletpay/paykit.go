// Package walletpay implements the client-side orchestrator for a "pay with
// mobile wallet" authorization flow. A host application submits payment
// actions, the orchestrator creates a customer request against the remote
// wallet service, hands the user off to the external authorization surface,
// polls for approval, and reports every state transition to the registered
// listener and the analytics dispatcher.
package walletpay

import (
	"sync"
	"time"

	"github.com/walletpay/walletpay-go/observability"
)

// Environment selects the integration-failure policy: sandbox fails fast by
// returning integration errors, production logs and continues.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

const (
	defaultRefreshLead  = 60 * time.Second
	defaultPollInterval = 500 * time.Millisecond
)

// PayKit drives one customer request through the authorization flow. A single
// instance manages a single active request at a time.
type PayKit struct {
	clientID string
	env      Environment

	gateway   Gateway
	analytics Dispatcher
	bridge    LifecycleBridge
	launcher  AuthorizationLauncher
	clock     Clock
	log       observability.Logger
	tracer    observability.Tracer

	refreshLead  time.Duration
	pollInterval time.Duration

	// mu guards state, request, and listener. Every mutation under mu is a
	// publish point visible to all background tasks.
	mu       sync.Mutex
	state    State
	request  *CustomerRequest
	listener Listener

	tasks *taskRegistry
}

type Option func(*PayKit)

func WithEnvironment(env Environment) Option {
	return func(k *PayKit) { k.env = env }
}

func WithAnalytics(d Dispatcher) Option {
	return func(k *PayKit) {
		if d != nil {
			k.analytics = d
		}
	}
}

func WithLifecycleBridge(b LifecycleBridge) Option {
	return func(k *PayKit) {
		if b != nil {
			k.bridge = b
		}
	}
}

func WithLauncher(l AuthorizationLauncher) Option {
	return func(k *PayKit) {
		if l != nil {
			k.launcher = l
		}
	}
}

func WithClock(c Clock) Option {
	return func(k *PayKit) {
		if c != nil {
			k.clock = c
		}
	}
}

func WithLogger(l observability.Logger) Option {
	return func(k *PayKit) {
		if l != nil {
			k.log = l
		}
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(k *PayKit) {
		if t != nil {
			k.tracer = t
		}
	}
}

// WithRefreshLead sets the lead window subtracted from the record's
// refresh-before time when scheduling the proactive refresh.
func WithRefreshLead(d time.Duration) Option {
	return func(k *PayKit) {
		if d > 0 {
			k.refreshLead = d
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(k *PayKit) {
		if d > 0 {
			k.pollInterval = d
		}
	}
}

// WithInitialState seeds the orchestrator with a state and record, e.g. when
// resuming a flow whose identifiers the host persisted. Seeding does not
// count as a transition and emits nothing.
func WithInitialState(s State, req *CustomerRequest) Option {
	return func(k *PayKit) {
		k.state = s
		k.request = req
	}
}

// New builds an orchestrator for the given client. The gateway is required;
// everything else defaults to inert implementations.
func New(clientID string, gw Gateway, opts ...Option) *PayKit {
	k := &PayKit{
		clientID:     clientID,
		env:          EnvironmentProduction,
		gateway:      gw,
		analytics:    nopDispatcher{},
		bridge:       nopBridge{},
		launcher:     noHandlerLauncher{},
		clock:        systemClock{},
		log:          observability.NopLogger(),
		tracer:       observability.NopTracer(),
		refreshLead:  defaultRefreshLead,
		pollInterval: defaultPollInterval,
		state:        NotStarted(),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.log = k.log.With(observability.F("component", "walletpay"))
	k.tasks = newTaskRegistry(k.log)
	k.analytics.SDKInitialized()
	k.log.Info("sdk_initialized", observability.F("client_id", clientID), observability.F("environment", string(k.env)))
	return k
}

// RegisterForStateUpdates installs the single listener slot and attaches the
// orchestrator to the host lifecycle.
func (k *PayKit) RegisterForStateUpdates(l Listener) {
	k.mu.Lock()
	k.listener = l
	k.mu.Unlock()

	k.bridge.Register(k)
	k.analytics.ListenerAdded()
	k.log.Info("listener_registered")
}

// UnregisterFromStateUpdates clears the listener, detaches from the host
// lifecycle, emits the shutdown analytics event, and interrupts every
// background task. Safe to call more than once.
func (k *PayKit) UnregisterFromStateUpdates() {
	k.mu.Lock()
	k.listener = nil
	k.mu.Unlock()

	k.bridge.Unregister(k)
	k.analytics.ListenerRemoved()
	k.analytics.Shutdown()
	k.tasks.interruptAll()
	k.log.Info("listener_unregistered")
}

// OnForegrounded implements LifecycleObserver. An authorization handed off to
// the external surface resumes by polling once the host returns to the
// foreground.
func (k *PayKit) OnForegrounded() {
	if k.CurrentState().Kind == StateAuthorizing {
		k.log.Info("foregrounded_while_authorizing")
		k.startPolling()
	}
}

// OnBackgrounded implements LifecycleObserver.
func (k *PayKit) OnBackgrounded() {
	k.log.Debug("application_backgrounded")
}

// CurrentState returns the orchestrator's current state.
func (k *PayKit) CurrentState() State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// setState assigns the new state and synchronously fans it out: exactly one
// analytics dispatch and one listener callback per assignment. Emission
// happens outside the lock so listeners may call back into the orchestrator.
func (k *PayKit) setState(s State) {
	k.mu.Lock()
	k.state = s
	t := transition{state: s, last: k.request, listener: k.listener}
	k.mu.Unlock()

	k.log.Info("state_transition", observability.F("state", string(s.Kind)))
	t.emit(k.analytics)
}

func (k *PayKit) currentRequest() *CustomerRequest {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.request
}

func (k *PayKit) replaceRequest(req *CustomerRequest) {
	k.mu.Lock()
	k.request = req
	k.mu.Unlock()
}

func (k *PayKit) hasListener() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.listener != nil
}

// integrationFailure logs a caller-misuse condition and applies the
// environment policy: the error is returned in sandbox, swallowed in
// production. In both cases the caller must abort the operation.
func (k *PayKit) integrationFailure(op string, ierr *IntegrationError) error {
	k.log.Error("integration_error",
		observability.F("op", op),
		observability.F("reason", ierr.Reason),
	)
	if k.env == EnvironmentProduction {
		return nil
	}
	return ierr
}

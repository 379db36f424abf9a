// Package analytics provides walletpay.Dispatcher implementations: a
// Prometheus-backed dispatcher for hosts with a metrics pipeline and a
// logging dispatcher for everyone else.
package analytics

import (
	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/observability/prometrics"
	"github.com/walletpay/walletpay-go/walletpay"
)

// Prom counts every state transition and lifecycle event.
type Prom struct {
	transitions observability.Counter
	lifecycle   observability.Counter
	approvals   observability.BoundCounter
	exceptions  observability.BoundCounter
}

func NewProm(reg prometrics.Registry) *Prom {
	return &Prom{
		transitions: reg.Counter("state_transitions_total", "State machine transitions by resulting state.", "state"),
		lifecycle:   reg.Counter("lifecycle_events_total", "SDK lifecycle events.", "event"),
		approvals:   reg.Counter("approvals_total", "Customer requests approved.").Bind(),
		exceptions:  reg.Counter("exceptions_total", "Transitions into the exception state.").Bind(),
	}
}

func (p *Prom) SDKInitialized()  { p.lifecycle.Add(1, observability.L("event", "sdk_initialized")) }
func (p *Prom) ListenerAdded()   { p.lifecycle.Add(1, observability.L("event", "listener_added")) }
func (p *Prom) ListenerRemoved() { p.lifecycle.Add(1, observability.L("event", "listener_removed")) }
func (p *Prom) Shutdown()        { p.lifecycle.Add(1, observability.L("event", "shutdown")) }

func (p *Prom) StateChanged(s walletpay.State) {
	p.transitions.Add(1, observability.L("state", string(s.Kind)))
}

func (p *Prom) RequestApproved(_ *walletpay.CustomerRequest) {
	p.approvals.Add(1)
	p.transitions.Add(1, observability.L("state", string(walletpay.StateApproved)))
}

func (p *Prom) ExceptionOccurred(_ error, _ *walletpay.CustomerRequest) {
	p.exceptions.Add(1)
	p.transitions.Add(1, observability.L("state", string(walletpay.StateException)))
}

// Logging writes every analytics event to the structured log.
type Logging struct {
	log observability.Logger
}

func NewLogging(log observability.Logger) *Logging {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Logging{log: log.With(observability.F("component", "analytics"))}
}

func (l *Logging) SDKInitialized()  { l.log.Info("sdk_initialized") }
func (l *Logging) ListenerAdded()   { l.log.Info("listener_added") }
func (l *Logging) ListenerRemoved() { l.log.Info("listener_removed") }
func (l *Logging) Shutdown()        { l.log.Info("shutdown") }

func (l *Logging) StateChanged(s walletpay.State) {
	l.log.Info("state_changed", observability.F("state", string(s.Kind)))
}

func (l *Logging) RequestApproved(req *walletpay.CustomerRequest) {
	l.log.Info("request_approved", observability.F("request_id", req.ID))
}

func (l *Logging) ExceptionOccurred(err error, last *walletpay.CustomerRequest) {
	fields := []observability.Field{observability.F("error", err.Error())}
	if last != nil {
		fields = append(fields, observability.F("request_id", last.ID))
	}
	l.log.Error("exception_occurred", fields...)
}

package walletpay

// transition captures the fan-out a single state assignment produces: one
// analytics dispatch and one listener callback when a listener is registered.
// Computing it is pure; emit performs the side effects after the assignment
// has been published.
type transition struct {
	state    State
	last     *CustomerRequest
	listener Listener
}

func (t transition) emit(d Dispatcher) {
	switch t.state.Kind {
	case StateApproved:
		d.RequestApproved(t.state.Request)
	case StateException:
		d.ExceptionOccurred(t.state.Err, t.last)
	default:
		d.StateChanged(t.state)
	}
	if t.listener != nil {
		t.listener.OnStateChange(t.state)
	}
}

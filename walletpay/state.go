package walletpay

// StateKind identifies the orchestrator's position in the authorization flow.
type StateKind string

const (
	StateNotStarted                        StateKind = "not_started"
	StateCreatingCustomerRequest           StateKind = "creating_customer_request"
	StateUpdatingCustomerRequest           StateKind = "updating_customer_request"
	StateRetrievingExistingCustomerRequest StateKind = "retrieving_existing_customer_request"
	StateReadyToAuthorize                  StateKind = "ready_to_authorize"
	StateAuthorizing                       StateKind = "authorizing"
	StateRefreshing                        StateKind = "refreshing"
	StatePollingTransactionStatus          StateKind = "polling_transaction_status"
	StateApproved                          StateKind = "approved"
	StateDeclined                          StateKind = "declined"
	StateException                         StateKind = "exception"
)

// State is a tagged variant: exactly one value is current at any time.
// Request is populated for ReadyToAuthorize and Approved, Err for Exception.
type State struct {
	Kind    StateKind
	Request *CustomerRequest
	Err     error
}

func NotStarted() State                        { return State{Kind: StateNotStarted} }
func CreatingCustomerRequest() State           { return State{Kind: StateCreatingCustomerRequest} }
func UpdatingCustomerRequest() State           { return State{Kind: StateUpdatingCustomerRequest} }
func RetrievingExistingCustomerRequest() State { return State{Kind: StateRetrievingExistingCustomerRequest} }
func Authorizing() State                       { return State{Kind: StateAuthorizing} }
func Refreshing() State                        { return State{Kind: StateRefreshing} }
func PollingTransactionStatus() State          { return State{Kind: StatePollingTransactionStatus} }
func Declined() State                          { return State{Kind: StateDeclined} }

func ReadyToAuthorize(req *CustomerRequest) State {
	return State{Kind: StateReadyToAuthorize, Request: req}
}

func Approved(req *CustomerRequest) State {
	return State{Kind: StateApproved, Request: req}
}

func Exception(err error) State {
	return State{Kind: StateException, Err: err}
}

// Terminal reports whether the flow has reached an end state. Exception is
// terminal-looking but may be superseded by a later successful call.
func (s State) Terminal() bool {
	switch s.Kind {
	case StateApproved, StateDeclined, StateException:
		return true
	}
	return false
}

func (s State) String() string { return string(s.Kind) }

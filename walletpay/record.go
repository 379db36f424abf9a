package walletpay

import "time"

// RequestStatus is the remote-side status of a customer request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusProcessing RequestStatus = "processing"
	StatusApproved   RequestStatus = "approved"
	StatusDeclined   RequestStatus = "declined"
)

// AuthFlowTriggers carries what is needed to hand the customer over to the
// external authorization surface: the deep-link target and the instant the
// embedded auth token must be refreshed by.
type AuthFlowTriggers struct {
	MobileURL   string
	RefreshesAt time.Time
}

// Grant is the charge permission attached to an approved customer request.
// Hosts use it to capture payment after approval.
type Grant struct {
	ID     string
	Type   string
	Action PaymentAction
}

// CustomerRequest is the remote record representing one payment-authorization
// attempt. It is owned by the orchestrator and replaced wholesale on every
// successful gateway response, never partially mutated.
type CustomerRequest struct {
	ID          string
	Status      RequestStatus
	AuthFlow    AuthFlowTriggers
	Grants      []Grant
	ReferenceID string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// TokenExpired reports whether the request's auth token must be refreshed
// before it can be used to authorize.
func (r *CustomerRequest) TokenExpired(now time.Time) bool {
	return !r.AuthFlow.RefreshesAt.After(now)
}

func (r *CustomerRequest) Clone() *CustomerRequest {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Grants != nil {
		clone.Grants = append([]Grant(nil), r.Grants...)
	}
	return &clone
}

// PaymentActionType distinguishes the kinds of payment intents a customer
// request can carry.
type PaymentActionType string

const (
	ActionOneTimePayment PaymentActionType = "one_time_payment"
	ActionOnFilePayment  PaymentActionType = "on_file_payment"
)

// PaymentAction is a caller-supplied payment intent, passed through to the
// gateway unmodified.
type PaymentAction struct {
	Type     PaymentActionType
	Amount   int64
	Currency string
	ScopeID  string
}

package walletpay

import (
	"context"

	"github.com/walletpay/walletpay-go/observability"
)

// CreateOption customizes a customer request creation.
type CreateOption func(*CreateRequestParams)

// WithRedirectURI sets the URI the authorization surface redirects back to.
func WithRedirectURI(uri string) CreateOption {
	return func(p *CreateRequestParams) { p.RedirectURI = uri }
}

// WithReferenceID attaches the host's own identifier to the request.
func WithReferenceID(id string) CreateOption {
	return func(p *CreateRequestParams) { p.ReferenceID = id }
}

// CreateCustomerRequest creates a new customer request from the given payment
// actions and, on success, schedules the proactive auth-token refresh. The
// call blocks on the gateway round trip; gateway failures become an exception
// state, not a returned error.
func (k *PayKit) CreateCustomerRequest(ctx context.Context, actions []PaymentAction, opts ...CreateOption) error {
	ctx, span := k.tracer.Start(ctx, "walletpay.create_customer_request")
	defer span.End()

	const op = "create_customer_request"
	if !k.hasListener() {
		return k.integrationFailure(op, ErrMissingListener)
	}
	if len(actions) == 0 {
		return k.integrationFailure(op, ErrEmptyPaymentActions)
	}

	params := CreateRequestParams{Actions: actions}
	for _, opt := range opts {
		opt(&params)
	}

	k.log.Info("create_customer_request_start", observability.F("actions", len(actions)))
	k.setState(CreatingCustomerRequest())

	req, err := k.gateway.CreateCustomerRequest(ctx, params)
	if err != nil {
		k.log.Error("create_customer_request_failed", observability.F("error", err.Error()))
		k.setState(Exception(err))
		return nil
	}

	k.replaceRequest(req)
	k.setState(ReadyToAuthorize(req))
	k.scheduleRefresh(req)
	k.log.Info("create_customer_request_success", observability.F("request_id", req.ID))
	return nil
}

// UpdateCustomerRequest replaces the payment actions on an existing customer
// request. Unlike creation, a successful update does not reschedule the
// refresh task.
func (k *PayKit) UpdateCustomerRequest(ctx context.Context, requestID string, actions []PaymentAction) error {
	ctx, span := k.tracer.Start(ctx, "walletpay.update_customer_request")
	defer span.End()

	const op = "update_customer_request"
	if !k.hasListener() {
		return k.integrationFailure(op, ErrMissingListener)
	}
	if len(actions) == 0 {
		return k.integrationFailure(op, ErrEmptyPaymentActions)
	}

	k.log.Info("update_customer_request_start", observability.F("request_id", requestID))
	k.setState(UpdatingCustomerRequest())

	req, err := k.gateway.UpdateCustomerRequest(ctx, requestID, actions)
	if err != nil {
		k.log.Error("update_customer_request_failed", observability.F("error", err.Error()))
		k.setState(Exception(err))
		return nil
	}

	k.replaceRequest(req)
	k.setState(ReadyToAuthorize(req))
	k.log.Info("update_customer_request_success", observability.F("request_id", req.ID))
	return nil
}

// StartWithExistingCustomerRequest resumes a flow from a previously created
// customer request, mapping the remote status onto the local state machine.
// A request found mid-authorization moves straight into polling.
func (k *PayKit) StartWithExistingCustomerRequest(ctx context.Context, requestID string) error {
	ctx, span := k.tracer.Start(ctx, "walletpay.start_with_existing_customer_request")
	defer span.End()

	const op = "start_with_existing_customer_request"
	if !k.hasListener() {
		return k.integrationFailure(op, ErrMissingListener)
	}

	k.log.Info("retrieve_existing_request_start", observability.F("request_id", requestID))
	k.setState(RetrievingExistingCustomerRequest())

	req, err := k.gateway.RetrieveCustomerRequest(ctx, requestID)
	if err != nil {
		k.log.Error("retrieve_existing_request_failed", observability.F("error", err.Error()))
		k.setState(Exception(err))
		return nil
	}

	k.replaceRequest(req)
	k.log.Info("retrieve_existing_request_success",
		observability.F("request_id", req.ID),
		observability.F("status", string(req.Status)),
	)

	switch req.Status {
	case StatusProcessing:
		k.setState(Authorizing())
		k.startPolling()
	case StatusPending:
		k.scheduleRefresh(req)
		k.setState(ReadyToAuthorize(req))
	case StatusApproved:
		k.setState(Approved(req))
	default:
		k.setState(Declined())
	}
	return nil
}

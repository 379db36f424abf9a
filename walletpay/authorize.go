package walletpay

import (
	"context"
	"net/url"

	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/observability/logctx"
)

// AuthorizeCustomerRequest authorizes the stored customer request. The record
// must have been created or retrieved first.
func (k *PayKit) AuthorizeCustomerRequest(ctx context.Context) error {
	const op = "authorize_customer_request"
	req := k.currentRequest()
	if req == nil {
		return k.integrationFailure(op, ErrNoCustomerRequest)
	}
	return k.AuthorizeCustomerRequestWith(ctx, req)
}

// AuthorizeCustomerRequestWith authorizes the supplied customer request,
// replacing the stored one. When the record's auth token is expired the
// authorization is deferred behind a background refresh; otherwise the
// external authorization surface is opened immediately. A launcher failure
// becomes an exception state, never a returned error.
func (k *PayKit) AuthorizeCustomerRequestWith(ctx context.Context, req *CustomerRequest) error {
	ctx, span := k.tracer.Start(ctx, "walletpay.authorize_customer_request")
	defer span.End()

	const op = "authorize_customer_request"
	if !k.hasListener() {
		return k.integrationFailure(op, ErrMissingListener)
	}
	if req == nil {
		return k.integrationFailure(op, ErrNoCustomerRequest)
	}
	target := req.AuthFlow.MobileURL
	if target == "" {
		return k.integrationFailure(op, ErrMissingAuthorizationURL)
	}
	if _, err := url.Parse(target); err != nil {
		return k.integrationFailure(op, ErrInvalidAuthorizationURL)
	}

	k.replaceRequest(req)

	if req.TokenExpired(k.clock.Now()) {
		k.log.Info("auth_token_expired_deferring", observability.F("request_id", req.ID))
		k.deferAuthorization(req.ID)
		return nil
	}

	k.authorize(ctx, req)
	return nil
}

// authorize publishes the Authorizing state and hands the customer to the
// external surface.
func (k *PayKit) authorize(ctx context.Context, req *CustomerRequest) {
	k.setState(Authorizing())
	if err := k.launcher.Open(ctx, req.AuthFlow.MobileURL); err != nil {
		k.log.Error("authorization_launch_failed",
			observability.F("request_id", req.ID),
			observability.F("error", err.Error()),
		)
		k.setState(Exception(&IntegrationError{Reason: "unable to open authorization url", Err: err}))
		return
	}
	k.log.Info("authorization_launched", observability.F("request_id", req.ID))
}

// deferAuthorization re-fetches the customer request on a background task so
// authorization proceeds with a fresh auth token. Any in-flight proactive
// refresh is interrupted first; the two must not race on the record.
func (k *PayKit) deferAuthorization(requestID string) {
	k.tasks.interrupt(purposeRefreshAuthToken)
	k.setState(Refreshing())

	k.tasks.start(purposeDeferredAuthorization, func(ctx context.Context) {
		logger := logctx.FromOr(ctx, k.log)

		fresh, err := k.gateway.RetrieveCustomerRequest(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("deferred_authorization_fetch_failed", observability.F("error", err.Error()))
			k.setState(Exception(err))
			return
		}
		if ctx.Err() != nil {
			return
		}
		// A concurrent public call may have progressed the flow while the
		// fetch was in flight; only proceed if we are still the active step.
		if k.CurrentState().Kind != StateRefreshing {
			logger.Debug("deferred_authorization_superseded")
			return
		}

		k.replaceRequest(fresh)
		k.authorize(ctx, fresh)
	})
}

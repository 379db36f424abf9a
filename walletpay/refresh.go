package walletpay

import (
	"context"
	"time"

	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/observability/logctx"
)

// scheduleRefresh starts the proactive auth-token refresh task for an
// unauthorized customer request. The delay is the record's refresh-before
// time minus the lead window; only creation schedules it.
func (k *PayKit) scheduleRefresh(req *CustomerRequest) {
	delay := req.AuthFlow.RefreshesAt.Sub(k.clock.Now()) - k.refreshLead
	if delay < 0 {
		delay = 0
	}
	k.log.Debug("refresh_scheduled",
		observability.F("request_id", req.ID),
		observability.F("delay", delay.String()),
	)
	k.tasks.start(purposeRefreshAuthToken, func(ctx context.Context) {
		k.refreshLoop(ctx, delay)
	})
}

// refreshLoop keeps the stored record's auth token fresh while the flow sits
// in ReadyToAuthorize. Each round sleeps the same delay, re-fetches, and
// replaces the record wholesale. Fetch failures are treated as transient and
// retried immediately, unbounded. The loop abandons all side effects once its
// context is cancelled.
func (k *PayKit) refreshLoop(ctx context.Context, delay time.Duration) {
	logger := logctx.FromOr(ctx, k.log)

	for {
		if err := k.clock.Sleep(ctx, delay); err != nil {
			return
		}

		for {
			if ctx.Err() != nil {
				return
			}
			req := k.currentRequest()
			if req == nil {
				return
			}
			if !k.clock.Now().Before(req.ExpiresAt) {
				logger.Debug("refresh_abandoned_request_expired", observability.F("request_id", req.ID))
				return
			}
			if k.CurrentState().Kind != StateReadyToAuthorize {
				logger.Debug("refresh_abandoned_state_progressed")
				return
			}

			fresh, err := k.gateway.RetrieveCustomerRequest(ctx, req.ID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("refresh_fetch_failed_retrying", observability.F("error", err.Error()))
				continue
			}
			if ctx.Err() != nil {
				return
			}

			k.replaceRequest(fresh)
			logger.Info("auth_token_refreshed", observability.F("request_id", fresh.ID))
			break
		}
	}
}

package walletpay

import (
	"context"

	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/observability/logctx"
)

// startPolling publishes PollingTransactionStatus and starts the poll task.
func (k *PayKit) startPolling() {
	k.setState(PollingTransactionStatus())
	k.tasks.start(purposePollTransactionStatus, k.pollLoop)
}

// pollLoop checks the remote status at a fixed interval until a terminal
// status is observed. The interval is deliberately constant and the attempt
// count unbounded; interruption aborts silently with no state change.
// TODO: revisit a bounded backoff once the remote service documents an upper
// bound on approval latency.
func (k *PayKit) pollLoop(ctx context.Context) {
	logger := logctx.FromOr(ctx, k.log)

	req := k.currentRequest()
	if req == nil {
		return
	}

	for attempt := 1; ; attempt++ {
		fresh, err := k.gateway.RetrieveCustomerRequest(ctx, req.ID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("poll_fetch_failed",
				observability.F("attempt", attempt),
				observability.F("error", err.Error()),
			)
			k.setState(Exception(err))
			return
		}
		if ctx.Err() != nil {
			return
		}

		k.replaceRequest(fresh)

		switch fresh.Status {
		case StatusApproved:
			logger.Info("transaction_approved",
				observability.F("request_id", fresh.ID),
				observability.F("attempts", attempt),
			)
			k.setState(Approved(fresh))
			return
		case StatusPending:
			if err := k.clock.Sleep(ctx, k.pollInterval); err != nil {
				return
			}
		default:
			logger.Info("transaction_declined",
				observability.F("request_id", fresh.ID),
				observability.F("status", string(fresh.Status)),
			)
			k.setState(Declined())
			return
		}
	}
}

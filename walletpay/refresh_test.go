package walletpay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newRefreshKit(t *testing.T, gw *fakeGateway, clock Clock) *PayKit {
	t.Helper()
	if gw.createFn == nil {
		gw.createFn = func(context.Context, CreateRequestParams) (*CustomerRequest, error) {
			return pendingRequest(testNow), nil
		}
	}
	kit := New("client-1", gw, WithClock(clock), WithEnvironment(EnvironmentSandbox))
	kit.RegisterForStateUpdates(&recordingListener{})
	require.NoError(t, kit.CreateCustomerRequest(context.Background(), oneAction()))
	t.Cleanup(kit.UnregisterFromStateUpdates)
	return kit
}

func TestRefresh_ReplacesRecordAndKeepsDelay(t *testing.T) {
	clock := newGatedClock(testNow)
	refreshed := pendingRequest(testNow)
	refreshed.AuthFlow.MobileURL = "https://wallet.example/authorize/req-1-refreshed"
	refreshed.AuthFlow.RefreshesAt = testNow.Add(600 * time.Second)

	gw := &fakeGateway{
		retrieveFn: func(context.Context, string) (*CustomerRequest, error) {
			return refreshed, nil
		},
	}
	kit := newRefreshKit(t, gw, clock)

	original := kit.currentRequest()
	require.Eventually(t, func() bool {
		sleeps := clock.sleepDurations()
		return len(sleeps) == 1 && sleeps[0] == 240*time.Second
	}, time.Second, time.Millisecond)

	clock.tick()

	require.Eventually(t, func() bool {
		return kit.currentRequest() != original
	}, time.Second, time.Millisecond)
	require.Equal(t, refreshed, kit.currentRequest())
	require.Equal(t, 1, gw.retrieved())

	// The loop re-arms with the original delay, not one derived from the
	// refreshed record.
	require.Eventually(t, func() bool {
		sleeps := clock.sleepDurations()
		return len(sleeps) == 2 && sleeps[1] == 240*time.Second
	}, time.Second, time.Millisecond)

	// The record replacement is silent: state stays ReadyToAuthorize.
	require.Equal(t, StateReadyToAuthorize, kit.CurrentState().Kind)
}

func TestRefresh_AbortsWhenRequestExpired(t *testing.T) {
	clock := newGatedClock(testNow)
	gw := &fakeGateway{
		createFn: func(context.Context, CreateRequestParams) (*CustomerRequest, error) {
			req := pendingRequest(testNow)
			req.ExpiresAt = testNow.Add(100 * time.Second) // before the 240s delay elapses
			return req, nil
		},
	}
	kit := newRefreshKit(t, gw, clock)

	clock.tick()

	require.Eventually(t, func() bool {
		return !kit.tasks.running(purposeRefreshAuthToken)
	}, time.Second, time.Millisecond)
	require.Equal(t, 0, gw.retrieved())
}

func TestRefresh_AbortsWhenStateProgressed(t *testing.T) {
	clock := newGatedClock(testNow)
	gw := &fakeGateway{}
	kit := newRefreshKit(t, gw, clock)

	// Progress the flow before the refresh fires.
	require.NoError(t, kit.AuthorizeCustomerRequestWith(context.Background(), kit.currentRequest()))
	require.Equal(t, StateException, kit.CurrentState().Kind) // default launcher has no handler

	clock.tick()

	require.Eventually(t, func() bool {
		return !kit.tasks.running(purposeRefreshAuthToken)
	}, time.Second, time.Millisecond)
	require.Equal(t, 0, gw.retrieved())
}

func TestRefresh_RetriesImmediatelyOnFetchFailure(t *testing.T) {
	clock := newGatedClock(testNow)
	gw := &fakeGateway{}
	gw.retrieveFn = func(context.Context, string) (*CustomerRequest, error) {
		if gw.retrieved() == 1 {
			return nil, &GatewayError{Kind: GatewayConnectivity}
		}
		return pendingRequest(testNow), nil
	}
	kit := newRefreshKit(t, gw, clock)
	original := kit.currentRequest()

	// One tick only: the failed fetch must be retried without another sleep.
	clock.tick()

	require.Eventually(t, func() bool {
		return gw.retrieved() == 2
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return kit.currentRequest() != original
	}, time.Second, time.Millisecond)
}

func TestRefresh_InterruptionPreventsRecordMutation(t *testing.T) {
	clock := newGatedClock(testNow)
	gw := &fakeGateway{
		retrieveFn: func(context.Context, string) (*CustomerRequest, error) {
			return pendingRequest(testNow), nil
		},
	}
	kit := newRefreshKit(t, gw, clock)
	original := kit.currentRequest()

	// Interrupt right after the task started, before its delay elapses.
	kit.tasks.interrupt(purposeRefreshAuthToken)

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 0, gw.retrieved())
	require.Same(t, original, kit.currentRequest())
}

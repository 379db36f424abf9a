package analytics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/walletpay/walletpay-go/observability/prometrics"
	"github.com/walletpay/walletpay-go/walletpay"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestProm_CountsTransitionsAndLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(prometrics.New("walletpay", "sdk", reg))

	p.SDKInitialized()
	p.ListenerAdded()
	p.StateChanged(walletpay.CreatingCustomerRequest())
	p.StateChanged(walletpay.ReadyToAuthorize(nil))
	p.StateChanged(walletpay.ReadyToAuthorize(nil))
	p.RequestApproved(&walletpay.CustomerRequest{ID: "req-1"})
	p.ExceptionOccurred(errors.New("boom"), nil)
	p.Shutdown()

	const transitions = "walletpay_sdk_state_transitions_total"
	require.Equal(t, 1.0, gatherCounter(t, reg, transitions, map[string]string{"state": "creating_customer_request"}))
	require.Equal(t, 2.0, gatherCounter(t, reg, transitions, map[string]string{"state": "ready_to_authorize"}))
	require.Equal(t, 1.0, gatherCounter(t, reg, transitions, map[string]string{"state": "approved"}))
	require.Equal(t, 1.0, gatherCounter(t, reg, transitions, map[string]string{"state": "exception"}))

	require.Equal(t, 1.0, gatherCounter(t, reg, "walletpay_sdk_approvals_total", nil))
	require.Equal(t, 1.0, gatherCounter(t, reg, "walletpay_sdk_exceptions_total", nil))

	const lifecycle = "walletpay_sdk_lifecycle_events_total"
	require.Equal(t, 1.0, gatherCounter(t, reg, lifecycle, map[string]string{"event": "sdk_initialized"}))
	require.Equal(t, 1.0, gatherCounter(t, reg, lifecycle, map[string]string{"event": "listener_added"}))
	require.Equal(t, 1.0, gatherCounter(t, reg, lifecycle, map[string]string{"event": "shutdown"}))
}

func TestLogging_DoesNotPanicOnNilRecord(t *testing.T) {
	l := NewLogging(nil)
	l.SDKInitialized()
	l.StateChanged(walletpay.Authorizing())
	l.ExceptionOccurred(errors.New("boom"), nil)
	l.RequestApproved(&walletpay.CustomerRequest{ID: "req-1"})
	l.Shutdown()
}

// walletpay-demo runs the full authorization flow against an in-process fake
// wallet service: create -> authorize -> foreground -> poll -> approved.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/walletpay/walletpay-go/analytics"
	"github.com/walletpay/walletpay-go/gateway"
	"github.com/walletpay/walletpay-go/lifecycle"
	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/observability/oteltrace"
	"github.com/walletpay/walletpay-go/observability/prometrics"
	"github.com/walletpay/walletpay-go/observability/zaplogger"
	"github.com/walletpay/walletpay-go/walletpay"
)

// httpLauncher opens the authorization URL by requesting it, standing in for
// the host OS handing the deep link to the wallet application.
type httpLauncher struct {
	http *resty.Client
}

func (l *httpLauncher) Open(ctx context.Context, url string) error {
	resp, err := l.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", walletpay.ErrNoHandler, err)
	}
	if resp.IsError() {
		return fmt.Errorf("walletpay-demo: authorization surface returned %d", resp.StatusCode())
	}
	return nil
}

func main() {
	log := zaplogger.New(
		observability.F("service", getenvDefault("SERVICE_NAME", "walletpay-demo")),
		observability.F("env", getenvDefault("ENV", "dev")),
	)

	service := newFakeWalletService()
	router := chi.NewRouter()
	service.routes(router)
	router.Handle("/metrics", promhttp.Handler())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Error("listen_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}
	baseURL := "http://" + listener.Addr().String()
	service.setBaseURL(baseURL)

	server := &http.Server{Handler: router}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("wallet_service_error", observability.F("error", err.Error()))
		}
	}()
	log.Info("wallet_service_started", observability.F("addr", baseURL))

	cfg := gateway.Defaults()
	cfg.BaseURL = baseURL
	cfg.ClientID = "demo-client"
	cfg.Timeout = 10 * time.Second
	client := gateway.NewClient(cfg, log)

	registry := prometrics.New("walletpay", "sdk", nil)
	bridge := lifecycle.NewBridge()

	kit := walletpay.New("demo-client", client,
		walletpay.WithEnvironment(walletpay.EnvironmentSandbox),
		walletpay.WithAnalytics(analytics.NewProm(registry)),
		walletpay.WithLifecycleBridge(bridge),
		walletpay.WithLauncher(&httpLauncher{http: resty.New()}),
		walletpay.WithLogger(log),
		walletpay.WithTracer(oteltrace.New("walletpay")),
		walletpay.WithPollInterval(200*time.Millisecond),
	)

	done := make(chan walletpay.State, 1)
	kit.RegisterForStateUpdates(walletpay.ListenerFunc(func(s walletpay.State) {
		log.Info("demo_state_observed", observability.F("state", string(s.Kind)))
		if s.Terminal() {
			select {
			case done <- s:
			default:
			}
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	actions := []walletpay.PaymentAction{{
		Type:     walletpay.ActionOneTimePayment,
		Amount:   12_50,
		Currency: "USD",
	}}
	if err := kit.CreateCustomerRequest(ctx, actions, walletpay.WithReferenceID(uuid.NewString())); err != nil {
		log.Error("create_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	if err := kit.AuthorizeCustomerRequest(ctx); err != nil {
		log.Error("authorize_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	// The customer approved on the external surface; coming back to the
	// foreground kicks off polling.
	bridge.Foreground()

	select {
	case final := <-done:
		log.Info("flow_finished",
			observability.F("state", string(final.Kind)),
			observability.F("metrics", baseURL+"/metrics"),
		)
	case <-ctx.Done():
		log.Error("flow_timed_out")
	}

	kit.UnregisterFromStateUpdates()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

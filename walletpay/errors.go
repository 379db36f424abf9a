package walletpay

import (
	"errors"
	"fmt"
)

// ErrNoHandler is returned by an AuthorizationLauncher when the host has no
// handler for the authorization URL. The orchestrator converts it into an
// exception state rather than returning it.
var ErrNoHandler = errors.New("walletpay: no handler available for authorization url")

// IntegrationError marks caller misuse of the SDK. Public operations return
// it only in the sandbox environment; in production it is logged and the
// operation aborts silently.
type IntegrationError struct {
	Reason string
	Err    error
}

func (e *IntegrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("walletpay: %s: %v", e.Reason, e.Err)
	}
	return "walletpay: " + e.Reason
}

func (e *IntegrationError) Unwrap() error { return e.Err }

var (
	ErrMissingListener         = &IntegrationError{Reason: "no state update listener registered"}
	ErrEmptyPaymentActions     = &IntegrationError{Reason: "payment actions must not be empty"}
	ErrNoCustomerRequest       = &IntegrationError{Reason: "no customer request to authorize; create or retrieve one first"}
	ErrMissingAuthorizationURL = &IntegrationError{Reason: "customer request carries no authorization url"}
	ErrInvalidAuthorizationURL = &IntegrationError{Reason: "customer request authorization url is malformed"}
)

// GatewayErrorKind classifies gateway failures.
type GatewayErrorKind string

const (
	GatewayConnectivity GatewayErrorKind = "connectivity"
	GatewayAPI          GatewayErrorKind = "api"
	GatewayUnauthorized GatewayErrorKind = "unauthorized"
)

// GatewayError wraps a failure from the remote wallet service. Gateway
// failures never propagate past the public API; they surface as an exception
// state a later successful call can supersede.
type GatewayError struct {
	Kind       GatewayErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("walletpay: gateway %s error", e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

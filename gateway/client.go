// Package gateway implements the walletpay.Gateway port against the remote
// wallet service's REST API.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/walletpay/walletpay-go/observability"
	"github.com/walletpay/walletpay-go/walletpay"
)

const requestsPath = "/customer-request/v1/requests"

// Client talks to the wallet service over HTTP. It binds the client identity
// from Config; the orchestrator never sees transport concerns.
type Client struct {
	cfg  Config
	http *resty.Client
	log  observability.Logger
}

func NewClient(cfg Config, log observability.Logger) *Client {
	if log == nil {
		log = observability.NopLogger()
	}
	httpc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Authorization", "Client "+cfg.ClientID)

	return &Client{
		cfg:  cfg,
		http: httpc,
		log:  log.With(observability.F("component", "gateway")),
	}
}

func (c *Client) CreateCustomerRequest(ctx context.Context, params walletpay.CreateRequestParams) (*walletpay.CustomerRequest, error) {
	body := requestEnvelope{
		IdempotencyKey: uuid.NewString(),
		Request: requestBody{
			ClientID:    c.cfg.ClientID,
			Channel:     "IN_APP",
			Actions:     toActionDTOs(params.Actions),
			RedirectURL: params.RedirectURI,
			ReferenceID: params.ReferenceID,
		},
	}

	var out responseEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(requestsPath)
	if err != nil {
		return nil, &walletpay.GatewayError{Kind: walletpay.GatewayConnectivity, Message: "create customer request", Err: err}
	}
	if resp.IsError() {
		return nil, apiError(resp, "create customer request")
	}

	c.log.Debug("customer_request_created", observability.F("request_id", out.Request.ID))
	return out.Request.toDomain(), nil
}

func (c *Client) UpdateCustomerRequest(ctx context.Context, requestID string, actions []walletpay.PaymentAction) (*walletpay.CustomerRequest, error) {
	body := requestEnvelope{
		Request: requestBody{
			ClientID: c.cfg.ClientID,
			Actions:  toActionDTOs(actions),
		},
	}

	var out responseEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Patch(requestsPath + "/" + requestID)
	if err != nil {
		return nil, &walletpay.GatewayError{Kind: walletpay.GatewayConnectivity, Message: "update customer request", Err: err}
	}
	if resp.IsError() {
		return nil, apiError(resp, "update customer request")
	}

	c.log.Debug("customer_request_updated", observability.F("request_id", out.Request.ID))
	return out.Request.toDomain(), nil
}

func (c *Client) RetrieveCustomerRequest(ctx context.Context, requestID string) (*walletpay.CustomerRequest, error) {
	var out responseEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(requestsPath + "/" + requestID)
	if err != nil {
		return nil, &walletpay.GatewayError{Kind: walletpay.GatewayConnectivity, Message: "retrieve customer request", Err: err}
	}
	if resp.IsError() {
		return nil, apiError(resp, "retrieve customer request")
	}

	return out.Request.toDomain(), nil
}

func apiError(resp *resty.Response, msg string) error {
	kind := walletpay.GatewayAPI
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = walletpay.GatewayUnauthorized
	}
	return &walletpay.GatewayError{
		Kind:       kind,
		StatusCode: resp.StatusCode(),
		Message:    msg,
	}
}

type requestEnvelope struct {
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
	Request        requestBody `json:"request"`
}

type requestBody struct {
	ClientID    string      `json:"client_id"`
	Channel     string      `json:"channel,omitempty"`
	Actions     []actionDTO `json:"actions"`
	RedirectURL string      `json:"redirect_url,omitempty"`
	ReferenceID string      `json:"reference_id,omitempty"`
}

type actionDTO struct {
	Type     string `json:"type"`
	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	ScopeID  string `json:"scope_id,omitempty"`
}

type responseEnvelope struct {
	Request customerRequestDTO `json:"request"`
}

type authFlowTriggersDTO struct {
	MobileURL   string    `json:"mobile_url"`
	RefreshesAt time.Time `json:"refreshes_at"`
}

type grantDTO struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Action actionDTO `json:"action"`
}

type customerRequestDTO struct {
	ID               string              `json:"id"`
	Status           string              `json:"status"`
	AuthFlowTriggers authFlowTriggersDTO `json:"auth_flow_triggers"`
	Grants           []grantDTO          `json:"grants,omitempty"`
	ReferenceID      string              `json:"reference_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	ExpiresAt        time.Time           `json:"expires_at"`
}

func toActionDTOs(actions []walletpay.PaymentAction) []actionDTO {
	out := make([]actionDTO, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionDTO{
			Type:     string(a.Type),
			Amount:   a.Amount,
			Currency: a.Currency,
			ScopeID:  a.ScopeID,
		})
	}
	return out
}

func (d customerRequestDTO) toDomain() *walletpay.CustomerRequest {
	req := &walletpay.CustomerRequest{
		ID:     d.ID,
		Status: walletpay.RequestStatus(d.Status),
		AuthFlow: walletpay.AuthFlowTriggers{
			MobileURL:   d.AuthFlowTriggers.MobileURL,
			RefreshesAt: d.AuthFlowTriggers.RefreshesAt,
		},
		ReferenceID: d.ReferenceID,
		CreatedAt:   d.CreatedAt,
		ExpiresAt:   d.ExpiresAt,
	}
	for _, g := range d.Grants {
		req.Grants = append(req.Grants, walletpay.Grant{
			ID:   g.ID,
			Type: g.Type,
			Action: walletpay.PaymentAction{
				Type:     walletpay.PaymentActionType(g.Action.Type),
				Amount:   g.Action.Amount,
				Currency: g.Action.Currency,
				ScopeID:  g.Action.ScopeID,
			},
		})
	}
	return req
}

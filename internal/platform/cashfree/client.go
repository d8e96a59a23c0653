// Package cashfree is a thin client for the Cashfree Payments order API.
// It covers exactly the two calls the application makes (order creation and
// order status lookup) and forwards vendor rejections verbatim so route
// handlers can propagate the gateway's status code and message unchanged.
package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

const apiVersion = "2023-08-01"

const (
	sandboxBaseURL    = "https://sandbox.cashfree.com/pg"
	productionBaseURL = "https://api.cashfree.com/pg"
)

// Credentials carries the gateway app id/secret pair plus the environment
// tag ("sandbox" or "production") selecting the API host.
type Credentials struct {
	AppID     string
	SecretKey string
	Env       string
}

// Client issues requests against one Cashfree environment. Calls are single
// attempts with no retry; cancellation rides on the request context.
type Client struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(creds Credentials, logger zerolog.Logger) *Client {
	base := sandboxBaseURL
	if creds.Env == "production" {
		base = productionBaseURL
	}
	return &Client{
		creds:      creds,
		baseURL:    base,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// WithBaseURL overrides the API host. Used by tests to point the client at a
// local stub server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// CustomerDetails identifies the paying customer on an order.
type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// OrderMeta carries the callback URLs registered with the order.
type OrderMeta struct {
	ReturnURL string `json:"return_url"`
	NotifyURL string `json:"notify_url"`
}

// OrderRequest is the payload for order creation. The order id is chosen by
// the caller, not assigned by the gateway.
type OrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderMeta       OrderMeta       `json:"order_meta"`
}

// OrderResponse is the subset of the gateway's order-creation response the
// application consumes.
type OrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderToken       string `json:"order_token"`
}

// OrderStatus is the gateway-owned view of an order. OrderStatus values are
// vendor-defined (ACTIVE, PAID, EXPIRED, ...).
type OrderStatus struct {
	OrderID       string  `json:"order_id"`
	OrderStatus   string  `json:"order_status"`
	PaymentStatus string  `json:"payment_status"`
	OrderAmount   float64 `json:"order_amount"`
}

// APIError is a non-2xx response from the gateway. The status code and
// message are forwarded to API callers unchanged.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cashfree: status %d: %s", e.StatusCode, e.Message)
}

// CreateOrder registers a new payment order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, order *OrderRequest) (*OrderResponse, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp, "failed to create payment order")
	}

	var out OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &out, nil
}

// GetOrder fetches the current gateway-owned status of an order. Nothing is
// cached; every call is a fresh round-trip.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree get order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp, "failed to verify payment")
	}

	var out OrderStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode order status: %w", err)
	}
	return &out, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("x-client-id", c.creds.AppID)
	req.Header.Set("x-client-secret", c.creds.SecretKey)
}

// apiError converts a vendor rejection into an APIError, pulling the message
// out of the response body when one is present. Secrets never appear in the
// log line; only credential presence is recorded.
func (c *Client) apiError(resp *http.Response, fallback string) error {
	raw, _ := io.ReadAll(resp.Body)

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &parsed)

	msg := parsed.Message
	if msg == "" {
		msg = parsed.Error
	}
	if msg == "" {
		msg = fallback
	}

	c.logger.Error().
		Int("status", resp.StatusCode).
		Str("env", c.creds.Env).
		Bool("has_app_id", c.creds.AppID != "").
		Bool("has_secret_key", c.creds.SecretKey != "").
		RawJSON("body", nonEmptyJSON(raw)).
		Msg("cashfree API error")

	return &APIError{StatusCode: resp.StatusCode, Message: msg, Details: raw}
}

func nonEmptyJSON(raw []byte) []byte {
	if json.Valid(raw) && len(raw) > 0 {
		return raw
	}
	return []byte("null")
}

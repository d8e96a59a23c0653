package payment

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// EventPaymentSuccess is the only webhook event type that triggers a side
// effect. Every other type is acknowledged and ignored.
const EventPaymentSuccess = "PAYMENT_SUCCESS_WEBHOOK"

// defaultCustomerID is sent to the gateway when the caller does not supply a
// user id, mirroring the placeholder the subscription flow has always used.
const defaultCustomerID = "12345677"

// CreateOrderRequest is the body of POST /api/payment/create-order.
// Amount and customer email are the only required fields; a zero amount
// counts as missing.
type CreateOrderRequest struct {
	Amount        float64 `json:"amount" validate:"required"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail" validate:"required"`
	CustomerPhone string  `json:"customerPhone"`
	UserID        string  `json:"userId"`
}

// CreateOrderResponse returns the gateway session the browser SDK needs to
// open checkout.
type CreateOrderResponse struct {
	OrderID          string `json:"orderId"`
	PaymentSessionID string `json:"paymentSessionId"`
	OrderToken       string `json:"orderToken"`
}

// VerifyResponse is the normalized view of a gateway order status. IsPaid is
// true only when the vendor reports exactly "PAID".
type VerifyResponse struct {
	OrderID       string  `json:"orderId"`
	OrderStatus   string  `json:"orderStatus"`
	PaymentStatus string  `json:"paymentStatus"`
	OrderAmount   float64 `json:"orderAmount"`
	IsPaid        bool    `json:"isPaid"`
}

// WebhookEvent is a gateway-pushed payment lifecycle notification. Events
// are transient; the gateway may redeliver and no dedup key is tracked.
type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	Order   WebhookOrder   `json:"order"`
	Payment WebhookPayment `json:"payment"`
}

type WebhookOrder struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	CustomerDetails WebhookCustomer `json:"customer_details"`
}

type WebhookCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type WebhookPayment struct {
	CFPaymentID   json.Number `json:"cf_payment_id"`
	PaymentStatus string      `json:"payment_status"`
}

// Entitlement is the server-persisted premium record written by the webhook
// success branch, keyed by user id. The browser's local-storage flag is only
// a cache of this.
type Entitlement struct {
	UserID    string    `db:"user_id" json:"user_id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Premium   bool      `db:"premium" json:"premium"`
	GrantedAt time.Time `db:"granted_at" json:"granted_at"`
}

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// ValidationError is a missing or malformed caller input (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConfigurationError means the gateway credentials are unset (HTTP 500).
// Hint tells the operator which variables to set; it goes into the response
// body, never the secret values themselves.
type ConfigurationError struct {
	Message string
	Hint    string
}

func (e *ConfigurationError) Error() string { return e.Message }

// EnvironmentMismatchError means the configured environment does not match
// the credential flavor inferred from the secret key (HTTP 400).
type EnvironmentMismatchError struct {
	Message string
}

func (e *EnvironmentMismatchError) Error() string { return e.Message }

// SignatureError is a webhook signature mismatch (HTTP 401).
type SignatureError struct{}

func (e *SignatureError) Error() string { return "invalid webhook signature" }

// ---------------------------------------------------------------------------
// Order id generation
// ---------------------------------------------------------------------------

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewOrderID synthesizes a caller-generated order id from the current time
// and a random base36 token. Uniqueness is approximate, not collision-proof
// under high concurrency.
func NewOrderID() string {
	return fmt.Sprintf("order_%d_%s", time.Now().UnixMilli(), randomBase36(9))
}

func randomBase36(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform is broken; fall back to
			// a fixed character rather than panic in the request path.
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Credential flavor sniffing
// ---------------------------------------------------------------------------

// credentialFlavor infers the environment a secret key belongs to from
// substring markers in its value. Fragile, but the exact matching rule is
// load-bearing for mismatch detection, so it stays isolated here rather
// than being replaced with an explicit paired configuration value.
func credentialFlavor(secretKey string) string {
	if strings.Contains(secretKey, "_prod_") {
		return "production"
	}
	if strings.Contains(secretKey, "_test_") || strings.Contains(secretKey, "_sandbox_") {
		return "sandbox"
	}
	return ""
}

package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/carepulse/carepulse/internal/platform/baseurl"
	"github.com/carepulse/carepulse/internal/platform/cashfree"
)

// VendorClient is the slice of the gateway client the service depends on.
type VendorClient interface {
	CreateOrder(ctx context.Context, order *cashfree.OrderRequest) (*cashfree.OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*cashfree.OrderStatus, error)
}

// Service orchestrates the payment pass-through: it validates requests,
// builds gateway payloads, and forwards them. All durable payment state
// lives with the gateway; the only local write is the entitlement record.
type Service struct {
	creds        cashfree.Credentials
	vendor       VendorClient
	urls         *baseurl.Resolver
	entitlements EntitlementRepository
	validate     *validator.Validate
	logger       zerolog.Logger

	eventHandlers map[string]func(ctx context.Context, evt *WebhookEvent) error
}

func NewService(creds cashfree.Credentials, vendor VendorClient, urls *baseurl.Resolver, entitlements EntitlementRepository, logger zerolog.Logger) *Service {
	s := &Service{
		creds:        creds,
		vendor:       vendor,
		urls:         urls,
		entitlements: entitlements,
		validate:     validator.New(),
		logger:       logger,
	}
	// Dispatch table keyed by event type. Unknown types fall through to the
	// default no-op branch; they are acknowledged, never errors.
	s.eventHandlers = map[string]func(ctx context.Context, evt *WebhookEvent) error{
		EventPaymentSuccess: s.handlePaymentSuccess,
	}
	return s
}

func (s *Service) requireCredentials() error {
	if s.creds.AppID == "" || s.creds.SecretKey == "" {
		s.logger.Error().
			Bool("has_app_id", s.creds.AppID != "").
			Bool("has_secret_key", s.creds.SecretKey != "").
			Msg("cashfree credentials missing")
		return &ConfigurationError{
			Message: "Cashfree credentials not configured",
			Hint:    "Please set CASHFREE_APP_ID and CASHFREE_SECRET_KEY in your environment",
		}
	}
	return nil
}

// checkEnvironmentMatch rejects credential/environment combinations where
// the flavor sniffed from the secret contradicts CASHFREE_ENV.
func (s *Service) checkEnvironmentMatch() error {
	flavor := credentialFlavor(s.creds.SecretKey)
	if s.creds.Env == "sandbox" && flavor == "production" {
		s.logger.Error().Msg("environment mismatch: production credentials with sandbox environment")
		return &EnvironmentMismatchError{
			Message: "You are using PRODUCTION credentials (cfsk_ma_prod_...) with SANDBOX environment. " +
				"Either change CASHFREE_ENV to \"production\" or use sandbox credentials",
		}
	}
	if s.creds.Env == "production" && flavor == "sandbox" {
		s.logger.Error().Msg("environment mismatch: sandbox credentials with production environment")
		return &EnvironmentMismatchError{
			Message: "You are using SANDBOX credentials with PRODUCTION environment. " +
				"Please use production credentials for production environment",
		}
	}
	return nil
}

// CreateOrder validates the request, synthesizes an order id and callback
// URLs, and issues a single order-creation call to the gateway.
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	if err := s.requireCredentials(); err != nil {
		return nil, err
	}
	if err := s.checkEnvironmentMatch(); err != nil {
		return nil, err
	}

	orderID := NewOrderID()
	base := s.urls.BaseURL()

	// {order_id} is a gateway template placeholder, substituted by Cashfree
	// on redirect. userId rides along so the success page can key its cache.
	returnParams := "order_id={order_id}"
	if req.UserID != "" {
		returnParams += "&userId=" + req.UserID
	}
	returnURL := s.urls.EnsureHTTPS(base + "/payment/success?" + returnParams)
	notifyURL := s.urls.EnsureHTTPS(base + "/api/payment/webhook")

	customerID := req.UserID
	if customerID == "" {
		customerID = defaultCustomerID
	}
	customerName := req.CustomerName
	if customerName == "" {
		customerName = "Customer"
	}
	customerPhone := req.CustomerPhone
	if customerPhone == "" {
		customerPhone = "9999999999"
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("env", s.creds.Env).
		Str("base_url", base).
		Str("return_url", returnURL).
		Str("notify_url", notifyURL).
		Bool("has_app_id", s.creds.AppID != "").
		Bool("has_secret_key", s.creds.SecretKey != "").
		Msg("creating cashfree order")

	resp, err := s.vendor.CreateOrder(ctx, &cashfree.OrderRequest{
		OrderID:       orderID,
		OrderAmount:   req.Amount,
		OrderCurrency: "INR",
		CustomerDetails: cashfree.CustomerDetails{
			CustomerID:    customerID,
			CustomerName:  customerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: customerPhone,
		},
		OrderMeta: cashfree.OrderMeta{
			ReturnURL: returnURL,
			NotifyURL: notifyURL,
		},
	})
	if err != nil {
		return nil, err
	}

	return &CreateOrderResponse{
		OrderID:          resp.OrderID,
		PaymentSessionID: resp.PaymentSessionID,
		OrderToken:       resp.OrderToken,
	}, nil
}

// Verify fetches the gateway's current view of an order and normalizes the
// status to a paid/not-paid boolean. Every call is a fresh round-trip.
func (s *Service) Verify(ctx context.Context, orderID string) (*VerifyResponse, error) {
	if orderID == "" {
		return nil, &ValidationError{Message: "Order ID is required"}
	}
	if err := s.requireCredentials(); err != nil {
		return nil, err
	}

	st, err := s.vendor.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &VerifyResponse{
		OrderID:       st.OrderID,
		OrderStatus:   st.OrderStatus,
		PaymentStatus: st.PaymentStatus,
		OrderAmount:   st.OrderAmount,
		IsPaid:        st.OrderStatus == "PAID",
	}, nil
}

// HandleWebhook verifies the (optional) signature and dispatches the event.
// The caller acknowledges with 200 on a nil return regardless of whether
// the event type was handled, so the gateway does not retry events we never
// intended to act on.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.creds.SecretKey == "" {
		return &ConfigurationError{Message: "Webhook secret not configured"}
	}

	// When the gateway sends no signature header, verification is skipped
	// entirely. Making the header mandatory would break test-mode deliveries
	// that omit it.
	if signature != "" {
		if err := s.verifySignature(body, signature); err != nil {
			return err
		}
	}

	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("decode webhook body: %w", err)
	}

	handler, ok := s.eventHandlers[evt.Type]
	if !ok {
		s.logger.Debug().Str("type", evt.Type).Msg("ignoring unhandled webhook event type")
		return nil
	}
	return handler(ctx, &evt)
}

// verifySignature recomputes an HMAC-SHA256 over the re-serialized JSON
// body. Re-serialization is not guaranteed to reproduce the gateway's
// original byte representation; a compatible sender must sign the same
// canonical form.
func (s *Service) verifySignature(body []byte, signature string) error {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("decode webhook body: %w", err)
	}
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return fmt.Errorf("reserialize webhook body: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(s.creds.SecretKey))
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return &SignatureError{}
	}
	return nil
}

func (s *Service) handlePaymentSuccess(ctx context.Context, evt *WebhookEvent) error {
	s.logger.Info().
		Str("order_id", evt.Data.Order.OrderID).
		Float64("order_amount", evt.Data.Order.OrderAmount).
		Str("payment_id", evt.Data.Payment.CFPaymentID.String()).
		Str("payment_status", evt.Data.Payment.PaymentStatus).
		Msg("payment successful")

	if s.entitlements == nil {
		return nil
	}

	userID := evt.Data.Order.CustomerDetails.CustomerID
	if userID == "" || userID == defaultCustomerID {
		// Anonymous checkout: there is no account to attach the premium
		// record to. The event is still acknowledged.
		s.logger.Warn().Str("order_id", evt.Data.Order.OrderID).Msg("payment success without user id; entitlement not recorded")
		return nil
	}

	ent := &Entitlement{
		UserID:    userID,
		OrderID:   evt.Data.Order.OrderID,
		Premium:   true,
		GrantedAt: time.Now().UTC(),
	}
	if err := s.entitlements.Upsert(ctx, ent); err != nil {
		// Always-ack policy: a persistence failure is logged but must not
		// turn into a non-2xx that makes the gateway retry forever.
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record entitlement")
	}
	return nil
}

// EntitlementForUser reads the premium record for a user. A missing record
// means not premium; it is not an error.
func (s *Service) EntitlementForUser(ctx context.Context, userID string) (*Entitlement, error) {
	if userID == "" {
		return nil, &ValidationError{Message: "User ID is required"}
	}
	if s.entitlements == nil {
		return &Entitlement{UserID: userID, Premium: false}, nil
	}
	ent, err := s.entitlements.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return &Entitlement{UserID: userID, Premium: false}, nil
	}
	return ent, nil
}

package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepulse/carepulse/internal/platform/cashfree"
)

// SignatureHeader is the gateway's webhook signature header. It is optional;
// when absent, signature verification is skipped.
const SignatureHeader = "x-cashfree-signature"

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the payment pass-through endpoints. These are
// public: the gateway calls the webhook and the browser calls the rest
// before any session exists.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/payment")
	g.POST("/create-order", h.CreateOrder)
	g.GET("/verify", h.Verify)
	g.POST("/webhook", h.Webhook)
}

// RegisterEntitlementRoutes mounts the entitlement read endpoint on the
// authenticated API group.
func (h *Handler) RegisterEntitlementRoutes(api *echo.Group) {
	api.GET("/entitlements/:userId", h.GetEntitlement)
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return h.writeError(c, err)
	}
	resp, err := h.svc.CreateOrder(c.Request().Context(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Verify(c echo.Context) error {
	resp, err := h.svc.Verify(c.Request().Context(), c.QueryParam("order_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.writeError(c, err)
	}
	sig := c.Request().Header.Get(SignatureHeader)
	if err := h.svc.HandleWebhook(c.Request().Context(), body, sig); err != nil {
		return h.writeError(c, err)
	}
	// Always ack on the non-exceptional path, including unhandled event
	// types, so the gateway does not retry unnecessarily.
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) GetEntitlement(c echo.Context) error {
	ent, err := h.svc.EntitlementForUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ent)
}

// writeError converts the payment error taxonomy into JSON error bodies.
// No error escapes a route boundary unwrapped.
func (h *Handler) writeError(c echo.Context, err error) error {
	var (
		validationErr *ValidationError
		configErr     *ConfigurationError
		mismatchErr   *EnvironmentMismatchError
		signatureErr  *SignatureError
		vendorErr     *cashfree.APIError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationErr.Message})

	case errors.As(err, &configErr):
		body := map[string]string{"error": configErr.Message}
		if configErr.Hint != "" {
			body["message"] = configErr.Hint
		}
		return c.JSON(http.StatusInternalServerError, body)

	case errors.As(err, &mismatchErr):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "Environment Mismatch",
			"message": mismatchErr.Message,
		})

	case errors.As(err, &signatureErr):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})

	case errors.As(err, &vendorErr):
		// Vendor rejections are forwarded verbatim: their status code, their
		// message, and the raw response body as details.
		body := map[string]interface{}{
			"error":  vendorErr.Message,
			"status": vendorErr.StatusCode,
		}
		if len(vendorErr.Details) > 0 && json.Valid(vendorErr.Details) {
			body["details"] = json.RawMessage(vendorErr.Details)
		}
		return c.JSON(vendorErr.StatusCode, body)

	default:
		h.logger.Error().Err(err).Msg("payment handler error")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}
}

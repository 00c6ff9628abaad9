package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viralacademy/academy-api/internal/service"
	"github.com/viralacademy/academy-api/internal/util"
)

type BillingHandler struct {
	billing *service.BillingService
}

func RegisterBilling(e *echo.Echo, auth *service.AuthService, billing *service.BillingService) {
	handler := &BillingHandler{billing: billing}

	// The webhook authenticates by signature, not by bearer token.
	e.POST("/api/v1/billing/webhook", handler.webhook)
	e.GET("/api/v1/me/subscription", handler.subscription, RequireAuth(auth))
}

func (h *BillingHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read payload"))
	}
	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.billing.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookSignature):
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		case errors.Is(err, service.ErrWebhookPayload):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			// Stripe retries on 5xx, which is what we want for transient
			// database failures.
			return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"received": true})
}

func (h *BillingHandler) subscription(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	sub, err := h.billing.Current(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	if sub == nil {
		return c.JSON(http.StatusOK, util.Envelope{"subscription": nil, "active": false})
	}
	return c.JSON(http.StatusOK, util.Envelope{"subscription": sub, "active": sub.IsActive()})
}

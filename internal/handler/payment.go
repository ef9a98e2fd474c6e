package handler

import (
	"errors"
	"io"
	"net/http"

	"promptpay-checkout/internal/dto"
	"promptpay-checkout/internal/repository"
	"promptpay-checkout/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	webhookService *service.WebhookService
	log            *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, webhookService *service.WebhookService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookService: webhookService,
		log:            log,
	}
}

func (h *PaymentHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	result, err := h.paymentService.Checkout(ctx, req.Amount)
	if errors.Is(err, service.ErrInvalidAmount) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid amount"})
	}
	if err != nil {
		h.log.Error("checkout failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create charge or save order"})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) PaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()
	chargeID := c.Param("chargeId")

	result, err := h.paymentService.PaymentStatus(ctx, chargeID)
	if err != nil {
		h.log.Error("payment status failed", zap.String("charge_id", chargeID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve charge"})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("orderId")

	result, err := h.paymentService.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}
	if err != nil {
		h.log.Error("get order failed", zap.String("order_id", orderID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load order"})
	}

	return c.JSON(http.StatusOK, result)
}

// Webhook acknowledges every structurally valid event with 200, including
// ones this system ignores, so the sender does not retry business
// outcomes. Only infrastructure failure returns 500.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	outcome, err := h.webhookService.HandleWebhook(ctx, body)
	if err != nil {
		h.log.Error("webhook processing failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process webhook"})
	}

	if outcome == service.WebhookMalformed {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Malformed webhook payload"})
	}

	return c.JSON(http.StatusOK, map[string]string{"received": string(outcome)})
}

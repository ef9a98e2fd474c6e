package dto

import "promptpay-checkout/internal/model"

type CheckoutRequest struct {
	Amount int64 `json:"amount"`
}

type CheckoutResponse struct {
	Charge    *model.Charge `json:"charge"`
	OrderID   string        `json:"orderId"`
	QRCodeURL string        `json:"qrCodeUrl"`
}

type PaymentStatusResponse struct {
	ID       string             `json:"id"`
	Status   model.ChargeStatus `json:"status"`
	Amount   int64              `json:"amount"`
	Paid     bool               `json:"paid"`
	Currency string             `json:"currency"`
	Source   *model.Source      `json:"source"`
}

type OrderResponse struct {
	OrderID         string                `json:"orderId"`
	PaymentChargeID string                `json:"paymentChargeId"`
	Amount          int64                 `json:"amount"`
	Currency        string                `json:"currency"`
	Status          model.OrderStatus     `json:"status"`
	PaymentDetails  *model.PaymentDetails `json:"paymentDetails,omitempty"`
}

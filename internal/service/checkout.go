package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"promptpay-checkout/internal/client"
	"promptpay-checkout/internal/dto"
	"promptpay-checkout/internal/model"
	"promptpay-checkout/internal/repository"

	"go.uber.org/zap"
)

const (
	sourceTypePromptPay = "promptpay"
	checkoutCurrency    = "THB"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// PaymentService drives the checkout flow and the status poll. Mutation
// of stored orders goes through the reconciler only.
type PaymentService struct {
	omiseClient client.OmiseClient
	orderRepo   repository.OrderRepository
	reconciler  *Reconciler
	log         *zap.Logger
}

func NewPaymentService(
	omiseClient client.OmiseClient,
	orderRepo repository.OrderRepository,
	reconciler *Reconciler,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		omiseClient: omiseClient,
		orderRepo:   orderRepo,
		reconciler:  reconciler,
		log:         log,
	}
}

// Checkout creates a promptpay source, charges it, and persists a pending
// order bound to the charge. Any step failing fails the whole request; the
// order insert is the last step, so no order is ever left referencing a
// charge that was not created.
func (s *PaymentService) Checkout(ctx context.Context, amount int64) (*dto.CheckoutResponse, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	source, err := s.omiseClient.CreateSource(ctx, sourceTypePromptPay, amount, checkoutCurrency)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	qrCodeURL := source.ScannableCode.Image.DownloadURI
	if qrCodeURL == "" {
		return nil, fmt.Errorf("source %s carries no scannable code", source.ID)
	}

	charge, err := s.omiseClient.CreateCharge(ctx, amount, source.ID, checkoutCurrency)
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	orderID, err := s.orderRepo.Create(ctx, &model.Order{
		PaymentChargeID: charge.ID,
		Amount:          charge.Amount,
		Currency:        charge.Currency,
		Status:          model.OrderStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.log.Info("checkout: order created",
		zap.String("order_id", orderID),
		zap.String("charge_id", charge.ID),
		zap.Int64("amount", charge.Amount))

	return &dto.CheckoutResponse{
		Charge:    charge,
		OrderID:   orderID,
		QRCodeURL: qrCodeURL,
	}, nil
}

// PaymentStatus retrieves the charge fresh from the processor. When the
// charge reports a terminal outcome the stored order is reconciled as a
// side effect; anomalous reconciliation outcomes are logged, never
// surfaced to the poller.
func (s *PaymentService) PaymentStatus(ctx context.Context, chargeID string) (*dto.PaymentStatusResponse, error) {
	charge, err := s.omiseClient.RetrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("retrieve charge: %w", err)
	}

	if model.OrderStatusForCharge(charge.Status).IsTerminal() {
		result, err := s.reconciler.Reconcile(ctx, charge)
		if err != nil {
			return nil, fmt.Errorf("reconcile polled charge: %w", err)
		}
		if result == ReconcileConflict {
			s.log.Warn("poll: conflicting charge outcome", zap.String("charge_id", chargeID))
		}
	}

	return &dto.PaymentStatusResponse{
		ID:       charge.ID,
		Status:   charge.Status,
		Amount:   charge.Amount,
		Paid:     charge.Paid,
		Currency: charge.Currency,
		Source:   charge.Source,
	}, nil
}

// GetOrder returns the stored order by its store-assigned id.
func (s *PaymentService) GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := &dto.OrderResponse{
		OrderID:         order.ID,
		PaymentChargeID: order.PaymentChargeID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          order.Status,
	}
	if len(order.PaymentDetails) > 0 {
		var details model.PaymentDetails
		if err := json.Unmarshal(order.PaymentDetails, &details); err == nil {
			resp.PaymentDetails = &details
		}
	}

	return resp, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"promptpay-checkout/internal/model"
	"promptpay-checkout/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ReconcileResult classifies the outcome of applying a charge snapshot to
// the stored order. All of these are business outcomes, not errors; infra
// failures come back as a separate non-nil error.
type ReconcileResult string

const (
	// ReconcileApplied: the order moved from pending into the terminal
	// status reported by the snapshot.
	ReconcileApplied ReconcileResult = "applied"
	// ReconcileAlreadyApplied: the snapshot reports the status the order
	// already holds (re-delivery, or the loser of a concurrent race).
	ReconcileAlreadyApplied ReconcileResult = "already_applied"
	// ReconcileNoChange: the snapshot carries no terminal outcome.
	ReconcileNoChange ReconcileResult = "no_change"
	// ReconcileNotFound: no order is bound to the snapshot's charge id.
	ReconcileNotFound ReconcileResult = "not_found"
	// ReconcileConflict: the order is terminal and the snapshot reports a
	// different terminal status. Never auto-resolved.
	ReconcileConflict ReconcileResult = "conflict"
)

// ErrEmptyChargeID rejects snapshots that cannot be keyed to an order.
var ErrEmptyChargeID = errors.New("charge snapshot has empty id")

// Reconciler converges stored order state onto the processor-reported
// charge state. At most one terminal transition is ever durably applied
// per order: the transition is a single conditional update guarded by
// "status is still pending", so concurrent callers cannot both win.
type Reconciler struct {
	orderRepo repository.OrderRepository
	log       *zap.Logger
}

func NewReconciler(orderRepo repository.OrderRepository, log *zap.Logger) *Reconciler {
	return &Reconciler{
		orderRepo: orderRepo,
		log:       log,
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, charge *model.Charge) (ReconcileResult, error) {
	if charge == nil || charge.ID == "" {
		return "", ErrEmptyChargeID
	}

	order, err := r.orderRepo.FindByChargeID(ctx, charge.ID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		// expected for charges this system never created, or
		// cross-environment noise
		r.log.Info("reconcile: no order for charge", zap.String("charge_id", charge.ID))
		return ReconcileNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("find order by charge id: %w", err)
	}

	mapped := model.OrderStatusForCharge(charge.Status)
	if !mapped.IsTerminal() {
		return ReconcileNoChange, nil
	}

	details, err := marshalDetails(charge)
	if err != nil {
		return "", fmt.Errorf("marshal payment details: %w", err)
	}

	switch {
	case order.Status == mapped:
		return r.repeatDelivery(ctx, order, details)

	case order.Status == model.OrderStatusPending:
		applied, err := r.orderRepo.UpdateStatusIfPending(ctx, order.ID, mapped, details)
		if err != nil {
			return "", fmt.Errorf("apply terminal transition: %w", err)
		}
		if applied {
			r.log.Info("reconcile: order transitioned",
				zap.String("order_id", order.ID),
				zap.String("charge_id", charge.ID),
				zap.String("status", string(mapped)))
			return ReconcileApplied, nil
		}
		// lost the race against a concurrent reconciliation; re-read to
		// classify what the winner wrote
		return r.classifyAfterLostRace(ctx, charge.ID, mapped, details)

	default:
		r.log.Warn("reconcile: conflicting terminal status",
			zap.String("order_id", order.ID),
			zap.String("charge_id", charge.ID),
			zap.String("stored", string(order.Status)),
			zap.String("reported", string(mapped)))
		return ReconcileConflict, nil
	}
}

// repeatDelivery handles a snapshot reporting the terminal status already
// stored: refresh the snapshot if it differs, otherwise leave the record
// untouched.
func (r *Reconciler) repeatDelivery(ctx context.Context, order *model.Order, details datatypes.JSON) (ReconcileResult, error) {
	if !bytes.Equal(order.PaymentDetails, details) {
		if err := r.orderRepo.UpdateDetails(ctx, order.ID, details); err != nil {
			return "", fmt.Errorf("refresh payment details: %w", err)
		}
	}
	return ReconcileAlreadyApplied, nil
}

func (r *Reconciler) classifyAfterLostRace(ctx context.Context, chargeID string, mapped model.OrderStatus, details datatypes.JSON) (ReconcileResult, error) {
	current, err := r.orderRepo.FindByChargeID(ctx, chargeID)
	if err != nil {
		return "", fmt.Errorf("re-read order after failed precondition: %w", err)
	}

	if current.Status == mapped {
		return r.repeatDelivery(ctx, current, details)
	}

	r.log.Warn("reconcile: lost race to a different terminal status",
		zap.String("order_id", current.ID),
		zap.String("charge_id", chargeID),
		zap.String("stored", string(current.Status)),
		zap.String("reported", string(mapped)))
	return ReconcileConflict, nil
}

func marshalDetails(charge *model.Charge) (datatypes.JSON, error) {
	return json.Marshal(model.PaymentDetails{
		ChargeID: charge.ID,
		Amount:   charge.Amount,
		Currency: charge.Currency,
		Paid:     charge.Paid,
	})
}

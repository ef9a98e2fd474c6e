package model

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
	OrderStatusExpired OrderStatus = "expired"
)

// IsTerminal reports whether no further transition is defined out of s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusExpired:
		return true
	}
	return false
}

// CanTransition reports whether from → to is a valid order transition.
// The only valid moves are pending into a terminal status; a terminal
// status never regresses.
func CanTransition(from, to OrderStatus) bool {
	return from == OrderStatusPending && to.IsTerminal()
}

// OrderStatusForCharge maps the processor's charge status vocabulary onto
// the order state machine. The mapping is total: anything the processor
// reports that is not a recognized terminal marker leaves the order
// pending.
func OrderStatusForCharge(s ChargeStatus) OrderStatus {
	switch s {
	case ChargeStatusSuccessful:
		return OrderStatusPaid
	case ChargeStatusFailed:
		return OrderStatusFailed
	case ChargeStatusExpired:
		return OrderStatusExpired
	default:
		return OrderStatusPending
	}
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

type Order struct {
	ID              string      `gorm:"primaryKey;size:64;not null"` // store-assigned uuid
	PaymentChargeID string      `gorm:"size:64;uniqueIndex;not null"`
	Amount          int64       `gorm:"not null"` // smallest currency unit, copied from the charge
	Currency        string      `gorm:"size:8;not null"`
	Status          OrderStatus `gorm:"size:16;index;not null"`
	// PaymentDetails holds the charge snapshot that caused the most recent
	// status transition. Nil until the order reaches a terminal status.
	PaymentDetails datatypes.JSON
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PaymentDetails is the persisted shape inside Order.PaymentDetails.
type PaymentDetails struct {
	ChargeID string `json:"charge_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Paid     bool   `json:"paid"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

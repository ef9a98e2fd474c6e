package model

import "encoding/json"

// ChargeStatus is the processor-side status vocabulary. Unknown values
// decode to ChargeStatusUnrecognized instead of failing, so a webhook
// carrying a status this service does not know about can still be
// acknowledged.
type ChargeStatus string

const (
	ChargeStatusPending      ChargeStatus = "pending"
	ChargeStatusSuccessful   ChargeStatus = "successful"
	ChargeStatusFailed       ChargeStatus = "failed"
	ChargeStatusExpired      ChargeStatus = "expired"
	ChargeStatusReversed     ChargeStatus = "reversed"
	ChargeStatusUnrecognized ChargeStatus = "unrecognized"
)

func (s *ChargeStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch ChargeStatus(raw) {
	case ChargeStatusPending, ChargeStatusSuccessful, ChargeStatusFailed,
		ChargeStatusExpired, ChargeStatusReversed:
		*s = ChargeStatus(raw)
	default:
		*s = ChargeStatusUnrecognized
	}
	return nil
}

type ScannableImage struct {
	DownloadURI string `json:"download_uri"`
}

type ScannableCode struct {
	Image ScannableImage `json:"image"`
}

type Source struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	ScannableCode ScannableCode `json:"scannable_code"`
}

// Charge is the processor's charge record as this service reads it; also
// the snapshot shape fed into reconciliation.
type Charge struct {
	ID       string       `json:"id"`
	Status   ChargeStatus `json:"status"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Paid     bool         `json:"paid"`
	Source   *Source      `json:"source,omitempty"`
}

// WebhookEnvelope is the processor's event wrapper. Object must equal
// "event"; Key carries the event type; Data is the embedded charge.
type WebhookEnvelope struct {
	ID     string          `json:"id"`
	Object string          `json:"object"`
	Key    string          `json:"key"`
	Data   json.RawMessage `json:"data"`
}

const (
	WebhookObjectEvent = "event"

	EventChargeComplete = "charge.complete"
	EventChargeCreate   = "charge.create"
)

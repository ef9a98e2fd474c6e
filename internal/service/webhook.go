package service

import (
	"context"
	"encoding/json"
	"fmt"

	"promptpay-checkout/internal/client"
	"promptpay-checkout/internal/model"
	"promptpay-checkout/internal/repository"

	"go.uber.org/zap"
)

// WebhookOutcome classifies an inbound webhook. Malformed maps to 400;
// Ignored and Processed are both acknowledged with 200 so the sender does
// not retry events this system intentionally does not act on.
type WebhookOutcome string

const (
	WebhookMalformed WebhookOutcome = "malformed"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookProcessed WebhookOutcome = "processed"
)

// WebhookService validates the processor's event envelope and routes
// payment-completion events into the reconciler.
type WebhookService struct {
	omiseClient  client.OmiseClient
	reconciler   *Reconciler
	eventRepo    repository.WebhookEventRepository
	trustPayload bool
	log          *zap.Logger
}

func NewWebhookService(
	omiseClient client.OmiseClient,
	reconciler *Reconciler,
	eventRepo repository.WebhookEventRepository,
	trustPayload bool,
	log *zap.Logger,
) *WebhookService {
	return &WebhookService{
		omiseClient:  omiseClient,
		reconciler:   reconciler,
		eventRepo:    eventRepo,
		trustPayload: trustPayload,
		log:          log,
	}
}

func (s *WebhookService) HandleWebhook(ctx context.Context, body []byte) (WebhookOutcome, error) {
	var envelope model.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return WebhookMalformed, nil
	}
	if envelope.Object != model.WebhookObjectEvent || envelope.Key == "" {
		return WebhookMalformed, nil
	}

	if envelope.Key != model.EventChargeComplete {
		s.log.Debug("webhook: event type not actionable", zap.String("key", envelope.Key))
		return WebhookIgnored, nil
	}

	if envelope.ID != "" {
		seen, err := s.eventRepo.Exists(ctx, envelope.ID)
		if err != nil {
			return "", fmt.Errorf("check processed events: %w", err)
		}
		if seen {
			s.log.Debug("webhook: event already processed", zap.String("event_id", envelope.ID))
			return WebhookIgnored, nil
		}
	}

	var embedded model.Charge
	if err := json.Unmarshal(envelope.Data, &embedded); err != nil || embedded.ID == "" {
		return WebhookMalformed, nil
	}

	snapshot := &embedded
	if !s.trustPayload {
		// the embedded payload may be forged or stale; only a re-fetch is
		// guaranteed fresh from the processor
		fetched, err := s.omiseClient.RetrieveCharge(ctx, embedded.ID)
		if err != nil {
			return "", fmt.Errorf("re-fetch charge %s: %w", embedded.ID, err)
		}
		snapshot = fetched
	}

	result, err := s.reconciler.Reconcile(ctx, snapshot)
	if err != nil {
		return "", fmt.Errorf("reconcile charge %s: %w", snapshot.ID, err)
	}

	s.log.Info("webhook: charge.complete handled",
		zap.String("event_id", envelope.ID),
		zap.String("charge_id", snapshot.ID),
		zap.String("result", string(result)))

	if envelope.ID != "" {
		if err := s.eventRepo.MarkProcessed(ctx, envelope.ID, envelope.Key); err != nil {
			return "", fmt.Errorf("mark event processed: %w", err)
		}
	}

	return WebhookProcessed, nil
}

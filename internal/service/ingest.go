package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kofiapi/internal/domain"
)

// WebhookPayload is the JSON object Ko-fi posts in the `data` form field,
// per https://ko-fi.com/manage/webhooks.
type WebhookPayload struct {
	VerificationToken          string          `json:"verification_token"`
	MessageID                  string          `json:"message_id"`
	Timestamp                  string          `json:"timestamp"`
	Type                       string          `json:"type"`
	IsPublic                   bool            `json:"is_public"`
	FromName                   string          `json:"from_name"`
	Message                    *string         `json:"message"`
	Amount                     string          `json:"amount"`
	URL                        string          `json:"url"`
	Email                      string          `json:"email"`
	Currency                   string          `json:"currency"`
	IsSubscriptionPayment      bool            `json:"is_subscription_payment"`
	IsFirstSubscriptionPayment bool            `json:"is_first_subscription_payment"`
	KofiTransactionID          string          `json:"kofi_transaction_id"`
	ShopItems                  json.RawMessage `json:"shop_items"`
	TierName                   *string         `json:"tier_name"`
	Shipping                   json.RawMessage `json:"shipping"`
}

// IngestResult reports what a webhook delivery did.
type IngestResult struct {
	Duplicate bool
}

// Ingestor validates webhook payloads and records them. Validation performs
// no writes; a payload either lands completely or not at all.
type Ingestor struct {
	store  domain.IngestStore
	logger zerolog.Logger
}

// NewIngestor creates a webhook ingestor.
func NewIngestor(store domain.IngestStore, logger zerolog.Logger) *Ingestor {
	return &Ingestor{store: store, logger: logger}
}

// Ingest parses, validates and stores one webhook delivery. The raw bytes
// are kept alongside the normalized row for auditability and replay.
// Redelivered message ids succeed without a second insert.
func (s *Ingestor) Ingest(ctx context.Context, raw []byte) (*IngestResult, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}

	txn, err := payload.toTransaction(raw)
	if err != nil {
		return nil, err
	}

	// Webhook-created users start on the USD default; the column default
	// never applies because the upsert binds the field explicitly.
	user := &domain.User{
		VerificationToken: payload.VerificationToken,
		Name:              payload.FromName,
		PreferredCurrency: "USD",
	}

	created, err := s.store.RecordDonation(ctx, user, txn)
	if err != nil {
		return nil, err
	}
	if !created {
		s.logger.Info().
			Str("message_id", txn.MessageID).
			Msg("webhook redelivery, transaction already stored")
	}
	return &IngestResult{Duplicate: !created}, nil
}

func (p *WebhookPayload) toTransaction(raw []byte) (*domain.Transaction, error) {
	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	require("verification_token", p.VerificationToken)
	require("message_id", p.MessageID)
	require("kofi_transaction_id", p.KofiTransactionID)
	require("type", p.Type)
	require("timestamp", p.Timestamp)
	require("amount", p.Amount)
	require("currency", p.Currency)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	txType := domain.TransactionType(p.Type)
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, p.Type)
	}
	ts, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp %q", domain.ErrValidation, p.Timestamp)
	}
	if _, err := strconv.ParseFloat(p.Amount, 64); err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, p.Amount)
	}

	txn := &domain.Transaction{
		MessageID:                  p.MessageID,
		VerificationToken:          p.VerificationToken,
		KofiTransactionID:          p.KofiTransactionID,
		Type:                       txType,
		Timestamp:                  ts.UTC(),
		Amount:                     p.Amount,
		Currency:                   strings.ToUpper(p.Currency),
		FromName:                   p.FromName,
		URL:                        p.URL,
		Email:                      p.Email,
		IsPublic:                   p.IsPublic,
		IsSubscriptionPayment:      p.IsSubscriptionPayment,
		IsFirstSubscriptionPayment: p.IsFirstSubscriptionPayment,
		ShopItems:                  p.ShopItems,
		Shipping:                   p.Shipping,
		Payload:                    json.RawMessage(raw),
	}
	if p.Message != nil {
		txn.Message = *p.Message
	}
	if p.TierName != nil {
		txn.TierName = *p.TierName
	}
	return txn, nil
}

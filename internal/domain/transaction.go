package domain

import (
	"encoding/json"
	"time"
)

// TransactionType enumerates the donation kinds Ko-fi delivers.
type TransactionType string

const (
	TypeDonation     TransactionType = "Donation"
	TypeSubscription TransactionType = "Subscription"
	TypeShopOrder    TransactionType = "Shop Order"
)

// Valid reports whether t is one of the known Ko-fi event types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDonation, TypeSubscription, TypeShopOrder:
		return true
	}
	return false
}

// Transaction is a single webhook-delivered donation event. The message id
// is Ko-fi's delivery identifier and the primary key; redeliveries reuse it.
// Rows are append-only: created by ingest or admin import, never updated.
type Transaction struct {
	MessageID                  string          `json:"message_id"`
	VerificationToken          string          `json:"verification_token"`
	KofiTransactionID          string          `json:"kofi_transaction_id"`
	Type                       TransactionType `json:"type"`
	Timestamp                  time.Time       `json:"timestamp"`
	Amount                     string          `json:"amount"`
	Currency                   string          `json:"currency"`
	FromName                   string          `json:"from_name"`
	Message                    string          `json:"message"`
	URL                        string          `json:"url"`
	Email                      string          `json:"email"`
	IsPublic                   bool            `json:"is_public"`
	IsSubscriptionPayment      bool            `json:"is_subscription_payment"`
	IsFirstSubscriptionPayment bool            `json:"is_first_subscription_payment"`
	TierName                   string          `json:"tier_name"`
	ShopItems                  json.RawMessage `json:"shop_items"`
	Shipping                   json.RawMessage `json:"shipping"`
	Payload                    json.RawMessage `json:"payload"`
}

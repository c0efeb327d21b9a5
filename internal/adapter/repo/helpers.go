package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"kofiapi/internal/domain"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// storage classifies an unexpected database error without leaking driver
// detail past the domain boundary.
func storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.VerificationToken,
		&u.Name,
		&u.RetentionDays,
		&u.PreferredCurrency,
		&u.LatestRequestAt,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storage("scan user", err)
	}
	return &u, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.MessageID,
		&t.VerificationToken,
		&t.KofiTransactionID,
		&t.Type,
		&t.Timestamp,
		&t.Amount,
		&t.Currency,
		&t.FromName,
		&t.Message,
		&t.URL,
		&t.Email,
		&t.IsPublic,
		&t.IsSubscriptionPayment,
		&t.IsFirstSubscriptionPayment,
		&t.TierName,
		&t.ShopItems,
		&t.Shipping,
		&t.Payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storage("scan transaction", err)
	}
	return &t, nil
}

const userColumns = `verification_token, name, data_retention_days, preferred_currency, latest_request_at, created_at`

const transactionColumns = `message_id, verification_token, kofi_transaction_id, type, timestamp, amount, currency,
from_name, message, url, email, is_public, is_subscription_payment, is_first_subscription_payment,
tier_name, shop_items, shipping, payload`

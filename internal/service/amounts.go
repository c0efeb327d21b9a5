package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kofiapi/internal/currency"
	"kofiapi/internal/domain"
)

// Amount aggregation methods.
const (
	MethodTotal  = "total"
	MethodRecent = "recent"
	MethodLatest = "latest"
)

// Amounts sums a user's donations, grouping by the currency each donation
// arrived in and converting everything to a single target currency.
type Amounts struct {
	users     domain.UserRepository
	txns      domain.TransactionRepository
	converter *currency.Converter
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAmounts creates the aggregation service.
func NewAmounts(users domain.UserRepository, txns domain.TransactionRepository, converter *currency.Converter, logger zerolog.Logger) *Amounts {
	return &Amounts{users: users, txns: txns, converter: converter, logger: logger, now: time.Now}
}

// Total computes the aggregated amount for the user.
//
// method selects which transactions count: "total" for everything, "recent"
// for those at or after `since` (defaulting to the user's last recent query,
// which this call then advances), "latest" for the newest one only.
// targetCurrency defaults to the user's preferred currency.
func (a *Amounts) Total(ctx context.Context, token, method, since, targetCurrency string) (float64, error) {
	method = strings.ToLower(method)

	user, err := a.users.Get(ctx, token)
	if err != nil {
		return 0, err
	}

	var data []domain.Transaction
	switch method {
	case MethodTotal:
		data, err = a.txns.ListByUser(ctx, token)
		if err != nil {
			return 0, err
		}

	case MethodRecent:
		from := user.LatestRequestAt
		if since != "" {
			from, err = time.Parse(time.RFC3339, since)
			if err != nil {
				return 0, fmt.Errorf("%w: invalid 'since' parameter, expected ISO 8601", domain.ErrValidation)
			}
		}
		data, err = a.txns.ListSince(ctx, token, from)
		if err != nil {
			return 0, err
		}
		if err := a.users.TouchLatestRequest(ctx, token, a.now().UTC()); err != nil {
			a.logger.Warn().Err(err).Str("verification_token", token).Msg("failed to advance latest request marker")
		}

	case MethodLatest:
		all, err := a.txns.ListByUser(ctx, token)
		if err != nil {
			return 0, err
		}
		if len(all) > 0 {
			latest := all[0]
			for _, t := range all[1:] {
				if t.Timestamp.After(latest.Timestamp) {
					latest = t
				}
			}
			data = []domain.Transaction{latest}
		}

	default:
		return 0, fmt.Errorf("%w: invalid method %q, expected 'total', 'recent', or 'latest'", domain.ErrValidation, method)
	}

	if targetCurrency == "" {
		targetCurrency = user.PreferredCurrency
	}
	target, err := currency.Normalize(targetCurrency)
	if err != nil {
		return 0, err
	}

	// Sum per source currency first so each currency needs one conversion.
	sums := make(map[string]float64)
	for _, t := range data {
		amount, err := strconv.ParseFloat(t.Amount, 64)
		if err != nil {
			a.logger.Warn().
				Str("message_id", t.MessageID).
				Str("amount", t.Amount).
				Msg("skipping transaction with unparseable amount")
			continue
		}
		sums[t.Currency] += amount
	}

	var total float64
	for code, amount := range sums {
		if code == target {
			total += amount
			continue
		}
		converted, err := a.converter.Convert(ctx, amount, code, target)
		if err != nil {
			return 0, err
		}
		total += converted
	}
	return total, nil
}

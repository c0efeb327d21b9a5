package domain

import "time"

// User is a Ko-fi page owner, keyed by the verification token Ko-fi issues
// for webhook delivery. The token is opaque and immutable once created.
type User struct {
	VerificationToken string    `json:"verification_token"`
	Name              string    `json:"name"`
	RetentionDays     *int      `json:"data_retention_days"`
	PreferredCurrency string    `json:"preferred_currency"`
	LatestRequestAt   time.Time `json:"latest_request_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// ResolveRetention returns the effective retention window in days. A nil
// override inherits the configured default at read time, so changing the
// default affects every user that never set one.
func (u User) ResolveRetention(defaultDays int) int {
	if u.RetentionDays != nil && *u.RetentionDays > 0 {
		return *u.RetentionDays
	}
	return defaultDays
}

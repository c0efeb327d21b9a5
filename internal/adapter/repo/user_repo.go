package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"kofiapi/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// Create inserts a new user row. An existing verification token is a conflict.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (verification_token, name, data_retention_days, preferred_currency)
VALUES ($1, $2, $3, $4)
RETURNING latest_request_at, created_at;
`, user.VerificationToken, user.Name, user.RetentionDays, user.PreferredCurrency)

	if err := row.Scan(&user.LatestRequestAt, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return storage("insert user", err)
	}
	return nil
}

// Get fetches a user by verification token.
func (r *UserRepositoryPG) Get(ctx context.Context, token string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
	return scanUser(row)
}

// List returns every user, oldest first.
func (r *UserRepositoryPG) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, storage("list users", err)
	}
	defer rows.Close()

	// Non-nil even when empty so handlers marshal [] rather than null.
	items := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storage("list users", err)
	}
	return items, nil
}

// UpdateRetention sets the per-user retention override.
func (r *UserRepositoryPG) UpdateRetention(ctx context.Context, token string, days int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET data_retention_days = $2 WHERE verification_token = $1`, token, days)
	if err != nil {
		return storage("update retention", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePreferredCurrency sets the currency used for amount aggregation.
func (r *UserRepositoryPG) UpdatePreferredCurrency(ctx context.Context, token, currency string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET preferred_currency = $2 WHERE verification_token = $1`, token, currency)
	if err != nil {
		return storage("update preferred currency", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TouchLatestRequest records when the user last pulled recent totals.
func (r *UserRepositoryPG) TouchLatestRequest(ctx context.Context, token string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET latest_request_at = $2 WHERE verification_token = $1`, token, at)
	if err != nil {
		return storage("touch latest request", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the user and all of its transactions in one transaction.
func (r *UserRepositoryPG) Delete(ctx context.Context, token string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storage("begin delete user", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE verification_token = $1`, token)
	if err != nil {
		return storage("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE verification_token = $1`, token); err != nil {
		return storage("delete user transactions", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storage("commit delete user", err)
	}
	return nil
}

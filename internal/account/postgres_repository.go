package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL guardian repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the user's guardian contact.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*GuardianContact, error) {
	query := `
		SELECT user_id, name, phone, message, created_at, updated_at
		FROM guardian_contacts
		WHERE user_id = $1
	`

	var contact GuardianContact
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&contact.UserID,
		&contact.Name,
		&contact.Phone,
		&contact.Message,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGuardianNotFound
		}
		return nil, err
	}

	return &contact, nil
}

// Upsert creates or replaces the user's guardian contact.
func (r *PostgresRepository) Upsert(ctx context.Context, contact *GuardianContact) error {
	query := `
		INSERT INTO guardian_contacts (user_id, name, phone, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			message = EXCLUDED.message,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		contact.UserID, contact.Name, contact.Phone, contact.Message,
		contact.CreatedAt, contact.UpdatedAt,
	)
	return err
}

// Delete removes the user's guardian contact.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM guardian_contacts WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGuardianNotFound
	}
	return nil
}

package trip

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresScheduleStore is a PostgreSQL implementation of ScheduleStore.
type PostgresScheduleStore struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleStore creates a new PostgreSQL schedule store.
func NewPostgresScheduleStore(pool *pgxpool.Pool) *PostgresScheduleStore {
	return &PostgresScheduleStore{pool: pool}
}

const scheduledTripColumns = `id, user_id, label, lat, lon, depart_at, weather_advisory_enabled, notification_sent, created_at, updated_at`

// Save creates or replaces a scheduled trip.
func (r *PostgresScheduleStore) Save(ctx context.Context, t *ScheduledTrip) error {
	query := `
		INSERT INTO scheduled_trips (` + scheduledTripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			depart_at = EXCLUDED.depart_at,
			weather_advisory_enabled = EXCLUDED.weather_advisory_enabled,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Label, t.Lat, t.Lon, t.DepartAt,
		t.WeatherAdvisoryEnabled, t.NotificationSent, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Get retrieves a scheduled trip by id for a user.
func (r *PostgresScheduleStore) Get(ctx context.Context, userID, id string) (*ScheduledTrip, error) {
	query := `
		SELECT ` + scheduledTripColumns + `
		FROM scheduled_trips
		WHERE id = $1 AND user_id = $2
	`

	return r.scanTrip(r.pool.QueryRow(ctx, query, id, userID))
}

// ListByUser retrieves a user's scheduled trips ordered by departure.
func (r *PostgresScheduleStore) ListByUser(ctx context.Context, userID string) ([]*ScheduledTrip, error) {
	query := `
		SELECT ` + scheduledTripColumns + `
		FROM scheduled_trips
		WHERE user_id = $1
		ORDER BY depart_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectTrips(rows)
}

// ListDueBefore retrieves unnotified trips departing before the cutoff.
func (r *PostgresScheduleStore) ListDueBefore(ctx context.Context, cutoff time.Time) ([]*ScheduledTrip, error) {
	query := `
		SELECT ` + scheduledTripColumns + `
		FROM scheduled_trips
		WHERE notification_sent = FALSE AND depart_at < $1
		ORDER BY depart_at ASC
	`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectTrips(rows)
}

// MarkNotified sets the notification-sent flag. The WHERE clause makes
// the flip atomic: concurrent sweepers cannot both claim the trip.
func (r *PostgresScheduleStore) MarkNotified(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE scheduled_trips
		SET notification_sent = TRUE, updated_at = NOW()
		WHERE id = $1 AND notification_sent = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, ErrTripNotFound
		}
		return false, nil
	}
	return true, nil
}

// Delete removes a scheduled trip.
func (r *PostgresScheduleStore) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM scheduled_trips WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *PostgresScheduleStore) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM scheduled_trips WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PostgresScheduleStore) scanTrip(row pgx.Row) (*ScheduledTrip, error) {
	var t ScheduledTrip

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Label,
		&t.Lat,
		&t.Lon,
		&t.DepartAt,
		&t.WeatherAdvisoryEnabled,
		&t.NotificationSent,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return &t, nil
}

func (r *PostgresScheduleStore) collectTrips(rows pgx.Rows) ([]*ScheduledTrip, error) {
	var trips []*ScheduledTrip
	for rows.Next() {
		t, err := r.scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

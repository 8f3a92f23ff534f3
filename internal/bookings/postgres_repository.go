package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the pgxpool subset the repository needs. pgxmock satisfies it
// in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores bookings in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row. The bookings_no_overlap exclusion constraint
// rejects conflicting occupying bookings; that surfaces as ErrSlotConflict.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO bookings (id, name, email, phone, class_slug, event_date, event_time, duration_minutes, party_size, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.Phone,
		req.ClassSlug,
		req.EventDate,
		req.EventTime,
		req.DurationMinutes,
		req.PartySize,
		StatusPending,
		req.Notes,
	).Scan(&createdAt, &updatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505") {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("bookings: insert failed: %w", err)
	}

	return &Booking{
		ID:              id.String(),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ClassSlug:       req.ClassSlug,
		EventDate:       req.EventDate,
		EventTime:       req.EventTime,
		DurationMinutes: req.DurationMinutes,
		PartySize:       req.PartySize,
		Status:          StatusPending,
		Notes:           req.Notes,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

const bookingColumns = `id, name, email, phone, class_slug, to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI'), duration_minutes, party_size, status, notes, amount_cents, created_at, updated_at`

// GetByID fetches a booking.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: select failed: %w", err)
	}
	return booking, nil
}

// List returns bookings matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR event_date = $2::date)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.Status, filter.EventDate, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, booking)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a booking to a new status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) (*Booking, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	query := `
		UPDATE bookings
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + bookingColumns
	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: update status failed: %w", err)
	}
	return booking, nil
}

// ListOccupyingByDate returns non-cancelled bookings for the date, ordered by
// event time. This feeds the availability engine.
func (r *PostgresRepository) ListOccupyingByDate(ctx context.Context, date string) ([]*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE event_date = $1::date
		  AND status = ANY($2)
		ORDER BY event_time
	`
	rows, err := r.pool.Query(ctx, query, date, OccupyingStatuses)
	if err != nil {
		return nil, fmt.Errorf("bookings: list occupying failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, booking)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Email,
		&b.Phone,
		&b.ClassSlug,
		&b.EventDate,
		&b.EventTime,
		&b.DurationMinutes,
		&b.PartySize,
		&b.Status,
		&b.Notes,
		&b.AmountCents,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

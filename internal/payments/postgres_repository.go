package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the pgxpool subset the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores deposits in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const depositColumns = `id, booking_id, amount_cents, currency, status, link_url, provider_ref, created_at, updated_at`

// Create inserts a new deposit row.
func (r *PostgresRepository) Create(ctx context.Context, deposit *Deposit) error {
	if deposit.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if deposit.ID == "" {
		deposit.ID = uuid.New().String()
	}
	if deposit.Status == "" {
		deposit.Status = StatusPending
	}

	query := `
		INSERT INTO deposits (id, booking_id, amount_cents, currency, status, link_url, provider_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		deposit.ID,
		deposit.BookingID,
		deposit.AmountCents,
		deposit.Currency,
		deposit.Status,
		deposit.LinkURL,
		deposit.ProviderRef,
	).Scan(&deposit.CreatedAt, &deposit.UpdatedAt); err != nil {
		return fmt.Errorf("payments: insert failed: %w", err)
	}
	return nil
}

// GetByProviderRef finds the deposit tied to a provider reference.
func (r *PostgresRepository) GetByProviderRef(ctx context.Context, providerRef string) (*Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE provider_ref = $1`
	deposit, err := scanDeposit(r.pool.QueryRow(ctx, query, providerRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("payments: select failed: %w", err)
	}
	return deposit, nil
}

// ListByBooking returns deposits for a booking, newest first.
func (r *PostgresRepository) ListByBooking(ctx context.Context, bookingID string) ([]*Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE booking_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("payments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("payments: scan failed: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a deposit.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) (*Deposit, error) {
	query := `
		UPDATE deposits
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + depositColumns
	deposit, err := scanDeposit(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("payments: update status failed: %w", err)
	}
	return deposit, nil
}

func scanDeposit(row pgx.Row) (*Deposit, error) {
	var d Deposit
	if err := row.Scan(
		&d.ID,
		&d.BookingID,
		&d.AmountCents,
		&d.Currency,
		&d.Status,
		&d.LinkURL,
		&d.ProviderRef,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

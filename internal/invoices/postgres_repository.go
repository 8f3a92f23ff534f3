package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

// PostgresRepository stores invoices in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("invoices: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const invoiceColumns = `id, number, booking_id, customer_name, customer_email, line_items, total_cents, currency, status, issued_at, created_at, updated_at`

// Create inserts a draft invoice.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}
	items, err := json.Marshal(req.LineItems)
	if err != nil {
		return nil, fmt.Errorf("invoices: encode line items: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO invoices (id, booking_id, customer_name, customer_email, line_items, total_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	inv := &Invoice{
		ID:            id,
		BookingID:     req.BookingID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		LineItems:     req.LineItems,
		TotalCents:    req.Total(),
		Currency:      currency,
		Status:        StatusDraft,
	}
	if err := r.pool.QueryRow(ctx, query,
		id,
		nullable(req.BookingID),
		req.CustomerName,
		req.CustomerEmail,
		items,
		inv.TotalCents,
		currency,
		StatusDraft,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, fmt.Errorf("invoices: insert failed: %w", err)
	}
	return inv, nil
}

// GetByID fetches an invoice.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoices: select failed: %w", err)
	}
	return inv, nil
}

// List returns invoices matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("invoices: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("invoices: scan failed: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Issue numbers a draft atomically. The per-year counter row guarantees
// sequential numbers even under concurrent issuance.
func (r *PostgresRepository) Issue(ctx context.Context, id string, issuedAt time.Time) (*Invoice, error) {
	year := issuedAt.UTC().Year()

	var seq int
	counterQuery := `
		INSERT INTO invoice_counters (year, seq)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET seq = invoice_counters.seq + 1
		RETURNING seq
	`
	if err := r.pool.QueryRow(ctx, counterQuery, year).Scan(&seq); err != nil {
		return nil, fmt.Errorf("invoices: next number: %w", err)
	}

	number := fmt.Sprintf("%d-%04d", year, seq)
	query := `
		UPDATE invoices
		SET number = $2, status = $3, issued_at = $4, updated_at = now()
		WHERE id = $1 AND status = $5
		RETURNING ` + invoiceColumns
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id, number, StatusSent, issuedAt.UTC(), StatusDraft))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or already issued; disambiguate for the caller.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrNotDraft
			}
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoices: issue failed: %w", err)
	}
	return inv, nil
}

// UpdateStatus transitions an invoice.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) (*Invoice, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	query := `
		UPDATE invoices
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + invoiceColumns
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoices: update status failed: %w", err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv       Invoice
		number    *string
		bookingID *string
		rawItems  []byte
	)
	if err := row.Scan(
		&inv.ID,
		&number,
		&bookingID,
		&inv.CustomerName,
		&inv.CustomerEmail,
		&rawItems,
		&inv.TotalCents,
		&inv.Currency,
		&inv.Status,
		&inv.IssuedAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if number != nil {
		inv.Number = *number
	}
	if bookingID != nil {
		inv.BookingID = *bookingID
	}
	if len(rawItems) > 0 {
		if err := json.Unmarshal(rawItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("invoices: decode line items: %w", err)
		}
	}
	return &inv, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

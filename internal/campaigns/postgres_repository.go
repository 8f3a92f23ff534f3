package campaigns

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

// PostgresRepository stores campaigns in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("campaigns: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const campaignColumns = `id, name, subject, body, target_url, channel, code, status, created_at, updated_at`

// Create inserts a draft campaign.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateCampaignRequest) (*Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &Campaign{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		TargetURL: req.TargetURL,
		Channel:   req.NormalizedChannel(),
		Code:      newCode(),
		Status:    StatusDraft,
	}
	query := `
		INSERT INTO campaigns (id, name, subject, body, target_url, channel, code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Subject, c.Body, c.TargetURL, c.Channel, c.Code, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("campaigns: insert failed: %w", err)
	}
	return c, nil
}

// GetByID fetches a campaign.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	return r.one(ctx, query, id)
}

// GetByCode resolves a tracking code to its campaign.
func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE code = $1`
	return r.one(ctx, query, code)
}

// List returns all campaigns, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("campaigns: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("campaigns: scan failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a campaign.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) (*Campaign, error) {
	query := `
		UPDATE campaigns
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + campaignColumns
	return r.one(ctx, query, id, status)
}

// RecordClick appends an append-only click row for the campaign.
func (r *PostgresRepository) RecordClick(ctx context.Context, campaignID string) error {
	query := `INSERT INTO campaign_clicks (id, campaign_id) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, uuid.New().String(), campaignID); err != nil {
		return fmt.Errorf("campaigns: record click failed: %w", err)
	}
	return nil
}

// CountClicks returns the total click rows for the campaign.
func (r *PostgresRepository) CountClicks(ctx context.Context, campaignID string) (int64, error) {
	query := `SELECT COUNT(*) FROM campaign_clicks WHERE campaign_id = $1`
	var n int64
	if err := r.pool.QueryRow(ctx, query, campaignID).Scan(&n); err != nil {
		return 0, fmt.Errorf("campaigns: count clicks failed: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("campaigns: query failed: %w", err)
	}
	return c, nil
}

func scanCampaign(row pgx.Row) (*Campaign, error) {
	var c Campaign
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Subject,
		&c.Body,
		&c.TargetURL,
		&c.Channel,
		&c.Code,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists WhatsApp messages.
type Store interface {
	Insert(ctx context.Context, msg *Message) error
	HasProviderMessage(ctx context.Context, providerMessageID string) (bool, error)
	ListByLead(ctx context.Context, leadID string) ([]*Message, error)
	// Threads returns the latest message per lead, newest first.
	Threads(ctx context.Context, limit int) ([]*Message, error)
}

// PgxPool is the pgxpool subset the store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores messages in the relational database.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("messaging: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

const messageColumns = `id, lead_id, from_e164, to_e164, direction, body, provider_message_id, status, created_at`

// Insert stores a message.
func (s *PostgresStore) Insert(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	query := `
		INSERT INTO messages (id, lead_id, from_e164, to_e164, direction, body, provider_message_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING created_at
	`
	if err := s.pool.QueryRow(ctx, query,
		msg.ID, msg.LeadID, msg.From, msg.To, msg.Direction, msg.Body, msg.ProviderMessageID, msg.Status,
	).Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("messaging: insert message: %w", err)
	}
	return nil
}

// HasProviderMessage checks whether a message with the provider message id exists.
func (s *PostgresStore) HasProviderMessage(ctx context.Context, providerMessageID string) (bool, error) {
	providerMessageID = strings.TrimSpace(providerMessageID)
	if providerMessageID == "" {
		return false, nil
	}
	query := `SELECT 1 FROM messages WHERE provider_message_id = $1 LIMIT 1`
	var exists int
	if err := s.pool.QueryRow(ctx, query, providerMessageID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("messaging: check provider message: %w", err)
	}
	return true, nil
}

// ListByLead returns a lead's thread in chronological order.
func (s *PostgresStore) ListByLead(ctx context.Context, leadID string) ([]*Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE lead_id = $1 ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("messaging: list by lead: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// Threads returns the latest message per lead, newest first.
func (s *PostgresStore) Threads(ctx context.Context, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT DISTINCT ON (lead_id) ` + messageColumns + `
		FROM messages
		ORDER BY lead_id, created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("messaging: list threads: %w", err)
	}
	defer rows.Close()

	out, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func collectMessages(rows pgx.Rows) ([]*Message, error) {
	var out []*Message
	for rows.Next() {
		var (
			msg         Message
			providerRef *string
		)
		if err := rows.Scan(
			&msg.ID, &msg.LeadID, &msg.From, &msg.To, &msg.Direction,
			&msg.Body, &providerRef, &msg.Status, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("messaging: scan message: %w", err)
		}
		if providerRef != nil {
			msg.ProviderMessageID = *providerRef
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// InMemoryStore is an in-memory Store for tests and offline runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []*Message
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Insert stores a message.
func (s *InMemoryStore) Insert(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

// HasProviderMessage checks whether a message with the provider message id exists.
func (s *InMemoryStore) HasProviderMessage(ctx context.Context, providerMessageID string) (bool, error) {
	if strings.TrimSpace(providerMessageID) == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, msg := range s.messages {
		if msg.ProviderMessageID == providerMessageID {
			return true, nil
		}
	}
	return false, nil
}

// ListByLead returns a lead's thread in chronological order.
func (s *InMemoryStore) ListByLead(ctx context.Context, leadID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Message
	for _, msg := range s.messages {
		if msg.LeadID == leadID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Threads returns the latest message per lead, newest first.
func (s *InMemoryStore) Threads(ctx context.Context, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*Message)
	for _, msg := range s.messages {
		cur, ok := latest[msg.LeadID]
		if !ok || msg.CreatedAt.After(cur.CreatedAt) {
			latest[msg.LeadID] = msg
		}
	}

	out := make([]*Message, 0, len(latest))
	for _, msg := range latest {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

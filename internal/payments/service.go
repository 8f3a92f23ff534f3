package payments

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bellacucina/platform/pkg/logging"
)

var serviceTracer = otel.Tracer("cucina.internal.payments")

// Service issues deposit payment links and records them.
type Service struct {
	repo   Repository
	links  LinkCreator
	amount int64
	logger *logging.Logger
}

// NewService wires the deposit service. amountCents is the default deposit
// amount applied when the caller does not override it.
func NewService(repo Repository, links LinkCreator, amountCents int64, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, links: links, amount: amountCents, logger: logger}
}

// CreateDepositLink creates a payment link for a booking and records the
// pending deposit. A zero amountCents uses the configured default.
func (s *Service) CreateDepositLink(ctx context.Context, bookingID string, amountCents int64, description string) (*Deposit, error) {
	ctx, span := serviceTracer.Start(ctx, "payments.create_deposit_link")
	defer span.End()
	span.SetAttributes(attribute.String("cucina.booking_id", bookingID))

	if amountCents <= 0 {
		amountCents = s.amount
	}
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	link, err := s.links.CreateDepositLink(ctx, LinkParams{
		BookingID:   bookingID,
		AmountCents: amountCents,
		Currency:    "eur",
		Description: description,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "link creation failed")
		return nil, fmt.Errorf("payments: create link: %w", err)
	}

	deposit := &Deposit{
		BookingID:   bookingID,
		AmountCents: amountCents,
		Currency:    "eur",
		Status:      StatusPending,
		LinkURL:     link.URL,
		ProviderRef: link.ProviderRef,
	}
	if err := s.repo.Create(ctx, deposit); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("payments: store deposit: %w", err)
	}

	s.logger.Info("deposit link created",
		"deposit_id", deposit.ID, "booking_id", bookingID, "amount_cents", amountCents)
	return deposit, nil
}

package bookings

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bellacucina/platform/internal/notify"
	"github.com/bellacucina/platform/internal/observability/metrics"
	"github.com/bellacucina/platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("cucina.internal.bookings")

// Service owns the booking lifecycle: creation, status transitions and
// guest notifications.
type Service struct {
	repo    Repository
	emailer notify.EmailSender
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewService constructs a bookings service.
func NewService(repo Repository, emailer notify.EmailSender, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, emailer: emailer, metrics: m, logger: logger}
}

// CreateBooking inserts a pending booking. An advisory availability check
// rejects the common conflict before touching storage; the storage layer
// remains the gate for the race between concurrent inserts.
func (s *Service) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("cucina.event_date", req.EventDate),
		attribute.String("cucina.event_time", req.EventTime),
	)

	existing, err := s.repo.ListOccupyingByDate(ctx, req.EventDate)
	if err != nil {
		// Advisory only. The insert still carries the conflict gate.
		s.logger.Warn("availability pre-check skipped", "error", err, "event_date", req.EventDate)
	} else if overlapsAny(req.EventTime, req.DurationMinutes, existing) {
		span.RecordError(ErrSlotConflict)
		s.metrics.ObserveConflict()
		return nil, ErrSlotConflict
	}

	booking, err := s.repo.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.ObserveConflict()
		}
		return nil, err
	}

	s.metrics.ObserveCreated(booking.Status)
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"event_date", booking.EventDate,
		"event_time", booking.EventTime,
		"party_size", booking.PartySize,
	)
	subject, body := notify.BookingReceived(booking.Name, booking.EventDate, booking.EventTime)
	s.sendStatusEmail(ctx, booking, subject, body)
	return booking, nil
}

// UpdateStatus transitions a booking and notifies the guest on confirmation
// and cancellation.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.update_status")
	defer span.End()
	span.SetAttributes(
		attribute.String("cucina.booking_id", id),
		attribute.String("cucina.status", status),
	)

	booking, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("booking status updated", "booking_id", booking.ID, "status", booking.Status)

	switch status {
	case StatusConfirmed:
		subject, body := notify.BookingConfirmed(booking.EventDate, booking.EventTime)
		s.sendStatusEmail(ctx, booking, subject, body)
	case StatusCancelled:
		subject, body := notify.BookingCancelled(booking.EventDate, booking.EventTime)
		s.sendStatusEmail(ctx, booking, subject, body)
	}
	return booking, nil
}

// MarkDepositPaid is invoked by the payments webhook once a deposit settles.
func (s *Service) MarkDepositPaid(ctx context.Context, id string) (*Booking, error) {
	return s.UpdateStatus(ctx, id, StatusDepositPaid)
}

func (s *Service) sendStatusEmail(ctx context.Context, booking *Booking, subject, body string) {
	if s.emailer == nil || booking.Email == "" {
		return
	}
	msg := notify.EmailMessage{
		To:      booking.Email,
		ToName:  booking.Name,
		Subject: subject,
		Body:    body,
	}
	if err := s.emailer.Send(ctx, msg); err != nil {
		// Email failure never fails the booking flow.
		s.logger.Warn("booking email failed", "error", err, "booking_id", booking.ID)
	}
}

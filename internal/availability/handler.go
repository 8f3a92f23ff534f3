package availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bellacucina/platform/internal/observability/metrics"
	"github.com/bellacucina/platform/pkg/logging"
)

var availabilityTracer = otel.Tracer("cucina.internal.availability")

// ReservationSource returns the occupying reservations for a date. The
// implementation filters by status before the engine ever sees a record.
type ReservationSource interface {
	ListOccupyingByDate(ctx context.Context, date string) ([]Reservation, error)
}

// Handler serves the read-only availability projection.
type Handler struct {
	calendar      []TimeSlotDefinition
	source        ReservationSource
	bufferMinutes int
	metrics       *metrics.AvailabilityMetrics
	logger        *logging.Logger
}

// NewHandler creates an availability handler. A nil source puts the handler
// in offline mode: the full day calendar is returned with a logged warning.
func NewHandler(calendar []TimeSlotDefinition, source ReservationSource, bufferMinutes int, m *metrics.AvailabilityMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if bufferMinutes < 0 {
		bufferMinutes = DefaultBufferMinutes
	}
	return &Handler{
		calendar:      calendar,
		source:        source,
		bufferMinutes: bufferMinutes,
		metrics:       m,
		logger:        logger,
	}
}

// GetAvailability handles GET /availability?date=YYYY-MM-DD.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := availabilityTracer.Start(r.Context(), "availability.query")
	defer span.End()

	date := r.URL.Query().Get("date")
	if date == "" {
		h.metrics.ObserveQuery("missing_date")
		writeError(w, http.StatusBadRequest, "missing date parameter")
		return
	}
	span.SetAttributes(attribute.String("cucina.date", date))

	var reservations []Reservation
	if h.source != nil {
		var err error
		reservations, err = h.source.ListOccupyingByDate(ctx, date)
		if err != nil {
			// Never answer "everything open" on a store failure; that
			// falsely advertises free slots.
			h.logger.Error("reservation lookup failed", "error", err, "date", date)
			span.RecordError(err)
			h.metrics.ObserveQuery("upstream_error")
			writeError(w, http.StatusServiceUnavailable, "reservations unavailable, try again shortly")
			return
		}
	} else {
		h.logger.Warn("no reservation store configured, returning unfiltered calendar", "date", date)
	}

	result, err := Compute(date, h.calendar, reservations, h.bufferMinutes)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			h.metrics.ObserveQuery("invalid_date")
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		h.logger.Error("availability computation failed", "error", err, "date", date)
		span.RecordError(err)
		h.metrics.ObserveQuery("error")
		writeError(w, http.StatusInternalServerError, "failed to compute availability")
		return
	}

	span.SetAttributes(
		attribute.Int("cucina.slots_total", len(result.AllSlots)),
		attribute.Int("cucina.slots_blocked", len(result.BlockedSlots)),
	)
	h.metrics.ObserveQuery("ok")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

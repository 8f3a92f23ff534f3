package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bellacucina/platform/pkg/logging"
)

// AdminDashboardHandler serves the back-office overview endpoint. It reads
// through database/sql so the reporting queries stay independent of the
// repository layer.
type AdminDashboardHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminDashboardHandler creates a new admin dashboard handler.
func NewAdminDashboardHandler(db *sql.DB, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminDashboardHandler{
		db:     db,
		logger: logger,
	}
}

// DashboardOverviewResponse contains the main dashboard metrics.
type DashboardOverviewResponse struct {
	Period         string          `json:"period"`
	Bookings       BookingMetrics  `json:"bookings"`
	Leads          LeadMetrics     `json:"leads"`
	Deposits       DepositMetrics  `json:"deposits"`
	Invoices       InvoiceMetrics  `json:"invoices"`
	PendingActions []PendingAction `json:"pending_actions"`
}

// BookingMetrics contains booking-related dashboard metrics.
type BookingMetrics struct {
	Total          int `json:"total"`
	Upcoming       int `json:"upcoming"`
	ThisWeek       int `json:"this_week"`
	CancelledCount int `json:"cancelled_count"`
}

// LeadMetrics contains lead-related dashboard metrics.
type LeadMetrics struct {
	Total          int     `json:"total"`
	NewThisWeek    int     `json:"new_this_week"`
	ConversionRate float64 `json:"conversion_rate"`
}

// DepositMetrics contains deposit-related dashboard metrics.
type DepositMetrics struct {
	CollectedCents int64 `json:"collected_cents"`
	ThisWeekCents  int64 `json:"this_week_cents"`
	PendingCount   int   `json:"pending_count"`
}

// InvoiceMetrics contains invoice-related dashboard metrics.
type InvoiceMetrics struct {
	IssuedThisYear   int   `json:"issued_this_year"`
	OutstandingCents int64 `json:"outstanding_cents"`
}

// PendingAction represents an action requiring staff attention.
type PendingAction struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Link        string `json:"link,omitempty"`
}

// GetDashboardOverview returns the main dashboard overview.
// GET /admin/dashboard
func (h *AdminDashboardHandler) GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}

	dashboard := DashboardOverviewResponse{Period: period}

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	today := now.Format("2006-01-02")

	// Booking metrics
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings`,
	).Scan(&dashboard.Bookings.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE event_date >= $1 AND status NOT IN ('cancelled', 'no_show')`, today,
	).Scan(&dashboard.Bookings.Upcoming)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE created_at >= $1`, weekAgo,
	).Scan(&dashboard.Bookings.ThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE status = 'cancelled'`,
	).Scan(&dashboard.Bookings.CancelledCount)

	// Lead metrics
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads`,
	).Scan(&dashboard.Leads.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads WHERE created_at >= $1`, weekAgo,
	).Scan(&dashboard.Leads.NewThisWeek)

	var converted int
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads WHERE status = 'converted'`,
	).Scan(&converted)
	if dashboard.Leads.Total > 0 {
		dashboard.Leads.ConversionRate = float64(converted) / float64(dashboard.Leads.Total) * 100
	}

	// Deposit metrics
	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(amount_cents), 0) FROM deposits WHERE status = 'succeeded'`,
	).Scan(&dashboard.Deposits.CollectedCents)

	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(amount_cents), 0) FROM deposits WHERE status = 'succeeded' AND updated_at >= $1`, weekAgo,
	).Scan(&dashboard.Deposits.ThisWeekCents)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM deposits WHERE status = 'pending'`,
	).Scan(&dashboard.Deposits.PendingCount)

	// Invoice metrics
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM invoices WHERE issued_at >= $1`, yearStart,
	).Scan(&dashboard.Invoices.IssuedThisYear)

	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(total_cents), 0) FROM invoices WHERE status = 'sent'`,
	).Scan(&dashboard.Invoices.OutstandingCents)

	dashboard.PendingActions = h.getPendingActions(r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dashboard)
}

func (h *AdminDashboardHandler) getPendingActions(r *http.Request) []PendingAction {
	var actions []PendingAction

	// Bookings awaiting confirmation
	var pendingBookings int
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE status = 'pending'`,
	).Scan(&pendingBookings)
	if pendingBookings > 0 {
		actions = append(actions, PendingAction{
			Type:        "booking",
			Priority:    "high",
			Description: "Bookings awaiting confirmation",
			Count:       pendingBookings,
			Link:        "/admin/bookings?status=pending",
		})
	}

	// Uncontacted leads
	var newLeads int
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM leads WHERE status = 'new'`,
	).Scan(&newLeads)
	if newLeads > 0 {
		actions = append(actions, PendingAction{
			Type:        "lead",
			Priority:    "medium",
			Description: "New leads awaiting first contact",
			Count:       newLeads,
			Link:        "/admin/leads?status=new",
		})
	}

	// Invoices sent but unpaid for over 30 days
	var overdueInvoices int
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM invoices WHERE status = 'sent' AND issued_at < NOW() - INTERVAL '30 days'`,
	).Scan(&overdueInvoices)
	if overdueInvoices > 0 {
		actions = append(actions, PendingAction{
			Type:        "invoice",
			Priority:    "medium",
			Description: "Invoices overdue for payment",
			Count:       overdueInvoices,
			Link:        "/admin/invoices?status=sent",
		})
	}

	return actions
}

package router

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bellacucina/platform/internal/availability"
	"github.com/bellacucina/platform/internal/bookings"
	"github.com/bellacucina/platform/internal/campaigns"
	"github.com/bellacucina/platform/internal/classes"
	"github.com/bellacucina/platform/internal/http/handlers"
	httpmiddleware "github.com/bellacucina/platform/internal/http/middleware"
	"github.com/bellacucina/platform/internal/invoices"
	"github.com/bellacucina/platform/internal/leads"
	"github.com/bellacucina/platform/internal/messaging"
	"github.com/bellacucina/platform/internal/payments"
	"github.com/bellacucina/platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *availability.Handler
	BookingsHandler     *bookings.Handler
	LeadsHandler        *leads.Handler
	ClassesHandler      *classes.Handler
	PaymentsHandler     *payments.Handler
	PaylinkWebhook      *payments.WebhookHandler
	WhatsAppWebhook     *messaging.WebhookHandler
	CatalogWebhook      *classes.WebhookHandler
	MessagingHandler    *messaging.Handler
	InvoicesHandler     *invoices.Handler
	CampaignsHandler    *campaigns.Handler
	RedirectHandler     *campaigns.RedirectHandler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per-IP throttle on public write endpoints. Disabled when zero.
	PublicRateLimit float64
	PublicBurst     int

	// Admin dashboard dependency (optional)
	DB *sql.DB
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (storefront, webhooks, health checks)
	r.Group(func(public chi.Router) {
		if cfg.PublicRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicBurst))
		}

		public.Get("/health", healthCheck)

		if cfg.AvailabilityHandler != nil {
			public.Get("/availability", cfg.AvailabilityHandler.GetAvailability)
		}
		if cfg.BookingsHandler != nil {
			public.Post("/bookings", cfg.BookingsHandler.CreateBooking)
		}
		if cfg.ClassesHandler != nil {
			public.Route("/classes", func(r chi.Router) {
				r.Get("/", cfg.ClassesHandler.ListClasses)
				r.Get("/{slug}", cfg.ClassesHandler.GetClass)
			})
		}
		if cfg.LeadsHandler != nil {
			public.Post("/leads/web", cfg.LeadsHandler.CreateWebLead)
		}
		if cfg.RedirectHandler != nil {
			public.Get("/c/{code}", cfg.RedirectHandler.Redirect)
		}
		if cfg.PaylinkWebhook != nil {
			public.Post("/webhooks/paylink", cfg.PaylinkWebhook.Handle)
		}
		if cfg.WhatsAppWebhook != nil {
			public.Post("/webhooks/whatsapp", cfg.WhatsAppWebhook.Handle)
		}
		if cfg.CatalogWebhook != nil {
			public.Post("/webhooks/catalog", cfg.CatalogWebhook.Handle)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			if cfg.BookingsHandler != nil {
				admin.Route("/bookings", func(r chi.Router) {
					r.Get("/", cfg.BookingsHandler.ListBookings)
					r.Route("/{bookingID}", func(r chi.Router) {
						r.Get("/", cfg.BookingsHandler.GetBooking)
						r.Patch("/status", cfg.BookingsHandler.UpdateStatus)
						if cfg.PaymentsHandler != nil {
							r.Post("/deposit-link", cfg.PaymentsHandler.CreateDepositLink)
							r.Get("/deposits", cfg.PaymentsHandler.ListBookingDeposits)
						}
					})
				})
			}

			if cfg.LeadsHandler != nil {
				admin.Route("/leads", func(r chi.Router) {
					r.Get("/", cfg.LeadsHandler.ListLeads)
					r.Patch("/{leadID}/status", cfg.LeadsHandler.UpdateStatus)
					if cfg.MessagingHandler != nil {
						r.Get("/{leadID}/messages", cfg.MessagingHandler.ListLeadMessages)
						r.Post("/{leadID}/messages", cfg.MessagingHandler.SendLeadMessage)
					}
				})
			}

			if cfg.MessagingHandler != nil {
				admin.Get("/threads", cfg.MessagingHandler.ListThreads)
			}

			if cfg.InvoicesHandler != nil {
				admin.Route("/invoices", func(r chi.Router) {
					r.Post("/", cfg.InvoicesHandler.CreateInvoice)
					r.Get("/", cfg.InvoicesHandler.ListInvoices)
					r.Route("/{invoiceID}", func(r chi.Router) {
						r.Get("/", cfg.InvoicesHandler.GetInvoice)
						r.Post("/issue", cfg.InvoicesHandler.IssueInvoice)
						r.Patch("/status", cfg.InvoicesHandler.UpdateStatus)
					})
				})
			}

			if cfg.CampaignsHandler != nil {
				admin.Route("/campaigns", func(r chi.Router) {
					r.Post("/", cfg.CampaignsHandler.CreateCampaign)
					r.Get("/", cfg.CampaignsHandler.ListCampaigns)
					r.Post("/{campaignID}/dispatch", cfg.CampaignsHandler.DispatchCampaign)
				})
			}

			if cfg.DB != nil {
				dashboard := handlers.NewAdminDashboardHandler(cfg.DB, cfg.Logger)
				admin.Get("/dashboard", dashboard.GetDashboardOverview)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

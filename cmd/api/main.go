package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bellacucina/platform/cmd/mainconfig"
	"github.com/bellacucina/platform/internal/api/router"
	"github.com/bellacucina/platform/internal/availability"
	"github.com/bellacucina/platform/internal/bookings"
	"github.com/bellacucina/platform/internal/campaigns"
	"github.com/bellacucina/platform/internal/classes"
	appconfig "github.com/bellacucina/platform/internal/config"
	"github.com/bellacucina/platform/internal/invoices"
	"github.com/bellacucina/platform/internal/leads"
	"github.com/bellacucina/platform/internal/messaging"
	"github.com/bellacucina/platform/internal/notify"
	"github.com/bellacucina/platform/internal/observability/metrics"
	"github.com/bellacucina/platform/internal/payments"
	"github.com/bellacucina/platform/internal/queue"
	"github.com/bellacucina/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bella cucina API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: Postgres when configured, in-memory for local development.
	var (
		pool         *pgxpool.Pool
		sqlDB        *sql.DB
		bookingRepo  bookings.Repository
		leadRepo     leads.Repository
		depositRepo  payments.Repository
		invoiceRepo  invoices.Repository
		campaignRepo campaigns.Repository
		messageStore messaging.Store
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		sqlDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open sql db", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sqlDB.Close() }()

		bookingRepo = bookings.NewPostgresRepository(pool)
		leadRepo = leads.NewPostgresRepository(pool)
		depositRepo = payments.NewPostgresRepository(pool)
		invoiceRepo = invoices.NewPostgresRepository(pool)
		campaignRepo = campaigns.NewPostgresRepository(pool)
		messageStore = messaging.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		bookingRepo = bookings.NewInMemoryRepository()
		leadRepo = leads.NewInMemoryRepository()
		depositRepo = payments.NewInMemoryRepository()
		invoiceRepo = invoices.NewInMemoryRepository()
		campaignRepo = campaigns.NewInMemoryRepository()
		messageStore = messaging.NewInMemoryStore()
	}

	// Redis backs the catalog cache and campaign click counters. The platform
	// stays up without it.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, caching disabled", "error", err)
		} else {
			redisClient = client
		}
		cancel()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	availMetrics := metrics.NewAvailabilityMetrics(registry)
	bookingMetrics := metrics.NewBookingMetrics(registry)
	messagingMetrics := metrics.NewMessagingMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Email sender
	var emailer notify.EmailSender
	switch cfg.EmailProvider {
	case "ses":
		emailer = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	default:
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sg != nil {
			emailer = sg
		}
	}
	if emailer == nil {
		logger.Warn("no email provider configured, using stub sender")
		emailer = notify.NewStubEmailSender(logger)
	}

	// Availability
	calendar := availability.DefaultCalendar()
	if cfg.SlotCalendarPath != "" {
		loaded, err := availability.LoadCalendar(cfg.SlotCalendarPath)
		if err != nil {
			logger.Error("failed to load slot calendar", "path", cfg.SlotCalendarPath, "error", err)
			os.Exit(1)
		}
		calendar = loaded
	}
	availHandler := availability.NewHandler(calendar, bookings.NewReservationAdapter(bookingRepo), cfg.BufferMinutes, availMetrics, logger)

	// Bookings
	bookingSvc := bookings.NewService(bookingRepo, emailer, bookingMetrics, logger)
	bookingsHandler := bookings.NewHandler(bookingSvc, logger)

	// Class catalog (headless CMS, cached in redis)
	var catalog classes.CatalogSource
	var catalogWebhook *classes.WebhookHandler
	if cms := classes.NewCMSClient(cfg.CatalogBaseURL, cfg.CatalogAPIToken, logger); cms != nil {
		if redisClient != nil {
			cached := classes.NewCachedCatalog(cms, redisClient, cfg.CatalogCacheTTL, logger)
			catalog = cached
			catalogWebhook = classes.NewWebhookHandler(cached, cfg.CatalogWebhookSecret, logger)
		} else {
			catalog = cms
		}
	}
	classesHandler := classes.NewHandler(catalog, logger)

	// Deposits
	paylink := payments.NewPaylinkClient(cfg.PaylinkBaseURL, cfg.PaylinkAPIKey, cfg.PaylinkSuccessURL, logger).
		WithDryRun(cfg.PaylinkDryRun)
	paymentsSvc := payments.NewService(depositRepo, paylink, int64(cfg.DepositAmountCents), logger)
	paymentsHandler := payments.NewHandler(paymentsSvc, depositRepo, logger)
	paylinkWebhook := payments.NewWebhookHandler(cfg.PaylinkWebhookSecret, depositRepo, bookingSvc, bookingMetrics, logger)

	// WhatsApp messaging
	var sender messaging.GatewaySender
	if gw := messaging.NewGatewayClient(cfg.WhatsAppBaseURL, cfg.WhatsAppAPIKey, cfg.WhatsAppFromNumber, logger); gw != nil {
		sender = gw
	}
	messagingHandler := messaging.NewHandler(messageStore, sender, leadRepo, cfg.WhatsAppFromNumber, messagingMetrics, logger)
	whatsappWebhook := messaging.NewWebhookHandler(cfg.WhatsAppWebhookSecret, messageStore, leadRepo, messagingMetrics, logger)

	// Invoices
	archive := invoices.NewArchiveStore(s3.NewFromConfig(awsCfg), cfg.InvoiceArchiveBucket, logger)
	invoicesHandler := invoices.NewHandler(invoiceRepo, archive, logger)

	// Campaigns
	var campaignQueue queue.Queue
	if cfg.UseMemoryQueue || cfg.CampaignQueueURL == "" {
		campaignQueue = queue.NewMemoryQueue(64)
	} else {
		sqsQueue, err := queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CampaignQueueURL)
		if err != nil {
			logger.Error("failed to init campaign queue", "error", err)
			os.Exit(1)
		}
		campaignQueue = sqsQueue
	}
	tracker := campaigns.NewClickTracker(redisClient, campaignRepo)
	dispatcher := campaigns.NewDispatcher(campaignRepo, leadRepo, emailer, sender, campaignQueue, logger).
		WithBaseURL(cfg.PublicBaseURL)
	campaignsHandler := campaigns.NewHandler(campaignRepo, dispatcher, tracker, logger)
	redirectHandler := campaigns.NewRedirectHandler(campaignRepo, tracker, logger)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	for i := 0; i < cfg.WorkerCount; i++ {
		go dispatcher.Run(workerCtx)
	}

	// Other handlers
	leadsHandler := leads.NewHandler(leadRepo, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		AvailabilityHandler: availHandler,
		BookingsHandler:     bookingsHandler,
		LeadsHandler:        leadsHandler,
		ClassesHandler:      classesHandler,
		PaymentsHandler:     paymentsHandler,
		PaylinkWebhook:      paylinkWebhook,
		WhatsAppWebhook:     whatsappWebhook,
		CatalogWebhook:      catalogWebhook,
		MessagingHandler:    messagingHandler,
		InvoicesHandler:     invoicesHandler,
		CampaignsHandler:    campaignsHandler,
		RedirectHandler:     redirectHandler,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		PublicRateLimit:     10,
		PublicBurst:         30,
		DB:                  sqlDB,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

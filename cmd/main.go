package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v82"

	cancelBookingHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/cancel_booking"
	createBookingLinkHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/create_booking_link"
	getBookingHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/get_booking"
	getSessionBookingsHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/get_session_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/get_user_bookings"
	paymentWebhookHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/payment_webhook"
	schedulingWebhookHandler "github.com/m04kA/SMC-WebhookService/internal/api/handlers/scheduling_webhook"
	"github.com/m04kA/SMC-WebhookService/internal/api/middleware"
	"github.com/m04kA/SMC-WebhookService/internal/config"
	bookingRepo "github.com/m04kA/SMC-WebhookService/internal/infra/storage/booking"
	deliveryRepo "github.com/m04kA/SMC-WebhookService/internal/infra/storage/delivery"
	calendlyClient "github.com/m04kA/SMC-WebhookService/internal/integrations/calendly"
	"github.com/m04kA/SMC-WebhookService/internal/integrations/stripepay"
	"github.com/m04kA/SMC-WebhookService/internal/normalizer"
	bookingsService "github.com/m04kA/SMC-WebhookService/internal/service/bookings"
	refundsService "github.com/m04kA/SMC-WebhookService/internal/service/refunds"
	createBookingLinkUC "github.com/m04kA/SMC-WebhookService/internal/usecase/create_booking_link"
	processPaymentEventUC "github.com/m04kA/SMC-WebhookService/internal/usecase/process_payment_event"
	processSchedulingEventUC "github.com/m04kA/SMC-WebhookService/internal/usecase/process_scheduling_event"
	retentionWorker "github.com/m04kA/SMC-WebhookService/internal/worker/retention"
	"github.com/m04kA/SMC-WebhookService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WebhookService/pkg/logger"
	"github.com/m04kA/SMC-WebhookService/pkg/metrics"
	"github.com/m04kA/SMC-WebhookService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-WebhookService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WebhookService...")
	log.Info("Configuration loaded from config.toml")

	// Метрики создаются всегда: их пишут usecases и сервис возвратов.
	// От cfg.Metrics.Enabled зависит только endpoint и обертка БД.
	metricsCollector := metrics.New(cfg.Metrics.ServiceName)
	stopMetricsCh := make(chan struct{})

	// API-ключ платежного провайдера устанавливается глобально для SDK
	stripe.Key = cfg.Stripe.SecretKey

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	schedulerClient := calendlyClient.NewClient(
		cfg.Calendly.BaseURL,
		cfg.Calendly.Token,
		time.Duration(cfg.Calendly.Timeout)*time.Second,
		log,
	)
	paymentClient := stripepay.NewClient(log)
	log.Info("Integration clients initialized (Calendly=%s timeout=%ds)",
		cfg.Calendly.BaseURL, cfg.Calendly.Timeout)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}

	var (
		bookingRepository  *bookingRepo.Repository
		deliveryRepository *deliveryRepo.Repository
		txMgr              TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		deliveryRepository = deliveryRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		deliveryRepository = deliveryRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	refundsSvc := refundsService.NewService(
		paymentClient,
		refundsService.Policy{
			FullRefundHours:      cfg.RefundPolicy.FullRefundHours,
			PartialRefundPercent: cfg.RefundPolicy.PartialRefundPercent,
		},
		metricsCollector,
		log,
	)
	bookingSvc := bookingsService.NewService(bookingRepository, refundsSvc, txMgr, log)

	// Нормализатор webhook-событий
	norm := normalizer.New()

	// Инициализируем use cases
	processSchedulingEvent := processSchedulingEventUC.New(
		bookingRepository,
		deliveryRepository,
		refundsSvc,
		txMgr,
		metricsCollector,
		log,
	)
	processPaymentEvent := processPaymentEventUC.New(
		bookingRepository,
		deliveryRepository,
		txMgr,
		metricsCollector,
		log,
	)
	createBookingLink := createBookingLinkUC.New(
		schedulerClient,
		paymentClient,
		log,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
	)

	// Инициализируем handlers
	schedulingWebhook := schedulingWebhookHandler.NewHandler(
		norm,
		processSchedulingEvent,
		log,
		cfg.Calendly.WebhookSecret,
		time.Duration(cfg.Calendly.SignatureToleranceSeconds)*time.Second,
	)
	paymentWebhook := paymentWebhookHandler.NewHandler(norm, processPaymentEvent, log, cfg.Stripe.WebhookSecret)
	createLink := createBookingLinkHandler.NewHandler(createBookingLink, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getSessionBookings := getSessionBookingsHandler.NewHandler(bookingSvc, log)

	// Воркер очистки журнала доставок
	retention := retentionWorker.New(
		deliveryRepository,
		log,
		cfg.Retention.DeliveryTTLDays,
		cfg.Retention.SweepSchedule,
	)
	if err := retention.Start(); err != nil {
		log.Fatal("Failed to start retention worker: %v", err)
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// ============================================================
	// WEBHOOK ROUTES (аутентификация подписью провайдера)
	// ============================================================

	r.HandleFunc("/webhooks/scheduling", schedulingWebhook.Handle).Methods(http.MethodPost)
	r.HandleFunc("/webhooks/payment", paymentWebhook.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Выпуск пары ссылок (scheduling + оплата)
	protected.HandleFunc("/booking-links", createLink.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Ручная отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// Бронирования по типу сессии (для builder-а)
	protected.HandleFunc("/session-types/{sessionTypeId}/bookings", getSessionBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	retention.Stop()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

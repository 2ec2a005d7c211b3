package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_customer_bookings"
	getDayScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_day_schedule"
	getScheduleConfigHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_schedule_config"
	updateBookingStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/api/validation"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/database"
	engagementRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/engagement"
	profileRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/profile"
	reminderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/reminder"
	calendarClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/calendar"
	notifierClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	settingsServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/settingsservice"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/internal/worker/reminders"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики (nil при выключенных: все методы nil-безопасны)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	db, dialect, err := database.Open(startupCtx, database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: config.Seconds(cfg.Database.ConnMaxLifetime),
	})
	if err != nil {
		cancelStartup()
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Successfully connected to database (driver=%s)", cfg.Database.Driver)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(startupCtx, db, dialect, log); err != nil {
			cancelStartup()
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}
	cancelStartup()

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	location, err := cfg.Schedule.Location()
	if err != nil {
		log.Fatal("Invalid schedule time zone: %v", err)
	}

	reminderOffsets, err := cfg.Reminders.OffsetDurations()
	if err != nil {
		log.Fatal("Invalid reminder offsets: %v", err)
	}

	// Инициализируем интеграционных клиентов
	var settingsClient scheduleService.SettingsClient
	if cfg.SettingsService.BaseURL != "" {
		settingsClient = settingsServiceClient.NewClient(
			cfg.SettingsService.BaseURL,
			cfg.SettingsService.APIKey,
			config.Seconds(cfg.SettingsService.Timeout),
			log,
		)
	}
	calendar := calendarClient.NewClient(
		cfg.Calendar.BaseURL,
		cfg.Calendar.AccessToken,
		config.Seconds(cfg.Calendar.Timeout),
		log,
	)
	notifier := notifierClient.NewClient(
		cfg.Notifier.WebhookURL,
		cfg.Notifier.Secret,
		config.Seconds(cfg.Notifier.Timeout),
		log,
	)
	log.Info("Integration clients initialized (SettingsService=%q, Calendar=%q, Notifier=%q)",
		cfg.SettingsService.BaseURL, cfg.Calendar.BaseURL, cfg.Notifier.WebhookURL)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB, dialect)
	profileRepository := profileRepo.NewRepository(wrappedDB, dialect)
	reminderRepository := reminderRepo.NewRepository(wrappedDB, dialect)
	engagementRepository := engagementRepo.NewRepository(wrappedDB, dialect)

	// Инициализируем сервисы и use cases
	scheduleSvc := scheduleService.NewService(
		settingsClient,
		scheduleService.LoadEnvDefaults(),
		location,
		config.Seconds(cfg.Schedule.CacheTTL),
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		scheduleSvc,
		bookingRepository,
		calendar,
		cfg.Calendar.CalendarID,
		metricsCollector,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		scheduleSvc,
		bookingRepository,
		profileRepository,
		reminderRepository,
		engagementRepository,
		notifier,
		reminderOffsets,
		metricsCollector,
		log,
	)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		reminderRepository,
		engagementRepository,
		getAvailableSlotsUseCase,
		scheduleSvc,
		notifier,
		txMgr,
		log,
	)

	validator := validation.MustNew()

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, validator, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, validator, log)
	getDaySchedule := getDayScheduleHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMinute,
			cfg.RateLimit.Burst,
			cfg.RateLimit.TrustProxyHeaders,
			log,
		)
		api.Use(limiter.Middleware())
		log.Info("Rate limit enabled: %d req/min, burst %d, trust proxy headers=%t",
			cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxyHeaders)
	}

	// --- Расписание ---
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodPost)
	api.HandleFunc("/schedule-config", getScheduleConfig.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", getDaySchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// --- Клиенты ---
	api.HandleFunc("/customers/{email}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// Фоновая отправка напоминаний
	var dispatcher *reminders.Dispatcher
	if cfg.Reminders.Enabled && cfg.Notifier.WebhookURL == "" {
		log.Warn("Reminders enabled but notifier.webhook_url is empty, dispatcher not started")
	}
	if cfg.Reminders.Enabled && cfg.Notifier.WebhookURL != "" {
		dispatcher = reminders.NewDispatcher(
			reminderRepository,
			bookingRepository,
			engagementRepository,
			notifier,
			cfg.Reminders.Schedule,
			cfg.Reminders.BatchSize,
			metricsCollector,
			log,
		)
		if err := dispatcher.Start(); err != nil {
			log.Fatal("Failed to start reminder dispatcher: %v", err)
		}
		log.Info("Reminder dispatcher started (schedule=%s)", cfg.Reminders.Schedule)
	}

	// Создаем HTTP сервер
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.Server.IdleTimeout),
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		config.Seconds(cfg.Server.ShutdownTimeout),
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if dispatcher != nil {
		dispatcher.Stop(shutdownCtx)
		log.Info("Reminder dispatcher stopped")
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

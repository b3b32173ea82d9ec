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

	cancelBookingHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/create_booking"
	getAccountBookingsHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/get_account_bookings"
	getAccountStatsHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/get_account_stats"
	getAvailableSlotsHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/get_booking"
	getWidgetConfigHandler "github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers/get_widget_config"
	"github.com/m04kA/SMC-WidgetBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-WidgetBookingService/internal/config"
	accountRepo "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/account"
	bookingRepo "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/booking"
	scheduleConfigRepo "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/scheduleconfig"
	bookingsService "github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings"
	configService "github.com/m04kA/SMC-WidgetBookingService/internal/service/config"
	createBookingUC "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/logger"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/metrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/txmanager"
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

	log.Info("Starting SMC-WidgetBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

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

	// Инициализируем репозитории (с метриками или без)
	var (
		accountRepository *accountRepo.Repository
		configRepository  *scheduleConfigRepo.Repository
		bookingRepository *bookingRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		accountRepository = accountRepo.NewRepository(wrappedDB)
		configRepository = scheduleConfigRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		accountRepository = accountRepo.NewRepository(db)
		configRepository = scheduleConfigRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		log,
	)
	configSvc := configService.NewService(
		accountRepository,
		configRepository,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		accountRepository,
		configRepository,
		bookingRepository,
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		accountRepository,
		configRepository,
		bookingRepository,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getWidgetConfig := getWidgetConfigHandler.NewHandler(configSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getAccountBookings := getAccountBookingsHandler.NewHandler(bookingSvc, log)
	getAccountStats := getAccountStatsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (виджет и клиенты, без аутентификации)
	// ============================================================

	public := api.PathPrefix("").Subrouter()

	// Грубый пер-IP лимит на публичные эндпоинты
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		public.Use(rateLimiter.Middleware)
		log.Info("Public rate limiting enabled (%.1f rps, burst %d)",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Публичная конфигурация виджета
	public.HandleFunc("/widget/{widgetId}/config", getWidgetConfig.Handle).Methods(http.MethodGet)

	// Доступные слоты в диапазоне дат
	public.HandleFunc("/widget/{widgetId}/availability", getAvailableSlots.Handle).Methods(http.MethodPost)

	// Создание бронирования
	public.HandleFunc("/widget/{widgetId}/book", createBooking.Handle).Methods(http.MethodPost)

	// Бронирование по публичному ключу
	public.HandleFunc("/bookings/{reference}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	public.HandleFunc("/bookings/{reference}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// OWNER ROUTES (требуют X-Account-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Список бронирований аккаунта
	protected.HandleFunc("/accounts/{accountId}/bookings", getAccountBookings.Handle).Methods(http.MethodGet)

	// Статистика бронирований аккаунта
	protected.HandleFunc("/accounts/{accountId}/stats", getAccountStats.Handle).Methods(http.MethodGet)

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

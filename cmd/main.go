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
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/create_booking"
	createSeriesHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/create_series"
	getAvailableSlotsHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_booking"
	getScheduleHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_schedule"
	getScheduleConfigHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_schedule_config"
	getUserBookingsHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_user_bookings"
	runPaymentSweepHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/run_payment_sweep"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/config"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	payProviderClient "github.com/m04kA/SMC-LessonService/internal/integrations/payprovider"
	"github.com/m04kA/SMC-LessonService/internal/lock"
	"github.com/m04kA/SMC-LessonService/internal/scheduler"
	availabilityService "github.com/m04kA/SMC-LessonService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-LessonService/internal/service/bookings"
	createBookingUC "github.com/m04kA/SMC-LessonService/internal/usecase/create_booking"
	createSeriesUC "github.com/m04kA/SMC-LessonService/internal/usecase/create_series"
	getAvailableSlotsUC "github.com/m04kA/SMC-LessonService/internal/usecase/get_available_slots"
	paymentSweepUC "github.com/m04kA/SMC-LessonService/internal/usecase/payment_sweep"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/logger"
	"github.com/m04kA/SMC-LessonService/pkg/metrics"
	"github.com/m04kA/SMC-LessonService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

func main() {
	// Загружаем .env (если есть) до чтения конфигурации
	_ = godotenv.Load()

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

	log.Info("Starting SMC-LessonService...")
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

	// Инициализируем клиента платежного провайдера
	payClient := payProviderClient.NewClient(
		cfg.Payments.ProviderURL,
		time.Duration(cfg.Payments.TimeoutSeconds)*time.Second,
		log,
	)
	log.Info("Payment provider client initialized (url=%s timeout=%ds)",
		cfg.Payments.ProviderURL, cfg.Payments.TimeoutSeconds)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// Инициализируем репозиторий и transaction manager (с метриками или без)
	var (
		bookingRepository *bookingRepo.Repository
		txMgr             TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Рекордер бизнес-метрик: настоящий или заглушка
	type MetricsRecorder interface {
		IncBookingCreated(lessonType string)
		IncPayment(result string)
		IncRefund(result string)
		AddSweepClaimed(n int)
	}
	var recorder MetricsRecorder = metrics.Noop{}
	if cfg.Metrics.Enabled {
		recorder = metricsCollector
	}

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(
		bookingRepository,
		cfg.WeeklySchedule(),
		cfg.BookingRules(),
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		payClient,
		recorder,
		log,
	)

	// Опциональная распределенная блокировка свипа
	var sweepLocker paymentSweepUC.Locker
	if cfg.Redis.Enabled {
		redisLock, err := lock.NewRedisLock(
			cfg.Redis.Addr,
			"payment-sweep",
			time.Duration(cfg.Redis.LockTTLSeconds)*time.Second,
		)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisLock.Close()
		sweepLocker = redisLock
		log.Info("Payment sweep lock enabled (redis=%s)", cfg.Redis.Addr)
	}

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		availabilitySvc,
		txMgr,
		recorder,
		log,
	)
	createSeriesUseCase := createSeriesUC.NewUseCase(
		bookingRepository,
		availabilitySvc,
		txMgr,
		recorder,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(availabilitySvc, log)
	paymentSweepUseCase := paymentSweepUC.NewUseCase(
		bookingRepository,
		payClient,
		sweepLocker,
		recorder,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	createSeries := createSeriesHandler.NewHandler(createSeriesUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getSchedule := getScheduleHandler.NewHandler(bookingSvc, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(availabilitySvc, log)
	runPaymentSweep := runPaymentSweepHandler.NewHandler(paymentSweepUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Внутренний ручной запуск свипа (не под /api/v1, закрыт снаружи)
	r.HandleFunc("/internal/payments/sweep", runPaymentSweep.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Слоты на дату с доступностью
	api.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Недельный шаблон расписания и правила записи
	api.HandleFunc("/schedule/config", getScheduleConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Занятия ---
	// Запись на одиночное занятие
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Запись на серию еженедельных занятий
	protected.HandleFunc("/bookings/series", createSeries.Handle).Methods(http.MethodPost)

	// Получение занятия по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена занятия
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История занятий пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для репетитора/админа) ---
	// Занятия за период, включая отмененные
	protected.HandleFunc("/schedule/bookings", getSchedule.Handle).Methods(http.MethodGet)

	// Планировщик свипа оплат
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	if cfg.Payments.SweepEnabled {
		sweepScheduler := scheduler.New(
			paymentSweepUseCase,
			time.Duration(cfg.Payments.SweepIntervalMinutes)*time.Minute,
			log,
		)
		go sweepScheduler.Start(schedulerCtx)
	} else {
		log.Info("Payment sweep scheduler disabled")
	}

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

	// Останавливаем планировщик и сбор метрик connection pool
	stopScheduler()
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

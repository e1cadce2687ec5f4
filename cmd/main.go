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
	"github.com/redis/go-redis/v9"

	checkAvailabilityHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/check_availability"
	createRecurringHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/create_recurring"
	generateSlotsHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/generate_slots"
	getCourtScheduleHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/get_court_schedule"
	getRecurringHistoryHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/get_recurring_history"
	getSlotHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/get_slot"
	reserveSlotHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/reserve_slot"
	runJobHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/run_job"
	slotActionHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/slot_action"
	submitPaymentHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/submit_payment"
	updateCourtScheduleHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/update_court_schedule"
	updateRecurringHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/update_recurring"
	validatePaymentHandler "github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/validate_payment"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/config"
	"github.com/m04kA/SMC-CourtSlotService/internal/infra/events"
	"github.com/m04kA/SMC-CourtSlotService/internal/infra/ratelimit"
	paymentRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/payment"
	priceRuleRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/pricerule"
	recurringRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/recurring"
	scheduleRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/schedule"
	slotRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/slot"
	facilityServiceClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtSlotService/internal/jobs"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/abuseguard"
	paymentsService "github.com/m04kA/SMC-CourtSlotService/internal/service/payments"
	recurringService "github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
	scheduleService "github.com/m04kA/SMC-CourtSlotService/internal/service/schedule"
	slotsService "github.com/m04kA/SMC-CourtSlotService/internal/service/slots"
	expireReservationsUC "github.com/m04kA/SMC-CourtSlotService/internal/usecase/expire_reservations"
	generateSlotsUC "github.com/m04kA/SMC-CourtSlotService/internal/usecase/generate_slots"
	materializeRecurringUC "github.com/m04kA/SMC-CourtSlotService/internal/usecase/materialize_recurring"
	reserveSlotUC "github.com/m04kA/SMC-CourtSlotService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-CourtSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/logger"
	"github.com/m04kA/SMC-CourtSlotService/pkg/metrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/txmanager"
)

// Publisher публикация доменных событий (RabbitMQ или заглушка)
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

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

	log.Info("Starting SMC-CourtSlotService...")
	log.Info("Configuration loaded from config.toml")

	defaultLoc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone: %v", err)
	}

	// Инициализируем метрики (если включены). Методы Metrics безопасны для nil.
	var metricsCollector *metrics.Metrics
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

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	slotRepository := slotRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	recurringRepository := recurringRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	priceRuleRepository := priceRuleRepo.NewRepository(wrappedDB)

	// Инициализируем клиента сервиса площадок
	facilityClient := facilityServiceClient.NewClient(
		cfg.FacilityService.URL,
		time.Duration(cfg.FacilityService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (FacilityService=%s timeout=%ds)",
		cfg.FacilityService.URL, cfg.FacilityService.Timeout)

	// Хранилище счетчиков защиты от злоупотреблений
	var abuseStore abuseguard.Store
	switch cfg.AbuseGuard.Store {
	case config.AbuseStoreRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			// Защита работает в режиме fail-open, поэтому недоступный Redis не мешает старту
			log.Warn("Redis is not reachable at %s: %v", cfg.Redis.Addr, err)
		}
		abuseStore = ratelimit.NewRedisStore(redisClient, cfg.Redis.KeyPrefix)
		log.Info("Abuse guard uses redis store (addr=%s)", cfg.Redis.Addr)
	default:
		abuseStore = ratelimit.NewMemoryStore()
		log.Info("Abuse guard uses in-memory store")
	}
	abuseGuard := abuseguard.NewService(abuseStore, cfg.AbuseGuard.Window(), cfg.AbuseGuard.Limit, log)

	// Публикация доменных событий
	var publisher Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbitPublisher, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.Metrics.ServiceName)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbitPublisher.Close()

		publisher = rabbitPublisher
		log.Info("Domain events are published to exchange %s", cfg.RabbitMQ.Exchange)
	}

	// Инициализируем use cases
	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		slotRepository,
		scheduleRepository,
		priceRuleRepository,
		facilityClient,
		metricsCollector,
		defaultLoc,
		cfg.Booking.GenerationMaxHorizonDays,
		log,
	)
	reserveSlotUseCase := reserveSlotUC.NewUseCase(
		slotRepository,
		facilityClient,
		abuseGuard,
		publisher,
		metricsCollector,
		txMgr,
		cfg.Booking.MaxActiveSlots,
		log,
	)
	expireReservationsUseCase := expireReservationsUC.NewUseCase(slotRepository, log)
	materializeRecurringUseCase := materializeRecurringUC.NewUseCase(
		recurringRepository,
		slotRepository,
		paymentRepository,
		priceRuleRepository,
		facilityClient,
		publisher,
		metricsCollector,
		txMgr,
		materializeRecurringUC.Settings{
			Location:    defaultLoc,
			HorizonDays: cfg.Booking.MaterializationHorizonDays,
			DepositLead: cfg.Booking.RecurringDepositLead(),
		},
		log,
	)

	// Инициализируем сервисы
	slotSvc := slotsService.NewService(
		slotRepository,
		paymentRepository,
		facilityClient,
		publisher,
		txMgr,
		defaultLoc,
		log,
	)
	paymentSvc := paymentsService.NewService(
		paymentRepository,
		slotRepository,
		facilityClient,
		publisher,
		txMgr,
		log,
	)
	recurringSvc := recurringService.NewService(
		recurringRepository,
		slotRepository,
		paymentRepository,
		facilityClient,
		materializeRecurringUseCase,
		txMgr,
		log,
	)
	scheduleSvc := scheduleService.NewService(scheduleRepository, priceRuleRepository, facilityClient, log)

	// Периодические задачи
	scheduler := jobs.NewScheduler(defaultLoc, time.Duration(cfg.Jobs.Timeout)*time.Second, metricsCollector, log)
	jobSpecs := []struct {
		name string
		spec string
		fn   jobs.Func
	}{
		{jobs.JobExpireReservations, cfg.Jobs.ExpirationSpec, expireReservationsUseCase.Execute},
		{jobs.JobMaterializeRecurring, cfg.Jobs.MaterializationSpec, func(ctx context.Context) (int, error) {
			res, err := materializeRecurringUseCase.ExecuteAll(ctx)
			if err != nil {
				return 0, err
			}
			return res.Created, nil
		}},
		{jobs.JobGenerateSlots, cfg.Jobs.GenerationSpec, func(ctx context.Context) (int, error) {
			res, err := generateSlotsUseCase.ExecuteAll(ctx)
			if err != nil {
				return 0, err
			}
			return res.Created, nil
		}},
	}
	for _, j := range jobSpecs {
		spec := j.spec
		if !cfg.Jobs.Enabled {
			spec = "" // только ручной запуск
		}
		if err := scheduler.Register(j.name, spec, j.fn); err != nil {
			log.Fatal("Failed to register job %s: %v", j.name, err)
		}
	}
	if cfg.Jobs.Enabled {
		scheduler.Start()
		log.Info("Job scheduler started (expiration=%q, materialization=%q, generation=%q)",
			cfg.Jobs.ExpirationSpec, cfg.Jobs.MaterializationSpec, cfg.Jobs.GenerationSpec)
	}

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(slotSvc, log)
	getSlot := getSlotHandler.NewHandler(slotSvc, log)
	reserveSlot := reserveSlotHandler.NewHandler(reserveSlotUseCase, log)
	cancelSlot := slotActionHandler.NewHandler(slotActionHandler.ActionCancel, slotSvc, log)
	cancelOccurrence := slotActionHandler.NewHandler(slotActionHandler.ActionCancelOccurrence, slotSvc, log)
	markNoShow := slotActionHandler.NewHandler(slotActionHandler.ActionNoShow, slotSvc, log)
	blockSlot := slotActionHandler.NewHandler(slotActionHandler.ActionBlock, slotSvc, log)
	reopenSlot := slotActionHandler.NewHandler(slotActionHandler.ActionReopen, slotSvc, log)
	submitPayment := submitPaymentHandler.NewHandler(paymentSvc, log)
	validatePayment := validatePaymentHandler.NewHandler(paymentSvc, log)
	getCourtSchedule := getCourtScheduleHandler.NewHandler(scheduleSvc, log)
	updateCourtSchedule := updateCourtScheduleHandler.NewHandler(scheduleSvc, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	createRecurring := createRecurringHandler.NewHandler(recurringSvc, log)
	updateRecurring := updateRecurringHandler.NewHandler(recurringSvc, log)
	getRecurringHistory := getRecurringHistoryHandler.NewHandler(recurringSvc, log)
	runJob := runJobHandler.NewHandler(scheduler, cfg.Jobs.AdminUserIDs, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuth)

	// Свободные слоты корта
	public.HandleFunc("/courts/{courtId}/slots", checkAvailability.Handle).Methods(http.MethodGet)

	// Недельное расписание и правила цены корта
	public.HandleFunc("/courts/{courtId}/schedule", getCourtSchedule.Handle).Methods(http.MethodGet)

	// Бронирование слота, в том числе без аккаунта по телефону
	public.HandleFunc("/slots/{slotId}/reserve", reserveSlot.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Слоты ---
	protected.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{slotId}/cancel", cancelSlot.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}/cancel-occurrence", cancelOccurrence.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}/no-show", markNoShow.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}/block", blockSlot.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}/reopen", reopenSlot.Handle).Methods(http.MethodPatch)

	// --- Депозиты ---
	protected.HandleFunc("/slots/{slotId}/payment", submitPayment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/payments/{paymentId}/approve", validatePayment.HandleApprove).Methods(http.MethodPost)
	protected.HandleFunc("/payments/{paymentId}/reject", validatePayment.HandleReject).Methods(http.MethodPost)

	// --- Управление кортом (для персонала площадки) ---
	protected.HandleFunc("/courts/{courtId}/schedule/{weekday}",
		updateCourtSchedule.HandleUpsertTemplate).Methods(http.MethodPut)
	protected.HandleFunc("/courts/{courtId}/schedule/{weekday}",
		updateCourtSchedule.HandleDeleteTemplate).Methods(http.MethodDelete)
	protected.HandleFunc("/courts/{courtId}/price-rules/{weekday}",
		updateCourtSchedule.HandleUpsertPriceRule).Methods(http.MethodPut)
	protected.HandleFunc("/courts/{courtId}/price-rules/{weekday}",
		updateCourtSchedule.HandleDeletePriceRule).Methods(http.MethodDelete)
	protected.HandleFunc("/courts/{courtId}/slots/generate", generateSlots.Handle).Methods(http.MethodPost)

	// --- Постоянные брони ---
	protected.HandleFunc("/recurring-bookings", createRecurring.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/recurring-bookings/{id}/pause", updateRecurring.HandlePause).Methods(http.MethodPatch)
	protected.HandleFunc("/recurring-bookings/{id}/reactivate", updateRecurring.HandleReactivate).Methods(http.MethodPatch)
	protected.HandleFunc("/recurring-bookings/{id}", updateRecurring.HandleCancel).Methods(http.MethodDelete)
	protected.HandleFunc("/recurring-bookings/{id}/history", getRecurringHistory.Handle).Methods(http.MethodGet)

	// --- Ручной запуск задач (администраторы) ---
	protected.HandleFunc("/jobs/{name}/run", runJob.Handle).Methods(http.MethodPost)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся текущих запусков задач
	scheduler.Stop(shutdownCtx)
	log.Info("Job scheduler stopped")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}

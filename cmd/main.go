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

	adminBookingsHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/admin_bookings"
	adminSetStatusHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/admin_set_status"
	bookingsByEmailHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/bookings_by_email"
	cancelBookingHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/cancel_booking"
	catalogHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/catalog"
	createBookingHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/create_booking"
	generateTimeslotsHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/generate_timeslots"
	getBookingHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/get_booking"
	getTimeslotsHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/get_timeslots"
	loginHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/login"
	registerHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/register"
	updateBookingHandler "github.com/m04kA/SMC-TimeslotService/internal/api/handlers/update_booking"
	"github.com/m04kA/SMC-TimeslotService/internal/api/middleware"
	"github.com/m04kA/SMC-TimeslotService/internal/config"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/catalog"
	sideeffectRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/sideeffect"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
	userRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/user"
	authService "github.com/m04kA/SMC-TimeslotService/internal/service/auth"
	bookingsService "github.com/m04kA/SMC-TimeslotService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-TimeslotService/internal/service/catalog"
	"github.com/m04kA/SMC-TimeslotService/internal/service/sideeffects"
	timeslotsService "github.com/m04kA/SMC-TimeslotService/internal/service/timeslots"
	adminSetStatusUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/admin_set_status"
	cancelBookingUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/create_booking"
	updateBookingUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/update_booking"
	"github.com/m04kA/SMC-TimeslotService/internal/worker/notifications"
	"github.com/m04kA/SMC-TimeslotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TimeslotService/pkg/logger"
	"github.com/m04kA/SMC-TimeslotService/pkg/metrics"
	"github.com/m04kA/SMC-TimeslotService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-TimeslotService/pkg/tokens"
	"github.com/m04kA/SMC-TimeslotService/pkg/txmanager"
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

	log.Info("Starting SMC-TimeslotService...")
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

	// JWT менеджер для выпуска и проверки токенов
	tokenManager := tokens.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository    *bookingRepo.Repository
		timeslotRepository   *timeslotRepo.Repository
		userRepository       *userRepo.Repository
		catalogRepository    *catalogRepo.Repository
		sideeffectRepository *sideeffectRepo.Repository
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		timeslotRepository = timeslotRepo.NewRepository(wrappedDB)
		userRepository = userRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		sideeffectRepository = sideeffectRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		timeslotRepository = timeslotRepo.NewRepository(db)
		userRepository = userRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		sideeffectRepository = sideeffectRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Эмиттер побочных эффектов (платежи и уведомления после commit)
	emitter := sideeffects.NewEmitter(sideeffectRepository, log)

	// Инициализируем сервисы
	authSvc := authService.NewService(userRepository, tokenManager, log)

	// Bootstrap-админ: без него ни один /admin/* маршрут недоступен на свежей базе
	if err := authSvc.EnsureAdmin(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal("Failed to ensure admin account: %v", err)
	}

	bookingSvc := bookingsService.NewService(bookingRepository, log)
	timeslotSvc := timeslotsService.NewService(timeslotRepository, catalogRepository, log)
	catalogSvc := catalogService.NewService(catalogRepository, log)

	// Счетчики бизнес-событий; при выключенных метриках работают как no-op
	bookingCounters := metrics.NewBookingCounters(metricsCollector, cfg.Metrics.ServiceName)

	// Инициализируем use cases движка резервирования
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		timeslotRepository,
		catalogRepository,
		userRepository,
		emitter,
		txMgr,
		bookingCounters,
		log,
	)
	updateBookingUseCase := updateBookingUC.NewUseCase(
		bookingRepository,
		timeslotRepository,
		txMgr,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		timeslotRepository,
		emitter,
		txMgr,
		log,
	)
	adminSetStatusUseCase := adminSetStatusUC.NewUseCase(
		bookingRepository,
		timeslotRepository,
		txMgr,
		log,
		cfg.Engine.StrictAdminReactivation,
	)

	// Инициализируем handlers
	register := registerHandler.NewHandler(authSvc, log)
	login := loginHandler.NewHandler(authSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	updateBooking := updateBookingHandler.NewHandler(updateBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	adminSetStatus := adminSetStatusHandler.NewHandler(adminSetStatusUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	bookingsByEmail := bookingsByEmailHandler.NewHandler(bookingSvc, log)
	adminBookings := adminBookingsHandler.NewHandler(bookingSvc, log)
	getTimeslots := getTimeslotsHandler.NewHandler(timeslotSvc, log)
	adminTimeslots := getTimeslotsHandler.NewAdminHandler(timeslotSvc, log)
	generateTimeslots := generateTimeslotsHandler.NewHandler(timeslotSvc, log)
	catalog := catalogHandler.NewHandler(catalogSvc, log)

	// Middleware аутентификации
	auth := middleware.NewAuth(tokenManager)

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

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Регистрация и вход
	r.HandleFunc("/auth/register", register.Handle).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", login.Handle).Methods(http.MethodPost)

	// Изменение и отмена бронирования.
	// Исторически эти операции доступны без токена: клиенты ходят
	// сюда по ID бронирования. Закрытие потребует согласованной
	// миграции клиентов.
	r.HandleFunc("/bookings/{id:[0-9]+}", updateBooking.Handle).Methods(http.MethodPut)
	r.HandleFunc("/bookings/{id:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Поиск бронирований по email
	r.HandleFunc("/bookings/by-email", bookingsByEmail.Handle).Methods(http.MethodGet)

	// Справочник: публичная витрина
	public := r.PathPrefix("/public").Subrouter()
	public.HandleFunc("/organizations", catalog.ListOrganizations).Methods(http.MethodGet)
	public.HandleFunc("/organizations/{id:[0-9]+}", catalog.GetOrganization).Methods(http.MethodGet)
	public.HandleFunc("/organizations/{id:[0-9]+}/branches", catalog.ListBranches).Methods(http.MethodGet)
	public.HandleFunc("/branches/{id:[0-9]+}/resources", catalog.ListResources).Methods(http.MethodGet)
	public.HandleFunc("/resources/{id:[0-9]+}", catalog.GetResource).Methods(http.MethodGet)

	// Открытые слоты ресурса
	r.HandleFunc("/resources/{id:[0-9]+}/timeslots", getTimeslots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer токен)
	// ============================================================

	r.Handle("/bookings", auth.RequireAuth(http.HandlerFunc(createBooking.Handle))).Methods(http.MethodPost)
	r.Handle("/bookings/{id:[0-9]+}", auth.RequireAuth(http.HandlerFunc(getBooking.Handle))).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют роль admin)
	// ============================================================

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireAdmin)

	// Бронирования
	admin.HandleFunc("/bookings", adminBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id:[0-9]+}/status", adminSetStatus.Handle).Methods(http.MethodPut)

	// Слоты
	admin.HandleFunc("/resources/{id:[0-9]+}/timeslots", adminTimeslots.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/resources/{id:[0-9]+}/timeslots/generate", generateTimeslots.Handle).Methods(http.MethodPost)

	// Справочник
	admin.HandleFunc("/organizations", catalog.CreateOrganization).Methods(http.MethodPost)
	admin.HandleFunc("/organizations/{id:[0-9]+}", catalog.UpdateOrganization).Methods(http.MethodPut)
	admin.HandleFunc("/organizations/{id:[0-9]+}", catalog.DeleteOrganization).Methods(http.MethodDelete)
	admin.HandleFunc("/organizations/{id:[0-9]+}/branches", catalog.CreateBranch).Methods(http.MethodPost)
	admin.HandleFunc("/branches/{id:[0-9]+}", catalog.UpdateBranch).Methods(http.MethodPut)
	admin.HandleFunc("/branches/{id:[0-9]+}", catalog.DeleteBranch).Methods(http.MethodDelete)
	admin.HandleFunc("/branches/{id:[0-9]+}/resources", catalog.CreateResource).Methods(http.MethodPost)
	admin.HandleFunc("/resources/{id:[0-9]+}", catalog.UpdateResource).Methods(http.MethodPut)
	admin.HandleFunc("/resources/{id:[0-9]+}", catalog.DeleteResource).Methods(http.MethodDelete)
	admin.HandleFunc("/resources/{id:[0-9]+}/templates", catalog.CreateTemplate).Methods(http.MethodPost)
	admin.HandleFunc("/resources/{id:[0-9]+}/templates", catalog.ListTemplates).Methods(http.MethodGet)
	admin.HandleFunc("/templates/{id:[0-9]+}", catalog.UpdateTemplate).Methods(http.MethodPut)
	admin.HandleFunc("/templates/{id:[0-9]+}", catalog.DeleteTemplate).Methods(http.MethodDelete)

	// Воркер отложенной отправки уведомлений
	var notificationsWorker *notifications.Worker
	if cfg.Worker.Enabled {
		notificationsWorker = notifications.NewWorker(
			sideeffectRepository,
			notifications.NewLogSender(log),
			log,
			time.Duration(cfg.Worker.PollIntervalMS)*time.Millisecond,
			cfg.Worker.BatchSize,
			cfg.Worker.MaxRetries,
		)
		notificationsWorker.Start(context.Background())
		log.Info("Notifications worker enabled (poll=%dms, batch=%d, retries=%d)",
			cfg.Worker.PollIntervalMS, cfg.Worker.BatchSize, cfg.Worker.MaxRetries)
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

	// Останавливаем воркер уведомлений
	if notificationsWorker != nil {
		notificationsWorker.Stop()
		log.Info("Notifications worker stopped")
	}

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

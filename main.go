package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	aufgussdb "aufgussplan/internal/aufguss/db"
	"aufgussplan/internal/aufguss/aufguss_api"
	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/auth"
	"aufgussplan/internal/config"
	"aufgussplan/internal/database"
	"aufgussplan/internal/database/migrations"
	"aufgussplan/internal/display"
	"aufgussplan/internal/kafka"
	"aufgussplan/internal/logger"
	"aufgussplan/internal/screens"
	"aufgussplan/internal/sse"
	"aufgussplan/internal/statistics"
	statistics_api "aufgussplan/internal/statistics/api"
	"aufgussplan/internal/survey"
	"aufgussplan/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

func migrate(bunDB *bun.DB, log *logger.Logger) {
	runner := migrations.NewRunner(bunDB.DB, log)
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("MIGRATION", fmt.Sprintf("Failed to apply migrations: %v", err))
	}
	if version, dirty, err := runner.Version(); err == nil {
		log.Info("MIGRATION", fmt.Sprintf("Schema at version %d (dirty: %v)", version, dirty))
	}
}

func startKafka(cfg config.KafkaConfig, log *logger.Logger) *kafka.Producer {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, events stay in-process")
		return nil
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Brokers))
	requiredTopics := []string{cfg.Topics.StatistikLogged, cfg.Topics.AufguesseChanged}
	if err := kafka.EnsureTopicsExist(cfg.Brokers, requiredTopics, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}

	return kafka.NewProducer(cfg.Brokers, kafka.Topics{
		StatistikLogged:  cfg.Topics.StatistikLogged,
		AufguesseChanged: cfg.Topics.AufguesseChanged,
	}, log)
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Aufgussplan initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	loc := cfg.Display.Location()
	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		migrate(bunDB, log)
	}

	redisClient, err := auth.ConnectRedis(cfg.Redis, log)
	if err != nil {
		log.Warn("REDIS", "Running without Redis: no admin login, report cache or statistics lock")
	} else {
		defer redisClient.Close()
	}

	producer := startKafka(cfg.Kafka, log)
	if producer != nil {
		defer producer.Close()
	}

	// --- Services ---
	store := &aufgussdb.DB{Bun: bunDB}
	statsStore := &statistics.DB{Bun: bunDB}
	uploads := upload.NewStore(cfg.Storage.UploadDir, log)
	broadcaster := sse.NewBroadcaster(log)

	notifiers := aufguss.Notifiers{broadcaster}
	var statsPublisher statistics.Publisher
	if producer != nil {
		notifiers = append(notifiers, producer)
		statsPublisher = producer
	}

	var reportCache statistics.ReportCache
	var locker *statistics.Locker
	var criteria survey.CriteriaStore
	if redisClient != nil {
		reportCache = statistics.NewRedisReportCache(redisClient, cfg.Redis.CacheTTL, log)
		locker = statistics.NewLocker(redisClient)
		criteria = survey.NewRedisCriteriaStore(redisClient)
	}

	aufgussService := aufguss.NewAufgussService(store, notifiers, log)
	planService := aufguss.NewPlanService(store, uploads, notifiers, log)
	recorder := statistics.NewRecorder(statsStore, locker, reportCache, statsPublisher, loc, log)
	aggregator := statistics.NewAggregator(statsStore, reportCache, loc, log)
	displayService := display.NewService(aufgussService, planService, loc, cfg.Display.DefaultMinutes, log)

	authenticator := auth.NewAuthenticator(cfg.Admin, auth.NewSessionStore(redisClient, cfg.Admin.SessionTTL), log)
	if cfg.Admin.PasswordHash == "" {
		log.Warn("AUTH", "ADMIN_PASSWORD_HASH not set, admin login is disabled")
	}

	// --- Handlers ---
	aufgussHandler := aufguss_api.NewHandler(
		aufgussService,
		aufguss.NewMitarbeiterService(store),
		aufguss.NewInlineEditService(store),
		planService,
		uploads,
		log,
	)
	statsHandler := statistics_api.NewHandler(recorder, aggregator, planService, log)
	screenHandler := screens.NewHandler(
		screens.NewStore(cfg.Storage.ScreensFile, cfg.Storage.ScreenCount),
		authenticator,
		cfg.Server.BaseURL,
		log,
	)
	displayHandler := display.NewHandler(displayService, screenHandler.Store, broadcaster, log)
	surveyHandler := survey.NewHandler(planService, aufgussService, criteria, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Public Routes ---
	aufgussHandler.RegisterRoutes(r)
	statsHandler.RegisterRoutes(r)
	screenHandler.RegisterRoutes(r)
	displayHandler.RegisterRoutes(r)
	surveyHandler.RegisterRoutes(r)
	authenticator.RegisterRoutes(r)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.UploadDir))))
	log.Info("ROUTER", "Public routes registered")

	// --- Admin Routes ---
	r.Group(func(r chi.Router) {
		r.Use(authenticator.RequireAdmin)
		aufgussHandler.RegisterAdminRoutes(r)
		statsHandler.RegisterAdminRoutes(r)
		surveyHandler.RegisterAdminRoutes(r)
		r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/statistik", http.StatusSeeOther)
		})
	})
	log.Info("AUTH", "Admin session middleware applied to /admin routes")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Aufgussplan running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Aufgussplan shutdown complete")
	}
}

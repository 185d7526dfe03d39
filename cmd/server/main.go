package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mesikahq/clinic-core/internal/api"
	"github.com/mesikahq/clinic-core/internal/audit"
	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/billing"
	"github.com/mesikahq/clinic-core/internal/config"
	"github.com/mesikahq/clinic-core/internal/database"
	"github.com/mesikahq/clinic-core/internal/diagnostics"
	"github.com/mesikahq/clinic-core/internal/medrecord"
	"github.com/mesikahq/clinic-core/internal/metrics"
	"github.com/mesikahq/clinic-core/internal/patient"
	"github.com/mesikahq/clinic-core/internal/pharmacy"
	"github.com/mesikahq/clinic-core/internal/queue"
	"github.com/mesikahq/clinic-core/internal/report"
	"github.com/mesikahq/clinic-core/internal/sequence"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, database.PostgresConfig{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		Database:    cfg.Database.Name,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		SSLMode:     cfg.Database.SSLMode,
		MaxPoolSize: cfg.Database.MaxPoolSize,
		ConnTimeout: cfg.Database.ConnTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Disconnect(db)

	mongoClient, err := database.NewMongoClient(ctx, database.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database(cfg.Mongo.Database)

	// The audit trail degrades to log-only when Elasticsearch is not
	// reachable at startup.
	auditService := audit.Nop()
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elasticsearch.URL},
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Warn("Elasticsearch unavailable, audit trail disabled", zap.Error(err))
	} else if es, cerr := audit.Connect(esClient); cerr != nil {
		logger.Warn("Elasticsearch unreachable, audit trail disabled", zap.Error(cerr))
	} else {
		auditService = es
	}

	m := metrics.New()
	seq := sequence.NewPGGenerator(db)

	authService := auth.NewService(auth.NewUserRepoPG(db), auditService, auth.Config{
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
	})
	patientService := patient.NewService(patient.NewRepoPG(db), seq)
	queueService := queue.NewService(queue.NewRepoPG(db), patientService, seq)
	medrecordService := medrecord.NewService(medrecord.NewRepoPG(db), patientService, authService)
	diagnosticsService := diagnostics.NewService(
		diagnostics.NewLabRepoPG(db),
		diagnostics.NewRadiologyRepoPG(db),
		patientService,
		authService,
	)
	pharmacyService := pharmacy.NewService(
		pharmacy.NewMedicationRepoPG(db),
		pharmacy.NewPrescriptionRepoPG(db),
		patientService,
		authService,
	)
	billingService := billing.NewService(
		billing.NewCatalogRepoPG(db),
		billing.NewInvoiceRepoPG(db),
		seq,
		patientService,
		authService,
	)
	reportService := report.NewService(report.NewStatsRepoPG(db), report.NewMongoArchive(mongoDB))

	handler := api.NewHandler(
		authService,
		patientService,
		queueService,
		medrecordService,
		diagnosticsService,
		pharmacyService,
		billingService,
		reportService,
		auditService,
		m,
	)
	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(handler, authService, m, cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	engine := router.SetupRouter(logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if cfg.Server.TLS.Enabled {
			if err := srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Failed to start server", zap.Error(err))
			}
		} else {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Failed to start server", zap.Error(err))
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

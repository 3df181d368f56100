package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/internal/infrastructure/config"
	"airfare-ledger-service/internal/infrastructure/identity"
	"airfare-ledger-service/internal/infrastructure/persistence"
	"airfare-ledger-service/internal/interface/api"
	ledgerRepo "airfare-ledger-service/internal/interface/repository"
	"airfare-ledger-service/internal/usecase"
	"airfare-ledger-service/pkg/logger"
	"airfare-ledger-service/pkg/metrics"
	"airfare-ledger-service/pkg/opaque"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	defer log.Sync()
	log.Info("Starting Airfare Ledger Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up wallet
	wallet := identity.NewEnvWallet(cfg.Principal, cfg.SigningKey, log)

	// Set up ledger backend
	var ledger repository.LedgerClient
	var mongoClient *mongo.Client
	var levelDB *ledgerRepo.LevelDBLedgerClient

	switch cfg.LedgerBackend {
	case "mongo":
		log.Info("Connecting to MongoDB ledger")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		ledger = ledgerRepo.NewMongoLedgerClient(client, db, wallet, cfg.LedgerTimeout, log)
	case "postgres":
		log.Info("Connecting to PostgreSQL ledger")
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		ledger, err = ledgerRepo.NewGormLedgerClient(gormDB, wallet, cfg.LedgerTimeout, log)
		if err != nil {
			log.Fatal("Failed to set up PostgreSQL ledger", "error", err)
		}
	case "leveldb":
		log.Info("Opening LevelDB ledger", "path", cfg.LevelDBPath)
		levelDB, err = ledgerRepo.NewLevelDBLedgerClient(cfg.LevelDBPath, wallet, log)
		if err != nil {
			log.Fatal("Failed to open LevelDB ledger", "error", err)
		}
		ledger = levelDB
	default:
		log.Info("Using in-memory ledger")
		ledger = ledgerRepo.NewMemoryLedgerClient(wallet)
	}

	// Set up repositories
	keyIndex := ledgerRepo.NewLedgerKeyIndexRepository(ledger, log)
	records := ledgerRepo.NewLedgerQueryRecordRepository(ledger, keyIndex, log)

	// Set up usecases
	codec := opaque.NewSimFHE()
	m := metrics.NewMetrics("airfare_ledger")
	lifecycle := usecase.NewSubmissionLifecycle(records, wallet, codec, log, m, cfg.AnalyzeDelay, cfg.PriceMin, cfg.PriceMax)
	queries := usecase.NewQueryService(records, codec, log)

	// Set up HTTP server
	mux := http.NewServeMux()
	api.NewHandler(queries, lifecycle, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	// Let scheduled analyses finish against the durable store
	lifecycle.Close()

	cancel() // Cancel the context to stop all goroutines

	if mongoClient != nil {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}
	if levelDB != nil {
		if err := levelDB.Close(); err != nil {
			log.Error("LevelDB close error", "error", err)
		}
	}

	log.Info("Airfare Ledger Service stopped")
}

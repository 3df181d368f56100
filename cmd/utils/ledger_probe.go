package main

import (
	"context"
	"fmt"
	"log"

	"airfare-ledger-service/internal/domain/entity"
	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/internal/infrastructure/config"
	"airfare-ledger-service/internal/infrastructure/identity"
	"airfare-ledger-service/internal/infrastructure/persistence"
	ledgerRepo "airfare-ledger-service/internal/interface/repository"
	"airfare-ledger-service/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// One-shot ledger check: probes the configured backend, dumps the key
// index and flags records stuck in pending (for example after a process
// died mid-analysis).
func main() {
	zlog := logger.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	wallet := identity.NewEnvWallet(cfg.Principal, cfg.SigningKey, zlog)

	var ledger repository.LedgerClient
	switch cfg.LedgerBackend {
	case "mongo":
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(ctx)
		ledger = ledgerRepo.NewMongoLedgerClient(client, db, wallet, cfg.LedgerTimeout, zlog)
	case "postgres":
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		ledger, err = ledgerRepo.NewGormLedgerClient(gormDB, wallet, cfg.LedgerTimeout, zlog)
		if err != nil {
			log.Fatalf("Failed to set up PostgreSQL ledger: %v", err)
		}
	case "leveldb":
		levelDB, err := ledgerRepo.NewLevelDBLedgerClient(cfg.LevelDBPath, wallet, zlog)
		if err != nil {
			log.Fatalf("Failed to open LevelDB: %v", err)
		}
		defer levelDB.Close()
		ledger = levelDB
	default:
		log.Fatalf("Unsupported backend for probe: %s", cfg.LedgerBackend)
	}

	if !ledger.ProbeAvailable(ctx) {
		log.Fatal("Ledger is NOT available")
	}
	fmt.Println("Ledger availability: Available")

	keyIndex := ledgerRepo.NewLedgerKeyIndexRepository(ledger, zlog)
	records := ledgerRepo.NewLedgerQueryRecordRepository(ledger, keyIndex, zlog)

	keys, err := keyIndex.ListKeys(ctx)
	if err != nil {
		log.Fatalf("Failed to list keys: %v", err)
	}
	fmt.Printf("Indexed keys: %d\n", len(keys))

	list, recordErrs, err := records.GetAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	pending := 0
	for _, record := range list {
		if record.Status != entity.StatusCompleted {
			pending++
			fmt.Printf("  pending: %s (%s -> %s, submitted %d)\n",
				record.Key, record.Origin, record.Destination, record.SubmittedAt)
		}
	}
	fmt.Printf("Records: %d total, %d pending, %d unreadable\n", len(list), pending, len(recordErrs))

	for _, recordErr := range recordErrs {
		fmt.Printf("  unreadable: %v\n", recordErr)
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerClient implements the LedgerClient interface on PostgreSQL,
// one row per ledger key.
type GormLedgerClient struct {
	db      *gorm.DB
	wallet  repository.Wallet
	timeout time.Duration
	logger  logger.Logger
}

// LedgerEntries GORM model for database mapping
type LedgerEntries struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (LedgerEntries) TableName() string {
	return "ledger_entries"
}

// NewGormLedgerClient creates a new GORM ledger client
func NewGormLedgerClient(db *gorm.DB, wallet repository.Wallet, timeout time.Duration, logger logger.Logger) (repository.LedgerClient, error) {
	if err := db.AutoMigrate(&LedgerEntries{}); err != nil {
		return nil, err
	}
	return &GormLedgerClient{
		db:      db,
		wallet:  wallet,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// ProbeAvailable pings the database within the configured timeout
func (c *GormLedgerClient) ProbeAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sqlDB, err := c.db.DB()
	if err != nil {
		c.logger.Warn("Ledger availability probe failed", "error", err)
		return false
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		c.logger.Warn("Ledger availability probe failed", "error", err)
		return false
	}
	return true
}

// Get returns the value stored under key, or (nil, nil) if unset
func (c *GormLedgerClient) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var entry LedgerEntries
	result := c.db.WithContext(ctx).Where("key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &repository.LedgerError{Op: repository.LedgerOpRead, Key: key, Err: result.Error}
	}
	return entry.Value, nil
}

// Put stores value under key, requiring the wallet's signing capability
func (c *GormLedgerClient) Put(ctx context.Context, key string, value []byte) error {
	if !c.wallet.CanSign() {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: repository.ErrSigningUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	entry := LedgerEntries{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	result := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&entry)
	if result.Error != nil {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: result.Error}
	}
	return nil
}

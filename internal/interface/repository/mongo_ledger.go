package repository

import (
	"context"
	"time"

	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoLedgerClient implements the LedgerClient interface on MongoDB,
// one document per ledger key.
type MongoLedgerClient struct {
	client     *mongo.Client
	collection *mongo.Collection
	wallet     repository.Wallet
	timeout    time.Duration
	logger     logger.Logger
}

type ledgerDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedat"`
}

// NewMongoLedgerClient creates a new MongoDB ledger client
func NewMongoLedgerClient(client *mongo.Client, db *mongo.Database, wallet repository.Wallet, timeout time.Duration, logger logger.Logger) repository.LedgerClient {
	return &MongoLedgerClient{
		client:     client,
		collection: db.Collection("ledger_entries"),
		wallet:     wallet,
		timeout:    timeout,
		logger:     logger,
	}
}

// ProbeAvailable pings the primary within the configured timeout
func (c *MongoLedgerClient) ProbeAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		c.logger.Warn("Ledger availability probe failed", "error", err)
		return false
	}
	return true
}

// Get returns the value stored under key, or (nil, nil) if unset
func (c *MongoLedgerClient) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var doc ledgerDocument
	err := c.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &repository.LedgerError{Op: repository.LedgerOpRead, Key: key, Err: err}
	}
	return doc.Value, nil
}

// Put stores value under key, requiring the wallet's signing capability
func (c *MongoLedgerClient) Put(ctx context.Context, key string, value []byte) error {
	if !c.wallet.CanSign() {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: repository.ErrSigningUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"value":     value,
			"updatedat": time.Now(),
		},
	}

	_, err := c.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: err}
	}
	return nil
}

// Package mongodb owns the MongoDB client shared by the repositories.
//
// Boot once in internal/server:
//
//	if err := mongodb.Connect(); err != nil { ... }
//	defer mongodb.Close(context.Background())
//
// Repositories grab collections via mongodb.Collection("orders").
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/logger"
)

var (
	client   *mongo.Client
	database *mongo.Database

	// txSupported is false on standalone deployments (no replica set):
	// WithTransaction then degrades to plain sequential writes.
	txSupported bool
)

// Connect opens the client, pings the deployment, and probes for
// transaction support.
func Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("mongodb: ping: %w", err)
	}

	client = c
	database = c.Database(config.MongoDatabase())
	txSupported = probeTransactions(ctx)
	if !txSupported {
		logger.Warn("mongodb: deployment has no replica set, multi-document writes run without a transaction")
	}

	return nil
}

// Close disconnects the client.
func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// DB returns the configured database handle.
func DB() *mongo.Database { return database }

// Collection returns a named collection of the configured database. Before
// Connect it returns nil, which is fine for callers that only hold the
// handle without issuing operations.
func Collection(name string) *mongo.Collection {
	if database == nil {
		return nil
	}
	return database.Collection(name)
}

// WithTransaction runs fn inside a session transaction when the deployment
// supports them, and falls back to calling fn directly otherwise. fn must
// use the context it receives for every operation so the writes join the
// session.
func WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !txSupported {
		return fn(ctx)
	}

	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// probeTransactions checks whether the deployment is a replica set or
// sharded cluster. hello.setName is only present on replica-set members.
func probeTransactions(ctx context.Context) bool {
	var result bson.M
	err := database.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&result)
	if err != nil {
		return false
	}
	if _, ok := result["setName"]; ok {
		return true
	}
	msg, _ := result["msg"].(string)
	return msg == "isdbgrid"
}

// EnsureIndexes creates the indexes the query paths rely on. Safe to run
// repeatedly; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
			{Keys: bson.D{{Key: "finished", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		"products": {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "store", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		"stores": {
			{Keys: bson.D{{Key: "city", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		"categories": {
			{Keys: bson.D{{Key: "store", Value: 1}}},
		},
		"roles": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for col, models := range specs {
		if _, err := database.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb: ensure indexes on %s: %w", col, err)
		}
	}
	return nil
}

// Package database provides MongoDB database connection and data management.
// Every read and write goes straight to the store: there is no cache, queue or retry.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotConnected is returned by data managers used before Connect succeeded
var ErrNotConnected = errors.New("database not connected")

// CollectionSource hands out collections of the connected database
type CollectionSource interface {
	GetCollection(name string) *mongo.Collection
}

// Database manages the MongoDB connection
type Database struct {
	client      *mongo.Client
	db          *mongo.Database
	isConnected bool
	mu          sync.RWMutex
	collections map[string]*mongo.Collection
}

var (
	database *Database
	dbOnce   sync.Once
)

// Get returns the global database instance
func Get() *Database {
	dbOnce.Do(func() {
		database = NewDatabase()
	})
	return database
}

// NewDatabase creates a new Database instance
func NewDatabase() *Database {
	return &Database{
		collections: make(map[string]*mongo.Collection),
	}
}

// Connect establishes a connection to MongoDB. Calling it again once connected is a no-op.
func (d *Database) Connect(ctx context.Context, mongoURL, dbName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isConnected {
		return nil
	}

	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Critical("Fallo al conectar con la base de datos.", "DB")
		return errors.Wrap(err, "connect to MongoDB")
	}

	// Ping to verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical("Fallo al verificar conexión con la base de datos.", "DB")
		_ = client.Disconnect(context.Background())
		return errors.Wrap(err, "ping MongoDB")
	}

	d.client = client
	d.db = client.Database(dbName)
	d.collections = make(map[string]*mongo.Collection)
	d.isConnected = true

	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	return nil
}

// Disconnect closes the database connection
func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.client.Disconnect(ctx); err != nil {
		return errors.Wrap(err, "disconnect from MongoDB")
	}

	d.client = nil
	d.db = nil
	d.isConnected = false
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}

// Connected reports whether Connect succeeded
func (d *Database) Connected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isConnected
}

// Ping measures the database response time
func (d *Database) Ping(ctx context.Context) (time.Duration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.isConnected || d.client == nil {
		return 0, ErrNotConnected
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := d.client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// GetStatus returns the database connection status
func (d *Database) GetStatus() (string, bool) {
	latency, err := d.Ping(context.Background())
	if err != nil {
		return "🔴 | Desconectado", false
	}
	return fmt.Sprintf("🟢 | En linea (%dms)", latency.Milliseconds()), true
}

// GetCollection returns a MongoDB collection, or nil while disconnected
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.RLock()
	if col, exists := d.collections[name]; exists {
		d.mu.RUnlock()
		return col
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

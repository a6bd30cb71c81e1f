package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
	"github.com/anonto42/socialgraph/backend/pkg/firebase"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the document store and the relational notification database.
type DB struct {
	Store         store.DocumentStore
	Notifications *gorm.DB
}

// InitDB opens the document store selected by cfg.StoreDriver and the
// notification database (PostgreSQL, or SQLite when no connection string is set).
// fb is only required for the firestore driver.
func InitDB(ctx context.Context, cfg *Config, fb *firebase.App) (*DB, error) {
	docs, err := initStore(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	var notifications *gorm.DB
	if cfg.PostgresConnStr != "" {
		notifications, err = initPostgres(cfg.PostgresConnStr)
		if err != nil {
			docs.Close()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
	} else {
		notifications, err = initSQLite(cfg.SQLitePath)
		if err != nil {
			docs.Close()
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
	}

	if err := notifications.AutoMigrate(&models.Notification{}); err != nil {
		docs.Close()
		return nil, fmt.Errorf("failed to migrate notifications: %w", err)
	}
	logrus.Info("Notification schema migrated.")

	return &DB{Store: docs, Notifications: notifications}, nil
}

func initStore(ctx context.Context, cfg *Config, fb *firebase.App) (store.DocumentStore, error) {
	switch cfg.StoreDriver {
	case StoreFirestore:
		if fb == nil {
			return nil, fmt.Errorf("firestore store requires Firebase credentials")
		}
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		logrus.Info("Using Firestore document store.")
		return store.NewFirestoreStore(client), nil
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		client, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		logrus.WithField("database", cfg.MongoDatabase).Info("Using MongoDB document store.")
		return store.NewMongoStore(client, cfg.MongoDatabase), nil
	case StoreMemory:
		logrus.Warn("Using in-memory document store; data is lost on restart.")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	logrus.Info("Successfully connected to PostgreSQL!")
	return db, nil
}

func initSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}
	logrus.WithField("path", path).Info("Using SQLite for notifications.")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	logrus.Info("Successfully connected to MongoDB!")
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Notifications != nil {
		sqlDB, err := db.Notifications.DB()
		if err != nil {
			logrus.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Error("Error closing notification database")
		} else {
			logrus.Info("Notification database closed.")
		}
	}

	if db.Store != nil {
		if err := db.Store.Close(); err != nil {
			logrus.WithError(err).Error("Error closing document store")
		} else {
			logrus.Info("Document store closed.")
		}
	}
}

package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentic-hq/agentic/internal/model"
	dbopts "github.com/agentic-hq/agentic/pkg/options/db"
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory opens the configured database and returns a storage factory.
func NewFactory(opts *dbopts.Options) (Factory, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case dbopts.DriverSQLite:
		dialector = sqlite.Open(opts.DSN())
	case dbopts.DriverMySQL:
		dialector = mysql.Open(opts.DSN())
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConnections)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConnections)
	sqlDB.SetConnMaxLifetime(opts.MaxConnectionLifeTime)

	return &datastore{db: db}, nil
}

// NewFactoryWithDB wraps an existing gorm.DB, used by tests.
func NewFactoryWithDB(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore { return newUsers(ds.db) }

// Agents returns the agent store.
func (ds *datastore) Agents() AgentStore { return newAgents(ds.db) }

// EmbedTokens returns the embed token store.
func (ds *datastore) EmbedTokens() EmbedTokenStore { return newEmbedTokens(ds.db) }

// Usage returns the usage store.
func (ds *datastore) Usage() UsageStore { return newUsage(ds.db) }

// Feedback returns the feedback store.
func (ds *datastore) Feedback() FeedbackStore { return newFeedback(ds.db) }

// Events returns the analytics event store.
func (ds *datastore) Events() EventStore { return newEvents(ds.db) }

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.User{},
		&model.Agent{},
		&model.EmbedToken{},
		&model.Usage{},
		&model.Feedback{},
		&model.Event{},
	)
}

// Close closes the underlying connection pool.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package db

import (
	"database/sql"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/mcdexio/dsc-engine/common/config"
	"github.com/mcdexio/dsc-engine/common/logging"
)

var logger = logging.NewLoggerTag("database")

var (
	dbMutex sync.Mutex
	db      *gorm.DB
)

// NewDB returns an ORM DB instance connected with args (a postgres URL or
// keyword/value DSN).
func NewDB(args string) (*gorm.DB, error) {
	dialector := postgres.Open(args)
	instance, err := gorm.Open(dialector,
		&gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			},
		},
	)
	if err != nil {
		logger.Warn("failed to open gorm db err=%v", err)
		return nil, err
	}
	instance.Logger.LogMode(0)

	var sqlDB *sql.DB
	sqlDB, err = instance.DB()
	if err != nil {
		logger.Warn("failed to get sql.DB from gorm db err=%v", err)
		return nil, err
	}

	// Set database parameters.
	sqlDB.SetMaxIdleConns(config.GetInt("DB_MAX_IDLE_CONNS", 4))
	sqlDB.SetMaxOpenConns(config.GetInt("DB_MAX_OPEN_CONNS", 16))
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return instance, nil
}

// Initialize dials the shared database instance using the DB_ARGS setting.
// It only creates the connection, it doesn't reset or migrate anything.
func Initialize() {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	if db != nil {
		return
	}
	logger.Info("Initializing database ...")
	instance, err := NewDB(config.GetString("DB_ARGS"))
	if err != nil {
		logger.Critical("database initialize failed: %s", err)
		return
	}
	db = instance
	logger.Info("Initialize DONE")
}

// GetDB returns the shared database instance.
func GetDB() *gorm.DB {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db
}

// Finalize closes the shared database instance.
func Finalize() {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to get db err=%v", err)
		return
	}
	if err = sqlDB.Close(); err != nil {
		logger.Warn("failed to close db err=%v", err)
	}
	db = nil
}

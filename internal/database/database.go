package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// Connect opens the configured database and, when autoMigrate is set,
// brings the schema up to date.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openWithRetry(cfg.Database.Driver, cfg.DSN, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// Dialector maps a driver name and DSN to the GORM dialector.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.New(mysql.Config{DSN: dsn, DefaultStringSize: 191}), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(sqliteDSN(dsn)), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// sqliteDSN enables foreign keys so comment rows cascade with their post.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

func openWithRetry(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	attempts := connectAttempts
	if driver == config.DriverSQLite {
		attempts = 1
	}

	var last error
	backoff := connectBackoff
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err == nil {
			if err = ping(db); err == nil {
				tunePool(db, driver)
				return db, nil
			}
		}
		last = err
		if i < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("database connection failed: %w", last)
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func tunePool(db *gorm.DB, driver string) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if driver == config.DriverSQLite {
		// one writer at a time; avoids SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

// Migrate runs GORM auto-migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.UserSession{},
		&models.PostModel{},
		&models.CommentModel{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package testsupport

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// OpenDB returns a migrated in-memory SQLite database private to the test.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))
	dialector, err := database.Dialector(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("dialector: %v", err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewConfig produces a development config rooted in a temp directory.
func NewConfig(t testing.TB) *config.AppConfig {
	t.Helper()

	base := t.TempDir()
	cfg := &config.AppConfig{
		Port: 8000,
		Env:  config.EnvDevelopment,
		Database: config.DatabaseRuntimeConfig{
			Driver: config.DriverSQLite,
		},
		Paths: config.RuntimePathsConfig{
			Logs:   base + "/logs",
			Static: base + "/static",
			Media:  base + "/media",
		},
		Media: config.MediaConfig{
			Backend: config.BackendLocal,
		},
		SecretKey: "test-secret",
	}
	return cfg
}

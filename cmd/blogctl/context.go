package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/database"
	"github.com/embracingthegirlchild/site/internal/pkg/nativelog"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.AppConfig
	configErr  error

	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logger  *zap.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		_ = godotenv.Load()
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureDB() (*gorm.DB, error) {
	c.dbOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.dbErr = err
			return
		}
		c.db, c.dbErr = database.Connect(cfg, true)
		if c.dbErr != nil {
			c.dbErr = fmt.Errorf("database: %w", c.dbErr)
		}
	})
	return c.db, c.dbErr
}

func (c *commandContext) log() *zap.Logger {
	c.logOnce.Do(func() {
		debug := c.verbose != nil && *c.verbose
		cfg, err := c.ensureConfig()
		if err == nil {
			c.logger, err = nativelog.NewZapLogger(cfg.LogsDir(), "blogctl", debug)
		}
		if err != nil || c.logger == nil {
			c.logger = zap.NewNop()
		}
	})
	return c.logger
}

func (c *commandContext) close() {
	if c.db != nil {
		_ = database.Close(c.db)
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig holds runtime startup configuration loaded from YAML or TOML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	SiteURL        string                `yaml:"site_url"`
	SecretKey      string                `yaml:"secret_key"`
	Timezone       string                `yaml:"timezone"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	Media          MediaConfig           `yaml:"media"`
	Kafka          KafkaConfig           `yaml:"kafka"`
	Telemetry      TelemetryConfig       `yaml:"telemetry"`

	// DSN is the resolved driver connection string.
	DSN string `yaml:"-"`
	// RedisURL is empty when redis is not configured.
	RedisURL string `yaml:"-"`
}

type DatabaseRuntimeConfig struct {
	Driver      string            `yaml:"driver"`
	DSN         string            `yaml:"dsn"`
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	User        string            `yaml:"user"`
	Password    string            `yaml:"password"`
	Name        string            `yaml:"name"`
	Charset     string            `yaml:"charset"`
	SSLMode     string            `yaml:"sslmode"`
	Params      map[string]string `yaml:"params"`
	AutoMigrate bool              `yaml:"auto_migrate"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url" toml:"url"`
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
}

type RuntimePathsConfig struct {
	Logs   string `yaml:"logs" toml:"logs"`
	Static string `yaml:"static" toml:"static"`
	Media  string `yaml:"media" toml:"media"`
	// Source is where the migration looks for original post images.
	Source string `yaml:"source" toml:"source"`
}

type MediaConfig struct {
	Backend       string           `yaml:"backend"`
	Prefix        string           `yaml:"prefix"`
	UploadTimeout time.Duration    `yaml:"-"`
	S3            S3Config         `yaml:"s3"`
	Minio         MinioConfig      `yaml:"minio"`
	Cloudinary    CloudinaryConfig `yaml:"cloudinary"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" toml:"bucket"`
	Region          string `yaml:"region" toml:"region"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key"`
	PublicURL       string `yaml:"public_url" toml:"public_url"`
	PathStyle       bool   `yaml:"path_style" toml:"path_style"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	Bucket    string `yaml:"bucket" toml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" toml:"use_ssl"`
	PublicURL string `yaml:"public_url" toml:"public_url"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name" toml:"cloud_name"`
	APIKey    string `yaml:"api_key" toml:"api_key"`
	APISecret string `yaml:"api_secret" toml:"api_secret"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" toml:"brokers"`
	Topic   string   `yaml:"topic" toml:"topic"`
}

type TelemetryConfig struct {
	Metrics      bool    `yaml:"metrics"`
	MetricsPath  string  `yaml:"metrics_path"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

type rawAppConfig struct {
	Port           int                `yaml:"port" toml:"port"`
	Env            string             `yaml:"env" toml:"env"`
	SiteURL        string             `yaml:"site_url" toml:"site_url"`
	SecretKey      string             `yaml:"secret_key" toml:"secret_key"`
	Timezone       string             `yaml:"timezone" toml:"timezone"`
	AllowedOrigins []string           `yaml:"allowed_origins" toml:"allowed_origins"`
	Database       rawDatabaseConfig  `yaml:"database" toml:"database"`
	Redis          RedisRuntimeConfig `yaml:"redis" toml:"redis"`
	Paths          RuntimePathsConfig `yaml:"paths" toml:"paths"`
	Media          rawMediaConfig     `yaml:"media" toml:"media"`
	Kafka          KafkaConfig        `yaml:"kafka" toml:"kafka"`
	Telemetry      rawTelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

type rawDatabaseConfig struct {
	Driver      string            `yaml:"driver" toml:"driver"`
	DSN         string            `yaml:"dsn" toml:"dsn"`
	URL         string            `yaml:"url" toml:"url"`
	Host        string            `yaml:"host" toml:"host"`
	Port        int               `yaml:"port" toml:"port"`
	User        string            `yaml:"user" toml:"user"`
	Password    string            `yaml:"password" toml:"password"`
	Name        string            `yaml:"name" toml:"name"`
	Charset     string            `yaml:"charset" toml:"charset"`
	SSLMode     string            `yaml:"sslmode" toml:"sslmode"`
	Params      map[string]string `yaml:"params" toml:"params"`
	AutoMigrate *bool             `yaml:"auto_migrate" toml:"auto_migrate"`
}

type rawMediaConfig struct {
	Backend              string           `yaml:"backend" toml:"backend"`
	Prefix               string           `yaml:"prefix" toml:"prefix"`
	UploadTimeoutSeconds int              `yaml:"upload_timeout_seconds" toml:"upload_timeout_seconds"`
	S3                   S3Config         `yaml:"s3" toml:"s3"`
	Minio                MinioConfig      `yaml:"minio" toml:"minio"`
	Cloudinary           CloudinaryConfig `yaml:"cloudinary" toml:"cloudinary"`
}

type rawTelemetryConfig struct {
	Metrics      *bool   `yaml:"metrics" toml:"metrics"`
	MetricsPath  string  `yaml:"metrics_path" toml:"metrics_path"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name" toml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio" toml:"sample_ratio"`
}

// Load reads the config file at configPath. An empty path falls back to
// DefaultConfigPath, and a missing default file yields the built-in defaults.
// Environment overrides are applied last.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	raw := rawAppConfig{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeRaw(path, content, &raw); err != nil {
			return nil, err
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
		path = "<defaults>"
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	applyRawAppConfig(&cfg, raw)
	applyEnvOverrides(&cfg, os.Getenv)
	finalize(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func decodeRaw(path string, content []byte, raw *rawAppConfig) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		decoder := toml.NewDecoder(bytes.NewReader(content))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(raw); err != nil {
			return fmt.Errorf("parse config file %q: %w", path, err)
		}
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(raw); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Driver:      defaultDriver,
			AutoMigrate: true,
		},
		Redis: RedisRuntimeConfig{
			Port: defaultRedisPort,
		},
		Paths: RuntimePathsConfig{
			Logs:   defaultLogsDir,
			Static: defaultStaticDir,
			Media:  defaultMediaDir,
		},
		Media: MediaConfig{
			Backend:       BackendLocal,
			Prefix:        defaultMediaPrefix,
			UploadTimeout: defaultUploadTimeoutSecs * time.Second,
			S3: S3Config{
				Region: defaultS3Region,
			},
		},
		Kafka: KafkaConfig{
			Topic: defaultKafkaTopic,
		},
		Telemetry: TelemetryConfig{
			Metrics:     true,
			MetricsPath: defaultMetricsPath,
			ServiceName: defaultServiceName,
			SampleRatio: defaultSampleRatio,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.SiteURL); v != "" {
		cfg.SiteURL = v
	}
	if v := strings.TrimSpace(raw.SecretKey); v != "" {
		cfg.SecretKey = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)

	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Redis.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Redis.Port = raw.Redis.Port
	}
	if raw.Redis.Password != "" {
		cfg.Redis.Password = raw.Redis.Password
	}
	if raw.Redis.DB != 0 {
		cfg.Redis.DB = raw.Redis.DB
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Static); v != "" {
		cfg.Paths.Static = v
	}
	if v := strings.TrimSpace(raw.Paths.Media); v != "" {
		cfg.Paths.Media = v
	}
	if v := strings.TrimSpace(raw.Paths.Source); v != "" {
		cfg.Paths.Source = v
	}

	cfg.Media = applyRawMediaConfig(cfg.Media, raw.Media)

	if brokers := normalizeOrigins(raw.Kafka.Brokers); len(brokers) > 0 {
		cfg.Kafka.Brokers = brokers
	}
	if v := strings.TrimSpace(raw.Kafka.Topic); v != "" {
		cfg.Kafka.Topic = v
	}

	if raw.Telemetry.Metrics != nil {
		cfg.Telemetry.Metrics = *raw.Telemetry.Metrics
	}
	if v := strings.TrimSpace(raw.Telemetry.MetricsPath); v != "" {
		cfg.Telemetry.MetricsPath = v
	}
	if v := strings.TrimSpace(raw.Telemetry.OTLPEndpoint); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(raw.Telemetry.ServiceName); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	if raw.Telemetry.SampleRatio != 0 {
		cfg.Telemetry.SampleRatio = raw.Telemetry.SampleRatio
	}
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawDatabaseConfig) DatabaseRuntimeConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Driver); v != "" {
		cfg.Driver = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.URL); v != "" {
		cfg = applyDatabaseURL(cfg, v)
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		cfg.Host = v
	}
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		cfg.User = v
	}
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		cfg.Charset = v
	}
	if v := strings.TrimSpace(raw.SSLMode); v != "" {
		cfg.SSLMode = v
	}
	if raw.Params != nil {
		cfg.Params = copyStringMap(raw.Params)
	}
	if raw.AutoMigrate != nil {
		cfg.AutoMigrate = *raw.AutoMigrate
	}
	return cfg
}

func applyRawMediaConfig(current MediaConfig, raw rawMediaConfig) MediaConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(raw.Prefix); v != "" {
		cfg.Prefix = v
	}
	if raw.UploadTimeoutSeconds > 0 {
		cfg.UploadTimeout = time.Duration(raw.UploadTimeoutSeconds) * time.Second
	}

	s3 := raw.S3
	if v := strings.TrimSpace(s3.Bucket); v != "" {
		cfg.S3.Bucket = v
	}
	if v := strings.TrimSpace(s3.Region); v != "" {
		cfg.S3.Region = v
	}
	if v := strings.TrimSpace(s3.Endpoint); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := strings.TrimSpace(s3.AccessKeyID); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := strings.TrimSpace(s3.SecretAccessKey); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if v := strings.TrimSpace(s3.PublicURL); v != "" {
		cfg.S3.PublicURL = v
	}
	if s3.PathStyle {
		cfg.S3.PathStyle = true
	}

	mc := raw.Minio
	if v := strings.TrimSpace(mc.Endpoint); v != "" {
		cfg.Minio.Endpoint = v
	}
	if v := strings.TrimSpace(mc.AccessKey); v != "" {
		cfg.Minio.AccessKey = v
	}
	if v := strings.TrimSpace(mc.SecretKey); v != "" {
		cfg.Minio.SecretKey = v
	}
	if v := strings.TrimSpace(mc.Bucket); v != "" {
		cfg.Minio.Bucket = v
	}
	if mc.UseSSL {
		cfg.Minio.UseSSL = true
	}
	if v := strings.TrimSpace(mc.PublicURL); v != "" {
		cfg.Minio.PublicURL = v
	}

	cc := raw.Cloudinary
	if v := strings.TrimSpace(cc.CloudName); v != "" {
		cfg.Cloudinary.CloudName = v
	}
	if v := strings.TrimSpace(cc.APIKey); v != "" {
		cfg.Cloudinary.APIKey = v
	}
	if v := strings.TrimSpace(cc.APISecret); v != "" {
		cfg.Cloudinary.APISecret = v
	}
	return cfg
}

func finalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Media.Backend = strings.ToLower(strings.TrimSpace(cfg.Media.Backend))
	cfg.Media.Prefix = strings.Trim(strings.TrimSpace(cfg.Media.Prefix), "/")
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unknown database.driver %q, expected sqlite, mysql or postgres", c.Database.Driver)
	}
	if c.Database.Driver != DriverSQLite && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	switch c.Media.Backend {
	case BackendLocal, BackendS3, BackendMinio, BackendCloudinary:
	default:
		return fmt.Errorf("unknown media.backend %q", c.Media.Backend)
	}
	if c.IsProduction() && c.SecretKey == "" {
		return errors.New("secret_key is required in production")
	}
	if c.IsProduction() && !isAbsoluteHTTP(c.SiteURL) {
		return errors.New("site_url is required in production, e.g. https://example.org")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("invalid telemetry.sample_ratio %v, expected 0-1", c.Telemetry.SampleRatio)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return c.Env == EnvDevelopment || c.Env == "dev"
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == EnvProduction || c.Env == "prod"
}

func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

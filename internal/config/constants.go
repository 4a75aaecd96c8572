package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	BackendLocal      = "local"
	BackendS3         = "s3"
	BackendMinio      = "minio"
	BackendCloudinary = "cloudinary"

	defaultPort         = 8000
	defaultEnv          = EnvDevelopment
	defaultDriver       = DriverSQLite
	defaultSQLitePath   = "blog.db"
	defaultDBHost       = "127.0.0.1"
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
	defaultDBUser       = "root"
	defaultDBName       = "embracing"
	defaultDBCharset    = "utf8mb4"
	defaultDBLoc        = "Local"
	defaultRedisPort    = 6379

	defaultLogsDir   = "logs"
	defaultStaticDir = "static"
	defaultMediaDir  = "media"

	defaultMediaPrefix       = "embracingthegirlchild"
	defaultUploadTimeoutSecs = 45
	defaultS3Region          = "us-east-1"
	defaultKafkaTopic        = "blog.posts"
	defaultMetricsPath       = "/metrics"
	defaultServiceName       = "embracing-site"
	defaultSampleRatio       = 1.0
)

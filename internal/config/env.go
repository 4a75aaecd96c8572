package config

import (
	"strconv"
	"strings"
)

// applyEnvOverrides lets deployment environments (and .env files loaded by the
// binaries) override the file-based settings.
func applyEnvOverrides(cfg *AppConfig, getenv func(string) string) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := get("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		} else {
			cfg.Port = -1
		}
	}
	if v := get("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := get("SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := get("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := get("DATABASE_URL"); v != "" {
		cfg.Database = applyDatabaseURL(cfg.Database, v)
	}
	if v := get("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := get("MEDIA_BACKEND"); v != "" {
		cfg.Media.Backend = v
	}

	if v := get("CLOUDINARY_CLOUD_NAME"); v != "" {
		cfg.Media.Cloudinary.CloudName = v
	}
	if v := get("CLOUDINARY_API_KEY"); v != "" {
		cfg.Media.Cloudinary.APIKey = v
	}
	if v := get("CLOUDINARY_API_SECRET"); v != "" {
		cfg.Media.Cloudinary.APISecret = v
	}

	if v := get("S3_BUCKET"); v != "" {
		cfg.Media.S3.Bucket = v
	}
	if v := get("AWS_REGION"); v != "" {
		cfg.Media.S3.Region = v
	}
	if v := get("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Media.S3.AccessKeyID = v
	}
	if v := get("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Media.S3.SecretAccessKey = v
	}

	if v := get("MINIO_ENDPOINT"); v != "" {
		cfg.Media.Minio.Endpoint = v
	}
	if v := get("MINIO_BUCKET"); v != "" {
		cfg.Media.Minio.Bucket = v
	}
	if v := get("MINIO_ACCESS_KEY"); v != "" {
		cfg.Media.Minio.AccessKey = v
	}
	if v := get("MINIO_SECRET_KEY"); v != "" {
		cfg.Media.Minio.SecretKey = v
	}

	if v := get("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = normalizeOrigins(strings.Split(v, ","))
	}
	if v := get("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
}

// MissingCredentials lists the settings the given backend needs but does not
// have, named after the environment variables that provide them.
func (m MediaConfig) MissingCredentials(backend string) []string {
	var missing []string
	need := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	switch backend {
	case BackendCloudinary:
		need(m.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
		need(m.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
		need(m.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")
	case BackendS3:
		need(m.S3.Bucket, "S3_BUCKET")
		need(m.S3.Region, "AWS_REGION")
		need(m.S3.AccessKeyID, "AWS_ACCESS_KEY_ID")
		need(m.S3.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	case BackendMinio:
		need(m.Minio.Endpoint, "MINIO_ENDPOINT")
		need(m.Minio.Bucket, "MINIO_BUCKET")
		need(m.Minio.AccessKey, "MINIO_ACCESS_KEY")
		need(m.Minio.SecretKey, "MINIO_SECRET_KEY")
	}
	return missing
}

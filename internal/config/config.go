package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Minio    MinioConfig
	JWT      JWTConfig
	Archive  ArchiveConfig
	Cleanup  CleanupConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// RedisConfig holds cache-related configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinioConfig holds object storage configuration
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// JWTConfig holds authentication configuration
type JWTConfig struct {
	Secret  string
	JWKSURL string
}

// ArchiveConfig holds backup/archive configuration
type ArchiveConfig struct {
	WorkDir   string
	Retention time.Duration
}

// CleanupConfig holds maintenance scheduling configuration
type CleanupConfig struct {
	RuleInterval   time.Duration
	ExpiryInterval time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment, after loading .env when
// present. Missing optional values fall back to development defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 5)),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
			Bucket:    getEnv("MINIO_ARCHIVE_BUCKET", "archives"),
		},
		JWT: JWTConfig{
			Secret:  getEnv("JWT_SECRET", ""),
			JWKSURL: getEnv("JWT_JWKS_URL", ""),
		},
		Archive: ArchiveConfig{
			WorkDir:   getEnv("ARCHIVE_WORK_DIR", os.TempDir()),
			Retention: getEnvDuration("ARCHIVE_RETENTION", 90*24*time.Hour),
		},
		Cleanup: CleanupConfig{
			RuleInterval:   getEnvDuration("CLEANUP_RULE_INTERVAL", 1*time.Hour),
			ExpiryInterval: getEnvDuration("ARCHIVE_EXPIRY_INTERVAL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

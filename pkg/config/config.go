package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Anexos     AnexosConfig
	Dashboard  DashboardConfig
	Municipio  MunicipioConfig
	Publico    PublicoConfig
	Relatorios RelatoriosConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	ResetExpiration   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnexosConfig controls protocol attachment storage and validation.
type AnexosConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// DashboardConfig governs dashboard cache tuning.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// MunicipioConfig governs the municipality settings cache.
type MunicipioConfig struct {
	CacheTTL time.Duration
}

// PublicoConfig throttles the unauthenticated citizen endpoints.
type PublicoConfig struct {
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// RelatoriosConfig configures asynchronous report generation.
type RelatoriosConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		ResetExpiration:   parseDuration(v.GetString("RESET_TOKEN_EXPIRATION"), time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxAnexoSize := v.GetInt64("ANEXOS_MAX_FILE_SIZE")
	if maxAnexoSize <= 0 {
		maxAnexoSize = 10 * 1024 * 1024
	}
	cfg.Anexos = AnexosConfig{
		StorageDir:       v.GetString("ANEXOS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("ANEXOS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("ANEXOS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxAnexoSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("ANEXOS_ALLOWED_MIME_TYPES")),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Municipio = MunicipioConfig{
		CacheTTL: parseDuration(v.GetString("MUNICIPIO_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Publico = PublicoConfig{
		RateLimitPerSecond: v.GetFloat64("PUBLICO_RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("PUBLICO_RATE_LIMIT_BURST"),
	}

	cfg.Relatorios = RelatoriosConfig{
		StorageDir:        v.GetString("RELATORIOS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("RELATORIOS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("RELATORIOS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("RELATORIOS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("RELATORIOS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("RELATORIOS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "protocolo")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("RESET_TOKEN_EXPIRATION", "1h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ANEXOS_STORAGE_DIR", "./anexos")
	v.SetDefault("ANEXOS_SIGNED_URL_SECRET", "dev_anexos_secret")
	v.SetDefault("ANEXOS_SIGNED_URL_TTL", "30m")
	v.SetDefault("ANEXOS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("ANEXOS_ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/png,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/zip")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("MUNICIPIO_CACHE_TTL", "10m")

	v.SetDefault("PUBLICO_RATE_LIMIT_RPS", 5.0)
	v.SetDefault("PUBLICO_RATE_LIMIT_BURST", 10)

	v.SetDefault("RELATORIOS_STORAGE_DIR", "./relatorios")
	v.SetDefault("RELATORIOS_SIGNED_URL_SECRET", "dev_relatorios_secret")
	v.SetDefault("RELATORIOS_SIGNED_URL_TTL", "24h")
	v.SetDefault("RELATORIOS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("RELATORIOS_WORKER_CONCURRENCY", 1)
	v.SetDefault("RELATORIOS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

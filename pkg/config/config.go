package config

import (
	"errors"
	"io/fs"
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

	Database  DatabaseConfig
	Catalog   CatalogConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Exports   ExportsConfig
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

// CatalogConfig toggles loading generation input from the school catalog database.
type CatalogConfig struct {
	Enabled     bool
	ApplySchema bool
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Disabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig bounds timetable generation requests.
type SchedulerConfig struct {
	Enabled              bool
	MaxClasses           int
	MaxSubjectsPerClass  int
	MaxPeriodsPerDay     int
	DefaultPeriodsPerDay int
	// CatalogTimeout bounds loading generation input from the catalog database.
	CatalogTimeout       time.Duration
}

// ExportsConfig toggles CSV/PDF rendering endpoints.
type ExportsConfig struct {
	Enabled  bool
	PDFTitle string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
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

	cfg.Catalog = CatalogConfig{
		Enabled:     v.GetBool("ENABLE_CATALOG"),
		ApplySchema: v.GetBool("CATALOG_APPLY_SCHEMA"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Disabled: v.GetBool("DISABLE_AUTH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:              v.GetBool("ENABLE_SCHEDULER"),
		MaxClasses:           positiveOr(v.GetInt("SCHEDULER_MAX_CLASSES"), 64),
		MaxSubjectsPerClass:  positiveOr(v.GetInt("SCHEDULER_MAX_SUBJECTS"), 128),
		MaxPeriodsPerDay:     positiveOr(v.GetInt("SCHEDULER_MAX_PERIODS"), 16),
		DefaultPeriodsPerDay: positiveOr(v.GetInt("SCHEDULER_DEFAULT_PERIODS"), 6),
		CatalogTimeout:       parseDuration(v.GetString("SCHEDULER_CATALOG_TIMEOUT"), 10*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled:  v.GetBool("ENABLE_EXPORTS"),
		PDFTitle: v.GetString("EXPORTS_PDF_TITLE"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_catalog")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("ENABLE_CATALOG", false)
	v.SetDefault("CATALOG_APPLY_SCHEMA", false)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("DISABLE_AUTH", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_MAX_CLASSES", 64)
	v.SetDefault("SCHEDULER_MAX_SUBJECTS", 128)
	v.SetDefault("SCHEDULER_MAX_PERIODS", 16)
	v.SetDefault("SCHEDULER_DEFAULT_PERIODS", 6)
	v.SetDefault("SCHEDULER_CATALOG_TIMEOUT", "10s")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_PDF_TITLE", "Weekly Timetable")
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

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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

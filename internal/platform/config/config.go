package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StorageDriver string
	DatabaseURL   string
	EnableDBCheck bool

	JWTSecret string
	JWTIssuer string

	BaseCurrency        string
	DefaultLocale       string
	ImportSessionTTL    time.Duration
	ImportSessionMax    int
	TemplateCatalogPath string
	CSVPreviewRateLimit string
	CORSAllowedOrigins  []string

	LogLevel  string
	LogFormat string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_ISSUER", "twoline")
	v.SetDefault("BASE_CURRENCY", "KRW")
	v.SetDefault("DEFAULT_LOCALE", "ko")
	v.SetDefault("IMPORT_SESSION_TTL", "30m")
	v.SetDefault("IMPORT_SESSION_MAX", 256)
	v.SetDefault("TEMPLATE_CATALOG_PATH", "")
	v.SetDefault("CSV_PREVIEW_RATE_LIMIT", "30-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig loads configuration from environment variables and .env file
// if present, using the global viper instance.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	SetDefaults(viper.GetViper())
	viper.AutomaticEnv()

	return FromViper(viper.GetViper()), nil
}

// FromViper builds a Config from v, falling back to defaults for invalid
// values.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		StorageDriver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:         v.GetString("PGSQL_URL"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		BaseCurrency:        strings.ToUpper(v.GetString("BASE_CURRENCY")),
		DefaultLocale:       v.GetString("DEFAULT_LOCALE"),
		ImportSessionMax:    v.GetInt("IMPORT_SESSION_MAX"),
		TemplateCatalogPath: v.GetString("TEMPLATE_CATALOG_PATH"),
		CSVPreviewRateLimit: v.GetString("CSV_PREVIEW_RATE_LIMIT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.StorageDriver != StorageMemory && cfg.StorageDriver != StoragePostgres {
		log.Printf("Warning: unknown STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StorageMemory)
		cfg.StorageDriver = StorageMemory
	}
	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: STORAGE_DRIVER is postgres but PGSQL_URL is not set.")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	if cfg.DefaultLocale != "ko" && cfg.DefaultLocale != "en" {
		log.Printf("Warning: unsupported DEFAULT_LOCALE ('%s'). Defaulting to ko.\n", cfg.DefaultLocale)
		cfg.DefaultLocale = "ko"
	}

	ttlStr := v.GetString("IMPORT_SESSION_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 30 * time.Minute
		log.Printf("Warning: Invalid value for IMPORT_SESSION_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl)
	}
	cfg.ImportSessionTTL = ttl

	if cfg.ImportSessionMax <= 0 {
		cfg.ImportSessionMax = 256
		log.Printf("Warning: IMPORT_SESSION_MAX must be positive. Defaulting to %d.\n", cfg.ImportSessionMax)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg
}

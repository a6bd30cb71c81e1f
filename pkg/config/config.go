package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"
)

const devJWTSecret = "supersecretjwtkey"

type Config struct {
	Port     string
	Env      string
	LogLevel string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	StoreDriver     string
	ConsistencyMode string

	FirebaseCredentialsPath string
	FirebaseProjectID       string
	MongoURI                string
	MongoDatabase           string
	PostgresConnStr         string
	SQLitePath              string

	MetricsPort  string
	AdminUserIDs []string
	CORSOrigins  []string
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads the environment, after applying a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		StoreDriver:             getEnv("STORE_DRIVER", StoreFirestore),
		ConsistencyMode:         getEnv("CONSISTENCY_MODE", "fast"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialgraph"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:              getEnv("SQLITE_PATH", "notifications.db"),
		MetricsPort:             os.Getenv("METRICS_PORT"),
		AdminUserIDs:            splitList(os.Getenv("ADMIN_USER_IDS")),
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "*")),
	}
	if _, ok := os.LookupEnv("METRICS_PORT"); !ok {
		cfg.MetricsPort = "9090"
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		cfg.JWTSecret = devJWTSecret
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	cfg.CookieSecure = !cfg.IsDevelopment()
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COOKIE_SECURE %q", v)
		}
		cfg.CookieSecure = secure
	}

	switch cfg.StoreDriver {
	case StoreFirestore, StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.ConsistencyMode {
	case "fast", "transactional":
	default:
		return nil, fmt.Errorf("unknown CONSISTENCY_MODE %q", cfg.ConsistencyMode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

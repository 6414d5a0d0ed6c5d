package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Session  SessionConfig
	Access   AccessConfig
	DevToken DevTokenConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN disables Postgres.
type PostgresConfig struct {
	DSN            string
	RunMigrations  bool
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig selects where token slots live.
type SessionConfig struct {
	Backend      string
	CookieName   string
	IDCookieName string
	KeyPrefix    string
	TTLMinutes   int
	SecureCookie bool
}

// AccessConfig drives the gate and the role registry.
type AccessConfig struct {
	RegistryFile     string
	RegistrySource   string
	UndeclaredPolicy string
	SignInPath       string
	DeniedPath       string
}

// DevTokenConfig is used by the devtoken command to sign local test tokens.
type DevTokenConfig struct {
	Secret     string
	TTLMinutes int
}

const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"

	RegistrySourceFile     = "file"
	RegistrySourcePostgres = "postgres"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "clinic-dashboard-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			Backend:      getEnv("SESSION_BACKEND", SessionBackendCookie),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "dashboard_token"),
			IDCookieName: getEnv("SESSION_ID_COOKIE_NAME", "dashboard_sid"),
			KeyPrefix:    getEnv("SESSION_REDIS_PREFIX", "dashboard:session"),
			TTLMinutes:   getEnvAsInt("SESSION_TTL_MINUTES", 720),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", false),
		},
		Access: AccessConfig{
			RegistryFile:     os.Getenv("ACCESS_REGISTRY_FILE"),
			RegistrySource:   getEnv("ACCESS_REGISTRY_SOURCE", RegistrySourceFile),
			UndeclaredPolicy: getEnv("ACCESS_UNDECLARED_POLICY", "allow"),
			SignInPath:       getEnv("ACCESS_SIGNIN_PATH", "/signin"),
			DeniedPath:       getEnv("ACCESS_DENIED_PATH", "/access-denied"),
		},
		DevToken: DevTokenConfig{
			Secret:     getEnv("DEVTOKEN_SECRET", "dev-secret"),
			TTLMinutes: getEnvAsInt("DEVTOKEN_TTL_MINUTES", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendCookie, SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.Access.RegistrySource {
	case RegistrySourceFile:
	case RegistrySourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("ACCESS_REGISTRY_SOURCE=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid ACCESS_REGISTRY_SOURCE %q", c.Access.RegistrySource)
	}
	if c.Access.SignInPath == c.Access.DeniedPath {
		return fmt.Errorf("sign-in and access-denied paths must differ")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the gateway runs with production hardening.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

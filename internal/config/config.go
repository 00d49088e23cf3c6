package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Poll     PollConfig
	Cleanup  CleanupConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	EventStream string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// PollConfig tunes the board and chat snapshot polling cadence. The diff
// engine does not depend on these values for correctness.
type PollConfig struct {
	BoardIntervalSeconds    int
	ChannelIntervalSeconds  int
	MessageIntervalSeconds  int
	FailureWarningThreshold int
}

// CleanupConfig controls the scheduled maintenance jobs.
type CleanupConfig struct {
	Enabled          bool
	TicketMaxAgeDays int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "centralita-neron"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			EventStream: getEnv("REDIS_EVENT_STREAM", "board:events"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Poll: PollConfig{
			BoardIntervalSeconds:    getEnvAsInt("POLL_BOARD_INTERVAL_SECONDS", 2),
			ChannelIntervalSeconds:  getEnvAsInt("POLL_CHANNEL_INTERVAL_SECONDS", 5),
			MessageIntervalSeconds:  getEnvAsInt("POLL_MESSAGE_INTERVAL_SECONDS", 2),
			FailureWarningThreshold: getEnvAsInt("POLL_FAILURE_WARNING_THRESHOLD", 5),
		},
		Cleanup: CleanupConfig{
			Enabled:          getEnvAsBool("CLEANUP_ENABLED", true),
			TicketMaxAgeDays: getEnvAsInt("CLEANUP_TICKET_MAX_AGE_DAYS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BoardInterval returns the operators+tickets poll cadence.
func (p PollConfig) BoardInterval() time.Duration {
	return secondsOr(p.BoardIntervalSeconds, 2*time.Second)
}

// ChannelInterval returns the channel-list poll cadence.
func (p PollConfig) ChannelInterval() time.Duration {
	return secondsOr(p.ChannelIntervalSeconds, 5*time.Second)
}

// MessageInterval returns the open-channel message poll cadence.
func (p PollConfig) MessageInterval() time.Duration {
	return secondsOr(p.MessageIntervalSeconds, 2*time.Second)
}

func secondsOr(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Persistence backends understood by the snapshot store wiring.
const (
	PersistenceNone     = "none"
	PersistenceRedis    = "redis"
	PersistencePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Env             string
	LogLevel        string
	ValidationPhone string
	Server          ServerConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Persistence     PersistenceConfig
	Directory       DirectoryConfig
	Matching        MatchingConfig
	Cache           CacheConfig
	OTEL            OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration. Enabled turns on the response
// cache and the emergency event bus; the redis persistence backend
// connects regardless.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// PersistenceConfig selects and tunes the snapshot store.
type PersistenceConfig struct {
	Backend       string
	SnapshotKey   string
	QueueSize     int
	FlushInterval time.Duration
}

// DirectoryConfig points at the facility directory file. An empty path
// selects the embedded default directory.
type DirectoryConfig struct {
	Path string
}

// MatchingConfig holds the radius and result-size policy of the matching engine.
type MatchingConfig struct {
	DefaultRadiusKm   float64
	EmergencyRadiusKm float64
	NearbyLimit       int
	EmergencyLimit    int
}

// CacheConfig holds HTTP response cache settings
type CacheConfig struct {
	FacilitiesTTLSeconds int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load reads .env files when present and then builds the configuration from
// environment variables. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ValidationPhone: getEnv("VALIDATION_PHONE", ""),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 8080)),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "blood_donor_connect"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 0),
		},
		Persistence: PersistenceConfig{
			Backend:       strings.ToLower(getEnv("PERSISTENCE_BACKEND", PersistenceNone)),
			SnapshotKey:   getEnv("PERSISTENCE_SNAPSHOT_KEY", "donorconnect:snapshot"),
			QueueSize:     getEnvAsInt("PERSISTENCE_QUEUE_SIZE", 16),
			FlushInterval: getEnvAsDuration("PERSISTENCE_FLUSH_INTERVAL", 250*time.Millisecond),
		},
		Directory: DirectoryConfig{
			Path: getEnv("FACILITY_DIRECTORY_PATH", ""),
		},
		Matching: MatchingConfig{
			DefaultRadiusKm:   getEnvAsFloat("MATCH_DEFAULT_RADIUS_KM", 10),
			EmergencyRadiusKm: getEnvAsFloat("MATCH_EMERGENCY_RADIUS_KM", 25),
			NearbyLimit:       getEnvAsInt("MATCH_NEARBY_LIMIT", 5),
			EmergencyLimit:    getEnvAsInt("MATCH_EMERGENCY_LIMIT", 3),
		},
		Cache: CacheConfig{
			FacilitiesTTLSeconds: getEnvAsInt("CACHE_FACILITIES_TTL_SECONDS", 600),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "blood-donor-connect"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Persistence.Backend {
	case PersistenceNone, PersistenceRedis, PersistencePostgres:
	default:
		return fmt.Errorf("unsupported PERSISTENCE_BACKEND %q", c.Persistence.Backend)
	}
	if c.Matching.DefaultRadiusKm < 0 || c.Matching.EmergencyRadiusKm < 0 {
		return fmt.Errorf("matching radii must not be negative")
	}
	if c.Matching.NearbyLimit <= 0 || c.Matching.EmergencyLimit <= 0 {
		return fmt.Errorf("matching limits must be positive")
	}
	if c.Persistence.Backend == PersistencePostgres && (c.Database.MaxOpenConns <= 0 || c.Database.MaxIdleConns < 0) {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive and DB_MAX_IDLE_CONNS not negative")
	}
	if c.Persistence.QueueSize <= 0 {
		return fmt.Errorf("PERSISTENCE_QUEUE_SIZE must be positive")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// NeedsRedis reports whether the process must connect to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Redis.Enabled || c.Persistence.Backend == PersistenceRedis
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

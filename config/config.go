package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	AppConfig Config
	// envFileLoaded is true when a .env file was found and read.
	envFileLoaded bool
)

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`
	// StoreDriver selects the backend persistence: "postgres" or "memory".
	StoreDriver string `json:"store_driver"`

	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	Redis RedisConfig `json:"redis"`

	CORSOrigins []string `json:"cors_origins"`

	SentryDSN     string `json:"-"`
	LogLevel      string `json:"log_level"`
	LogFormat     string `json:"log_format"`
	EncryptionKey string `json:"-"`

	// Client side (flowctl).
	APIURL         string        `json:"api_url"`
	RequestTimeout time.Duration `json:"request_timeout"`
	DraftBackend   string        `json:"draft_backend"`
	DraftDir       string        `json:"draft_dir"`
	DraftMaxAge    time.Duration `json:"draft_max_age"`
	SweepInterval  time.Duration `json:"sweep_interval"`
}

func init() {
	// A missing .env file is fine; the process environment still applies.
	envFileLoaded = loadEnvFile()
}

func loadEnvFile(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "mailflow"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		APIURL:         strings.TrimRight(getEnv("MAILFLOW_API_URL", "http://localhost:5000"), "/"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
		DraftBackend:   strings.ToLower(getEnv("DRAFT_BACKEND", "file")),
		DraftDir:       getEnv("DRAFT_DIR", ".mailflow/drafts"),
		DraftMaxAge:    getEnvAsDuration("DRAFT_MAX_AGE", 30*24*time.Hour),
		SweepInterval:  getEnvAsDuration("DRAFT_SWEEP_INTERVAL", time.Hour),
	}

	switch cfg.DraftBackend {
	case "file", "memory", "redis":
	default:
		return cfg, fmt.Errorf("unknown DRAFT_BACKEND %q", cfg.DraftBackend)
	}
	return cfg, nil
}

// ValidateServer checks the settings only the API server needs.
func (c Config) ValidateServer() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.EncryptionKey == "" {
			return fmt.Errorf("ENCRYPTION_KEY is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// LoadConfig loads and validates the server configuration into AppConfig.
func LoadConfig() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	AppConfig = cfg
	logConfig(cfg)
	return nil
}

// DSN returns the Postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBSSLMode,
	)
}

// OpenDB connects to Postgres and applies the pool settings.
func OpenDB(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN()
	logrus.WithField("dsn", maskPassword(dsn)).Info("connecting to database")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig(cfg Config) {
	logrus.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"server_port":  cfg.ServerPort,
		"store_driver": cfg.StoreDriver,
		"database":     fmt.Sprintf("%s@%s:%s/%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName),
		"sentry":       cfg.SentryDSN != "",
		"env_file":     envFileLoaded,
	}).Info("loaded configuration")
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/summary"
	"github.com/joho/godotenv"
)

// Sink backends
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	MongoURI        string
	MongoDB         string
	SinkBackend     string
	PGURL           string
	Port            string
	MetricsPort     string
	ConsumerID      string
	MaxFileSize     int64
	MaxNumLots      int
	FeedMaxAwait    time.Duration
	SummaryCacheTTL time.Duration
	AssetClassFile  string
	LogLevel        string
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGODB_DB", "portools"),
		SinkBackend:    getEnv("SINK_BACKEND", BackendMongo),
		PGURL:          os.Getenv("PG_URL"),
		Port:           getEnv("PORT", "8080"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		ConsumerID:     getEnv("CONSUMER_ID", "portools-stream"),
		AssetClassFile: os.Getenv("ASSET_CLASS_FILE"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.MaxFileSize, err = getEnvAsInt64("MAX_FILE_SIZE", 10000); err != nil {
		return nil, err
	}
	maxLots, err := getEnvAsInt64("MAX_NUM_LOTS", 10000)
	if err != nil {
		return nil, err
	}
	cfg.MaxNumLots = int(maxLots)
	if cfg.FeedMaxAwait, err = getEnvAsDuration("FEED_MAX_AWAIT", time.Second); err != nil {
		return nil, err
	}
	if cfg.SummaryCacheTTL, err = getEnvAsDuration("SUMMARY_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings
func (c *Config) Validate() error {
	switch c.SinkBackend {
	case BackendMongo, BackendMemory:
	case BackendPostgres:
		if c.PGURL == "" {
			return fmt.Errorf("PG_URL environment variable is required when SINK_BACKEND is %s", BackendPostgres)
		}
	default:
		return fmt.Errorf("SINK_BACKEND must be one of %s, %s, %s, got %q", BackendMongo, BackendPostgres, BackendMemory, c.SinkBackend)
	}
	if c.SinkBackend != BackendMemory && c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI environment variable is required")
	}
	if c.ConsumerID == "" {
		return fmt.Errorf("CONSUMER_ID must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxNumLots <= 0 {
		return fmt.Errorf("MAX_NUM_LOTS must be positive, got %d", c.MaxNumLots)
	}
	if c.FeedMaxAwait <= 0 {
		return fmt.Errorf("FEED_MAX_AWAIT must be positive, got %s", c.FeedMaxAwait)
	}
	if c.SummaryCacheTTL < 0 {
		return fmt.Errorf("SUMMARY_CACHE_TTL must not be negative, got %s", c.SummaryCacheTTL)
	}
	return nil
}

// AssetClassTable returns the default table, or the table read from
// ASSET_CLASS_FILE when set. The file is a JSON object of symbol to class name.
func (c *Config) AssetClassTable() (summary.AssetClassTable, error) {
	if c.AssetClassFile == "" {
		return summary.DefaultAssetClassTable(), nil
	}
	data, err := os.ReadFile(c.AssetClassFile)
	if err != nil {
		return summary.AssetClassTable{}, fmt.Errorf("failed to read asset class file: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return summary.AssetClassTable{}, fmt.Errorf("failed to parse asset class file: %w", err)
	}
	classes := make(map[string]models.AssetClass, len(raw))
	for symbol, name := range raw {
		class, ok := models.ParseAssetClass(name)
		if !ok {
			return summary.AssetClassTable{}, fmt.Errorf("unknown asset class %q for symbol %s", name, symbol)
		}
		classes[symbol] = class
	}
	return summary.NewAssetClassTable(classes), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Redis / delayed task queue
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	QueueKeyPrefix string
	QueueOpTimeout time.Duration

	// Notification worker
	WorkerPollInterval time.Duration

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("QUEUE_KEY_PREFIX", "capcall")
	viper.SetDefault("QUEUE_OP_TIMEOUT", "2s")
	viper.SetDefault("WORKER_POLL_INTERVAL", "30s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Notification scheduling will be unavailable.")
	}
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.QueueKeyPrefix = viper.GetString("QUEUE_KEY_PREFIX")

	opTimeoutStr := viper.GetString("QUEUE_OP_TIMEOUT")
	opTimeout, err := time.ParseDuration(opTimeoutStr)
	if err != nil {
		opTimeout = 2 * time.Second
		log.Printf("Warning: Invalid value for QUEUE_OP_TIMEOUT ('%s'). Defaulting to %s.\n", opTimeoutStr, opTimeout)
	}
	cfg.QueueOpTimeout = opTimeout

	pollStr := viper.GetString("WORKER_POLL_INTERVAL")
	poll, err := time.ParseDuration(pollStr)
	if err != nil {
		poll = 30 * time.Second
		log.Printf("Warning: Invalid value for WORKER_POLL_INTERVAL ('%s'). Defaulting to %s.\n", pollStr, poll)
	}
	cfg.WorkerPollInterval = poll

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

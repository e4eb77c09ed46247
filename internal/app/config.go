package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver задаёт используемый драйвер хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers    string
	KafkaOrderTopic string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает настройки по умолчанию: in-memory хранилище,
// HTTP API на :8080 и метрики на :9090.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
	}
}

// ConfigFromEnv читает настройки из окружения поверх DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.HTTPAddr = envString("IMS_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = envString("IMS_METRICS_ADDR", cfg.MetricsAddr)
	cfg.StorageDriver = StorageDriver(envString("IMS_STORAGE_DRIVER", string(cfg.StorageDriver)))
	cfg.PostgresDSN = envString("IMS_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.PostgresAutoMigrate = envBool("IMS_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)
	cfg.KafkaBrokers = envString("IMS_KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaOrderTopic = envString("IMS_KAFKA_ORDER_TOPIC", cfg.KafkaOrderTopic)
	cfg.OutboxPollInterval = envDuration("IMS_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("IMS_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = envInt("IMS_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = envDuration("IMS_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)

	return cfg
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

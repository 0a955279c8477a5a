package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"repayment-worker/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-level config
type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	LogLevel string `yaml:"level"`
}

// MongoDB connection config
type MongoConfig struct {
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	URI             string        `yaml:"uri"`
	DBName          string        `yaml:"db_name"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"`
	MinPoolSize     uint64        `yaml:"min_pool_size"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_minutes"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout_seconds"`
}

// Redis connection config
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	EnableTLS      bool          `yaml:"enable_tls"`
	ConnectTimeout time.Duration `yaml:"connect_timeout_seconds"`
	CertContent    string        `yaml:"cert_content"`
}

// Kafka connection config for the accounting audit topic
type KafkaConfig struct {
	Server           string `yaml:"server"`
	AuditTopic       string `yaml:"audit_topic"`
	SecurityProtocol string `yaml:"security_protocol"`
	SASLMechanism    string `yaml:"sasl_mechanism"`
	SASLUsername     string `yaml:"sasl_username"`
	SASLPassword     string `yaml:"sasl_password"`
	SessionTimeoutMs int    `yaml:"session_timeout_ms"`
	ClientID         string `yaml:"client_id"`
}

type PubSubConfig struct {
	ProjectID           string `yaml:"project_id"`
	PaymentSubscription string `yaml:"payment_subscription"`
	NotificationTopic   string `yaml:"notification_topic"`
}

// AllocationConfig carries engine-level policy defaults. The persisted
// system level rules document overrides these at runtime when present.
type AllocationConfig struct {
	VATRateBps     int64         `yaml:"vat_rate_bps"`
	LoanLockTTL    time.Duration `yaml:"loan_lock_ttl_seconds"`
	PaymentSeenTTL time.Duration `yaml:"payment_seen_ttl_hours"`
	DefaultChannel string        `yaml:"default_channel"`
}

type AuditRepublishConfig struct {
	RetryStartDate string        `yaml:"retry_start_date"`
	WorkerCount    int           `yaml:"worker_count"`
	BufferSize     int           `yaml:"buffer_size"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	MongoBatchSize int32         `yaml:"mongo_batch_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
}

type GCSConfig struct {
	BucketName string `yaml:"bucket_name"`
}

type OtelConfig struct {
	ServiceName  string `yaml:"service_name"`
	CollectorURL string `yaml:"collector_url"`
}

// AppConfig is the main config struct that holds all configs
type AppConfig struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LogConfig            `yaml:"logging"`
	Mongo          MongoConfig          `yaml:"mongo"`
	Redis          RedisConfig          `yaml:"redis"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	PubSub         PubSubConfig         `yaml:"pubsub"`
	Allocation     AllocationConfig     `yaml:"allocation"`
	AuditRepublish AuditRepublishConfig `yaml:"audit_republish"`
	GCS            GCSConfig            `yaml:"gcs"`
	Otel           OtelConfig           `yaml:"otel"`
}

func assignDefaultConfigValues(cfg *AppConfig) *AppConfig {

	// server config defaults
	cfg.Server.Port = GetEnvOrDefaultAsInt("SERVER_PORT", 8080)

	// log config defaults
	cfg.Logging.LogLevel = GetEnvOrDefaultAsString("LOGGING_LEVEL", cfg.Logging.LogLevel)

	// MongoDB config defaults
	cfg.Mongo.URI = GetEnvOrDefaultAsString("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.DBName = GetEnvOrDefaultAsString("MONGO_DB_NAME", cfg.Mongo.DBName)
	cfg.Mongo.Username = GetEnvOrDefaultAsString("MONGO_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = GetEnvOrDefaultAsString("MONGO_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.MaxPoolSize = GetEnvOrDefaultAsUint64("MONGO_MAX_POOL_SIZE", cfg.Mongo.MaxPoolSize)
	cfg.Mongo.MinPoolSize = GetEnvOrDefaultAsUint64("MONGO_MIN_POOL_SIZE", cfg.Mongo.MinPoolSize)
	cfg.Mongo.MaxConnIdleTime = time.Duration(GetEnvOrDefaultAsInt("MONGO_MAX_CONN_IDLE_MINUTES", 30)) * time.Minute
	cfg.Mongo.ConnectTimeout = time.Duration(GetEnvOrDefaultAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second

	// Redis config defaults
	cfg.Redis.Addr = GetEnvOrDefaultAsString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = GetEnvOrDefaultAsString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvOrDefaultAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.EnableTLS = GetEnvOrDefaultAsInt("REDIS_ENABLE_TLS", 0) == 1
	cfg.Redis.ConnectTimeout = time.Duration(GetEnvOrDefaultAsInt("REDIS_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.Redis.CertContent = GetEnvOrDefaultAsString("REDIS_TLS_CERT", "")

	// Kafka config defaults
	cfg.Kafka.Server = GetEnvOrDefaultAsString("KAFKA_SERVER", cfg.Kafka.Server)
	cfg.Kafka.AuditTopic = GetEnvOrDefaultAsString("KAFKA_AUDIT_TOPIC", cfg.Kafka.AuditTopic)
	cfg.Kafka.SecurityProtocol = GetEnvOrDefaultAsString("KAFKA_SECURITY_PROTOCOL", cfg.Kafka.SecurityProtocol)
	cfg.Kafka.SASLMechanism = GetEnvOrDefaultAsString("KAFKA_SASL_MECHANISM", cfg.Kafka.SASLMechanism)
	cfg.Kafka.SASLUsername = GetEnvOrDefaultAsString("KAFKA_SASL_USERNAME", cfg.Kafka.SASLUsername)
	cfg.Kafka.SASLPassword = GetEnvOrDefaultAsString("KAFKA_SASL_PASSWORD", cfg.Kafka.SASLPassword)
	cfg.Kafka.SessionTimeoutMs = GetEnvOrDefaultAsInt("KAFKA_SESSION_TIMEOUT_MS", 15000)
	cfg.Kafka.ClientID = GetEnvOrDefaultAsString("KAFKA_CLIENT_ID", cfg.Kafka.ClientID)

	// PubSub config defaults
	cfg.PubSub.ProjectID = GetEnvOrDefaultAsString("PROJECT_ID", cfg.PubSub.ProjectID)
	cfg.PubSub.PaymentSubscription = GetEnvOrDefaultAsString("PUBSUB_PAYMENT_SUBSCRIPTION",
		cfg.PubSub.PaymentSubscription)
	cfg.PubSub.NotificationTopic = GetEnvOrDefaultAsString("PUBSUB_NOTIFICATION_TOPIC",
		cfg.PubSub.NotificationTopic)

	// Allocation config defaults
	cfg.Allocation.VATRateBps = int64(GetEnvOrDefaultAsInt("ALLOCATION_VAT_RATE_BPS", int(cfg.Allocation.VATRateBps)))
	cfg.Allocation.LoanLockTTL = time.Duration(GetEnvOrDefaultAsInt("ALLOCATION_LOAN_LOCK_TTL_SECONDS", 30)) * time.Second
	cfg.Allocation.PaymentSeenTTL = time.Duration(GetEnvOrDefaultAsInt("ALLOCATION_PAYMENT_SEEN_TTL_HOURS", 72)) * time.Hour
	cfg.Allocation.DefaultChannel = GetEnvOrDefaultAsString("ALLOCATION_DEFAULT_CHANNEL", cfg.Allocation.DefaultChannel)

	cfg.AuditRepublish.RetryStartDate = GetEnvOrDefaultAsString("RETRY_START_DATE", cfg.AuditRepublish.RetryStartDate)
	cfg.AuditRepublish.WorkerCount = GetEnvOrDefaultAsInt("WORKER_COUNT", cfg.AuditRepublish.WorkerCount)
	cfg.AuditRepublish.BufferSize = GetEnvOrDefaultAsInt("BUFFER_SIZE", cfg.AuditRepublish.BufferSize)
	cfg.AuditRepublish.MaxBatchSize = GetEnvOrDefaultAsInt("MAX_BATCH_SIZE", cfg.AuditRepublish.MaxBatchSize)
	cfg.AuditRepublish.MongoBatchSize = GetEnvOrDefaultAsInt32("MONGO_BATCH_SIZE", cfg.AuditRepublish.MongoBatchSize)
	cfg.AuditRepublish.FlushInterval = time.Duration(GetEnvOrDefaultAsInt("FLUSH_INTERVAL", 500)) * time.Millisecond

	cfg.GCS.BucketName = GetEnvOrDefaultAsString("GCS_BUCKET_NAME", cfg.GCS.BucketName)

	cfg.Otel.ServiceName = GetEnvOrDefaultAsString("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.CollectorURL = GetEnvOrDefaultAsString("OTEL_COLLECTOR_URL", cfg.Otel.CollectorURL)

	return cfg
}

// LoadFromConfigFilePath loads and parses a config file into AppConfig
func LoadFromConfigFilePath(configPath string) (*AppConfig, error) {

	data, err := os.ReadFile(configPath)
	if err != nil {
		logger.Error("Failed to read config file", err, slog.String("path", configPath))
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("Failed to unmarshal config", err)
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaultCfg := assignDefaultConfigValues(&cfg)

	if err := validateConfig(defaultCfg); err != nil {
		logger.Error("Config validation failed", err)
		return nil, err
	}

	logger.Info("Configuration loaded successfully", slog.String("path", configPath))

	return defaultCfg, nil
}

func validateConfig(cfg *AppConfig) error {
	if err := validateMongoConfig(cfg.Mongo); err != nil {
		return err
	}
	if err := validateKafkaConfig(cfg.Kafka); err != nil {
		return err
	}
	if err := validateAllocationConfig(cfg.Allocation); err != nil {
		return err
	}
	return nil
}

func validateMongoConfig(mongo MongoConfig) error {
	if mongo.MinPoolSize < 5 || mongo.MinPoolSize > 10 {
		return fmt.Errorf(
			"mongo.min_pool_size must be between 5 and 10, got %d",
			mongo.MinPoolSize,
		)
	}

	if mongo.MaxPoolSize < 10 || mongo.MaxPoolSize > 50 {
		return fmt.Errorf(
			"mongo.max_pool_size must be between 10 and 50, got %d",
			mongo.MaxPoolSize,
		)
	}

	return nil
}

func validateKafkaConfig(kafka KafkaConfig) error {
	if kafka.SessionTimeoutMs < 10000 || kafka.SessionTimeoutMs > 15000 {
		return fmt.Errorf(
			"kafka.session_timeout_ms must be between 10000 and 15000 ms, got %d",
			kafka.SessionTimeoutMs,
		)
	}
	return nil
}

func validateAllocationConfig(allocation AllocationConfig) error {
	if allocation.VATRateBps < 0 || allocation.VATRateBps > 10000 {
		return fmt.Errorf(
			"allocation.vat_rate_bps must be between 0 and 10000, got %d",
			allocation.VATRateBps,
		)
	}
	if allocation.LoanLockTTL < 5*time.Second || allocation.LoanLockTTL > 5*time.Minute {
		return fmt.Errorf(
			"allocation.loan_lock_ttl_seconds must be between 5s and 5m, got %v",
			allocation.LoanLockTTL,
		)
	}
	return nil
}

// LoadFromConfig loads the config file named by CONFIG_PATH.
func LoadFromConfig() (*AppConfig, error) {
	configPath := GetEnvOrDefaultAsString("CONFIG_PATH", "configs/config.yaml")

	cfg, err := LoadFromConfigFilePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// GetEnvOrDefaultAsInt returns the value of the given env variable
// as an int or the default value if not set or invalid.
func GetEnvOrDefaultAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return int(value)
}

// GetEnvOrDefaultAsString returns the value of the given env variable or the default value if not set.
func GetEnvOrDefaultAsString(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		if val != "" {
			return val
		}
	}
	return defaultVal
}

func GetEnvOrDefaultAsUint64(key string, defaultValue uint64) uint64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsInt32(key string, defaultValue int32) int32 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 32)
	if err != nil {
		return defaultValue
	}
	return int32(value)
}

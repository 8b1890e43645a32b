package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageBackendMemory = "memory"
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
)

type Config struct {
	App         AppConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Policy      PolicyConfig
	Attachments AttachmentsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Policy.CEOApprovalThreshold(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INVENTARIS_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"INVENTARIS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INVENTARIS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	// Backend selects the document-store implementation: memory, file or redis.
	Backend string `envconfig:"INVENTARIS_STORAGE_BACKEND" default:"file"`
	// Dir holds one JSON document per collection when the file backend is used.
	Dir       string `envconfig:"INVENTARIS_STORAGE_DIR" default:"./data"`
	Namespace string `envconfig:"INVENTARIS_STORAGE_NAMESPACE" default:"inventaris"`
}

func (s StorageConfig) validate() error {
	switch s.Backend {
	case StorageBackendMemory, StorageBackendFile, StorageBackendRedis:
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

type RedisConfig struct {
	Address      string        `envconfig:"INVENTARIS_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"INVENTARIS_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVENTARIS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVENTARIS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVENTARIS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVENTARIS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVENTARIS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVENTARIS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PolicyConfig struct {
	// CEOApprovalThresholdIDR escalates procurement requests whose order total
	// exceeds it to CEO approval. Empty disables escalation; the workflow
	// itself never hard-codes the policy.
	CEOApprovalThresholdIDR string `envconfig:"INVENTARIS_CEO_APPROVAL_THRESHOLD_IDR" default:"50000000"`
	LowStockThreshold       int    `envconfig:"INVENTARIS_LOW_STOCK_THRESHOLD" default:"5"`
	WarehouseLocation       string `envconfig:"INVENTARIS_WAREHOUSE_LOCATION" default:"Gudang Inventori"`
}

// CEOApprovalThreshold parses the configured escalation threshold. A zero
// decimal with nil error means escalation is disabled.
func (p PolicyConfig) CEOApprovalThreshold() (decimal.Decimal, error) {
	raw := strings.TrimSpace(p.CEOApprovalThresholdIDR)
	if raw == "" {
		return decimal.Zero, nil
	}
	threshold, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing CEO approval threshold %q: %w", raw, err)
	}
	return threshold, nil
}

type AttachmentsConfig struct {
	Dir string `envconfig:"INVENTARIS_ATTACHMENTS_DIR" default:"./data/attachments"`
	// MaxSizeBytes caps a single uploaded evidence file.
	MaxSizeBytes int64 `envconfig:"INVENTARIS_ATTACHMENTS_MAX_SIZE_BYTES" default:"10485760"`
}

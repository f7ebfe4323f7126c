// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Source   SourceConfig
	Pipeline PipelineConfig
	Policy   domain.PolicyParameters
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	SnapshotTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket holding snapshot files
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// SourceConfig selects where inventory snapshots are read from
type SourceConfig struct {
	Kind    string // "file" or "postgres"
	DataDir string
}

type PipelineConfig struct {
	WorkerCount int
}

var (
	once     sync.Once
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shelfwatch")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 60)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "snapshots/")
	v.SetDefault("SOURCE_KIND", "file")
	v.SetDefault("SOURCE_DATA_DIR", "./data")
	v.SetDefault("PIPELINE_WORKER_COUNT", 4)
	v.SetDefault("POLICY_RISK_THRESHOLD", domain.DefaultRiskThreshold)
	v.SetDefault("POLICY_SAFETY_BUFFER_DAYS", domain.DefaultSafetyBufferDays)
	v.SetDefault("POLICY_VELOCITY_WINDOW_DAYS", domain.DefaultVelocityWindowDays)
	v.SetDefault("POLICY_REORDER_MULTIPLE", domain.DefaultReorderMultiple)
	v.SetDefault("POLICY_MIN_ORDER_QTY", domain.DefaultMinOrderQty)
	v.SetDefault("POLICY_MAX_ORDER_QTY", domain.DefaultMaxOrderQty)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			SnapshotTTLSeconds: v.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Source: SourceConfig{
			Kind:    v.GetString("SOURCE_KIND"),
			DataDir: v.GetString("SOURCE_DATA_DIR"),
		},
		Pipeline: PipelineConfig{
			WorkerCount: v.GetInt("PIPELINE_WORKER_COUNT"),
		},
		Policy: domain.PolicyParameters{
			RiskThreshold:      v.GetFloat64("POLICY_RISK_THRESHOLD"),
			SafetyBufferDays:   v.GetFloat64("POLICY_SAFETY_BUFFER_DAYS"),
			VelocityWindowDays: v.GetInt("POLICY_VELOCITY_WINDOW_DAYS"),
			ReorderMultiple:    v.GetFloat64("POLICY_REORDER_MULTIPLE"),
			MinOrderQty:        v.GetFloat64("POLICY_MIN_ORDER_QTY"),
			MaxOrderQty:        v.GetFloat64("POLICY_MAX_ORDER_QTY"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

// NewViper returns a viper instance with defaults applied and env lookup enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(NewViper())

		if err := instance.Policy.Validate(); err != nil {
			log.Fatalf("Invalid default policy: %v", err)
		}
	})

	return instance
}

// EnsureDir creates dir if it does not exist yet.
func EnsureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}

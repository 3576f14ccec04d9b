package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the location of the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

const (
	BackendNone     = "none"
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"
	BackendMinio    = "minio"
	BackendGCS      = "gcs"
)

type Config struct {
	ServerPort int            `koanf:"server_port"`
	Database   DatabaseConfig `koanf:"database"`
	Auth       AuthConfig     `koanf:"auth"`
	TMDB       TMDBConfig     `koanf:"tmdb"`
	HTTP       HTTPConfig     `koanf:"http"`
	Logging    LoggingConfig  `koanf:"logging"`
	MQ         MQConfig       `koanf:"mq"`
	Storage    StorageConfig  `koanf:"storage"`
}

type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	UseSSL   bool   `koanf:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

// TMDBConfig configures the upstream media metadata API.
type TMDBConfig struct {
	BaseURL   string        `koanf:"base_url"`
	APIKey    string        `koanf:"api_key"`
	Language  string        `koanf:"language"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"`
	RateBurst int           `koanf:"rate_burst"`
}

type HTTPConfig struct {
	CORSOrigins           []string      `koanf:"cors_origins"`
	AuthRateLimitRequests int           `koanf:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `koanf:"auth_rate_limit_window"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MQConfig selects the broker used for activity events.
type MQConfig struct {
	Backend  string         `koanf:"backend"`
	Channel  string         `koanf:"channel"`
	RabbitMQ RabbitMQConfig `koanf:"rabbitmq"`
	PubSub   PubSubConfig   `koanf:"pubsub"`
}

type RabbitMQConfig struct {
	URL             string `koanf:"url"`
	QueueDurable    bool   `koanf:"queue_durable"`
	QueueAutoDelete bool   `koanf:"queue_auto_delete"`
	PrefetchCount   int    `koanf:"prefetch_count"`
}

type PubSubConfig struct {
	ProjectID          string `koanf:"project_id"`
	CredentialsFile    string `koanf:"credentials_file"`
	SubscriptionSuffix string `koanf:"subscription_suffix"`
}

// StorageConfig selects the object store used by the activity archive.
type StorageConfig struct {
	Backend string      `koanf:"backend"`
	Minio   MinioConfig `koanf:"minio"`
	GCS     GCSConfig   `koanf:"gcs"`
}

type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

type GCSConfig struct {
	Bucket          string `koanf:"bucket"`
	ProjectID       string `koanf:"project_id"`
	CredentialsFile string `koanf:"credentials_file"`
}

func defaultConfig() Config {
	return Config{
		ServerPort: 8080,
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "cinedex",
			Password: "password",
			DBName:   "cinedex_db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		TMDB: TMDBConfig{
			BaseURL:   "https://api.themoviedb.org/3",
			Language:  "en-US",
			Timeout:   10 * time.Second,
			RateLimit: 40,
			RateBurst: 20,
		},
		HTTP: HTTPConfig{
			CORSOrigins:           []string{"*"},
			AuthRateLimitRequests: 10,
			AuthRateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		MQ: MQConfig{
			Backend: BackendNone,
			Channel: "media-activity",
			RabbitMQ: RabbitMQConfig{
				QueueDurable:  true,
				PrefetchCount: 10,
			},
			PubSub: PubSubConfig{
				SubscriptionSuffix: "-sub",
			},
		},
		Storage: StorageConfig{
			Backend: BackendNone,
			Minio: MinioConfig{
				Bucket: "media-activity",
			},
		},
	}
}

// envMappings maps environment variables onto config keys. Unlisted variables are ignored.
var envMappings = map[string]string{
	"server_port": "server_port",

	"db_host":     "database.host",
	"db_port":     "database.port",
	"db_user":     "database.user",
	"db_password": "database.password",
	"db_name":     "database.dbname",
	"db_ssl":      "database.use_ssl",

	"jwt_secret": "auth.jwt_secret",
	"token_ttl":  "auth.token_ttl",

	"tmdb_base_url":   "tmdb.base_url",
	"tmdb_api_key":    "tmdb.api_key",
	"tmdb_language":   "tmdb.language",
	"tmdb_timeout":    "tmdb.timeout",
	"tmdb_rate_limit": "tmdb.rate_limit",
	"tmdb_rate_burst": "tmdb.rate_burst",

	"cors_origins":             "http.cors_origins",
	"auth_rate_limit_requests": "http.auth_rate_limit_requests",
	"auth_rate_limit_window":   "http.auth_rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"mq_backend":                 "mq.backend",
	"mq_channel":                 "mq.channel",
	"rabbitmq_url":               "mq.rabbitmq.url",
	"rabbitmq_queue_durable":     "mq.rabbitmq.queue_durable",
	"rabbitmq_queue_auto_delete": "mq.rabbitmq.queue_auto_delete",
	"rabbitmq_prefetch_count":    "mq.rabbitmq.prefetch_count",
	"pubsub_project_id":          "mq.pubsub.project_id",
	"pubsub_credentials_file":    "mq.pubsub.credentials_file",
	"pubsub_subscription_suffix": "mq.pubsub.subscription_suffix",

	"storage_backend":      "storage.backend",
	"minio_endpoint":       "storage.minio.endpoint",
	"minio_access_key":     "storage.minio.access_key",
	"minio_secret_key":     "storage.minio.secret_key",
	"minio_bucket":         "storage.minio.bucket",
	"minio_use_ssl":        "storage.minio.use_ssl",
	"gcs_bucket":           "storage.gcs.bucket",
	"gcs_project_id":       "storage.gcs.project_id",
	"gcs_credentials_file": "storage.gcs.credentials_file",
}

var sliceKeys = []string{"http.cors_origins"}

// LoadConfig layers defaults, an optional YAML file and environment variables, in that order.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceKeys(k); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", c.ServerPort)
	}
	switch c.MQ.Backend {
	case BackendNone, BackendRabbitMQ, BackendPubSub:
	default:
		return fmt.Errorf("unknown mq backend %q", c.MQ.Backend)
	}
	switch c.Storage.Backend {
	case BackendNone, BackendMinio, BackendGCS:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.MQ.Backend != BackendNone && strings.TrimSpace(c.MQ.Channel) == "" {
		return errors.New("mq channel is required")
	}
	return nil
}

func envKey(key string) string {
	return envMappings[strings.ToLower(key)]
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// splitSliceKeys turns comma-separated env values into slices.
func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
		if err := k.Set(key, values); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env        string         `yaml:"env"`
	ServerPort int            `yaml:"server_port"`
	LogLevel   string         `yaml:"log_level"`
	SecretKey  string         `yaml:"secret_key"`
	Database   DatabaseConfig `yaml:"database"`
	Session    SessionConfig  `yaml:"session"`
	Storage    StorageConfig  `yaml:"storage"`
	MQ         MQConfig       `yaml:"mq"`
}

// DatabaseConfig selects the SQL backend. Path is used by sqlite3, the
// remaining fields by postgres.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	UseSSL   bool   `yaml:"ssl"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// StorageConfig configures where post images go. An empty Backend disables
// uploads.
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Minio   MinioConfig `yaml:"minio"`
	GCS     GCSConfig   `yaml:"gcs"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"ssl"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// MQConfig configures site event publishing. An empty Backend disables it.
type MQConfig struct {
	Backend  string         `yaml:"backend"`
	Channel  string         `yaml:"channel"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	PubSub   PubSubConfig   `yaml:"pubsub"`
}

type RabbitMQConfig struct {
	URL             string `yaml:"url"`
	QueueDurable    bool   `yaml:"queue_durable"`
	QueueAutoDelete bool   `yaml:"queue_auto_delete"`
	PrefetchCount   int    `yaml:"prefetch_count"`
}

type PubSubConfig struct {
	ProjectID          string `yaml:"project_id"`
	CredentialsFile    string `yaml:"credentials_file"`
	SubscriptionSuffix string `yaml:"subscription_suffix"`
}

// Default returns the development configuration: a local SQLite file under
// instance/ and the insecure "dev" secret key.
func Default() Config {
	return Config{
		Env:        "dev",
		ServerPort: 8080,
		LogLevel:   "info",
		SecretKey:  "dev",
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Path:   "instance/portfolio.sqlite",
			Host:   "localhost",
			Port:   5432,
			User:   "portfolio",
			DBName: "portfolio",
		},
		Session: SessionConfig{
			CookieName: "session",
			TTL:        31 * 24 * time.Hour,
		},
		MQ: MQConfig{
			Channel: "portfolio-events",
		},
	}
}

// LoadConfig layers defaults, the optional YAML file named by CONFIG_FILE and
// environment variables, in that order.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values the site cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("config: DB_PATH is required for sqlite3")
		}
	case "postgres":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("config: SECRET_KEY is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	switch c.Storage.Backend {
	case "", "minio", "gcs":
	default:
		return fmt.Errorf("config: unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.MQ.Backend {
	case "", "rabbitmq", "pubsub":
	default:
		return fmt.Errorf("config: unsupported MQ_BACKEND %q", c.MQ.Backend)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.ServerPort = getEnvInt("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.SecretKey = getEnv("SECRET_KEY", cfg.SecretKey)

	db := &cfg.Database
	db.Driver = getEnv("DB_DRIVER", db.Driver)
	db.Path = getEnv("DB_PATH", db.Path)
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnvInt("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.DBName = getEnv("DB_NAME", db.DBName)
	db.UseSSL = getEnvBool("DB_SSL", db.UseSSL)

	s := &cfg.Session
	s.CookieName = getEnv("SESSION_COOKIE", s.CookieName)
	s.TTL = getEnvDuration("SESSION_TTL", s.TTL)
	s.Secure = getEnvBool("SESSION_SECURE", s.Secure)

	st := &cfg.Storage
	st.Backend = getEnv("STORAGE_BACKEND", st.Backend)
	st.Minio.Endpoint = getEnv("MINIO_ENDPOINT", st.Minio.Endpoint)
	st.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", st.Minio.AccessKey)
	st.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", st.Minio.SecretKey)
	st.Minio.Bucket = getEnv("MINIO_BUCKET", st.Minio.Bucket)
	st.Minio.UseSSL = getEnvBool("MINIO_SSL", st.Minio.UseSSL)
	st.GCS.Bucket = getEnv("GCS_BUCKET", st.GCS.Bucket)
	st.GCS.ProjectID = getEnv("GCS_PROJECT_ID", st.GCS.ProjectID)
	st.GCS.CredentialsFile = getEnv("GCS_CREDENTIALS_FILE", st.GCS.CredentialsFile)

	mq := &cfg.MQ
	mq.Backend = getEnv("MQ_BACKEND", mq.Backend)
	mq.Channel = getEnv("EVENTS_CHANNEL", mq.Channel)
	mq.RabbitMQ.URL = getEnv("RABBITMQ_URL", mq.RabbitMQ.URL)
	mq.RabbitMQ.QueueDurable = getEnvBool("RABBITMQ_QUEUE_DURABLE", mq.RabbitMQ.QueueDurable)
	mq.RabbitMQ.QueueAutoDelete = getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", mq.RabbitMQ.QueueAutoDelete)
	mq.RabbitMQ.PrefetchCount = getEnvInt("RABBITMQ_PREFETCH", mq.RabbitMQ.PrefetchCount)
	mq.PubSub.ProjectID = getEnv("PUBSUB_PROJECT_ID", mq.PubSub.ProjectID)
	mq.PubSub.CredentialsFile = getEnv("PUBSUB_CREDENTIALS_FILE", mq.PubSub.CredentialsFile)
	mq.PubSub.SubscriptionSuffix = getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", mq.PubSub.SubscriptionSuffix)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

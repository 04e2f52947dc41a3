// Package config loads Syncx server/client configuration from an optional
// YAML overlay plus the required environment variables (§6), the way the
// teacher's config package layers env overrides on top of a YAML file
// loaded once at process start.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Config is the full set of knobs the server needs to boot. Fields marked
// required in the comments are fatal-on-missing per spec.md §6.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	GCS      GCSConfig      `yaml:"gcs"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
	GCP      GCPConfig      `yaml:"gcp"`
}

type ServerConfig struct {
	// Addr is the gRPC listen address, e.g. ":8443". Required (SERVER_ADDR).
	Addr string `yaml:"addr"`
	// AdminAddr serves /healthz and /metrics over plain HTTP.
	AdminAddr string `yaml:"admin_addr"`
}

type DatabaseConfig struct {
	// URL is the Postgres connection string. Required (DATABASE_URL).
	URL string `yaml:"url"`
	// Name is the database name. Required (DB_NAME).
	Name string `yaml:"name"`
}

type RedisConfig struct {
	// URL is the Redis connection string, e.g. redis://host:6379/0.
	// Required (REDIS_URL).
	URL string `yaml:"url"`
}

type JWTConfig struct {
	// Secret signs/verifies bearer tokens with HMAC-SHA512. Required
	// (JWT_SECRET).
	Secret string `yaml:"secret"`
	// ExpirySeconds is the bearer token TTL. Required (JWT_EXP).
	ExpirySeconds int `yaml:"expiry_seconds"`
}

type GCSConfig struct {
	// BucketName is the blob-store bucket. Required (GCS_BUCKET_NAME).
	BucketName string `yaml:"bucket_name"`
	// CredentialsJSON is an inline service-account key. Required
	// (GOOGLE_APPLICATION_CREDENTIALS_JSON).
	CredentialsJSON string `yaml:"credentials_json"`
	// APIKey is passed to the GCS client as an API-key option alongside
	// the credentials. Required (GOOGLE_STORAGE_API_KEY).
	APIKey string `yaml:"api_key"`
}

type WorkerConfig struct {
	// MaxInflight bounds concurrent worker goroutines (SPEC_FULL.md §6).
	MaxInflight int `yaml:"max_inflight"`
	// RetryAttempts is the number of runs a job gets, the first run
	// included, before it is dead-lettered.
	RetryAttempts int `yaml:"retry_attempts"`
	// RetryBaseDelayMs is the exponential-backoff base delay.
	RetryBaseDelayMs int `yaml:"retry_base_delay_ms"`
}

type LoggingConfig struct {
	// Format selects the slog handler: "json" or "text". Required
	// (LOG_CONFIG).
	Format string `yaml:"format"`
}

// GCPConfig names the project-scoped resources the domain event bus and
// dead-letter dispatcher publish into. Optional: a missing ProjectID
// disables both and the server falls back to in-memory stand-ins, logged
// at startup rather than treated as fatal (these are audit/retry
// extensions, not part of spec.md's required external interface).
type GCPConfig struct {
	// ProjectID is the GCP project hosting Pub/Sub and Cloud Tasks.
	// (GCP_PROJECT_ID).
	ProjectID string `yaml:"project_id"`
	// EventsTopic is the Pub/Sub topic domain events publish to.
	// (PUBSUB_EVENTS_TOPIC).
	EventsTopic string `yaml:"events_topic"`
	// TasksLocation is the Cloud Tasks queue's region. (CLOUDTASKS_LOCATION).
	TasksLocation string `yaml:"tasks_location"`
	// TasksQueue is the Cloud Tasks queue id for dead-lettered jobs.
	// (CLOUDTASKS_QUEUE).
	TasksQueue string `yaml:"tasks_queue"`
	// DeadLetterEndpoint is the HTTP URL Cloud Tasks POSTs dead-lettered
	// job notices to. (DEADLETTER_ENDPOINT_URL).
	DeadLetterEndpoint string `yaml:"dead_letter_endpoint"`
}

var (
	instance *Config
	loadOnce sync.Once
	loadErr  error
)

// Load reads an optional YAML file at path (missing file is not an error),
// applies environment overrides, validates the required fields, and caches
// the result for Get. godotenv should be loaded by the caller before Load so
// local .env values are visible to os.Getenv.
func Load(path string) (*Config, error) {
	loadOnce.Do(func() {
		cfg := &Config{}
		if f, err := os.Open(path); err == nil {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				loadErr = fmt.Errorf("config: parse %s: %w", path, err)
				return
			}
		}
		cfg.applyEnvOverrides()
		cfg.applyDefaults()
		if err := cfg.validate(); err != nil {
			loadErr = err
			return
		}
		instance = cfg
	})
	return instance, loadErr
}

// Get returns the previously Load-ed configuration, panicking if Load was
// never called successfully — a programming error, not a runtime one.
func Get() *Config {
	if instance == nil {
		panic("config: Get called before a successful Load")
	}
	return instance
}

func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	if v := getEnvInt("JWT_EXP", 0); v > 0 {
		c.JWT.ExpirySeconds = v
	}
	c.GCS.BucketName = getEnv("GCS_BUCKET_NAME", c.GCS.BucketName)
	c.GCS.CredentialsJSON = getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", c.GCS.CredentialsJSON)
	c.GCS.APIKey = getEnv("GOOGLE_STORAGE_API_KEY", c.GCS.APIKey)
	c.Logging.Format = getEnv("LOG_CONFIG", c.Logging.Format)

	c.GCP.ProjectID = getEnv("GCP_PROJECT_ID", c.GCP.ProjectID)
	c.GCP.EventsTopic = getEnv("PUBSUB_EVENTS_TOPIC", c.GCP.EventsTopic)
	c.GCP.TasksLocation = getEnv("CLOUDTASKS_LOCATION", c.GCP.TasksLocation)
	c.GCP.TasksQueue = getEnv("CLOUDTASKS_QUEUE", c.GCP.TasksQueue)
	c.GCP.DeadLetterEndpoint = getEnv("DEADLETTER_ENDPOINT_URL", c.GCP.DeadLetterEndpoint)

	if v := getEnvInt("WORKER_MAX_INFLIGHT", 0); v > 0 {
		c.Worker.MaxInflight = v
	}
	if v := getEnvInt("WORKER_RETRY_ATTEMPTS", 0); v > 0 {
		c.Worker.RetryAttempts = v
	}
	if v := getEnvInt("WORKER_RETRY_BASE_DELAY_MS", 0); v > 0 {
		c.Worker.RetryBaseDelayMs = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.AdminAddr == "" {
		c.Server.AdminAddr = ":9090"
	}
	if c.Worker.MaxInflight == 0 {
		c.Worker.MaxInflight = 8
	}
	if c.Worker.RetryAttempts == 0 {
		c.Worker.RetryAttempts = 3
	}
	if c.Worker.RetryBaseDelayMs == 0 {
		c.Worker.RetryBaseDelayMs = 500
	}
	if c.GCP.EventsTopic == "" {
		c.GCP.EventsTopic = "syncx-events"
	}
	if c.GCP.TasksQueue == "" {
		c.GCP.TasksQueue = "syncx-deadletter"
	}
	if c.GCP.TasksLocation == "" {
		c.GCP.TasksLocation = "us-central1"
	}
}

// validate checks that the spec.md §6 env vars resolved to a non-empty
// value; a missing one is a fatal startup error.
func (c *Config) validate() error {
	missing := make([]string, 0)
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.JWT.ExpirySeconds == 0 {
		missing = append(missing, "JWT_EXP")
	}
	if c.GCS.BucketName == "" {
		missing = append(missing, "GCS_BUCKET_NAME")
	}
	if c.GCS.CredentialsJSON == "" {
		missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS_JSON")
	}
	if c.GCS.APIKey == "" {
		missing = append(missing, "GOOGLE_STORAGE_API_KEY")
	}
	if c.Server.Addr == "" {
		missing = append(missing, "SERVER_ADDR")
	}
	if c.Logging.Format == "" {
		missing = append(missing, "LOG_CONFIG")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

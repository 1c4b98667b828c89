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
	Port string `yaml:"port"`

	DBDriver   string `yaml:"db_driver"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`
	DBPath     string `yaml:"db_path"`

	LogDir string `yaml:"log_dir"`

	AllowedURLSchemes []string `yaml:"allowed_url_schemes"`

	FetchMode        string        `yaml:"fetch_mode"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	UserAgent        string        `yaml:"user_agent"`
	SummarySentences int           `yaml:"summary_sentences"`
	SummarizeTimeout time.Duration `yaml:"summarize_timeout"`
	WorkerCount      int           `yaml:"worker_count"`
	WorkerQueueSize  int           `yaml:"worker_queue_size"`

	TokenizerDataDir string `yaml:"tokenizer_data_dir"`
	TokenizerDataURL string `yaml:"tokenizer_data_url"`

	MinIOEndpoint  string `yaml:"minio_endpoint"`
	MinIOAccessKey string `yaml:"minio_access_key"`
	MinIOSecretKey string `yaml:"minio_secret_key"`
	MinIOBucket    string `yaml:"minio_bucket"`
	MinIOUseSSL    bool   `yaml:"minio_use_ssl"`
}

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:              "8000",
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBPath:            "digest.db",
		LogDir:            "./logs",
		AllowedURLSchemes: []string{"http", "https"},
		FetchMode:         FetchModeHTTP,
		FetchTimeout:      30 * time.Second,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		SummarySentences:  5,
		WorkerCount:       2,
		WorkerQueueSize:   100,
		TokenizerDataDir:  "./data",
		MinIOBucket:       "digest-articles",
	}
}

// LoadConfig reads .env, then CONFIG_FILE (YAML) if set, then environment
// variables, in increasing order of precedence.
func LoadConfig() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Load is LoadConfig without validation, for callers that only need part
// of the configuration.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.applyEnv()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.FetchMode = getEnv("FETCH_MODE", c.FetchMode)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.TokenizerDataDir = getEnv("TOKENIZER_DATA_DIR", c.TokenizerDataDir)
	c.TokenizerDataURL = getEnv("TOKENIZER_DATA_URL", c.TokenizerDataURL)
	c.MinIOEndpoint = getEnv("MINIO_ENDPOINT", c.MinIOEndpoint)
	c.MinIOAccessKey = getEnv("MINIO_ACCESS_KEY", c.MinIOAccessKey)
	c.MinIOSecretKey = getEnv("MINIO_SECRET_KEY", c.MinIOSecretKey)
	c.MinIOBucket = getEnv("MINIO_BUCKET", c.MinIOBucket)

	if v := os.Getenv("ALLOWED_URL_SCHEMES"); v != "" {
		c.AllowedURLSchemes = splitList(v)
	}

	var err error
	if c.FetchTimeout, err = getEnvDuration("FETCH_TIMEOUT", c.FetchTimeout); err != nil {
		return err
	}
	if c.SummarizeTimeout, err = getEnvDuration("SUMMARIZE_TIMEOUT", c.SummarizeTimeout); err != nil {
		return err
	}
	if c.SummarySentences, err = getEnvInt("SUMMARY_SENTENCES", c.SummarySentences); err != nil {
		return err
	}
	if c.WorkerCount, err = getEnvInt("WORKER_COUNT", c.WorkerCount); err != nil {
		return err
	}
	if c.WorkerQueueSize, err = getEnvInt("WORKER_QUEUE_SIZE", c.WorkerQueueSize); err != nil {
		return err
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigError{Field: "MINIO_USE_SSL", Message: err.Error()}
		}
		c.MinIOUseSSL = b
	}
	return nil
}

// Validate checks that the loaded values can be used to start the service.
func (c Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	return c.ValidateSummarizer()
}

func (c Config) validateDatabase() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBName == "" {
			return &ConfigError{Field: "DB_NAME", Message: "database name is required for postgres"}
		}
	case "sqlite":
		if c.DBPath == "" {
			return &ConfigError{Field: "DB_PATH", Message: "database path is required for sqlite"}
		}
	default:
		return &ConfigError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", c.DBDriver)}
	}
	return nil
}

// ValidateSummarizer checks the fetch, summary and worker settings.
func (c Config) ValidateSummarizer() error {
	if c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser {
		return &ConfigError{Field: "FETCH_MODE", Message: fmt.Sprintf("unsupported fetch mode %q", c.FetchMode)}
	}
	if len(c.AllowedURLSchemes) == 0 {
		return &ConfigError{Field: "ALLOWED_URL_SCHEMES", Message: "at least one scheme is required"}
	}
	if c.SummarySentences <= 0 {
		return &ConfigError{Field: "SUMMARY_SENTENCES", Message: "must be positive"}
	}
	if c.WorkerCount <= 0 {
		return &ConfigError{Field: "WORKER_COUNT", Message: "must be positive"}
	}
	if c.WorkerQueueSize <= 0 {
		return &ConfigError{Field: "WORKER_QUEUE_SIZE", Message: "must be positive"}
	}
	if c.MinIOEndpoint != "" && c.MinIOBucket == "" {
		return &ConfigError{Field: "MINIO_BUCKET", Message: "bucket is required when MINIO_ENDPOINT is set"}
	}
	return nil
}

// ArchiveEnabled reports whether extracted articles are uploaded to MinIO.
func (c Config) ArchiveEnabled() bool {
	return c.MinIOEndpoint != ""
}

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, &ConfigError{Field: key, Message: "must be a duration such as 30s"}
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ModelConfig binds a local prediction provider to its registered arena model.
type ModelConfig struct {
	Name      string `yaml:"name" validate:"required"`
	URL       string `yaml:"url" validate:"required,url"`
	ModelName string `yaml:"model_name" validate:"required"`

	// Registration metadata, sent on POST /api/v1/models/register.
	ModelType       string                 `yaml:"model_type" default:"Statistical"`
	ModelFamily     string                 `yaml:"model_family"`
	ModelSize       int                    `yaml:"model_size"`
	Hosting         string                 `yaml:"hosting" default:"self-hosted"`
	Architecture    string                 `yaml:"architecture"`
	PretrainingData string                 `yaml:"pretraining_data"`
	PublishingDate  string                 `yaml:"publishing_date"`
	Parameters      map[string]interface{} `yaml:"parameters"`
}

type Config struct {
	Environment string `yaml:"environment" default:"production"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8081"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Arena struct {
		BaseURL        string        `yaml:"base_url" default:"http://localhost:8457" validate:"url"`
		APIKey         string        `yaml:"api_key"`
		PollInterval   time.Duration `yaml:"poll_interval" default:"60s"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"60s"`
	} `yaml:"arena"`
	Forecaster struct {
		Workers        int           `yaml:"workers" default:"4" validate:"gte=1"`
		MaxRPS         float64       `yaml:"max_rps" default:"10"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"60s"`
		QuantileLevels []float64     `yaml:"quantile_levels" default:"[0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8,0.9]"`
	} `yaml:"forecaster"`
	Journal struct {
		Type string `yaml:"type" default:"none" validate:"oneof=none kafka clickhouse"`
	} `yaml:"journal"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"arenapull.uploads"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"arenapull"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled    bool          `yaml:"enabled"`
		ContextTTL time.Duration `yaml:"context_ttl" default:"55s"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Models []ModelConfig `yaml:"models" validate:"min=1,dive"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.Arena.BaseURL = v
	}
	if v := os.Getenv("API_UPLOAD_KEY"); v != "" {
		c.Arena.APIKey = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Arena.PollInterval = d
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Arena.RequestTimeout = d
		}
	}
	if v := os.Getenv("JOURNAL"); v != "" {
		c.Journal.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Arena.PollInterval <= 0 {
		return fmt.Errorf("arena.poll_interval must be positive")
	}
	if c.Journal.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when journal.type is 'kafka'")
	}
	if c.Journal.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when journal.type is 'clickhouse'")
	}
	// Context data belongs to a single pass; a TTL reaching the next poll
	// would leak stale anchors across cycles.
	if c.Cache.Enabled && c.Cache.ContextTTL >= c.Arena.PollInterval {
		return fmt.Errorf("cache.context_ttl (%v) must be shorter than arena.poll_interval (%v)",
			c.Cache.ContextTTL, c.Arena.PollInterval)
	}
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if seen[m.Name] {
			return fmt.Errorf("duplicate model name '%s'", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// RequireAPIKey fails when no upload key is configured. Checked at startup:
// without a key the agent cannot fetch context data or upload, so there is
// no point entering the loop.
func (c *Config) RequireAPIKey() error {
	if c.Arena.APIKey == "" {
		return fmt.Errorf("API_UPLOAD_KEY is not set (arena.api_key)")
	}
	return nil
}

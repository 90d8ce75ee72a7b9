package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" env:"NATAL_ENV"`
	Server      struct {
		Port            int           `yaml:"port" env:"HTTP_PORT"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowOrigins    []string      `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
		Output string `yaml:"output" env:"LOG_OUTPUT"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Chart struct {
		Model            string  `yaml:"model" env:"CHART_MODEL"` // periodic | mean-motion
		Perturbation     float64 `yaml:"perturbation"`
		PerturbationRate float64 `yaml:"perturbation_rate"`
		RetrogradeStep   float64 `yaml:"retrograde_step"` // days
		BatchLimit       int     `yaml:"batch_limit"`
		BatchWorkers     int     `yaml:"batch_workers"`
	} `yaml:"chart"`
	Cache struct {
		Enabled       bool          `yaml:"enabled" env:"CACHE_ENABLED"`
		TTL           time.Duration `yaml:"ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
			Addr     string `yaml:"addr" env:"REDIS_ADDR"`
			Password string `yaml:"password" env:"REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"REDIS_DB"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled" env:"KAFKA_ENABLED"`
		Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS"`
		EventsTopic  string   `yaml:"events_topic" env:"KAFKA_EVENTS_TOPIC"`
		RequestTopic string   `yaml:"request_topic" env:"KAFKA_REQUEST_TOPIC"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled" env:"KAFKA_CONSUMER_ENABLED"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Stream struct {
		MinInterval time.Duration `yaml:"min_interval"`
		MaxInterval time.Duration `yaml:"max_interval"`
	} `yaml:"stream"`
	RateLimit struct {
		Enabled bool          `yaml:"enabled" env:"RATELIMIT_ENABLED"`
		RPS     float64       `yaml:"rps" env:"RATELIMIT_RPS"`
		Burst   int           `yaml:"burst" env:"RATELIMIT_BURST"`
		IdleTTL time.Duration `yaml:"idle_ttl"`
	} `yaml:"ratelimit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Chart.Model == "" {
		c.Chart.Model = "periodic"
	}
	if c.Chart.PerturbationRate == 0 {
		c.Chart.PerturbationRate = 0.01
	}
	if c.Chart.RetrogradeStep == 0 {
		c.Chart.RetrogradeStep = 0.5
	}
	if c.Chart.BatchLimit == 0 {
		c.Chart.BatchLimit = 100
	}
	if c.Chart.BatchWorkers == 0 {
		c.Chart.BatchWorkers = 8
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 10000
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "chart.computed"
	}
	if c.Kafka.RequestTopic == "" {
		c.Kafka.RequestTopic = "chart.requests"
	}
	if c.Stream.MinInterval == 0 {
		c.Stream.MinInterval = time.Second
	}
	if c.Stream.MaxInterval == 0 {
		c.Stream.MaxInterval = time.Hour
	}
	if c.RateLimit.IdleTTL == 0 {
		c.RateLimit.IdleTTL = 10 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be within 1..65535, got %d", c.Server.Port)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got '%s'", c.Logging.Format)
	}
	if c.Chart.Model != "periodic" && c.Chart.Model != "mean-motion" {
		return fmt.Errorf("chart.model must be 'periodic' or 'mean-motion', got '%s'", c.Chart.Model)
	}
	if c.Chart.Perturbation < 0 {
		return fmt.Errorf("chart.perturbation cannot be negative")
	}
	if c.Chart.RetrogradeStep <= 0 || c.Chart.RetrogradeStep > 30 {
		return fmt.Errorf("chart.retrograde_step must be within (0, 30] days")
	}
	if c.Chart.BatchLimit < 1 || c.Chart.BatchLimit > 100 {
		return fmt.Errorf("chart.batch_limit must be within 1..100")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Consumer.Enabled && c.Kafka.Consumer.GroupID == "" {
		return fmt.Errorf("kafka.consumer.group_id is required when the consumer is enabled")
	}
	if c.Stream.MinInterval > c.Stream.MaxInterval {
		return fmt.Errorf("stream.min_interval exceeds stream.max_interval")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive when enabled")
	}
	return nil
}

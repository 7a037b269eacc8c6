package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Signal struct {
		PingInterval   time.Duration `yaml:"ping_interval"`
		PongTimeout    time.Duration `yaml:"pong_timeout"`
		SendBuffer     int           `yaml:"send_buffer"`
		MaxMessageSize int64         `yaml:"max_message_size"`
	} `yaml:"signal"`

	Storage struct {
		UploadDir string `yaml:"upload_dir"`
	} `yaml:"storage"`

	Analysis struct {
		Enabled bool          `yaml:"enabled"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"analysis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		JaegerURL  string  `yaml:"jaeger_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"`
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Signal.PingInterval <= 0 {
		return fmt.Errorf("signal.ping_interval must be > 0")
	}
	if c.Signal.PongTimeout <= c.Signal.PingInterval {
		return fmt.Errorf("signal.pong_timeout must be > signal.ping_interval")
	}
	if c.Signal.SendBuffer <= 0 {
		return fmt.Errorf("signal.send_buffer must be > 0")
	}
	if c.Signal.MaxMessageSize <= 0 {
		return fmt.Errorf("signal.max_message_size must be > 0")
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir must not be empty")
	}

	if c.Analysis.Enabled {
		if c.Analysis.BaseURL == "" {
			return fmt.Errorf("analysis.base_url must not be empty when analysis.enabled=true")
		}
		if c.Analysis.Timeout <= 0 {
			return fmt.Errorf("analysis.timeout must be > 0 when analysis.enabled=true")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from a YAML file, applies defaults and env
// overrides. A missing file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8000"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Signal.PingInterval = 30 * time.Second
	cfg.Signal.PongTimeout = 60 * time.Second
	cfg.Signal.SendBuffer = 64
	cfg.Signal.MaxMessageSize = 1 << 20

	cfg.Storage.UploadDir = "uploads"

	cfg.Analysis.Enabled = false
	cfg.Analysis.BaseURL = "http://localhost:9000"
	cfg.Analysis.Timeout = 60 * time.Second

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("VIDEONET_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("VIDEONET_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if dir := os.Getenv("VIDEONET_UPLOAD_DIR"); dir != "" {
		c.Storage.UploadDir = dir
	}
	if url := os.Getenv("VIDEONET_ANALYSIS_URL"); url != "" {
		c.Analysis.BaseURL = url
		c.Analysis.Enabled = true
	}
	if v := os.Getenv("VIDEONET_TRACING_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Tracing.Enabled = enabled
		}
	}
}

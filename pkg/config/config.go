package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level            string        `yaml:"level" default:"info"`
		Format           string        `yaml:"format" default:"json"`
		Collect          bool          `yaml:"collect"`
		CollectInterval  time.Duration `yaml:"collect_interval" default:"30s"`
		CollectThreshold int           `yaml:"collect_threshold" default:"100"`
	} `yaml:"logging"`
	Analysis struct {
		// TaskTimeout bounds each analyzer; zero leaves tasks unbounded.
		TaskTimeout     time.Duration  `yaml:"task_timeout"`
		ConfidenceFloor float64        `yaml:"confidence_floor" default:"30"`
		CandleWindow    int            `yaml:"candle_window" default:"250"`
		Timeframe       string         `yaml:"timeframe" default:"1d"`
		Horizons        map[string]int `yaml:"horizons"`
		Projection      struct {
			SpreadPerMonth          float64 `yaml:"spread_per_month" default:"0.02"`
			MaxSpread               float64 `yaml:"max_spread" default:"0.25"`
			AnnualDrift             float64 `yaml:"annual_drift" default:"0.08"`
			StartConfidence         float64 `yaml:"start_confidence" default:"90"`
			ConfidenceDecayPerMonth float64 `yaml:"confidence_decay_per_month" default:"5"`
			MinConfidence           float64 `yaml:"min_confidence" default:"20"`
		} `yaml:"projection"`
	} `yaml:"analysis"`
	Finnhub struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		Timeout time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"finnhub"`
	Analytics struct {
		PythonServiceURL string        `yaml:"python_service_url"`
		Timeout          time.Duration `yaml:"timeout" default:"3s"`
		Retries          int           `yaml:"retries" default:"3"`
		Horizon          string        `yaml:"horizon" default:"1d"`
	} `yaml:"analytics"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"stockpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequestTopic string   `yaml:"request_topic" default:"stockpulse.analysis.requests"`
		ReportTopic  string   `yaml:"report_topic" default:"stockpulse.analysis.reports"`
		LogTopic     string   `yaml:"log_topic" default:"stockpulse.logs"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"stockpulse"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"2"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"stockpulse.analysis.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"1048576"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		MinIdle  int    `yaml:"min_idle_conns" default:"2"`
	} `yaml:"redis"`
	RateLimit struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Requests int           `yaml:"requests" default:"30"`
		Window   time.Duration `yaml:"window" default:"1m"`
	} `yaml:"ratelimit"`
}

// DefaultHorizons maps projection labels to days ahead.
func DefaultHorizons() map[string]int {
	return map[string]int{"1W": 7, "1M": 30, "3M": 90, "6M": 180, "1Y": 365}
}

// Default returns a configuration with only the struct tag defaults applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.Analysis.Horizons = DefaultHorizons()
	return &c, nil
}

// Load reads and parses a YAML configuration file. Defaults are applied first so
// that an explicit false or zero in the file wins. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// horizons from the file replace the defaults rather than merge with them
		c.Analysis.Horizons = nil
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if len(c.Analysis.Horizons) == 0 {
			c.Analysis.Horizons = DefaultHorizons()
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := getenv("ANALYTICS_URL"); v != "" {
		c.Analytics.PythonServiceURL = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Analysis.TaskTimeout < 0 {
		return fmt.Errorf("analysis.task_timeout must not be negative")
	}
	if c.Analysis.ConfidenceFloor < 0 || c.Analysis.ConfidenceFloor > 100 {
		return fmt.Errorf("analysis.confidence_floor must be within [0,100], got %v", c.Analysis.ConfidenceFloor)
	}
	if c.Analysis.CandleWindow < 2 {
		return fmt.Errorf("analysis.candle_window must be at least 2")
	}
	for label, days := range c.Analysis.Horizons {
		if days <= 0 {
			return fmt.Errorf("analysis.horizons[%s] must be positive", label)
		}
	}
	if p := c.Analysis.Projection; p.MaxSpread < 0 || p.SpreadPerMonth < 0 {
		return fmt.Errorf("analysis.projection spreads must not be negative")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.RequestTopic == "" || c.Kafka.ReportTopic == "" {
			return fmt.Errorf("kafka.request_topic and kafka.report_topic are required")
		}
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("ratelimit.requests and ratelimit.window must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider configures one market-data source.
type Provider struct {
	ID         string        `yaml:"id"`
	Kind       string        `yaml:"kind"` // coingecko, binance
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Priority   int           `yaml:"priority"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rate_limit"`  // tokens per second
	BurstLimit int           `yaml:"burst_limit"` // bucket capacity
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Providers []Provider `yaml:"providers"`
	Breaker   struct {
		FailureThreshold int           `yaml:"failure_threshold"`
		Cooldown         time.Duration `yaml:"cooldown"`
	} `yaml:"breaker"`
	Cache struct {
		PriceTTL      time.Duration `yaml:"price_ttl"`
		HistoricalTTL time.Duration `yaml:"historical_ttl"`
		SentimentTTL  time.Duration `yaml:"sentiment_ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		IdleEviction  time.Duration `yaml:"idle_eviction"`
	} `yaml:"cache"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Risk struct {
		MinConfidence         float64 `yaml:"min_confidence"`
		MaxPositionsPerSymbol int     `yaml:"max_positions_per_symbol"`
		MaxPortfolioExposure  float64 `yaml:"max_portfolio_exposure"`
		MaxDailyTrades        int     `yaml:"max_daily_trades"`
		MaxPositionSize       float64 `yaml:"max_position_size"`
		DefaultOrderNotional  float64 `yaml:"default_order_notional"`
	} `yaml:"risk"`
	Exchange struct {
		Kind          string        `yaml:"kind"` // paper, binance
		APIKey        string        `yaml:"api_key"`
		APISecret     string        `yaml:"api_secret"`
		SubmitTimeout time.Duration `yaml:"submit_timeout"`
	} `yaml:"exchange"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		QuoteTTL time.Duration `yaml:"quote_ttl"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

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

	c.applyDefaults()

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

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("EXCHANGE_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("EXCHANGE_API_SECRET"); v != "" {
		c.Exchange.APISecret = v
	}
	for i := range c.Providers {
		env := "PROVIDER_" + strings.ToUpper(c.Providers[i].ID) + "_API_KEY"
		if v := os.Getenv(env); v != "" {
			c.Providers[i].APIKey = v
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 3
	}
	if c.Breaker.Cooldown == 0 {
		c.Breaker.Cooldown = 30 * time.Second
	}
	if c.Cache.PriceTTL == 0 {
		c.Cache.PriceTTL = 30 * time.Second
	}
	if c.Cache.HistoricalTTL == 0 {
		c.Cache.HistoricalTTL = 5 * time.Minute
	}
	if c.Cache.SentimentTTL == 0 {
		c.Cache.SentimentTTL = 10 * time.Minute
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = 5 * time.Minute
	}
	if c.Cache.IdleEviction == 0 {
		c.Cache.IdleEviction = time.Hour
	}
	if c.Exchange.Kind == "" {
		c.Exchange.Kind = "paper"
	}
	if c.Exchange.SubmitTimeout == 0 {
		c.Exchange.SubmitTimeout = 10 * time.Second
	}
	for i := range c.Providers {
		if c.Providers[i].Timeout == 0 {
			c.Providers[i].Timeout = 5 * time.Second
		}
		if c.Providers[i].BurstLimit == 0 {
			c.Providers[i].BurstLimit = 10
		}
		if c.Providers[i].RateLimit == 0 {
			c.Providers[i].RateLimit = 1
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("providers cannot be empty")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.ID == "" {
			return fmt.Errorf("provider id is required")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate provider id '%s'", p.ID)
		}
		seen[p.ID] = true
		if p.Kind != "coingecko" && p.Kind != "binance" {
			return fmt.Errorf("provider kind must be 'coingecko' or 'binance', got '%s'", p.Kind)
		}
	}
	if c.Exchange.Kind != "paper" && c.Exchange.Kind != "binance" {
		return fmt.Errorf("exchange.kind must be 'paper' or 'binance', got '%s'", c.Exchange.Kind)
	}
	if c.Risk.MinConfidence < 0 || c.Risk.MinConfidence > 1 {
		return fmt.Errorf("risk.min_confidence must be in [0,1]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	return nil
}

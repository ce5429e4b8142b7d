package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Defaults applied when user input is missing or invalid.
const (
	DefaultTargetCount    = 10
	DefaultTargetCurrency = "KES"
)

// Config holds the process-wide run configuration. It is assembled once in
// main and not mutated afterwards.
type Config struct {
	BaseURL        string        `yaml:"base_url" env:"PRICETRACKER_BASE_URL" env-default:"https://books.toscrape.com"`
	RateAPIURL     string        `yaml:"rate_api_url" env:"PRICETRACKER_RATE_API_URL" env-default:"https://api.exchangerate-api.com/v4/latest/GBP"`
	BaseCurrency   string        `yaml:"base_currency" env:"PRICETRACKER_BASE_CURRENCY" env-default:"GBP"`
	CurrencySymbol string        `yaml:"currency_symbol" env:"PRICETRACKER_CURRENCY_SYMBOL" env-default:"£"`
	TargetCurrency string        `yaml:"target_currency" env:"PRICETRACKER_TARGET_CURRENCY" env-default:"KES"`
	TargetCount    int           `yaml:"target_count" env:"PRICETRACKER_TARGET_COUNT" env-default:"10"`
	FallbackRate   float64       `yaml:"fallback_rate" env:"PRICETRACKER_FALLBACK_RATE" env-default:"180.0"`
	Timeout        time.Duration `yaml:"timeout" env:"PRICETRACKER_TIMEOUT" env-default:"5s"`
	FailureDelay   time.Duration `yaml:"failure_delay" env:"PRICETRACKER_FAILURE_DELAY" env-default:"1s"`
	OutputFile     string        `yaml:"output_file" env:"PRICETRACKER_OUTPUT" env-default:"output/converted_prices.csv"`
	ChartFile      string        `yaml:"chart_file" env:"PRICETRACKER_CHART_FILE" env-default:"output/price_chart.html"`
	Chart          bool          `yaml:"chart" env:"PRICETRACKER_CHART" env-default:"false"`
	UserAgent      string        `yaml:"user_agent" env:"PRICETRACKER_USER_AGENT" env-default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"`
	MetricsAddr    string        `yaml:"metrics_addr" env:"PRICETRACKER_METRICS_ADDR" env-default:""`
	Verbose        bool          `yaml:"verbose" env:"PRICETRACKER_VERBOSE" env-default:"false"`
}

// DefaultConfig returns the documented defaults for the demo target. The
// env-default tags are the single source of default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads a .env file when present, then an optional YAML config file,
// then environment overrides. An empty path skips the file stage.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Normalize applies the documented fallbacks for user-supplied values.
func (c *Config) Normalize() {
	c.TargetCount = NormalizeCount(c.TargetCount)
	c.TargetCurrency = NormalizeCurrency(c.TargetCurrency)
	c.BaseCurrency = strings.ToUpper(strings.TrimSpace(c.BaseCurrency))
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.RateAPIURL == "" {
		return fmt.Errorf("rate API URL cannot be empty")
	}
	rateURL, err := url.Parse(c.RateAPIURL)
	if err != nil {
		return fmt.Errorf("invalid rate API URL: %w", err)
	}
	if rateURL.Host == "" {
		return fmt.Errorf("rate API URL must include a host")
	}

	if c.TargetCount <= 0 {
		return fmt.Errorf("target count must be positive")
	}
	if c.TargetCurrency == "" {
		return fmt.Errorf("target currency cannot be empty")
	}
	if c.BaseCurrency == "" {
		return fmt.Errorf("base currency cannot be empty")
	}
	if c.CurrencySymbol == "" {
		return fmt.Errorf("currency symbol cannot be empty")
	}
	if c.FallbackRate <= 0 {
		return fmt.Errorf("fallback rate must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FailureDelay < 0 {
		return fmt.Errorf("failure delay cannot be negative")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.Chart && c.ChartFile == "" {
		return fmt.Errorf("chart file cannot be empty when charting is enabled")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// NormalizeCount maps non-positive counts to the default.
func NormalizeCount(n int) int {
	if n <= 0 {
		return DefaultTargetCount
	}
	return n
}

// ParseCount parses user input, falling back to the default on non-numeric
// or non-positive values.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultTargetCount
	}
	return NormalizeCount(n)
}

// NormalizeCurrency upper-cases a currency code, falling back to the default
// when the input is empty.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultTargetCurrency
	}
	return code
}

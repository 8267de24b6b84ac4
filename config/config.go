package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger     `mapstructure:"logger"`
	API        API        `mapstructure:"api"`
	MarketData MarketData `mapstructure:"market_data"`
	Gemini     Gemini     `mapstructure:"gemini"`
	Serper     Serper     `mapstructure:"serper"`
	Scraper    Scraper    `mapstructure:"scraper"`
	Analyzer   Analyzer   `mapstructure:"analyzer"`
	Cache      Cache      `mapstructure:"cache"`
	Task       Task       `mapstructure:"task"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type MarketData struct {
	BaseURL          string        `mapstructure:"base_url"`
	BaseTimeout      time.Duration `mapstructure:"base_timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
	MaxRetries       int           `mapstructure:"max_retries"`
	CacheExpiration  time.Duration `mapstructure:"cache_expiration"`
}

type Gemini struct {
	APIKey             string        `mapstructure:"api_key"`
	Model              string        `mapstructure:"model"`
	MaxTokenPerMinutes int           `mapstructure:"max_token_per_minutes"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

type Serper struct {
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	BaseTimeout      time.Duration `mapstructure:"base_timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
}

type Scraper struct {
	BaseTimeout   time.Duration `mapstructure:"base_timeout"`
	MaxPageLength int           `mapstructure:"max_page_length"`
	MaxPages      int           `mapstructure:"max_pages"`
}

type Analyzer struct {
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Task struct {
	Retention     time.Duration `mapstructure:"retention"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

func Load() (*Config, error) {
	// .env is optional; real environments inject variables directly.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8000)
	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.base_timeout", 30*time.Second)
	viper.SetDefault("market_data.max_request_per_min", 60)
	viper.SetDefault("market_data.max_retries", 3)
	viper.SetDefault("market_data.cache_expiration", 5*time.Minute)
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.max_token_per_minutes", 1000000)
	viper.SetDefault("gemini.timeout", 60*time.Second)
	viper.SetDefault("serper.base_url", "https://google.serper.dev")
	viper.SetDefault("serper.base_timeout", 20*time.Second)
	viper.SetDefault("serper.max_request_per_min", 60)
	viper.SetDefault("scraper.base_timeout", 20*time.Second)
	viper.SetDefault("scraper.max_page_length", 5000)
	viper.SetDefault("scraper.max_pages", 5)
	viper.SetDefault("analyzer.max_concurrency", 3)
	viper.SetDefault("analyzer.timeout_duration", 5*time.Minute)
	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("task.retention", time.Hour)
	viper.SetDefault("task.sweep_schedule", "@every 10m")
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	LogLevel     string   `mapstructure:"log_level"`
	LogFile      string   `mapstructure:"log_file"`
	MaxUploadMB  int      `mapstructure:"max_upload_mb"`

	Store  string `mapstructure:"store"` // sqlite | memory
	DBPath string `mapstructure:"db_path"`

	FuzzyThreshold int           `mapstructure:"fuzzy_threshold"`
	BatchWorkers   int           `mapstructure:"batch_workers"`
	FuzzyBudget    time.Duration `mapstructure:"fuzzy_budget"` // 0 = без лимита

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	Pprof bool `mapstructure:"pprof"`
}

// Load: значения по умолчанию, затем необязательный config.yaml, затем переменные окружения.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowOrigins = splitOrigins(cfg.AllowOrigins)
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/wsm-warehouse.log")
	v.SetDefault("max_upload_mb", 256)

	v.SetDefault("store", "sqlite")
	v.SetDefault("db_path", "data/wsm.db")

	v.SetDefault("fuzzy_threshold", 80)
	v.SetDefault("batch_workers", 4)
	v.SetDefault("fuzzy_budget", "0s")

	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)

	v.SetDefault("pprof", false)
}

// "a, b,,c" → [a b c]
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

func validate(c Config) error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", c.Port)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold must be in 0..100, got %d", c.FuzzyThreshold)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.BatchWorkers)
	}
	if c.FuzzyBudget < 0 {
		return fmt.Errorf("fuzzy budget cannot be negative")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be at least 1 MB")
	}
	if c.Store != "sqlite" && c.Store != "memory" {
		return fmt.Errorf("store must be 'sqlite' or 'memory', got: %s", c.Store)
	}
	if c.Store == "sqlite" && c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required when store is 'sqlite'")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

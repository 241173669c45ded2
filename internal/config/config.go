package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	DefaultModel      string `mapstructure:"default_model"`
	MaxTokens         int    `mapstructure:"max_tokens"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	RequestsPerDay    int    `mapstructure:"requests_per_day"`
	DataDir           string `mapstructure:"data_dir"`
}

var cfg *Config

func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dataDir := filepath.Join(homeDir, ".pplx-mcp")

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	viper.SetDefault("base_url", "https://api.perplexity.ai")
	viper.SetDefault("default_model", "sonar")
	viper.SetDefault("max_tokens", 1000)
	viper.SetDefault("timeout_seconds", 60)
	viper.SetDefault("requests_per_minute", 50)
	viper.SetDefault("requests_per_day", 1000)
	viper.SetDefault("data_dir", dataDir)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dataDir)

	viper.SetEnvPrefix("PPLX")
	viper.AutomaticEnv()
	// The credential lives in the conventional variable, not PPLX_API_KEY.
	viper.BindEnv("api_key", "PERPLEXITY_API_KEY")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return err
	}

	return nil
}

func Get() *Config {
	if cfg == nil {
		Init()
	}
	return cfg
}

func GetDataDir() string {
	return Get().DataDir
}

func GetUsageDB() string {
	return filepath.Join(GetDataDir(), "usage.db")
}

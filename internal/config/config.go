// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// NewConfig loads configuration from environment variables using viper with
// typed defaults and validation. A .env file in the working directory seeds
// variables that are not already set.
func NewConfig() (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for key, value := range envMap {
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, value)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "warn")

	v.SetDefault("http.request_timeout", 15*time.Second)

	v.SetDefault("github.base_url", "https://github.com")
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.rate_limit_rps", 10)
	v.SetDefault("github.rate_limit_burst", 5)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"http.request_timeout",
		"github.base_url",
		"github.api_url",
		"github.api_token",
		"github.branch",
		"github.app_id",
		"github.app_private_key_path",
		"github.app_installation_id",
		"github.rate_limit_rps",
		"github.rate_limit_burst",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

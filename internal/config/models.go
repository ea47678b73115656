package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds everything the tool needs to talk to GitHub and log about it.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	GitHub  GitHubConfig  `mapstructure:"github"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type GitHubConfig struct {
	// BaseURL is the web UI, used to build pull request links in markdown
	// output. APIURL is the REST endpoint. Both are overridable for GitHub
	// Enterprise installations.
	BaseURL  string `mapstructure:"base_url"`
	APIURL   string `mapstructure:"api_url"`
	APIToken string `mapstructure:"api_token"`
	Branch   string `mapstructure:"branch"`

	// GitHub App credentials, used to mint an installation token when no
	// personal token is configured.
	AppID             string `mapstructure:"app_id"`
	AppPrivateKeyPath string `mapstructure:"app_private_key_path"`
	AppInstallationID string `mapstructure:"app_installation_id"`

	RateLimitRPS   int `mapstructure:"rate_limit_rps"`
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

func (c *Config) Validate() error {
	if c.GitHub.BaseURL == "" {
		return errors.New("github base url is required")
	}
	if c.GitHub.APIURL == "" {
		return errors.New("github api url is required")
	}
	if c.GitHub.Branch == "" {
		return errors.New("github branch is required")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s", c.HTTP.RequestTimeout)
	}
	if c.GitHub.RateLimitRPS < 0 || c.GitHub.RateLimitBurst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	return nil
}

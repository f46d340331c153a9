package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gofaas/internal/errors"
)

// Config represents the complete client configuration
type Config struct {
	API  APIConfig  `mapstructure:"api"`
	Auth AuthConfig `mapstructure:"auth"`
	Log  LogConfig  `mapstructure:"log"`
}

// APIConfig holds the remote FaaS endpoints and protocol settings
type APIConfig struct {
	ValidateURL    string        `mapstructure:"validate_url"`
	ModelURL       string        `mapstructure:"model_url"`
	ProjectsURL    string        `mapstructure:"projects_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
}

// AuthConfig tells the token providers where to look
type AuthConfig struct {
	TokenFile string `mapstructure:"token_file"`
	Domain    string `mapstructure:"domain"`
	TokenEnv  string `mapstructure:"token_env"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DefaultValidateURL = "https://run-prod-4casthub-api-faas-validation-zdfk3g7cpq-ue.a.run.app/api/v1/validate"
	DefaultModelURL    = "https://run-prod-4casthub-faas-modelling-api-zdfk3g7cpq-ue.a.run.app/api/v1/projects"
	DefaultProjectsURL = "https://fourcasthub-faas-prod.azurewebsites.net/api/v1/projects"
	DefaultUserAgent   = "gofaas/1.5.1"
	DefaultDomain      = "4intelligence.auth0.com"
)

// Load reads .env (if present), an optional faas.yaml and FAAS_* environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("faas")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".gofaas"))
	}
	if path := os.Getenv("FAAS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FAAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.validate_url", DefaultValidateURL)
	v.SetDefault("api.model_url", DefaultModelURL)
	v.SetDefault("api.projects_url", DefaultProjectsURL)
	v.SetDefault("api.user_agent", DefaultUserAgent)
	v.SetDefault("api.request_timeout", 1200*time.Second)
	v.SetDefault("api.max_attempts", 5)
	v.SetDefault("api.retry_delay", time.Second)

	v.SetDefault("auth.token_file", defaultTokenFile())
	v.SetDefault("auth.domain", DefaultDomain)
	v.SetDefault("auth.token_env", "FAAS_ACCESS_TOKEN")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the built-in configuration without reading files or environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	config, _ := fromViper(v)
	return config
}

func validateConfig(config *Config) error {
	if config.API.ValidateURL == "" {
		return errors.ConfigInvalid("api.validate_url is required")
	}
	if config.API.ModelURL == "" {
		return errors.ConfigInvalid("api.model_url is required")
	}
	if config.API.ProjectsURL == "" {
		return errors.ConfigInvalid("api.projects_url is required")
	}
	if config.API.MaxAttempts < 1 {
		return errors.ConfigInvalid("api.max_attempts must be at least 1")
	}
	if config.API.RequestTimeout <= 0 {
		return errors.ConfigInvalid("api.request_timeout must be positive")
	}
	if config.API.RetryDelay < 0 {
		return errors.ConfigInvalid("api.retry_delay cannot be negative")
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".gofaas", "config.json")
}

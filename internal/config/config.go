package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Languages LanguagesConfig `mapstructure:"languages"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// AssetsConfig controls how storybook media is fetched from the asset origin.
type AssetsConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	RetryAttempts uint          `mapstructure:"retry_attempts" validate:"min=1"`
}

type CacheConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LanguagesConfig holds the allow-list and the policy deciding which languages are ready.
type LanguagesConfig struct {
	Base                  string   `mapstructure:"base" validate:"required,langcode"`
	Secondary             string   `mapstructure:"secondary" validate:"required,langcode,nefield=Base"`
	Supported             []string `mapstructure:"supported" validate:"required,dive,langcode"`
	ReadyPolicy           string   `mapstructure:"ready_policy" validate:"oneof=always threshold"`
	ReadyThresholdPercent float64  `mapstructure:"ready_threshold_percent" validate:"min=0,max=100"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/toddlingo")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "toddlingo")
	v.SetDefault("database.username", "user")
	v.SetDefault("assets.base_url", "")
	v.SetDefault("assets.fetch_timeout", 20*time.Second)
	v.SetDefault("assets.retry_attempts", 1)
	v.SetDefault("cache.path", filepath.Join("cache", "assets.db"))
	v.SetDefault("languages.base", "ko")
	v.SetDefault("languages.secondary", "en")
	v.SetDefault("languages.supported", []string{"ko", "en", "ja", "zh", "es", "fr", "de", "vi", "th"})
	v.SetDefault("languages.ready_policy", "always")
	v.SetDefault("languages.ready_threshold_percent", 10.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Secrets and deployment-specific values come from the environment
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("assets.base_url", "ASSETS_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind ASSETS_BASE_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	normalizeLanguages(&cfg.Languages)

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// normalizeLanguages lowercases codes and makes sure both defaults are part of the allow-list.
func normalizeLanguages(cfg *LanguagesConfig) {
	cfg.Base = strings.ToLower(strings.TrimSpace(cfg.Base))
	cfg.Secondary = strings.ToLower(strings.TrimSpace(cfg.Secondary))

	seen := make(map[string]bool, len(cfg.Supported)+2)
	supported := make([]string, 0, len(cfg.Supported)+2)
	for _, code := range append([]string{cfg.Base, cfg.Secondary}, cfg.Supported...) {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		supported = append(supported, code)
	}
	cfg.Supported = supported
}

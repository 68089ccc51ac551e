package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:5173"},
			},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "toddlingo",
			Username: "user",
		},
		Assets: AssetsConfig{
			FetchTimeout:  20 * time.Second,
			RetryAttempts: 1,
		},
		Cache: CacheConfig{
			Path: filepath.Join("cache", "assets.db"),
		},
		Languages: LanguagesConfig{
			Base:                  "ko",
			Secondary:             "en",
			Supported:             []string{"ko", "en", "ja", "zh", "es", "fr", "de", "vi", "th"},
			ReadyPolicy:           "always",
			ReadyThresholdPercent: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "custom values",
			configContent: `server:
  port: 9090
assets:
  base_url: https://cdn.example.com
  fetch_timeout: 5s
  retry_attempts: 3
cache:
  path: custom/assets.db
languages:
  base: en
  secondary: ko
  supported: [fr, ja]
  ready_policy: threshold
  ready_threshold_percent: 25
log:
  level: debug
  format: json
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9090
				cfg.Assets = AssetsConfig{
					BaseURL:       "https://cdn.example.com",
					FetchTimeout:  5 * time.Second,
					RetryAttempts: 3,
				}
				cfg.Cache.Path = "custom/assets.db"
				cfg.Languages = LanguagesConfig{
					Base:                  "en",
					Secondary:             "ko",
					Supported:             []string{"en", "ko", "fr", "ja"},
					ReadyPolicy:           "threshold",
					ReadyThresholdPercent: 25,
				}
				cfg.Log = LogConfig{Level: "debug", Format: "json"}
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `database:
  host: db.example.com
  database: kids
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.Host = "db.example.com"
				cfg.Database.Database = "kids"
				return cfg
			},
		},
		{
			name:          "environment overrides secrets",
			configContent: "",
			env: map[string]string{
				"DB_PASSWORD":     "secret",
				"ASSETS_BASE_URL": "https://assets.example.com",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.Password = "secret"
				cfg.Assets.BaseURL = "https://assets.example.com"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  port: 8080
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name: "unknown ready policy",
			configContent: `languages:
  ready_policy: sometimes
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "ready_policy"},
		},
		{
			name: "region subtag is not a language code",
			configContent: `languages:
  supported: [en-US]
`,
			wantErr:           true,
			wantErrorContains: []string{"must be a two or three letter language code"},
		},
		{
			name: "base and secondary must differ",
			configContent: `languages:
  base: en
  secondary: en
`,
			wantErr:           true,
			wantErrorContains: []string{"secondary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "toddlingo.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

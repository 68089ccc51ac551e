// Package testutil provides shared test helpers for config files and stored payloads.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ConfigOption configures optional fields when creating a config file.
type ConfigOption func(*testConfig)

type testConfig struct {
	assetsBaseURL string
	readyPolicy   string
	threshold     float64
}

// WithAssetsBaseURL sets assets.base_url, typically to an httptest server.
func WithAssetsBaseURL(url string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.assetsBaseURL = url
	}
}

// WithThresholdPolicy switches the ready policy to threshold with the given percent.
func WithThresholdPolicy(percent float64) ConfigOption {
	return func(cfg *testConfig) {
		cfg.readyPolicy = "threshold"
		cfg.threshold = percent
	}
}

// SetupTestConfig writes a config file whose cache lives under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{
		readyPolicy: "always",
		threshold:   10,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	configContent := fmt.Sprintf(`database:
  host: 127.0.0.1
  port: 3306
  database: toddlingo_test
  username: test
assets:
  base_url: %q
  fetch_timeout: 2s
  retry_attempts: 1
cache:
  path: %s
languages:
  base: ko
  secondary: en
  supported: [ko, en, ja, fr, es]
  ready_policy: %s
  ready_threshold_percent: %v
log:
  level: warn
`,
		cfg.assetsBaseURL,
		filepath.Join(tmpDir, "cache", "assets.db"),
		cfg.readyPolicy,
		cfg.threshold,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// Quote returns s as a JSON string literal, adding one layer of textual encoding.
func Quote(t *testing.T, s string) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

// Encoded wraps object in the given number of textual layers.
func Encoded(t *testing.T, object string, layers int) json.RawMessage {
	t.Helper()
	value := object
	for i := 0; i < layers; i++ {
		value = Quote(t, value)
	}
	return json.RawMessage(value)
}

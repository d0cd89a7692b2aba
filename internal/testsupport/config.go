package testsupport

import (
	"path/filepath"
	"testing"

	"kouri/internal/config"
)

// Test credentials used by NewConfig.
const (
	APIKey = "sk-test-key-0123456789"
	Model  = "demo-model"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns a complete record pointing at baseURL with the test key
// and model, then applies opts.
func NewConfig(baseURL string, opts ...ConfigOption) config.Config {
	cfg := config.Default()
	cfg.BaseURL = baseURL
	cfg.APIKey = APIKey
	cfg.Model = Model
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithAPIKey overrides the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *config.Config) {
		c.APIKey = key
	}
}

// WithImageSize overrides image_config.generate_size.
func WithImageSize(size string) ConfigOption {
	return func(c *config.Config) {
		c.ImageConfig.GenerateSize = size
	}
}

// WithTimeout sets request_timeout_seconds.
func WithTimeout(seconds int) ConfigOption {
	return func(c *config.Config) {
		c.RequestTimeoutSeconds = seconds
	}
}

// WriteConfig saves cfg as api_config.json in a fresh temp directory and
// returns the file path.
func WriteConfig(t testing.TB, cfg config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api_config.json")
	if err := config.NewStore(path).Save(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}

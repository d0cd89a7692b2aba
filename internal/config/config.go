package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"kouri/internal/fileutil"
)

// ErrMalformed marks a configuration file that exists but cannot be decoded.
var ErrMalformed = errors.New("configuration format error")

// Theme selects the colour scheme used by the CLI host.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ImageConfig contains image generation settings.
type ImageConfig struct {
	GenerateSize string `json:"generate_size" toml:"generate_size"`
}

// Config is the persisted configuration record.
type Config struct {
	BaseURL     string      `json:"real_server_base_url" toml:"real_server_base_url"`
	APIKey      string      `json:"api_key" toml:"api_key"`
	Model       string      `json:"model" toml:"model"`
	ImageConfig ImageConfig `json:"image_config" toml:"image_config"`
	Theme       Theme       `json:"theme" toml:"theme"`
	// RequestTimeoutSeconds bounds chat and image requests. Zero leaves them
	// unbounded.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty" toml:"request_timeout_seconds,omitempty"`
}

// RequestTimeout returns the configured client-side timeout, zero when unbounded.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ImageSize returns the generation size in canonical WxH form, falling back to
// the default when the stored value is blank.
func (c Config) ImageSize() string {
	size := NormalizeSize(c.ImageConfig.GenerateSize)
	if size == "" {
		return defaultGenerateSize
	}
	return size
}

// FormatError reports a configuration file that could not be decoded.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformed, e.Path, e.Err)
}

func (e *FormatError) Unwrap() []error { return []error{ErrMalformed, e.Err} }

// Store reads and writes one configuration file.
type Store struct {
	path string
}

// NewStore returns a store bound to path. The path is used as given.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Open resolves the configuration location and returns a store for it. An
// explicit path wins; otherwise ./api_config.json is used when it exists, and
// the per-user default path when it does not.
func Open(path string) (*Store, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	return NewStore(resolved), nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the backing file is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load returns the stored record. The returned Config is always usable: when
// the file is absent the defaults are returned with a nil error, and when the
// file cannot be read or decoded the defaults are returned with an error.
// Missing keys keep their default values.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := decode(s.path, data, &cfg); err != nil {
		return Default(), &FormatError{Path: s.path, Err: err}
	}
	return cfg, nil
}

// Save overwrites the backing file with cfg.
func (s *Store) Save(cfg Config) error {
	data, err := encode(s.path, cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := fileutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func encode(path string, cfg Config) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(cfg)
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DefaultConfigPath returns the absolute path to the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return expandPath(strings.TrimSpace(path))
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, nil
	}
	return DefaultConfigPath()
}

// CreateSample writes the default record to path.
func CreateSample(path string) error {
	return NewStore(path).Save(Default())
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

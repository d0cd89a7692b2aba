package config

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"kouri/internal/services"
)

var sizeSeparators = strings.NewReplacer("×", "x", "X", "x", "*", "x")

// NormalizeSize folds full-width digits and the common multiplication signs so
// that "５１２×５１２" and "512X512" both become "512x512". Blank input stays blank.
func NormalizeSize(value string) string {
	folded := width.Narrow.String(strings.TrimSpace(value))
	folded = sizeSeparators.Replace(folded)
	return strings.Join(strings.Fields(folded), "")
}

// ParseSize splits a WxH pixel specification.
func ParseSize(value string) (int, int, error) {
	normalized := NormalizeSize(value)
	w, h, ok := strings.Cut(normalized, "x")
	if !ok {
		return 0, 0, fmt.Errorf("image size %q: expected WxH", value)
	}
	wd, err := strconv.Atoi(w)
	if err != nil || wd <= 0 {
		return 0, 0, fmt.Errorf("image size %q: invalid width", value)
	}
	ht, err := strconv.Atoi(h)
	if err != nil || ht <= 0 {
		return 0, 0, fmt.Errorf("image size %q: invalid height", value)
	}
	return wd, ht, nil
}

// ParseTheme validates a theme name.
func ParseTheme(value string) (Theme, error) {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(value))); theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		return theme, nil
	default:
		return "", fmt.Errorf("theme %q: expected light, dark or system", value)
	}
}

// SettableKeys lists the keys accepted by Set, in display order.
var SettableKeys = []string{"base_url", "api_key", "model", "image_size", "theme", "request_timeout_seconds"}

// Set updates one field from user input. Values are trimmed; the image size is
// normalized to WxH form before it is stored.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "base_url", "url", "real_server_base_url":
		c.BaseURL = value
	case "api_key", "key":
		c.APIKey = value
	case "model":
		c.Model = value
	case "image_size", "generate_size", "size":
		if _, _, err := ParseSize(value); err != nil {
			return services.Wrap(services.ErrValidation, "config", "set", "", err)
		}
		c.ImageConfig.GenerateSize = NormalizeSize(value)
	case "theme":
		theme, err := ParseTheme(value)
		if err != nil {
			return services.Wrap(services.ErrValidation, "config", "set", "", err)
		}
		c.Theme = theme
	case "request_timeout_seconds", "timeout":
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return services.Wrap(services.ErrValidation, "config", "set", fmt.Sprintf("timeout %q must be a non-negative integer", value), nil)
		}
		c.RequestTimeoutSeconds = seconds
	default:
		return services.Wrap(services.ErrValidation, "config", "set",
			fmt.Sprintf("unknown key %q (expected one of %s)", key, strings.Join(SettableKeys, ", ")), nil)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"kouri/internal/services"
)

// ErrIncomplete marks a record missing the base URL, API key or model.
var ErrIncomplete = errors.New("请填写URL地址、API 密钥和模型名称")

// Missing lists the required fields that are blank.
func (c Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "real_server_base_url")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if strings.TrimSpace(c.Model) == "" {
		missing = append(missing, "model")
	}
	return missing
}

// Complete returns an error wrapping ErrIncomplete and services.ErrConfiguration
// when any required field is blank.
func (c Config) Complete() error {
	missing := c.Missing()
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "config", "check",
		"missing "+strings.Join(missing, ", "), ErrIncomplete)
}

// Validate checks field shapes. A record can be valid and still incomplete.
func (c Config) Validate() error {
	var errs []error
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("real_server_base_url: %w", err))
		case parsed.Scheme != "http" && parsed.Scheme != "https":
			errs = append(errs, fmt.Errorf("real_server_base_url: scheme must be http or https, got %q", parsed.Scheme))
		case parsed.Host == "":
			errs = append(errs, errors.New("real_server_base_url: host is required"))
		}
	}
	if strings.TrimSpace(c.ImageConfig.GenerateSize) != "" {
		if _, _, err := ParseSize(c.ImageConfig.GenerateSize); err != nil {
			errs = append(errs, fmt.Errorf("image_config.generate_size: %w", err))
		}
	}
	if _, err := ParseTheme(string(c.Theme)); err != nil {
		errs = append(errs, err)
	}
	if c.RequestTimeoutSeconds < 0 {
		errs = append(errs, errors.New("request_timeout_seconds must be >= 0"))
	}
	if len(errs) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "config", "validate", "", errors.Join(errs...))
}

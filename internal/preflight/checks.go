package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"kouri/internal/config"
	"kouri/internal/probe"
	"kouri/internal/services"
	"kouri/internal/services/chatapi"
)

const modelsPath = "v1/models"

// CheckConfigFile reports whether the configuration file exists and holds a
// well-formed record.
func CheckConfigFile(store *config.Store, cfg config.Config, loadErr error) Result {
	const name = "Config file"
	path := store.Path()
	if loadErr != nil {
		if errors.Is(loadErr, config.ErrMalformed) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: malformed, defaults in use)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, loadErr)}
	}
	if !store.Exists() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist; run `kouri config init`)", path)}
	}
	if err := cfg.Validate(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCredentials verifies that url, key, and model are set and that the
// key can be sent as a header value.
func CheckCredentials(cfg config.Config) Result {
	const name = "Credentials"
	if missing := cfg.Missing(); len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	if err := chatapi.NewClient(cfg).Ready(); err != nil {
		if services.KindOf(err) == services.KindCredential {
			return Result{Name: name, Detail: "api key contains whitespace or non-ASCII characters"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s", strings.TrimSpace(cfg.Model))}
}

// CheckEndpoint verifies that the base URL answers HTTP within probe.Timeout.
func CheckEndpoint(ctx context.Context, baseURL string) Result {
	const name = "Endpoint"
	result := probe.Probe(ctx, baseURL)
	if !result.OK {
		return Result{Name: name, Detail: summarizeProbeError(result)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable in %.2f ms (HTTP %d)", result.Millis(), result.StatusCode)}
}

// CheckAuth verifies the key against the model listing endpoint.
func CheckAuth(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Authentication"

	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	endpoint, err := url.JoinPath(base, modelsPath)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, probe.Timeout)
	defer cancel()

	client := &http.Client{Timeout: probe.Timeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", services.TransportFailure("auth check", err).Kind)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "api key accepted"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	case http.StatusNotFound:
		// Some compatible endpoints do not list models; the key is checked on
		// the first real request instead.
		return Result{Name: name, Passed: true, Detail: "model listing unavailable (skipped)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

func summarizeProbeError(result probe.Result) string {
	if result.IsTimeout() {
		return fmt.Sprintf("timed out after %s (endpoint unresponsive)", probe.Timeout.Round(time.Second))
	}
	if result.Err == nil {
		return "unreachable"
	}
	switch services.KindOf(result.Err) {
	case services.KindConnection:
		return "connection failed (check url, network, firewall)"
	case services.KindTLS:
		return "certificate verification failed"
	}
	return result.Err.Error()
}

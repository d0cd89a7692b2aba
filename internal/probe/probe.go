// Package probe measures round-trip latency to the configured base URL. It is
// a reachability check only and is independent of the chat completion test.
package probe

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"kouri/internal/services"
)

// Timeout bounds a single probe.
const Timeout = 5 * time.Second

// Result is the outcome of one probe.
type Result struct {
	URL        string
	OK         bool
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Millis reports the latency in milliseconds rounded to two decimals.
func (r Result) Millis() float64 {
	return math.Round(float64(r.Latency.Microseconds())/10) / 100
}

// Prober issues probes with a fixed HTTP client.
type Prober struct {
	client *http.Client
	now    func() time.Time
}

// New returns a Prober using a client bounded by Timeout. A nil client is
// replaced by the default one; a client without a timeout gets Timeout.
func New(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	if client.Timeout <= 0 {
		copied := *client
		copied.Timeout = Timeout
		client = &copied
	}
	return &Prober{client: client, now: time.Now}
}

// Probe issues a GET to baseURL and records elapsed wall-clock time. Any HTTP
// response counts as reachable; only transport failures set OK to false.
func (p *Prober) Probe(ctx context.Context, baseURL string) Result {
	const op = "probe"
	result := Result{URL: strings.TrimSpace(baseURL)}
	if result.URL == "" {
		result.Err = services.Wrap(services.ErrConfiguration, "probe", "", "base url required", nil)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
	if err != nil {
		result.Err = services.Wrap(services.ErrValidation, "probe", "", "invalid base url", err)
		return result
	}

	started := p.now()
	resp, err := p.client.Do(req)
	result.Latency = p.now().Sub(started)
	if err != nil {
		result.Err = services.TransportFailure(op, err)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	result.OK = true
	result.StatusCode = resp.StatusCode
	return result
}

// Probe runs a single probe with the default client.
func Probe(ctx context.Context, baseURL string) Result {
	return New(nil).Probe(ctx, baseURL)
}

// IsTimeout reports whether the probe failed by exceeding Timeout.
func (r Result) IsTimeout() bool {
	return r.Err != nil && (services.KindOf(r.Err) == services.KindTimeout || errors.Is(r.Err, services.ErrTimeout))
}

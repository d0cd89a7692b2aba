package chatapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"kouri/internal/config"
	"kouri/internal/logging"
	"kouri/internal/services"
)

const (
	chatCompletionsPath = "v1/chat/completions"
	imageGeneratePath   = "v1/images/generate"
)

// Client talks to one configured endpoint.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger; requests are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client from the configuration record. The record is
// not validated here; call Ready before issuing requests when the caller needs
// the refusal without a network attempt.
func NewClient(cfg config.Config, opts ...Option) *Client {
	client := &Client{
		cfg: config.Config{
			BaseURL:               strings.TrimSpace(cfg.BaseURL),
			APIKey:                strings.TrimSpace(cfg.APIKey),
			Model:                 strings.TrimSpace(cfg.Model),
			ImageConfig:           cfg.ImageConfig,
			Theme:                 cfg.Theme,
			RequestTimeoutSeconds: cfg.RequestTimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: cfg.RequestTimeout()}
	}
	client.logger = logging.NewComponentLogger(client.logger, "chatapi")
	return client
}

// Ready reports whether the client can issue requests: the configuration must
// be complete and the key must be sendable as a header value.
func (c *Client) Ready() error {
	if err := c.cfg.Complete(); err != nil {
		return err
	}
	return checkAPIKey(c.cfg.APIKey)
}

// TestStandardAPI posts the fixed test message to the chat completions path
// and returns the raw response.
func (c *Client) TestStandardAPI(ctx context.Context) (*RawResponse, error) {
	const op = "chat test"
	if err := c.Ready(); err != nil {
		return nil, err
	}
	payload := chatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: StandardTestMessage}},
	}
	return c.post(ctx, op, chatCompletionsPath, payload)
}

// GenerateCharacterProfile asks the model for a character profile built from
// description and returns the assistant text.
func (c *Client) GenerateCharacterProfile(ctx context.Context, description string) (string, error) {
	const op = "generate profile"
	if strings.TrimSpace(description) == "" {
		return "", services.Wrap(services.ErrValidation, "chatapi", op, "description required", nil)
	}
	return c.completeText(ctx, op, CharacterProfilePrompt(description))
}

// PolishCharacterProfile rewrites profile following instruction.
func (c *Client) PolishCharacterProfile(ctx context.Context, profile, instruction string) (string, error) {
	const op = "polish profile"
	if strings.TrimSpace(profile) == "" {
		return "", services.Wrap(services.ErrValidation, "chatapi", op, "profile required", nil)
	}
	if strings.TrimSpace(instruction) == "" {
		return "", services.Wrap(services.ErrValidation, "chatapi", op, "instruction required", nil)
	}
	return c.completeText(ctx, op, PolishProfilePrompt(profile, instruction))
}

// RecognizeImage sends the image at imagePath inline as a base64 data URL and
// returns the parsed completion. Use Completion.FirstContent for the text.
func (c *Client) RecognizeImage(ctx context.Context, imagePath string) (Completion, error) {
	const op = "recognize image"
	var completion Completion
	if err := c.Ready(); err != nil {
		return completion, err
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return completion, fmt.Errorf("%s: read image: %w", op, err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: RecognizeImagePrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encoded}},
			},
		}},
	}
	raw, err := c.post(ctx, op, chatCompletionsPath, payload)
	if err != nil {
		return completion, err
	}
	if err := json.Unmarshal(raw.Body, &completion); err != nil {
		return completion, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return completion, nil
}

// GenerateImage requests one image for prompt at the configured size and
// returns its URL. Fetching the image is left to the caller.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	const op = "generate image"
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "chatapi", op, "prompt required", nil)
	}
	if err := c.Ready(); err != nil {
		return "", err
	}
	payload := imageGenerationRequest{
		Prompt: prompt,
		N:      1,
		Size:   c.cfg.ImageSize(),
	}
	raw, err := c.post(ctx, op, imageGeneratePath, payload)
	if err != nil {
		return "", err
	}
	var parsed imageGenerationResponse
	if err := json.Unmarshal(raw.Body, &parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if len(parsed.Data) == 0 || strings.TrimSpace(parsed.Data[0].URL) == "" {
		return "", &ShapeError{Path: "data[0].url", Snippet: summarizePayloadSnippet(string(raw.Body))}
	}
	return parsed.Data[0].URL, nil
}

func (c *Client) completeText(ctx context.Context, op, prompt string) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}
	payload := chatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	raw, err := c.post(ctx, op, chatCompletionsPath, payload)
	if err != nil {
		return "", err
	}
	var completion Completion
	if err := json.Unmarshal(raw.Body, &completion); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	content, err := completion.FirstContent()
	if err != nil {
		var shape *ShapeError
		if errors.As(err, &shape) {
			shape.Snippet = summarizePayloadSnippet(string(raw.Body))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return content, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any) (*RawResponse, error) {
	logger := logging.WithContext(ctx, c.logger)

	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("%s: build url: %w", op, err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	logger.Debug("sending request",
		logging.String("endpoint", endpoint),
		logging.String("model", c.cfg.Model),
		logging.Int("body_bytes", len(encoded)),
	)
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.TransportFailure(op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.TransportFailure(op, err)
	}
	logger.Debug("response received",
		logging.Int("status", resp.StatusCode),
		logging.Int("body_bytes", len(body)),
		logging.Duration("elapsed", time.Since(started)),
	)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.StatusFailure(op, resp.StatusCode, body)
	}
	return &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// checkAPIKey rejects keys that cannot travel in an Authorization header or
// were pasted with stray whitespace or non-ASCII characters.
func checkAPIKey(key string) error {
	for i, r := range key {
		if r <= ' ' || r >= 0x7f {
			return services.CredentialFailure("check api key",
				fmt.Errorf("api key contains invalid character %q at offset %d", r, i))
		}
	}
	return nil
}

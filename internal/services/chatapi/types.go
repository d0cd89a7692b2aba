package chatapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage content is either a string or a []contentPart.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type imageGenerationRequest struct {
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Completion is the parsed chat completion response.
type Completion struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one entry of Completion.Choices.
type Choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Message is the assistant message inside a choice. Content is nil when the
// provider omitted it.
type Message struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}

// Usage reports token accounting when the provider includes it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FirstContent returns choices[0].message.content.
func (c Completion) FirstContent() (string, error) {
	if len(c.Choices) == 0 {
		return "", &ShapeError{Path: "choices[0]"}
	}
	msg := c.Choices[0].Message
	if msg == nil {
		return "", &ShapeError{Path: "choices[0].message"}
	}
	if msg.Content == nil {
		return "", &ShapeError{Path: "choices[0].message.content"}
	}
	return *msg.Content, nil
}

// ShapeError reports a successful response that lacks the expected field.
type ShapeError struct {
	Path    string
	Snippet string
}

func (e *ShapeError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("response missing %s", e.Path)
	}
	return fmt.Sprintf("response missing %s (response_snippet=%s)", e.Path, e.Snippet)
}

// RawResponse is the unparsed result of TestStandardAPI.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into a generic value.
func (r *RawResponse) JSON() (any, error) {
	var out any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w (payload snippet: %s)", err, summarizePayloadSnippet(string(r.Body)))
	}
	return out, nil
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := replacer.Replace(trimmed)
	clean = strings.Join(strings.Fields(clean), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

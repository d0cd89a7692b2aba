package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"kouri/internal/testsupport"
)

// fakeEndpoint serves the chat, image, and probe routes of a compatible
// endpoint.
type fakeEndpoint struct {
	server     *httptest.Server
	chatStatus int
	posts      atomic.Int32
	imageBytes []byte
}

func newFakeEndpoint(t *testing.T) *fakeEndpoint {
	t.Helper()
	fe := &fakeEndpoint{imageBytes: testPNG(t)}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		fe.posts.Add(1)
		if fe.chatStatus != 0 {
			w.WriteHeader(fe.chatStatus)
			_, _ = io.WriteString(w, `{"error":"rejected"}`)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeCompletion(t, w, req.Model, replyFor(req.Messages[0].Content))
	})
	mux.HandleFunc("/v1/images/generate", func(w http.ResponseWriter, r *http.Request) {
		fe.posts.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"url": fe.server.URL + "/files/out.png"}},
		})
	})
	mux.HandleFunc("/files/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fe.imageBytes)
	})
	fe.server = httptest.NewServer(mux)
	t.Cleanup(fe.server.Close)
	return fe
}

func replyFor(content json.RawMessage) string {
	var text string
	if err := json.Unmarshal(content, &text); err != nil {
		return "一张测试图片"
	}
	switch {
	case strings.Contains(text, "润色要求"):
		return "POLISHED PROFILE"
	case strings.Contains(text, "角色人设"):
		return "GENERATED PROFILE"
	default:
		return "你好"
	}
}

func writeCompletion(t *testing.T, w http.ResponseWriter, model, content string) {
	t.Helper()
	payload := map[string]any{
		"id":    "cmpl-1",
		"model": model,
		"choices": []any{
			map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	return testsupport.WriteConfig(t, testsupport.NewConfig(baseURL))
}

func runCLI(t *testing.T, configPath, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skillforge/skillforge-backend/internal/logger"
)

func testClient(t *testing.T, baseURL string, maxRetries int) OpenAIClient {
	t.Helper()
	c, err := NewOpenAIClient(logger.NewNop(), OpenAIConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return c
}

func responsesBody(text string) map[string]any {
	return map[string]any{
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(logger.NewNop(), OpenAIConfig{}); err == nil {
		t.Fatalf("expected error without API key")
	}
}

func TestGenerateJSONDecodesOutput(t *testing.T) {
	var gotReq responsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(responsesBody(`{"title": "Loops"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0)
	out, err := c.GenerateJSON(context.Background(), "sys", "usr", "lesson", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out["title"] != "Loops" {
		t.Fatalf("unexpected output %v", out)
	}
	if gotReq.Text == nil {
		t.Fatalf("request must carry a text format")
	}
	format := gotReq.Text.Format
	if format["type"] != "json_schema" || format["strict"] != true || format["name"] != "lesson" {
		t.Fatalf("unexpected format %v", format)
	}
}

func TestGenerateJSONRequiresSchema(t *testing.T) {
	c := testClient(t, "http://localhost:1", 0)
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "", map[string]any{}); err == nil {
		t.Fatalf("expected error without schema name")
	}
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "name", nil); err == nil {
		t.Fatalf("expected error without schema")
	}
}

func TestGenerateTextRetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(responsesBody("hello"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	out, err := c.GenerateText(context.Background(), "sys", "usr", 0)
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "hello" {
		t.Fatalf("unexpected output %q", out)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestGenerateTextGivesUpOn400(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 3)
	_, err := c.GenerateText(context.Background(), "sys", "usr", 0)
	if err == nil {
		t.Fatalf("expected error")
	}
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected http 400 error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("client errors must not be retried, got %d attempts", attempts)
	}
}

func TestGenerateTextEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"output": []any{}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0)
	_, err := c.GenerateText(context.Background(), "sys", "usr", 0)
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestIsRetryableHTTP(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{408, true},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
		{200, false},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tc := range cases {
		if got := isRetryableHTTP(tc.code); got != tc.want {
			t.Fatalf("isRetryableHTTP(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestJitterSleepBounds(t *testing.T) {
	base := 2 * time.Second
	for i := 0; i < 100; i++ {
		d := jitterSleep(base)
		if d < 1600*time.Millisecond || d > 2400*time.Millisecond {
			t.Fatalf("jitter out of +/-20%% band: %v", d)
		}
	}
	if jitterSleep(0) != 0 {
		t.Fatalf("zero base must sleep zero")
	}
}

func TestOutputTextConcatenatesAssistantChunks(t *testing.T) {
	var resp responsesResponse
	raw := `{"output": [
		{"type": "reasoning"},
		{"type": "message", "role": "assistant", "content": [
			{"type": "output_text", "text": "Hello "},
			{"type": "output_text", "text": "world"}
		]}
	]}`
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := resp.outputText(); got != "Hello world" {
		t.Fatalf("unexpected text %q", got)
	}
}

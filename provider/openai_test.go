package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var haikuRequest = CompletionRequest{
	Model: "gpt-3.5-turbo",
	Messages: []Message{
		{Role: RoleSystem, Content: "You are a helpful assistant."},
		{Role: RoleUser, Content: "Write a haiku about recursion in programming."},
	},
}

func completionBody(choices ...map[string]any) map[string]any {
	if choices == nil {
		choices = []map[string]any{}
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-3.5-turbo",
		"choices": choices,
		"usage": map[string]any{
			"prompt_tokens":     24,
			"completion_tokens": 17,
			"total_tokens":      41,
		},
	}
}

func assistantChoice(content string) map[string]any {
	return map[string]any{
		"index":         0,
		"finish_reason": "stop",
		"message": map[string]any{
			"role":    "assistant",
			"content": content,
			"refusal": "",
		},
		"logprobs": nil,
	}
}

func jsonServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProvider_ImplementsProvider(t *testing.T) {
	var _ Provider = (*OpenAIProvider)(nil)
}

func TestNewOpenAIProvider_AllOptions(t *testing.T) {
	p := NewOpenAIProvider(
		WithAPIKey("sk-test-key"),
		WithBaseURL("http://localhost:8080/v1"),
		WithTimeout(10*time.Second),
		WithHTTPClient(&http.Client{}),
	)
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

// TestToOpenAIMessages_AllRoles tests each role type is handled.
func TestToOpenAIMessages_AllRoles(t *testing.T) {
	tests := []struct {
		role Role
	}{
		{RoleSystem},
		{RoleUser},
		{RoleAssistant},
		{Role("custom")},
	}

	for _, tt := range tests {
		msgs := toOpenAIMessages([]Message{{Role: tt.role, Content: "test"}})
		if len(msgs) != 1 {
			t.Errorf("role %q: expected 1 message, got %d", tt.role, len(msgs))
		}
	}
}

func TestToOpenAIMessages_Empty(t *testing.T) {
	if got := toOpenAIMessages(nil); len(got) != 0 {
		t.Fatalf("expected 0 messages, got %d", len(got))
	}
}

func TestComplete_Success(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, completionBody(assistantChoice("Functions call themselves")))

	p := NewOpenAIProvider(WithBaseURL(srv.URL), WithAPIKey("test-key"))

	resp, err := p.Complete(context.Background(), haikuRequest)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Message.Role != RoleAssistant {
		t.Errorf("Role = %q, want %q", resp.Message.Role, RoleAssistant)
	}
	if resp.Message.Content != "Functions call themselves" {
		t.Errorf("Content = %q", resp.Message.Content)
	}
	if resp.Usage.PromptTokens != 24 || resp.Usage.CompletionTokens != 17 {
		t.Errorf("Usage = %+v, want 24/17", resp.Usage)
	}
}

// TestComplete_WirePayload checks what actually reaches the endpoint.
func TestComplete_WirePayload(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotReq  CompletionRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("decoding request body %s: %v", body, err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(assistantChoice("ok")))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(WithBaseURL(srv.URL), WithAPIKey("sk-wire-test"))
	if _, err := p.Complete(context.Background(), haikuRequest); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-wire-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != haikuRequest.Model {
		t.Errorf("model = %q, want %q", gotReq.Model, haikuRequest.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotReq.Messages))
	}
	for i, want := range haikuRequest.Messages {
		if gotReq.Messages[i] != want {
			t.Errorf("messages[%d] = %+v, want %+v", i, gotReq.Messages[i], want)
		}
	}
}

func TestComplete_IgnoresEnvironmentKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-environment")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(assistantChoice("ok")))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(WithBaseURL(srv.URL), WithAPIKey("sk-explicit"))
	if _, err := p.Complete(context.Background(), haikuRequest); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotAuth != "Bearer sk-explicit" {
		t.Errorf("Authorization = %q, want the explicit key", gotAuth)
	}
}

// recordingTransport answers every request with a canned completion and keeps
// the last request it saw.
type recordingTransport struct {
	last *http.Request
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.last = req
	body, _ := json.Marshal(completionBody(assistantChoice("ok")))
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(string(body))),
		Request:    req,
	}, nil
}

func TestComplete_IgnoresEnvironmentEndpoint(t *testing.T) {
	var envHits atomic.Int32
	envSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(assistantChoice("from env")))
	}))
	defer envSrv.Close()

	t.Setenv("OPENAI_BASE_URL", envSrv.URL)
	t.Setenv("OPENAI_ORG_ID", "org-from-environment")
	t.Setenv("OPENAI_PROJECT_ID", "proj-from-environment")

	rt := &recordingTransport{}
	p := NewOpenAIProvider(WithAPIKey("test-key"), WithHTTPClient(&http.Client{Transport: rt}))

	if _, err := p.Complete(context.Background(), haikuRequest); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if n := envHits.Load(); n != 0 {
		t.Fatalf("request was sent to OPENAI_BASE_URL (%d hits)", n)
	}
	if rt.last == nil {
		t.Fatal("no request recorded")
	}
	if got := rt.last.URL.String(); got != DefaultBaseURL+"chat/completions" {
		t.Errorf("URL = %q, want %q", got, DefaultBaseURL+"chat/completions")
	}
	if v := rt.last.Header.Get("OpenAI-Organization"); v != "" {
		t.Errorf("OpenAI-Organization = %q, want unset", v)
	}
	if v := rt.last.Header.Get("OpenAI-Project"); v != "" {
		t.Errorf("OpenAI-Project = %q, want unset", v)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, completionBody())

	p := NewOpenAIProvider(WithBaseURL(srv.URL), WithAPIKey("test-key"))

	_, err := p.Complete(context.Background(), haikuRequest)
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
	if Classify(err) != KindRemote {
		t.Errorf("Classify = %q, want %q", Classify(err), KindRemote)
	}
}

// TestComplete_NoRetries verifies a failing call reaches the server once.
func TestComplete_NoRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(WithBaseURL(srv.URL), WithAPIKey("test-key"))
	if _, err := p.Complete(context.Background(), haikuRequest); err == nil {
		t.Fatal("expected error for HTTP 503")
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected 1 request, got %d", n)
	}
}

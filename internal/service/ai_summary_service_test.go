package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(status int, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func TestAISummaryService_GenerateSummary(t *testing.T) {
	svc := NewAISummaryService("sk-test", "https://openrouter.ai/api/v1", "deepseek/deepseek-chat")

	var captured *http.Request
	var capturedBody chatCompletionRequest
	svc.SetHTTPClient(fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &capturedBody); err != nil {
			return nil, err
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  A concise summary.  "}},
			},
			"usage": map[string]int{"prompt_tokens": 42, "completion_tokens": 12},
		})
	}})

	result, err := svc.GenerateSummary(context.Background(), SummaryInput{
		Title:   "Cache-aside Reads",
		Content: "The list read consults the cache first and falls back to the store.",
	})
	if err != nil {
		t.Fatalf("generate summary: %v", err)
	}

	if result.Summary != "A concise summary." {
		t.Fatalf("expected trimmed summary, got %q", result.Summary)
	}
	if result.PromptTokens != 42 || result.CompletionTokens != 12 {
		t.Fatalf("unexpected token usage: %+v", result)
	}

	if captured == nil {
		t.Fatal("expected an HTTP request")
	}
	if !strings.HasSuffix(captured.URL.Path, "/chat/completions") {
		t.Fatalf("unexpected endpoint %q", captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if capturedBody.Model != "deepseek/deepseek-chat" {
		t.Fatalf("unexpected model %q", capturedBody.Model)
	}
	if len(capturedBody.Messages) != 2 || !strings.Contains(capturedBody.Messages[1].Content, "Cache-aside Reads") {
		t.Fatalf("prompt missing article title: %+v", capturedBody.Messages)
	}
}

func TestAISummaryService_MissingAPIKey(t *testing.T) {
	svc := NewAISummaryService("", "https://openrouter.ai/api/v1", "deepseek/deepseek-chat")
	svc.SetHTTPClient(fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected without an API key")
		return nil, nil
	}})

	if _, err := svc.GenerateSummary(context.Background(), SummaryInput{Title: "x", Content: "y"}); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}
}

func TestAISummaryService_SurfacesAPIError(t *testing.T) {
	svc := NewAISummaryService("sk-test", "https://openrouter.ai/api/v1", "deepseek/deepseek-chat")
	svc.SetHTTPClient(fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	}})

	_, err := svc.GenerateSummary(context.Background(), SummaryInput{Title: "x", Content: "y"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

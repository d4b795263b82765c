package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestMailClient_SendsResendPayload(t *testing.T) {
	client := NewMailClient("re-test", "Wikimasters <onboarding@resend.dev>")

	var captured *http.Request
	var payload mailSendRequest
	client.SetHTTPClient(fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		return jsonResponse(http.StatusOK, map[string]string{"id": "email-1"})
	}})

	err := client.Send(context.Background(), Email{
		To:      "ada@example.com",
		Subject: "✨ Your article got 100 views! ✨",
		HTML:    "<p>congrats</p>",
	})
	if err != nil {
		t.Fatalf("send email: %v", err)
	}

	if captured == nil {
		t.Fatal("expected an HTTP request")
	}
	if captured.URL.Path != "/emails" {
		t.Fatalf("unexpected endpoint %q", captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer re-test" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if payload.From != "Wikimasters <onboarding@resend.dev>" {
		t.Fatalf("unexpected from %q", payload.From)
	}
	if len(payload.To) != 1 || payload.To[0] != "ada@example.com" {
		t.Fatalf("unexpected recipients %v", payload.To)
	}
}

func TestMailClient_MissingAPIKey(t *testing.T) {
	client := NewMailClient("", "Wikimasters <onboarding@resend.dev>")
	client.SetHTTPClient(fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected without an API key")
		return nil, nil
	}})

	if err := client.Send(context.Background(), Email{To: "ada@example.com"}); !errors.Is(err, ErrMailAPIKeyMissing) {
		t.Fatalf("expected ErrMailAPIKeyMissing, got %v", err)
	}
}

func TestMailClient_SurfacesServiceError(t *testing.T) {
	client := NewMailClient("re-test", "Wikimasters <onboarding@resend.dev>")
	client.SetHTTPClient(fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"message": "invalid recipient"})
	}})

	err := client.Send(context.Background(), Email{To: "not-an-email"})
	if err == nil || !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("expected service error, got %v", err)
	}
}

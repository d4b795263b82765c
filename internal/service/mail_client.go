package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMailAPIKeyMissing 表示未配置邮件服务的 API Key。
var ErrMailAPIKeyMissing = errors.New("mail API key is not configured")

// Email 描述一封待发送的邮件。
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer 定义邮件发送能力，便于在业务层注入不同实现。
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type mailSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type mailSendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// MailClient 通过 Resend 兼容的 HTTP 接口发送邮件。
type MailClient struct {
	http    httpDoer
	apiKey  string
	from    string
	baseURL string
}

// NewMailClient 构造默认的 MailClient。
func NewMailClient(apiKey, from string) *MailClient {
	return &MailClient{
		http:    &http.Client{Timeout: 20 * time.Second},
		apiKey:  strings.TrimSpace(apiKey),
		from:    strings.TrimSpace(from),
		baseURL: "https://api.resend.com",
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (c *MailClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 20 * time.Second}
		return
	}
	c.http = client
}

// SetBaseURL 覆盖默认的邮件服务地址。
func (c *MailClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// Send delivers a single email. The caller decides how a failure is handled;
// the client itself only reports it.
func (c *MailClient) Send(ctx context.Context, email Email) error {
	if c.apiKey == "" {
		return ErrMailAPIKeyMissing
	}

	payload, err := json.Marshal(mailSendRequest{
		From:    c.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read mail response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var decoded mailSendResponse
		if json.Unmarshal(body, &decoded) == nil && decoded.Message != "" {
			return fmt.Errorf("mail service returned %d: %s", resp.StatusCode, decoded.Message)
		}
		return fmt.Errorf("mail service returned %d", resp.StatusCode)
	}

	return nil
}

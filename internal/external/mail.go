package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hrdocs/internal/types"
)

// mailAPIBase is the default SendGrid API base URL.
// Overridable in tests via MailClientConfig.BaseURL.
const mailAPIBase = "https://api.sendgrid.com"

// Mailer is the outbound email capability consumed by the notification
// delivery layer. Send returns the provider message ID on success.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error)
}

// MailClientConfig holds the configuration for creating a MailClient.
type MailClientConfig struct {
	APIKey      string
	BaseURL     string // Override for testing; defaults to mailAPIBase
	FromAddress string
	FromName    string
	Logger      *slog.Logger
}

// MailClient implements Mailer against the SendGrid v3 Mail Send API through
// BaseClient, so every send inherits the shared circuit breaker, retry and
// error mapping behavior and stays easy to test with httptest.
type MailClient struct {
	base    *BaseClient
	cfg     MailClientConfig
	baseURL string
	logger  *slog.Logger
}

// NewMailClient creates a MailClient with the standard retry policy.
func NewMailClient(httpClient *http.Client, cfg MailClientConfig) *MailClient {
	base := NewBaseClient(httpClient, "mail", RetryPolicy{
		MaxRetries: 2,
		MinWait:    500 * time.Millisecond,
		MaxWait:    5 * time.Second,
	})
	return NewMailClientWithBase(base, cfg)
}

// NewMailClientWithBase creates a MailClient with a caller-provided
// BaseClient. Useful in tests to disable retries or inject a sleep function.
func NewMailClientWithBase(base *BaseClient, cfg MailClientConfig) *MailClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = mailAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MailClient{
		base:    base,
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// mailPayload is the SendGrid v3 mail/send JSON request body with inline
// content (no dynamic templates; the digest renderer produces final HTML).
type mailPayload struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send transmits an email and returns the provider message ID from the
// X-Message-Id response header.
//
// Error mapping:
//   - 403 Forbidden -> types.ErrCodeEmailBlocked (recipient on suppression list)
//   - 429 Too Many Requests -> handled by BaseClient (retry + ErrCodeUpstreamRateLimited)
//   - 5xx -> handled by BaseClient (retry + ErrCodeUpstreamUnavailable)
//   - Other 4xx -> types.ErrCodeUpstreamEmailProvider
func (m *MailClient) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	payload := mailPayload{
		Personalizations: []mailPersonalization{
			{To: []mailAddress{{Email: to}}},
		},
		From: mailAddress{
			Email: m.cfg.FromAddress,
			Name:  m.cfg.FromName,
		},
		Subject: subject,
	}
	// SendGrid requires text/plain before text/html.
	if textBody != "" {
		payload.Content = append(payload.Content, mailContent{Type: "text/plain", Value: textBody})
	}
	if htmlBody != "" {
		payload.Content = append(payload.Content, mailContent{Type: "text/html", Value: htmlBody})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to marshal mail payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to create mail send request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

	resp, err := m.base.Do(req)
	if err != nil {
		return "", wrapMailError(err)
	}
	defer resp.Body.Close()

	// SendGrid returns 202 Accepted on success.
	if resp.StatusCode == http.StatusAccepted {
		return resp.Header.Get("X-Message-Id"), nil
	}
	return "", m.handleErrorResponse(resp)
}

// mailErrorResponse represents the JSON error body returned by the provider.
type mailErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

// handleErrorResponse reads a provider error response and maps it onto the
// domain error taxonomy.
func (m *MailClient) handleErrorResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("mail provider returned status %d and response body was unreadable", resp.StatusCode),
			readErr)
	}

	message := string(body)
	var provErr mailErrorResponse
	if jsonErr := json.Unmarshal(body, &provErr); jsonErr == nil && len(provErr.Errors) > 0 {
		message = provErr.Errors[0].Message
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		// Recipient is on the suppression list / blocked.
		return types.NewAppError(types.ErrCodeEmailBlocked,
			fmt.Sprintf("mail provider blocked delivery: %s", message), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(types.ErrCodeUpstreamRateLimited,
			"mail provider rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return types.NewAppError(types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("mail provider server error: %s", message), nil)
	default:
		return types.NewAppError(types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("mail provider error (%d): %s", resp.StatusCode, message), nil)
	}
}

// wrapMailError keeps AppErrors produced by BaseClient (breaker open, retries
// exhausted) intact and wraps anything else as a provider failure.
func wrapMailError(err error) error {
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(types.ErrCodeUpstreamEmailProvider, "mail request failed", err)
}

// Compile-time assertion that MailClient satisfies Mailer.
var _ Mailer = (*MailClient)(nil)

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookService talks to a workflow webhook that accepts {"message"} and answers {"output"}
type WebhookService struct {
	url    string
	client *http.Client
}

// NewWebhookService creates a new webhook agent client
func NewWebhookService(url string) *WebhookService {
	return &WebhookService{
		url:    url,
		client: &http.Client{},
	}
}

// WebhookRequest is the body posted to the webhook
type WebhookRequest struct {
	Message string `json:"message"`
}

// WebhookResponse is the webhook's answer
type WebhookResponse struct {
	Output string `json:"output"`
}

// Send posts text to the webhook and returns its output
func (s *WebhookService) Send(ctx context.Context, text string) (string, error) {
	jsonBody, err := json.Marshal(WebhookRequest{Message: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(body))
	}

	var webhookResp WebhookResponse
	if err := json.Unmarshal(body, &webhookResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if webhookResp.Output == "" {
		return "", fmt.Errorf("empty output from webhook")
	}

	return webhookResp.Output, nil
}

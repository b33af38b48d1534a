package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ResendSender envia correos via la API HTTP de Resend.
type ResendSender struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewResendSender(baseURL, apiKey string, httpClient *http.Client) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ResendSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
	}, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Tags    []Tag    `json:"tags,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("to email is required")
	}

	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Tags:    msg.Tags,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var rr resendResponse
	_ = json.Unmarshal(respBody, &rr)
	if resp.StatusCode >= 400 {
		if rr.Message != "" {
			return "", fmt.Errorf("resend api error: status=%d: %s", resp.StatusCode, rr.Message)
		}
		return "", fmt.Errorf("resend api error: status=%d", resp.StatusCode)
	}
	if rr.ID == "" {
		return "", fmt.Errorf("resend empty response")
	}
	return rr.ID, nil
}

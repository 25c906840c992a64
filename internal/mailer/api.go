package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
)

// ApiTransport delivers mail through a Resend-style JSON API.
type ApiTransport struct {
	cfg    config.MailConfig
	client *http.Client
	logger *zap.Logger
}

// NewApiTransport creates an HTTP API mail transport.
func NewApiTransport(cfg config.MailConfig, logger *zap.Logger) *ApiTransport {
	return &ApiTransport{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger.Named("api_mailer"),
	}
}

type apiMailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (t *ApiTransport) SendMail(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(apiMailRequest{
		From:    t.cfg.From,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, detail)
	}

	t.logger.Debug("Sent mail via API", zap.String("to", to), zap.String("subject", subject))
	return nil
}

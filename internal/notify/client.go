// Package notify provides a webhook client for posting operational
// notifications, such as bulk-generation summaries for organizers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hackboard/hackboard/internal/config"
	"github.com/hackboard/hackboard/pkg/logger"
)

// Client posts JSON messages to a configured webhook.
type Client struct {
	webhookURL string
	enabled    bool
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotifierConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		enabled:    cfg.Enabled,
		log:        log,
	}
}

// Message is the webhook payload.
type Message struct {
	Text string `json:"text"`
}

// Send posts a message to the webhook. A disabled notifier is a no-op.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifier is disabled, skipping message")
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().Msg("Sent webhook notification")
	return nil
}

// SendBulkSummary posts a summary of a completed bulk-generation batch.
func (c *Client) SendBulkSummary(ctx context.Context, hackathonTitle string, generated, duplicates, rowErrors int) error {
	text := fmt.Sprintf(
		"Certificate generation finished for %q: %d generated, %d duplicates skipped, %d row errors",
		hackathonTitle, generated, duplicates, rowErrors,
	)
	return c.Send(ctx, &Message{Text: text})
}

// Package webhook delivers notifications by posting them to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Notifier posts notification messages to a configured webhook URL. It
// implements protocol.Notifier. The receiving side (Slack bridge, email
// gateway) is responsible for fan-out to the actual channel.
type Notifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

type notificationBody struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// NewNotifier creates a webhook notifier targeting the given URL.
func NewNotifier(logger *slog.Logger, url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// Send posts the notification. Any non-2xx response is an error.
func (n *Notifier) Send(ctx context.Context, recipient, message string) error {
	body, err := json.Marshal(notificationBody{Recipient: recipient, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	n.logger.DebugContext(ctx, "Notification delivered", "recipient", recipient, "status", resp.StatusCode)

	return nil
}

package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client posts plain-text messages to an ntfy topic.
type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
	priority   string
}

type NotificationError struct {
	Type       string
	StatusCode int
	Underlying error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed [%s]: %v", e.Type, e.Underlying)
}

func (e *NotificationError) Unwrap() error {
	return e.Underlying
}

func NewClient(baseURL, topic string, enabled bool, priority string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		topic:    topic,
		enabled:  enabled,
		priority: priority,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Client) SendNotification(ctx context.Context, title, message string) error {
	if !c.Enabled() {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)
	log.Debug().
		Str("url", url).
		Str("title", title).
		Msg("Sending notification")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return &NotificationError{Type: "client", Underlying: err}
	}

	req.Header.Set("Content-Type", "text/plain")
	if title != "" {
		req.Header.Set("Title", title)
	}
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Type: "network", Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &NotificationError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	log.Debug().Int("status_code", resp.StatusCode).Msg("Notification sent successfully")
	return nil
}

// NotifyUnmatched reports account keys that had no column in a worksheet.
// Failures are logged and swallowed.
func (c *Client) NotifyUnmatched(ctx context.Context, worksheet string, keys []string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}

	message := formatUnmatchedMessage(worksheet, keys)
	if err := c.SendNotification(ctx, "Networth: unmatched accounts", message); err != nil {
		log.Warn().Err(err).Str("worksheet", worksheet).Msg("Failed to send unmatched accounts notification")
	}
}

func formatUnmatchedMessage(worksheet string, keys []string) string {
	var sb strings.Builder

	if len(keys) == 1 {
		sb.WriteString(fmt.Sprintf("1 account has no column in %s\n", worksheet))
	} else {
		sb.WriteString(fmt.Sprintf("%d accounts have no column in %s\n", len(keys), worksheet))
	}

	maxKeysToShow := 10
	for i, key := range keys {
		if i == maxKeysToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(keys)-maxKeysToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("• %s\n", key))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unknown"
	}
}

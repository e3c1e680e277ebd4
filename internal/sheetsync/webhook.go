package sheetsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// Transport hands an envelope to its destination.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, env Envelope) error
}

// WebhookTransport POSTs the payload straight to the endpoint. The response
// body is discarded and its status is only logged: the endpoint is a script
// that answers with redirects and HTML.
type WebhookTransport struct {
	client *http.Client
	logger *logging.Logger
}

// NewWebhookTransport creates a webhook transport. A nil client gets a
// default with timeout.
func NewWebhookTransport(client *http.Client, timeout time.Duration, logger *logging.Logger) *WebhookTransport {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookTransport{client: client, logger: logger}
}

func (t *WebhookTransport) Name() string { return "webhook" }

// Deliver posts env.Payload to env.URL. Only failures to send are errors.
func (t *WebhookTransport) Deliver(ctx context.Context, env Envelope) error {
	if env.URL == "" {
		return fmt.Errorf("sheetsync: envelope has no url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.URL, bytes.NewReader(env.Payload))
	if err != nil {
		return fmt.Errorf("sheetsync: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheetsync: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		t.logger.Warn("sheet endpoint returned error status", "status", resp.StatusCode, "action", env.Action, "user_id", env.UserID)
	}
	return nil
}

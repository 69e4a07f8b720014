package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Webhook posts events as JSON to a fixed URL. Failed deliveries are not
// retried.
type Webhook struct {
	httpClient *resty.Client
	url        string
}

// NewWebhook builds a webhook publisher. A zero timeout means 5 seconds.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "rationdist-webhook").
		SetTimeout(timeout)
	return &Webhook{httpClient: client, url: url}
}

func (w *Webhook) Publish(ctx context.Context, ev Event) error {
	resp, err := w.httpClient.R().
		SetContext(ctx).
		SetBody(ev).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

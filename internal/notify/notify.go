// Package notify delivers finished task reports to the outside world.
package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
)

// Notifier receives one message per finalized task result.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }

// Webhook posts notifications as a small JSON document to one URL.
type Webhook struct {
	http *resty.Client
	url  string
	log  *zap.Logger
}

// NewWebhook builds a webhook notifier for the given endpoint.
func NewWebhook(url string, log *zap.Logger) *Webhook {
	return &Webhook{http: resty.New(), url: url, log: log}
}

// Notify posts {title, message}. Delivery problems are returned, not
// retried; a task result is never blocked on its notification.
func (w *Webhook) Notify(ctx context.Context, title, message string) error {
	resp, err := w.http.R().SetContext(ctx).
		SetBody(map[string]string{"title": title, "message": message}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook post: status %s", resp.Status())
	}
	w.log.Debug("notification delivered", zap.String("title", title))
	return nil
}

// NotifyResult formats and delivers one task result.
func NotifyResult(ctx context.Context, n Notifier, res model.TaskResult) error {
	title := fmt.Sprintf("%s: %s", res.Name, res.Status())
	return n.Notify(ctx, title, res.Message())
}

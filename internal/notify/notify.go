package notify

import (
	"context"
	"time"

	httpclient "github.com/chainpass/chainpass-api/internal/client/http"
	"github.com/chainpass/chainpass-api/internal/logger"

	"go.uber.org/zap"
)

// Notifier delivers transient user-facing messages. Delivery is
// fire-and-forget: implementations never return errors to the caller.
type Notifier interface {
	Success(ctx context.Context, message string)
	Warning(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by the global logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.Log}
}

func (n *LogNotifier) Success(_ context.Context, message string) {
	n.logger.Info("notification", zap.String("level", "success"), zap.String("message", message))
}

func (n *LogNotifier) Warning(_ context.Context, message string) {
	n.logger.Warn("notification", zap.String("level", "warning"), zap.String("message", message))
}

func (n *LogNotifier) Error(_ context.Context, message string) {
	n.logger.Error("notification", zap.String("level", "error"), zap.String("message", message))
}

// webhookPayload is the JSON body posted to the notification relay.
type webhookPayload struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookNotifier relays notifications to a frontend notification endpoint.
type WebhookNotifier struct {
	client *httpclient.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a notifier posting to the given endpoint URL.
func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		client: httpclient.NewClient(
			httpclient.WithBaseURL(endpoint),
			httpclient.WithTimeout(10*time.Second),
		),
		logger: logger.Log,
	}
}

func (n *WebhookNotifier) Success(ctx context.Context, message string) {
	n.post(ctx, "success", message)
}

func (n *WebhookNotifier) Warning(ctx context.Context, message string) {
	n.post(ctx, "warning", message)
}

func (n *WebhookNotifier) Error(ctx context.Context, message string) {
	n.post(ctx, "error", message)
}

func (n *WebhookNotifier) post(ctx context.Context, level, message string) {
	resp, err := n.client.Post(ctx, "/notifications", webhookPayload{
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		// Fire-and-forget: a lost notification never fails the operation
		// that produced it.
		n.logger.Warn("Failed to deliver notification",
			zap.String("level", level),
			zap.Error(err),
		)
	}
}

// MultiNotifier fans a notification out to several channels.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier combines notifiers into one.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (m *MultiNotifier) Success(ctx context.Context, message string) {
	for _, n := range m.notifiers {
		n.Success(ctx, message)
	}
}

func (m *MultiNotifier) Warning(ctx context.Context, message string) {
	for _, n := range m.notifiers {
		n.Warning(ctx, message)
	}
}

func (m *MultiNotifier) Error(ctx context.Context, message string) {
	for _, n := range m.notifiers {
		n.Error(ctx, message)
	}
}

package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/defense"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/config"
)

// WebhookNotifier posts severe defense actions to a chat webhook so operators
// see STOP and NEG decisions as they land.
type WebhookNotifier struct {
	client  *http.Client
	url     string
	channel string
	logger  *zap.Logger
	limiter *rate.Limiter
}

type webhookPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// NewWebhookNotifier builds a notifier from configuration.
func NewWebhookNotifier(cfg config.NotificationConfig, logger *zap.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	return &WebhookNotifier{
		client:  &http.Client{Timeout: timeout},
		url:     cfg.WebhookURL,
		channel: cfg.Channel,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), 5),
	}
}

// NotifyDefenseAction posts a short alert describing the recommended action.
// Alerts above the configured rate are dropped, not queued; the judgment
// itself is already persisted elsewhere.
func (n *WebhookNotifier) NotifyDefenseAction(ctx context.Context, entity performance.EntityRef, action defense.Action, reasonDetail string) error {
	if !n.limiter.Allow() {
		n.logger.Warn("dropping defense alert, rate limit exceeded",
			zap.String("asin", entity.ASIN),
			zap.String("entity_id", entity.EntityID),
			zap.String("action", action.String()))
		return nil
	}

	payload := webhookPayload{
		Channel: n.channel,
		Text: fmt.Sprintf("defense action %s for %s %s (asin %s): %s",
			action, entity.EntityType, entity.EntityID, entity.ASIN, reasonDetail),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("defense alert delivered",
		zap.String("entity_id", entity.EntityID),
		zap.String("action", action.String()))
	return nil
}

// NopNotifier discards alerts. Used when notifications are disabled.
type NopNotifier struct{}

func (NopNotifier) NotifyDefenseAction(context.Context, performance.EntityRef, defense.Action, string) error {
	return nil
}

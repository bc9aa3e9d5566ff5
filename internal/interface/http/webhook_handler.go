package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
)

const (
	webhookBodyLimit = 1 << 20

	headerWebhookHMAC  = "X-Shopify-Hmac-Sha256"
	headerWebhookShop  = "X-Shopify-Shop-Domain"
	headerWebhookTopic = "X-Shopify-Topic"

	topicShopRedact = "shop/redact"
)

// WebhookHandler receives Shopify webhooks, including the mandatory privacy topics.
type WebhookHandler struct {
	svc    auth.Service
	logger *slog.Logger
}

// NewWebhookHandler constructs the webhook receiver.
func NewWebhookHandler(svc auth.Service, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, logger: logger.With("component", "http.webhook")}
}

// Receive verifies the payload signature and dispatches on topic. Unknown
// topics are acknowledged so Shopify does not retry them.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit+1))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read body", err))
		return
	}
	if len(body) > webhookBodyLimit {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "invalid_request", "webhook body too large", nil))
		return
	}
	if !h.svc.VerifyWebhook(body, c.GetHeader(headerWebhookHMAC)) {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_signature", "webhook signature mismatch", nil))
		return
	}

	shop := strings.ToLower(strings.TrimSpace(c.GetHeader(headerWebhookShop)))
	if shop == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing shop domain", nil))
		return
	}
	topic := webhookTopic(c)

	switch topic {
	case topicShopRedact:
		if err := h.svc.RedactShop(c.Request.Context(), shop); err != nil {
			h.logger.Error("shop redact incomplete", "shop", shop, "error", err)
		}
	default:
		h.logger.Info("webhook acknowledged", "topic", topic, "shop", shop)
	}
	c.Status(http.StatusOK)
}

// webhookTopic prefers the topic header and falls back to the route suffix.
func webhookTopic(c *gin.Context) string {
	if topic := strings.TrimSpace(c.GetHeader(headerWebhookTopic)); topic != "" {
		return strings.ToLower(topic)
	}
	topic := strings.Trim(c.Param("topic"), "/")
	return strings.ToLower(strings.ReplaceAll(topic, "-", "_"))
}

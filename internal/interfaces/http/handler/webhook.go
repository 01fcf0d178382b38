package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/omnistock/backend/internal/application/sync"
	"github.com/omnistock/backend/internal/domain/channel"
)

// webhookProcessTimeout bounds the background processing of one notification
const webhookProcessTimeout = 60 * time.Second

// WebhookHandler receives marketplace push notifications. The platform
// retries deliveries that do not get a 2xx quickly, so the handler
// acknowledges first and ingests in the background; idempotency makes the
// inevitable duplicate deliveries harmless.
type WebhookHandler struct {
	BaseHandler
	ingestion *appsync.IngestionService
	logger    *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(ingestion *appsync.IngestionService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{ingestion: ingestion, logger: logger}
}

// RegisterRoutes registers the webhook routes
func (h *WebhookHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/webhooks/mercadolibre", h.MercadoLibre)
}

// meliNotification is the MercadoLibre push notification body
type meliNotification struct {
	ID       string `json:"_id"`
	Topic    string `json:"topic"`
	Resource string `json:"resource"`
	UserID   int64  `json:"user_id"`
	Attempts int    `json:"attempts"`
}

// MercadoLibre handles POST /webhooks/mercadolibre
func (h *WebhookHandler) MercadoLibre(c *gin.Context) {
	var notification meliNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	topic := strings.ToLower(notification.Topic)
	if topic != "orders_v2" && topic != "orders" {
		// Unhandled topics are acknowledged so the platform stops retrying.
		c.Status(http.StatusOK)
		return
	}

	orderID := orderIDFromResource(notification.Resource)
	if orderID == "" {
		h.BadRequest(c, "notification resource carries no order id")
		return
	}

	h.logger.Info("Webhook notification received",
		zap.String("topic", notification.Topic),
		zap.String("resource", notification.Resource),
		zap.Int("attempts", notification.Attempts),
	)

	// Acknowledge before processing; the request context dies with the
	// response, so the background work gets its own.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookProcessTimeout)
		defer cancel()

		result, err := h.ingestion.IngestByOrderID(ctx, channel.CodeMercadoLibre, orderID)
		if err != nil {
			h.logger.Error("Webhook order ingestion failed",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			return
		}
		h.logger.Info("Webhook order ingested",
			zap.String("order_id", orderID),
			zap.Bool("applied", result.Applied()),
		)
	}()

	c.Status(http.StatusOK)
}

// orderIDFromResource extracts the order id from a notification resource
// path such as "/orders/2000003508419500"
func orderIDFromResource(resource string) string {
	resource = strings.Trim(resource, "/")
	parts := strings.Split(resource, "/")
	if len(parts) != 2 || parts[0] != "orders" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appsync "github.com/omnistock/backend/internal/application/sync"
	"github.com/omnistock/backend/internal/domain/channel"
)

// SyncHandler serves the manual channel synchronization endpoints
type SyncHandler struct {
	BaseHandler
	sync      *appsync.SyncService
	ingestion *appsync.IngestionService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync *appsync.SyncService, ingestion *appsync.IngestionService) *SyncHandler {
	return &SyncHandler{sync: sync, ingestion: ingestion}
}

// RegisterRoutes registers the sync routes
func (h *SyncHandler) RegisterRoutes(group *gin.RouterGroup) {
	sync := group.Group("/sync")
	{
		sync.POST("/products/:sku", h.SyncProduct)
		sync.POST("/products", h.SyncAll)
		sync.POST("/orders/pull", h.PullOrders)
	}
}

// SyncProduct handles POST /sync/products/:sku
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	result, err := h.sync.SyncProduct(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// SyncAll handles POST /sync/products
func (h *SyncHandler) SyncAll(c *gin.Context) {
	results, err := h.sync.SyncAll(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, results)
}

// PullOrders handles POST /sync/orders/pull
func (h *SyncHandler) PullOrders(c *gin.Context) {
	var req appsync.PullOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	code := channel.Code(strings.ToUpper(strings.TrimSpace(req.Channel)))
	if !code.IsValid() {
		h.BadRequest(c, "unknown channel: "+req.Channel)
		return
	}

	since := req.Since
	if since.IsZero() {
		since = time.Now().Add(-24 * time.Hour)
	}

	results, err := h.ingestion.PullAndIngest(c.Request.Context(), code, since)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, results)
}

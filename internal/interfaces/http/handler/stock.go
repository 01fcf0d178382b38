package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appinventory "github.com/omnistock/backend/internal/application/inventory"
	"github.com/omnistock/backend/internal/interfaces/http/middleware"
)

// StockHandler serves the stock ledger endpoints
type StockHandler struct {
	BaseHandler
	stock   *appinventory.StockService
	exports *appinventory.ExportService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stock *appinventory.StockService, exports *appinventory.ExportService) *StockHandler {
	return &StockHandler{stock: stock, exports: exports}
}

// RegisterRoutes registers the stock routes
func (h *StockHandler) RegisterRoutes(group *gin.RouterGroup) {
	stock := group.Group("/stock")
	{
		stock.POST("/entries", h.RecordEntry)
		stock.GET("/entries", h.ListEntries)
		stock.POST("/exits", h.RecordExit)
		stock.GET("/exits", h.ListExits)
		stock.GET("/summary/:sku", h.Summary)
		stock.POST("/exports", h.Export)
	}
}

// RecordEntry handles POST /stock/entries
func (h *StockHandler) RecordEntry(c *gin.Context) {
	var req appinventory.RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.stock.RecordEntry(c.Request.Context(), req, middleware.CurrentUsername(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// RecordExit handles POST /stock/exits
func (h *StockHandler) RecordExit(c *gin.Context) {
	var req appinventory.RecordExitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	exit, err := h.stock.RecordExit(c.Request.Context(), req, middleware.CurrentUsername(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, exit)
}

// ListEntries handles GET /stock/entries?sku=
func (h *StockHandler) ListEntries(c *gin.Context) {
	var req appinventory.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, err := h.stock.ListEntries(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entries)
}

// ListExits handles GET /stock/exits?sku=
func (h *StockHandler) ListExits(c *gin.Context) {
	var req appinventory.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	exits, err := h.stock.ListExits(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, exits)
}

// Summary handles GET /stock/summary/:sku
func (h *StockHandler) Summary(c *gin.Context) {
	summary, err := h.stock.Summary(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, summary)
}

// exportRequest is the body of POST /stock/exports
type exportRequest struct {
	From time.Time `json:"from" binding:"required"`
	To   time.Time `json:"to" binding:"required"`
}

// Export handles POST /stock/exports
func (h *StockHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	export, err := h.exports.ExportMovements(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, export)
}

// Package handler contains the gin HTTP handlers.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/shared"
	"github.com/omnistock/backend/internal/infrastructure/logger"
	"github.com/omnistock/backend/internal/interfaces/http/dto"
)

// BaseHandler provides response helpers shared by all handlers
type BaseHandler struct{}

// Success writes a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

// Created writes a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// NoContent writes an empty 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 envelope with pagination metadata
func Paginated[T any](c *gin.Context, page *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.OKPaginated(page.Items, &dto.Meta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}))
}

// Error maps an application error to an HTTP response. Internal errors are
// logged with the request context; client errors are not.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	status, response := dto.MapError(err)
	if status >= http.StatusInternalServerError {
		logger.FromGinContext(c).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, response)
}

// BadRequest writes a 400 envelope for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.Fail("INVALID_REQUEST", message))
}

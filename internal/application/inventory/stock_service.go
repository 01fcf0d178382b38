// Package inventory contains the stock ledger application services.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/inventory"
	"github.com/omnistock/backend/internal/domain/shared"
)

// StockService handles manual stock movement use cases. All stock total
// mutations go through the movement repository; this service never computes
// a total itself.
type StockService struct {
	products  catalog.ProductRepository
	movements inventory.MovementRepository
	logger    *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(products catalog.ProductRepository, movements inventory.MovementRepository, logger *zap.Logger) *StockService {
	return &StockService{
		products:  products,
		movements: movements,
		logger:    logger,
	}
}

// RecordEntry records incoming stock for a SKU. The product's current
// units-per-package value is captured on the entry row.
func (s *StockService) RecordEntry(ctx context.Context, req RecordEntryRequest, recordedBy string) (*EntryResponse, error) {
	product, err := s.products.FindBySKU(ctx, strings.TrimSpace(req.SKU))
	if err != nil {
		return nil, err
	}

	entry, err := inventory.NewStockEntry(product.SKU, req.Quantity, product.UnitsPerPackage, recordedBy)
	if err != nil {
		return nil, err
	}

	if err := s.movements.RecordEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Stock entry recorded",
		zap.String("sku", entry.SKU),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("recorded_by", recordedBy),
	)

	response := ToEntryResponse(entry)
	return &response, nil
}

// RecordExit records outgoing stock for a SKU. Fails with
// shared.ErrInsufficientStock when the decrement would go negative.
func (s *StockService) RecordExit(ctx context.Context, req RecordExitRequest, recordedBy string) (*ExitResponse, error) {
	product, err := s.products.FindBySKU(ctx, strings.TrimSpace(req.SKU))
	if err != nil {
		return nil, err
	}

	channelLabel := strings.TrimSpace(req.Channel)
	if code := channel.Code(strings.ToUpper(channelLabel)); code.IsValid() {
		channelLabel = code.ExitLabel()
	}

	exit, err := inventory.NewStockExit(product.SKU, req.Quantity, channelLabel, recordedBy)
	if err != nil {
		return nil, err
	}

	if err := s.movements.RecordExit(ctx, exit); err != nil {
		return nil, err
	}

	s.logger.Info("Stock exit recorded",
		zap.String("sku", exit.SKU),
		zap.String("quantity", exit.Quantity.String()),
		zap.String("channel", exit.Channel),
		zap.String("recorded_by", recordedBy),
	)

	response := ToExitResponse(exit)
	return &response, nil
}

// ListEntries returns a page of entries for a SKU, newest first
func (s *StockService) ListEntries(ctx context.Context, req ListMovementsRequest) ([]EntryResponse, error) {
	filter := s.buildFilter(req)
	entries, err := s.movements.FindEntriesBySKU(ctx, strings.TrimSpace(req.SKU), filter)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToEntryResponse(&entries[i]))
	}
	return responses, nil
}

// ListExits returns a page of exits for a SKU, newest first
func (s *StockService) ListExits(ctx context.Context, req ListMovementsRequest) ([]ExitResponse, error) {
	filter := s.buildFilter(req)
	exits, err := s.movements.FindExitsBySKU(ctx, strings.TrimSpace(req.SKU), filter)
	if err != nil {
		return nil, fmt.Errorf("listing exits: %w", err)
	}

	responses := make([]ExitResponse, 0, len(exits))
	for i := range exits {
		responses = append(responses, ToExitResponse(&exits[i]))
	}
	return responses, nil
}

// Summary reports the stored stock total alongside the ledger sums so a
// drifted total is visible to operators.
func (s *StockService) Summary(ctx context.Context, sku string) (*StockSummaryResponse, error) {
	sku = strings.TrimSpace(sku)
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	totalEntries, err := s.movements.SumEntriesBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("summing entries: %w", err)
	}
	totalExits, err := s.movements.SumExitsBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("summing exits: %w", err)
	}

	return &StockSummaryResponse{
		SKU:          product.SKU,
		StockTotal:   product.StockTotal,
		TotalEntries: totalEntries,
		TotalExits:   totalExits,
	}, nil
}

// buildFilter maps a list request to a repository filter
func (s *StockService) buildFilter(req ListMovementsRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	return filter
}

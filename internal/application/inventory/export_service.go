package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/shared"
	"github.com/omnistock/backend/internal/domain/inventory"
)

// ObjectStorage is the slice of the storage backend the exporter needs
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey, contentType string, data []byte) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportService writes movement-log extracts as CSV files to object storage
// and hands back a presigned download link.
type ExportService struct {
	movements inventory.MovementRepository
	storage   ObjectStorage
	logger    *zap.Logger
}

// NewExportService creates a new export service. Storage may be nil when the
// deployment has no object storage configured; exports then fail cleanly.
func NewExportService(movements inventory.MovementRepository, storage ObjectStorage, logger *zap.Logger) *ExportService {
	return &ExportService{
		movements: movements,
		storage:   storage,
		logger:    logger,
	}
}

// ExportMovements writes all entries and exits in [from, to] to a CSV file
// in object storage and returns a presigned download URL.
func (s *ExportService) ExportMovements(ctx context.Context, from, to time.Time) (*ExportResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "Object storage is not configured")
	}
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Export range end must be after start")
	}

	entries, err := s.movements.FindEntriesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	exits, err := s.movements.FindExitsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading exits: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"type", "sku", "quantity", "channel", "recorded_by", "recorded_at"}); err != nil {
		return nil, fmt.Errorf("writing export header: %w", err)
	}
	for i := range entries {
		entry := &entries[i]
		record := []string{
			string(inventory.MovementTypeEntry),
			entry.SKU,
			entry.Quantity.String(),
			"",
			entry.RecordedBy,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("writing export row: %w", err)
		}
	}
	for i := range exits {
		exit := &exits[i]
		record := []string{
			string(inventory.MovementTypeExit),
			exit.SKU,
			exit.Quantity.String(),
			exit.Channel,
			exit.RecordedBy,
			exit.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("writing export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing export: %w", err)
	}

	storageKey := fmt.Sprintf("exports/movements_%s_%s.csv",
		from.UTC().Format("20060102"), to.UTC().Format("20060102"))
	if err := s.storage.Upload(ctx, storageKey, "text/csv", buf.Bytes()); err != nil {
		return nil, fmt.Errorf("uploading export: %w", err)
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, storageKey, 0)
	if err != nil {
		return nil, fmt.Errorf("presigning export: %w", err)
	}

	rows := len(entries) + len(exits)
	s.logger.Info("Movement export generated",
		zap.String("storage_key", storageKey),
		zap.Int("rows", rows),
	)

	return &ExportResponse{
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
		Rows:        rows,
	}, nil
}

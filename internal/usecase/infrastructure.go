package usecase

import (
	"context"
	"io"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
)

// SupplierStream — поток позиций из XML-фида поставщика.
// Next возвращает io.EOF после последней позиции.
type SupplierStream interface {
	Next() (*domain.SupplierItem, error)
	Close() error
}

// StorefrontStream — поток строк CSV-экспорта витрины.
type StorefrontStream interface {
	Next() (*StorefrontRow, error)
	Close() error
}

type SupplierFeedInfra interface {
	ResolveCatalogURL(ctx context.Context) (string, error)
	Open(ctx context.Context, catalogURL string) (SupplierStream, error)
}

type StorefrontFeedInfra interface {
	Open(ctx context.Context) (StorefrontStream, error)
}

// JobQueue — очередь задач синхронизации (Kafka).
type JobQueue interface {
	Publish(ctx context.Context, jobID string) error
}

// ExportStorage — хранилище опубликованных выгрузок (MinIO).
type ExportStorage interface {
	Publish(ctx context.Context, objectName string, r io.Reader) (string, error)
}

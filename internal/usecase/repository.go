package usecase

import (
	"context"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
)

// RecordStream — потоковый курсор по записям каталога.
// Next возвращает io.EOF после последней записи.
type RecordStream interface {
	Next() (*domain.CatalogRecord, error)
	Close()
}

type CatalogRepository interface {
	UpsertSupplier(ctx context.Context, item *domain.SupplierItem, canonical *domain.CanonicalItem) error
	UpsertStorefront(ctx context.Context, code string, override *domain.StorefrontOverride) error
	FindConverted(ctx context.Context) (RecordStream, error)
}

type JobRepository interface {
	Save(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	RequestCancel(ctx context.Context, id string) error
	CancelRequested(ctx context.Context, id string) (bool, error)
}

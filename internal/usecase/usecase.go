package usecase

import (
	"context"
	"io"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
)

type JobUC interface {
	Enqueue(ctx context.Context, kind domain.JobKind) (*domain.Job, error)
	Status(ctx context.Context, id string) (*domain.Job, error)
	Cancel(ctx context.Context, id string) error
	Run(ctx context.Context, id string) error
}

type ExportUC interface {
	WriteCatalog(ctx context.Context, w io.Writer) error
	Publish(ctx context.Context) (*PublishExportRes, error)
}

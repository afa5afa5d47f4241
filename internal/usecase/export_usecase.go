package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/s3dt-tech/catalog-backend/internal/export"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

// ExportUseCase собирает объединённую XML-выгрузку каталога: пишет её
// напрямую клиенту или публикует как артефакт в хранилище.
type ExportUseCase struct {
	catalogRepo CatalogRepository
	storage     ExportStorage
	exporter    *export.Exporter
	logger      logger.Logger
}

func NewExportUC(
	catalogRepo CatalogRepository,
	storage ExportStorage,
	exporter *export.Exporter,
	logger logger.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		catalogRepo: catalogRepo,
		storage:     storage,
		exporter:    exporter,
		logger:      logger,
	}
}

// WriteCatalog пишет выгрузку всех сконвертированных записей в w.
func (u *ExportUseCase) WriteCatalog(ctx context.Context, w io.Writer) error {
	const op = "ExportUseCase.WriteCatalog"

	records, err := u.catalogRepo.FindConverted(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer records.Close()

	if err := u.exporter.Write(w, records); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Publish собирает выгрузку и загружает её в хранилище артефактов.
// Выгрузка стримится в хранилище без буферизации в памяти.
func (u *ExportUseCase) Publish(ctx context.Context) (*PublishExportRes, error) {
	const op = "ExportUseCase.Publish"

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(u.WriteCatalog(ctx, pw))
	}()

	objectName := fmt.Sprintf("catalog_%s.xml", time.Now().UTC().Format("20060102T150405Z"))

	key, err := u.storage.Publish(ctx, objectName, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, e.Wrap(op, err)
	}

	u.logger.Infof("catalog export published. object_key: %s", key)

	return &PublishExportRes{ObjectKey: key}, nil
}

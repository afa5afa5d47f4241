package minio

import (
	"context"
	"io"

	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/s3dt-tech/catalog-backend/internal/cfg"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
)

// FeedRepo хранит опубликованные экспортные фиды в MinIO, откуда их
// забирает импорт витрины.
type FeedRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewFeedRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *FeedRepo {
	return &FeedRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Publish загружает фид в бакет потоково (размер заранее неизвестен)
// и возвращает ключ объекта.
func (f *FeedRepo) Publish(ctx context.Context, objectName string, r io.Reader) (string, error) {
	objectKey := f.cfg.ExportPrefix + objectName

	info, err := f.mc.PutObject(ctx, f.cfg.BucketName, objectKey, r, -1, minio.PutObjectOptions{
		ContentType: "application/xml",
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

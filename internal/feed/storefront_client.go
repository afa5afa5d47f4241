package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/s3dt-tech/catalog-backend/internal/cfg"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

// StorefrontClient скачивает CSV-экспорт каталога витрины.
type StorefrontClient struct {
	httpClient *http.Client
	cfg        *cfg.StorefrontCfg
	logger     logger.Logger
}

func NewStorefrontClient(cfg *cfg.StorefrontCfg, logger logger.Logger) *StorefrontClient {
	return &StorefrontClient{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Open скачивает экспорт витрины и возвращает потоковый ридер строк.
func (c *StorefrontClient) Open(ctx context.Context) (usecase.StorefrontStream, error) {
	const op = "StorefrontClient.Open"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.CatalogURL, nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, e.WrapKind(e.ErrTransport, e.Wrap(op, err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, e.WrapKind(e.ErrTransport, fmt.Errorf("%s: unexpected status: %s", op, res.Status))
	}

	feed, err := NewStorefrontFeed(res.Body, res.Body)
	if err != nil {
		res.Body.Close()
		return nil, e.Wrap(op, err)
	}

	return feed, nil
}

// Package feed отвечает за получение и потоковое чтение внешних фидов:
// XML-каталога поставщика (при необходимости в zip-контейнере) и
// CSV-экспорта витрины. Фиды читаются по одной позиции, пиковая память
// не зависит от размера фида.
package feed

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/s3dt-tech/catalog-backend/internal/cfg"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

// SupplierClient получает каталог поставщика по HTTP.
// Все исходящие запросы проходят через общий rate-лимитер,
// чтобы не упереться в ограничения API поставщика.
type SupplierClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        *cfg.SupplierCfg
	logger     logger.Logger
}

func NewSupplierClient(cfg *cfg.SupplierCfg, logger logger.Logger) *SupplierClient {
	return &SupplierClient{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		cfg:        cfg,
		logger:     logger,
	}
}

// responseProductListStatus — ответ поставщика на запрос генерации фида.
type responseProductListStatus struct {
	XMLName           xml.Name `xml:"ResponseProductListStatus"`
	ProductListStatus struct {
		URL     string `xml:"url"`
		IsReady string `xml:"isReady"`
	} `xml:"ProductListStatus"`
}

// ResolveCatalogURL запрашивает у API поставщика адрес сгенерированного фида.
func (c *SupplierClient) ResolveCatalogURL(ctx context.Context) (string, error) {
	const op = "SupplierClient.ResolveCatalogURL"

	if err := c.limiter.Wait(ctx); err != nil {
		return "", e.Wrap(op, err)
	}

	params := url.Values{
		"login":    {c.cfg.Login},
		"password": {c.cfg.Password},
		"encoding": {"UTF-8"},
		"onStock":  {"False"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.CatalogRequestURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", e.WrapKind(e.ErrTransport, e.Wrap(op, err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", e.WrapKind(e.ErrTransport, fmt.Errorf("%s: unexpected status: %s", op, res.Status))
	}

	var status responseProductListStatus
	if err := xml.NewDecoder(res.Body).Decode(&status); err != nil {
		return "", e.WrapKind(e.ErrParse, e.Wrap(op, err))
	}

	if status.ProductListStatus.URL == "" {
		return "", e.WrapKind(e.ErrParse, e.Wrap(op, e.ErrEmptyFeedURL))
	}

	return status.ProductListStatus.URL, nil
}

// Open скачивает фид по адресу и возвращает потоковый ридер позиций.
// Фид, упакованный в zip, распаковывается прозрачно: тело ответа
// переливается ограниченными чанками во временный файл, XML читается
// из первого вхождения архива.
func (c *SupplierClient) Open(ctx context.Context, catalogURL string) (usecase.SupplierStream, error) {
	const op = "SupplierClient.Open"

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogURL, nil)
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

	if !strings.HasSuffix(strings.ToLower(catalogURL), ".zip") {
		return NewSupplierFeed(res.Body, res.Body), nil
	}

	feed, err := c.openZippedFeed(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return feed, nil
}

// openZippedFeed распаковывает однофайловый zip-контейнер с фидом.
// Архив спулится на диск, а не в память: zip требует произвольного
// доступа, которого у HTTP-потока нет.
func (c *SupplierClient) openZippedFeed(body io.Reader) (*SupplierFeed, error) {
	tmp, err := os.CreateTemp("", "supplier-catalog-*.zip")
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, e.WrapKind(e.ErrTransport, err)
	}

	zr, err := zip.OpenReader(tmp.Name())
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, e.WrapKind(e.ErrParse, err)
	}

	if len(zr.File) == 0 {
		zr.Close()
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, e.WrapKind(e.ErrParse, fmt.Errorf("zip archive contains no entries"))
	}

	entry, err := zr.File[0].Open()
	if err != nil {
		zr.Close()
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, e.WrapKind(e.ErrParse, err)
	}

	cleanup := closeFunc(func() error {
		entry.Close()
		zr.Close()
		tmp.Close()
		return os.Remove(tmp.Name())
	})

	return NewSupplierFeed(entry, cleanup), nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

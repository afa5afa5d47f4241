package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
)

// Имена колонок CSV-экспорта витрины. Колонки ищутся по имени в заголовке,
// а не по позиции: витрина меняет состав экспорта настройками шаблона.
const (
	columnCode       = "code"
	columnVisibility = "productVisibility"
	columnInStock    = "availabilityInStock"
)

// StorefrontFeed — потоковый ридер CSV-экспорта витрины.
// Экспорт приходит в legacy-кодировке cp1250 с разделителем ';',
// декодируется на лету.
type StorefrontFeed struct {
	reader   *csv.Reader
	closer   io.Closer
	codeIdx  int
	visIdx   int
	availIdx int
}

// NewStorefrontFeed читает заголовок и готовит потоковое чтение строк.
// closer (может быть nil) закрывается вместе с фидом.
func NewStorefrontFeed(r io.Reader, closer io.Closer) (*StorefrontFeed, error) {
	decoded := transform.NewReader(r, charmap.Windows1250.NewDecoder())

	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, e.WrapKind(e.ErrParse, fmt.Errorf("storefront csv header: %w", err))
	}

	feed := &StorefrontFeed{reader: reader, closer: closer}
	for name, idx := range map[string]*int{
		columnCode:       &feed.codeIdx,
		columnVisibility: &feed.visIdx,
		columnInStock:    &feed.availIdx,
	} {
		*idx = indexOf(header, name)
		if *idx < 0 {
			return nil, e.WrapKind(e.ErrParse, fmt.Errorf("storefront csv: missing column %q", name))
		}
	}

	return feed, nil
}

// Next возвращает следующую строку экспорта либо io.EOF в конце.
// Неполные строки (короче требуемых колонок) пропускаются.
func (f *StorefrontFeed) Next() (*usecase.StorefrontRow, error) {
	for {
		record, err := f.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, e.WrapKind(e.ErrParse, err)
		}

		if len(record) <= f.codeIdx || len(record) <= f.visIdx || len(record) <= f.availIdx {
			continue
		}

		return &usecase.StorefrontRow{
			Code: record[f.codeIdx],
			Override: domain.StorefrontOverride{
				Visible:             record[f.visIdx] == "visible",
				AvailabilityInStock: record[f.availIdx],
			},
		}, nil
	}
}

func (f *StorefrontFeed) Close() error {
	if f.closer == nil {
		return nil
	}

	return f.closer.Close()
}

func indexOf(fields []string, name string) int {
	for i, field := range fields {
		if field == name {
			return i
		}
	}

	return -1
}

package feed

import (
	"encoding/xml"
	"errors"
	"io"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
)

// Путь до элемента позиции в XML-фиде поставщика (третий уровень вложенности).
var supplierItemPath = [...]string{"ResponseProductList", "ProductList", "Product"}

// productXML — позиция фида в разметке поставщика.
type productXML struct {
	Code              string `xml:"Code"`
	Name              string `xml:"Name"`
	Description       string `xml:"Description"`
	ProducerName      string `xml:"ProducerName"`
	Warranty          string `xml:"Warranty"`
	ImageURL          string `xml:"ImageUrl"`
	Status            string `xml:"Status"`
	EndUserPrice      string `xml:"EndUserPrice"`
	YourPriceWithFees string `xml:"YourPriceWithFees"`
	Vat               string `xml:"Vat"`
	OnStockText       string `xml:"OnStockText"`
	OnStock           string `xml:"OnStock"`
	EANCode           string `xml:"EANCode"`
	CommodityName     string `xml:"CommodityName"`
	CommodityCode     string `xml:"CommodityCode"`
}

func (p *productXML) toDomain() *domain.SupplierItem {
	return &domain.SupplierItem{
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		ProducerName:      p.ProducerName,
		Warranty:          p.Warranty,
		ImageURL:          p.ImageURL,
		Status:            p.Status,
		EndUserPrice:      p.EndUserPrice,
		YourPriceWithFees: p.YourPriceWithFees,
		Vat:               p.Vat,
		OnStockText:       p.OnStockText,
		OnStock:           p.OnStock == "true",
		EANCode:           p.EANCode,
		CommodityName:     p.CommodityName,
		CommodityCode:     p.CommodityCode,
	}
}

// SupplierFeed — ленивый, конечный, не перезапускаемый поток позиций фида.
// Потребитель вытягивает позиции по одной через Next; в памяти
// материализуется только текущая позиция.
type SupplierFeed struct {
	dec    *xml.Decoder
	path   []string
	closer io.Closer
}

// NewSupplierFeed создаёт потоковый ридер поверх XML-источника.
// closer (может быть nil) закрывается вместе с фидом.
func NewSupplierFeed(r io.Reader, closer io.Closer) *SupplierFeed {
	return &SupplierFeed{
		dec:    xml.NewDecoder(r),
		path:   make([]string, 0, 8),
		closer: closer,
	}
}

// Next возвращает следующую позицию фида либо io.EOF в конце документа.
// После ошибки разбора поток прерывается; уже выданные позиции не отзываются.
func (f *SupplierFeed) Next() (*domain.SupplierItem, error) {
	for {
		tok, err := f.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, e.WrapKind(e.ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f.path = append(f.path, t.Name.Local)
			if !f.atItemPath() {
				continue
			}

			var raw productXML
			if err := f.dec.DecodeElement(&raw, &t); err != nil {
				return nil, e.WrapKind(e.ErrParse, err)
			}

			// DecodeElement поглощает закрывающий тег позиции
			f.path = f.path[:len(f.path)-1]
			return raw.toDomain(), nil
		case xml.EndElement:
			if len(f.path) > 0 {
				f.path = f.path[:len(f.path)-1]
			}
		}
	}
}

func (f *SupplierFeed) atItemPath() bool {
	if len(f.path) != len(supplierItemPath) {
		return false
	}
	for i, name := range supplierItemPath {
		if f.path[i] != name {
			return false
		}
	}

	return true
}

func (f *SupplierFeed) Close() error {
	if f.closer == nil {
		return nil
	}

	return f.closer.Close()
}

// Package export собирает итоговый импортный фид витрины: сливает
// каноническую позицию поставщика с кураторскими полями витрины и
// сериализует результат в SHOP/SHOPITEM XML одним проходом.
package export

import (
	"encoding/xml"
	"errors"
	"io"

	"github.com/jimlawless/whereami"
	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
)

// RecordSource — потоковый источник записей каталога, упорядоченных по коду.
// Возвращает io.EOF в конце потока.
type RecordSource interface {
	Next() (*domain.CatalogRecord, error)
}

// Options задаёт правила слияния. Метки — данные витрины, приходят из конфигурации.
type Options struct {
	// ReadyToShipLabel — метка доступности витрины, которая зависит от
	// фактического остатка и потому перекрывается канонической меткой.
	ReadyToShipLabel string
	// OutOfStockLeadTime — срок поставки, проставляемый новым позициям.
	OutOfStockLeadTime string
}

type Exporter struct {
	opts Options
}

func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Write сериализует слитый каталог в w. Позиции пишутся по одной,
// полный документ в памяти не собирается.
func (ex *Exporter) Write(w io.Writer, src RecordSource) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	shop := xml.StartElement{Name: xml.Name{Local: "SHOP"}}
	if err := enc.EncodeToken(shop); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		if !rec.HasCanonical() {
			continue
		}

		if err := enc.Encode(ex.mergeRecord(rec)); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if err := enc.EncodeToken(shop.End()); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return enc.Flush()
}

// mergeRecord применяет правила приоритета между канонической позицией
// и кураторскими полями витрины.
//
// Код уже существует на витрине: выгружаются только совместимые с
// кураторством поля (код, закупочная цена, DPH, остаток). Цены
// PRICE/STANDARD_PRICE/PRICE_VAT правятся на витрине вручную и никогда
// не перезаписываются. Метка доступности витрины сохраняется, кроме
// метки "к отправке": она отражает остаток и обновляется из фида.
//
// Новая позиция: выгружается целиком, получает срок поставки для
// отсутствующих на складе и скрывается до ручного кураторства.
func (ex *Exporter) mergeRecord(rec *domain.CatalogRecord) any {
	c := rec.Canonical

	if o := rec.Storefront; o != nil {
		availability := o.AvailabilityInStock
		if availability == ex.opts.ReadyToShipLabel {
			availability = c.AvailabilityInStock
		}

		return overrideItemXML{
			Code:          c.Code,
			PurchasePrice: c.PurchasePrice,
			Vat:           c.Vat,
			Stock: stockXML{
				Amount:        c.StockAmount,
				MinimalAmount: c.StockMinimalAmount,
			},
			AvailabilityInStock: availability,
			Visibility:          visibility(o.Visible),
		}
	}

	return fullItemXML{
		Name:         c.Name,
		Description:  c.Description,
		Manufacturer: c.Manufacturer,
		Warranty:     c.Warranty,
		ItemType:     c.ItemType,
		Unit:         c.Unit,
		Images:       imagesXML{Image: c.Image},
		Flags: flagsXML{
			Action: c.FlagAction,
			New:    c.FlagNew,
			Tip:    c.FlagTip,
		},
		Code:          c.Code,
		Price:         c.Price,
		StandardPrice: c.StandardPrice,
		PurchasePrice: c.PurchasePrice,
		PriceVat:      c.PriceVat,
		Vat:           c.Vat,
		EAN:           c.EAN,
		Currency:      c.Currency,
		Stock: stockXML{
			Amount:        c.StockAmount,
			MinimalAmount: c.StockMinimalAmount,
		},
		AvailabilityInStock:  c.AvailabilityInStock,
		AvailabilityOutStock: ex.opts.OutOfStockLeadTime,
		Visibility:           "hidden",
	}
}

func visibility(visible bool) string {
	if visible {
		return "visible"
	}

	return "hidden"
}

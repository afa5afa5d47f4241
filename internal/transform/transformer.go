// Package transform реализует чистую конвертацию позиции поставщика
// в каноническую позицию целевой схемы: арифметика цен и DPH,
// нормализация складских остатков и EAN-кодов, вывод флагов.
package transform

import (
	"fmt"
	"regexp"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/shopspring/decimal"
)

const (
	itemType = "product"
	itemUnit = "ks"
)

// Options задаёт параметры конвертации. Текстовые метки и маркеры категории —
// данные витрины, не логика, поэтому приходят из конфигурации.
type Options struct {
	CategoryName string // маркер категории по названию комодитной группы
	CategoryCode string // маркер категории по коду комодитной группы
	Currency     string

	AvailabilityOnStock string
	AvailabilityNoStock string

	// InvalidEANFallback подставляется вместо EAN-кода невалидной длины.
	// Пустая строка — код опускается.
	InvalidEANFallback string
}

// Transformer — детерминированная конвертация без I/O: одинаковая позиция
// на входе всегда даёт идентичную каноническую позицию на выходе.
type Transformer struct {
	opts Options
}

func NewTransformer(opts Options) *Transformer {
	return &Transformer{opts: opts}
}

// InScope сообщает, относится ли позиция к синхронизируемой категории.
// Позиции вне категории отбрасываются до конвертации.
func (t *Transformer) InScope(item *domain.SupplierItem) bool {
	return item.CommodityName == t.opts.CategoryName ||
		item.CommodityCode == t.opts.CategoryCode
}

// Transform конвертирует позицию поставщика в каноническую позицию.
// Позиция без обязательных полей (код, цены, DPH) отклоняется с e.ErrItemInvalid.
func (t *Transformer) Transform(item *domain.SupplierItem) (*domain.CanonicalItem, error) {
	if item.Code == "" {
		return nil, e.WrapKind(e.ErrItemInvalid, e.ErrCodeRequired)
	}

	endUserPrice, err := decimal.NewFromString(item.EndUserPrice)
	if err != nil {
		return nil, e.WrapKind(e.ErrItemInvalid, fmt.Errorf("item %s: end user price %q: %w", item.Code, item.EndUserPrice, err))
	}

	purchasePrice, err := decimal.NewFromString(item.YourPriceWithFees)
	if err != nil {
		return nil, e.WrapKind(e.ErrItemInvalid, fmt.Errorf("item %s: purchase price %q: %w", item.Code, item.YourPriceWithFees, err))
	}

	vat, err := decimal.NewFromString(item.Vat)
	if err != nil {
		return nil, e.WrapKind(e.ErrItemInvalid, fmt.Errorf("item %s: vat %q: %w", item.Code, item.Vat, err))
	}

	// Процент DPH сначала округляется до целого (half-up), и только затем
	// используется в расчёте цен с DPH.
	vatPercent := vat.Round(0)

	availability := t.opts.AvailabilityNoStock
	if item.OnStock {
		availability = t.opts.AvailabilityOnStock
	}

	// Описание не должно быть пустым: при его отсутствии берётся название.
	description := item.Description
	if description == "" {
		description = item.Name
	}

	return &domain.CanonicalItem{
		Name:         item.Name,
		Description:  description,
		Manufacturer: item.ProducerName,
		Warranty:     item.Warranty,
		ItemType:     itemType,
		Unit:         itemUnit,
		Image:        item.ImageURL,

		FlagAction: boolToFlag(item.Status == "Doprodej"),
		FlagNew:    boolToFlag(item.Status == "Novinka"),
		FlagTip:    boolToFlag(item.Status == "TOP Produkt"),

		Code:          item.Code,
		Price:         item.EndUserPrice,
		StandardPrice: addVat(endUserPrice, vatPercent),
		PurchasePrice: addVat(purchasePrice, vatPercent),
		PriceVat:      addVat(endUserPrice, vatPercent),
		Vat:           vatPercent.String(),
		EAN:           t.normalizeEAN(item.EANCode),
		Currency:      t.opts.Currency,

		StockAmount:        normalizeStock(item.OnStockText),
		StockMinimalAmount: "0",

		AvailabilityInStock: availability,
	}, nil
}

// addVat возвращает цену с DPH, округлённую half-up до двух знаков.
func addVat(price, vatPercent decimal.Decimal) string {
	vat := vatPercent.Mul(decimal.NewFromFloat(0.01))
	return price.Mul(decimal.NewFromInt(1).Add(vat)).Round(2).StringFixed(2)
}

// leadingDigits выделяет ведущую последовательность цифр.
var leadingDigits = regexp.MustCompile(`^[0-9]+`)

// normalizeStock приводит складской текст поставщика к целому количеству.
// Поставщик отдаёт либо точное десятичное количество ("12,00"), либо
// диапазон или порог ("10-49", "100+"). Целевая схема принимает только целые
// количества, поэтому берётся ведущее число, а хвост за ',', '-' или '+'
// отбрасывается:
//
//	"12,00" -> "12"
//	"10-49" -> "10"
//	"100+"  -> "100"
//	"7"     -> "7"
func normalizeStock(onStockText string) string {
	if m := leadingDigits.FindString(onStockText); m != "" {
		return m
	}

	return "0"
}

// normalizeEAN приводит EAN-код к EAN-13. Целевая схема принимает только
// EAN-13; коды поставщика бывают пустыми, 6-, 13- и 14-значными.
// 14-значные конвертируются, 13-значные проходят без изменений, остальные
// длины считаются невалидными и заменяются настроенным значением.
func (t *Transformer) normalizeEAN(code string) string {
	switch {
	case code == "":
		return ""
	case !digitsOnly(code):
		return t.opts.InvalidEANFallback
	case len(code) == 13:
		return code
	case len(code) == 14:
		return ean14ToEAN13(code)
	default:
		return t.opts.InvalidEANFallback
	}
}

func boolToFlag(value bool) string {
	if value {
		return "1"
	}

	return "0"
}

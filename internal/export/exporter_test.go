package export

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
)

// sliceSource отдаёт записи из среза, как это делает курсор хранилища.
type sliceSource struct {
	records []*domain.CatalogRecord
	pos     int
}

func (s *sliceSource) Next() (*domain.CatalogRecord, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}

	rec := s.records[s.pos]
	s.pos++

	return rec, nil
}

func testExporter() *Exporter {
	return NewExporter(Options{
		ReadyToShipLabel:   "Ihned k odeslání",
		OutOfStockLeadTime: "14 dní",
	})
}

func canonicalFixture(code string) *domain.CanonicalItem {
	return &domain.CanonicalItem{
		Name:                "Filament PLA 1kg",
		Description:         "Tiskova struna",
		Manufacturer:        "Prusament",
		Warranty:            "24",
		ItemType:            "product",
		Unit:                "ks",
		Image:               "https://img.example.com/x.jpg",
		FlagAction:          "0",
		FlagNew:             "1",
		FlagTip:             "0",
		Code:                code,
		Price:               "1000",
		StandardPrice:       "1210.00",
		PurchasePrice:       "968.61",
		PriceVat:            "1210.00",
		Vat:                 "21",
		EAN:                 "8594045931525",
		Currency:            "CZK",
		StockAmount:         "12",
		StockMinimalAmount:  "0",
		AvailabilityInStock: "Externí sklad",
	}
}

func render(t *testing.T, records ...*domain.CatalogRecord) string {
	t.Helper()

	var buf bytes.Buffer
	err := testExporter().Write(&buf, &sliceSource{records: records})
	require.NoError(t, err)

	return buf.String()
}

func TestWriteNewItem(t *testing.T) {
	out := render(t, &domain.CatalogRecord{
		Code:      "AB123",
		Canonical: canonicalFixture("AB123"),
	})

	assert.True(t, strings.HasPrefix(out, xmlHeaderLine))
	assert.Contains(t, out, "<SHOP>")
	assert.Contains(t, out, "</SHOP>")

	// Новая позиция выгружается целиком, скрытой и со сроком поставки.
	assert.Contains(t, out, "<NAME>Filament PLA 1kg</NAME>")
	assert.Contains(t, out, "<CODE>AB123</CODE>")
	assert.Contains(t, out, "<PRICE>1000</PRICE>")
	assert.Contains(t, out, "<STANDARD_PRICE>1210.00</STANDARD_PRICE>")
	assert.Contains(t, out, "<PRICE_VAT>1210.00</PRICE_VAT>")
	assert.Contains(t, out, "<EAN>8594045931525</EAN>")
	assert.Contains(t, out, "<NEW>1</NEW>")
	assert.Contains(t, out, "<AMOUNT>12</AMOUNT>")
	assert.Contains(t, out, "<AVAILABILITY_IN_STOCK>Externí sklad</AVAILABILITY_IN_STOCK>")
	assert.Contains(t, out, "<AVAILABILITY_OUT_OF_STOCK>14 dní</AVAILABILITY_OUT_OF_STOCK>")
	assert.Contains(t, out, "<VISIBILITY>hidden</VISIBILITY>")
}

func TestWriteExistingItemKeepsCuratedFields(t *testing.T) {
	out := render(t, &domain.CatalogRecord{
		Code:       "AB123",
		Canonical:  canonicalFixture("AB123"),
		Storefront: domain.NewStorefrontOverride(true, "Na dotaz"),
	})

	// Выгружаются только совместимые с кураторством поля.
	assert.Contains(t, out, "<CODE>AB123</CODE>")
	assert.Contains(t, out, "<PURCHASE_PRICE>968.61</PURCHASE_PRICE>")
	assert.Contains(t, out, "<VAT>21</VAT>")
	assert.Contains(t, out, "<AMOUNT>12</AMOUNT>")
	assert.NotContains(t, out, "<PRICE>")
	assert.NotContains(t, out, "<STANDARD_PRICE>")
	assert.NotContains(t, out, "<NAME>")

	// Кураторская метка доступности сохраняется.
	assert.Contains(t, out, "<AVAILABILITY_IN_STOCK>Na dotaz</AVAILABILITY_IN_STOCK>")
	assert.Contains(t, out, "<VISIBILITY>visible</VISIBILITY>")
}

func TestWriteReadyToShipLabelFollowsStock(t *testing.T) {
	// Метка "к отправке" отражает фактический остаток,
	// поэтому заменяется канонической меткой из фида.
	out := render(t, &domain.CatalogRecord{
		Code:       "AB123",
		Canonical:  canonicalFixture("AB123"),
		Storefront: domain.NewStorefrontOverride(true, "Ihned k odeslání"),
	})

	assert.Contains(t, out, "<AVAILABILITY_IN_STOCK>Externí sklad</AVAILABILITY_IN_STOCK>")
	assert.NotContains(t, out, "Ihned k odeslání")
}

func TestWriteHiddenOverride(t *testing.T) {
	out := render(t, &domain.CatalogRecord{
		Code:       "AB123",
		Canonical:  canonicalFixture("AB123"),
		Storefront: domain.NewStorefrontOverride(false, "Skladem"),
	})

	assert.Contains(t, out, "<VISIBILITY>hidden</VISIBILITY>")
}

func TestWriteSkipsUnconvertedRecords(t *testing.T) {
	out := render(t,
		&domain.CatalogRecord{Code: "RAW", Supplier: &domain.SupplierItem{Code: "RAW"}},
		&domain.CatalogRecord{Code: "OK", Canonical: canonicalFixture("OK")},
	)

	assert.NotContains(t, out, "RAW")
	assert.Contains(t, out, "<CODE>OK</CODE>")
}

func TestWriteDeterministic(t *testing.T) {
	records := func() []*domain.CatalogRecord {
		return []*domain.CatalogRecord{
			{Code: "A", Canonical: canonicalFixture("A")},
			{Code: "B", Canonical: canonicalFixture("B"), Storefront: domain.NewStorefrontOverride(true, "Skladem")},
		}
	}

	var first, second bytes.Buffer
	require.NoError(t, testExporter().Write(&first, &sliceSource{records: records()}))
	require.NoError(t, testExporter().Write(&second, &sliceSource{records: records()}))

	assert.Equal(t, first.String(), second.String())

	// Порядок следует порядку источника.
	aIdx := strings.Index(first.String(), "<CODE>A</CODE>")
	bIdx := strings.Index(first.String(), "<CODE>B</CODE>")
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, bIdx, 0)
	assert.Less(t, aIdx, bIdx)
}

func TestWriteEmptyCatalog(t *testing.T) {
	out := render(t)

	assert.Contains(t, out, "<SHOP>")
	assert.Contains(t, out, "</SHOP>")
	assert.NotContains(t, out, "SHOPITEM")
}

const xmlHeaderLine = `<?xml version="1.0" encoding="UTF-8"?>`

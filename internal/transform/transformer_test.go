package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
)

func testOptions() Options {
	return Options{
		CategoryName:        "3D TISK",
		CategoryCode:        "3DP",
		Currency:            "CZK",
		AvailabilityOnStock: "Externí sklad",
		AvailabilityNoStock: "Není skladem",
	}
}

func testItem() *domain.SupplierItem {
	return &domain.SupplierItem{
		Code:              "AB123",
		Name:              "Filament PLA 1kg",
		Description:       "Tiskova struna PLA",
		ProducerName:      "Prusament",
		Warranty:          "24",
		ImageURL:          "https://img.example.com/ab123.jpg",
		Status:            "",
		EndUserPrice:      "1000",
		YourPriceWithFees: "800.50",
		Vat:               "21",
		OnStockText:       "12,00",
		OnStock:           true,
		EANCode:           "8594045931525",
		CommodityName:     "3D TISK",
		CommodityCode:     "3DP",
	}
}

func TestTransform(t *testing.T) {
	tr := NewTransformer(testOptions())

	item, err := tr.Transform(testItem())
	require.NoError(t, err)

	assert.Equal(t, "AB123", item.Code)
	assert.Equal(t, "Filament PLA 1kg", item.Name)
	assert.Equal(t, "Tiskova struna PLA", item.Description)
	assert.Equal(t, "Prusament", item.Manufacturer)
	assert.Equal(t, "product", item.ItemType)
	assert.Equal(t, "ks", item.Unit)
	assert.Equal(t, "CZK", item.Currency)

	assert.Equal(t, "1000", item.Price)
	assert.Equal(t, "1210.00", item.StandardPrice)
	assert.Equal(t, "1210.00", item.PriceVat)
	assert.Equal(t, "968.61", item.PurchasePrice)
	assert.Equal(t, "21", item.Vat)

	assert.Equal(t, "12", item.StockAmount)
	assert.Equal(t, "0", item.StockMinimalAmount)
	assert.Equal(t, "Externí sklad", item.AvailabilityInStock)
	assert.Equal(t, "8594045931525", item.EAN)
}

func TestTransformDeterministic(t *testing.T) {
	tr := NewTransformer(testOptions())

	first, err := tr.Transform(testItem())
	require.NoError(t, err)

	second, err := tr.Transform(testItem())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTransformVatRounding(t *testing.T) {
	tests := []struct {
		name      string
		vat       string
		wantVat   string
		wantPrice string // для EndUserPrice = "1000"
	}{
		{name: "integer vat", vat: "21", wantVat: "21", wantPrice: "1210.00"},
		{name: "fraction rounds up", vat: "20.5", wantVat: "21", wantPrice: "1210.00"},
		{name: "fraction rounds down", vat: "14.4", wantVat: "14", wantPrice: "1140.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransformer(testOptions())
			src := testItem()
			src.Vat = tt.vat

			item, err := tr.Transform(src)
			require.NoError(t, err)

			assert.Equal(t, tt.wantVat, item.Vat)
			assert.Equal(t, tt.wantPrice, item.StandardPrice)
		})
	}
}

func TestAddVatHalfUp(t *testing.T) {
	// 999.99 * 1.21 = 1209.9879 -> 1209.99
	got := addVat(decimal.RequireFromString("999.99"), decimal.NewFromInt(21))
	assert.Equal(t, "1209.99", got)

	// 100.25 * 1.10 = 110.275 -> половина округляется вверх
	got = addVat(decimal.RequireFromString("100.25"), decimal.NewFromInt(10))
	assert.Equal(t, "110.28", got)
}

func TestTransformFlags(t *testing.T) {
	tests := []struct {
		status     string
		wantAction string
		wantNew    string
		wantTip    string
	}{
		{status: "Doprodej", wantAction: "1", wantNew: "0", wantTip: "0"},
		{status: "Novinka", wantAction: "0", wantNew: "1", wantTip: "0"},
		{status: "TOP Produkt", wantAction: "0", wantNew: "0", wantTip: "1"},
		{status: "", wantAction: "0", wantNew: "0", wantTip: "0"},
		{status: "Bežný", wantAction: "0", wantNew: "0", wantTip: "0"},
	}

	tr := NewTransformer(testOptions())
	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			src := testItem()
			src.Status = tt.status

			item, err := tr.Transform(src)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAction, item.FlagAction)
			assert.Equal(t, tt.wantNew, item.FlagNew)
			assert.Equal(t, tt.wantTip, item.FlagTip)
		})
	}
}

func TestTransformDescriptionFallback(t *testing.T) {
	tr := NewTransformer(testOptions())
	src := testItem()
	src.Description = ""

	item, err := tr.Transform(src)
	require.NoError(t, err)

	assert.Equal(t, src.Name, item.Description)
}

func TestTransformAvailability(t *testing.T) {
	tr := NewTransformer(testOptions())

	src := testItem()
	src.OnStock = false

	item, err := tr.Transform(src)
	require.NoError(t, err)
	assert.Equal(t, "Není skladem", item.AvailabilityInStock)
}

func TestTransformInvalidItem(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.SupplierItem)
	}{
		{name: "missing code", mutate: func(i *domain.SupplierItem) { i.Code = "" }},
		{name: "bad end user price", mutate: func(i *domain.SupplierItem) { i.EndUserPrice = "n/a" }},
		{name: "bad purchase price", mutate: func(i *domain.SupplierItem) { i.YourPriceWithFees = "" }},
		{name: "bad vat", mutate: func(i *domain.SupplierItem) { i.Vat = "dvacet" }},
	}

	tr := NewTransformer(testOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testItem()
			tt.mutate(src)

			_, err := tr.Transform(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, e.ErrItemInvalid)
		})
	}
}

func TestInScope(t *testing.T) {
	tr := NewTransformer(testOptions())

	tests := []struct {
		name          string
		commodityName string
		commodityCode string
		want          bool
	}{
		{name: "name match", commodityName: "3D TISK", commodityCode: "XX", want: true},
		{name: "code match", commodityName: "Tiskárny", commodityCode: "3DP", want: true},
		{name: "both match", commodityName: "3D TISK", commodityCode: "3DP", want: true},
		{name: "no match", commodityName: "Notebooky", commodityCode: "NTB", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &domain.SupplierItem{CommodityName: tt.commodityName, CommodityCode: tt.commodityCode}
			assert.Equal(t, tt.want, tr.InScope(item))
		})
	}
}

func TestNormalizeStock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "12,00", want: "12"},
		{in: "10-49", want: "10"},
		{in: "100+", want: "100"},
		{in: "7", want: "7"},
		{in: "", want: "0"},
		{in: "skladem", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeStock(tt.in))
		})
	}
}

package converter

import "time"

// RecordModel представляет запись таблицы catalog_records в PostgreSQL.
// Группы полей поставщика и витрины лежат в отдельных JSONB-колонках,
// каждая обновляется только своим путём синхронизации.
type RecordModel struct {
	Code       string           `db:"code"`
	Supplier   *SupplierModel   `db:"supplier"`
	Canonical  *CanonicalModel  `db:"canonical"`
	Storefront *StorefrontModel `db:"storefront"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  *time.Time       `db:"updated_at"`
}

// SupplierModel — JSONB-представление сырой позиции поставщика.
type SupplierModel struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	ProducerName      string `json:"producer_name"`
	Warranty          string `json:"warranty"`
	ImageURL          string `json:"image_url"`
	Status            string `json:"status"`
	EndUserPrice      string `json:"end_user_price"`
	YourPriceWithFees string `json:"your_price_with_fees"`
	Vat               string `json:"vat"`
	OnStockText       string `json:"on_stock_text"`
	OnStock           bool   `json:"on_stock"`
	EANCode           string `json:"ean_code"`
	CommodityName     string `json:"commodity_name"`
	CommodityCode     string `json:"commodity_code"`
}

// CanonicalModel — JSONB-представление канонической позиции.
type CanonicalModel struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer"`
	Warranty     string `json:"warranty"`
	ItemType     string `json:"item_type"`
	Unit         string `json:"unit"`
	Image        string `json:"image"`

	FlagAction string `json:"flag_action"`
	FlagNew    string `json:"flag_new"`
	FlagTip    string `json:"flag_tip"`

	Code          string `json:"code"`
	Price         string `json:"price"`
	StandardPrice string `json:"standard_price"`
	PurchasePrice string `json:"purchase_price"`
	PriceVat      string `json:"price_vat"`
	Vat           string `json:"vat"`
	EAN           string `json:"ean"`
	Currency      string `json:"currency"`

	StockAmount        string `json:"stock_amount"`
	StockMinimalAmount string `json:"stock_minimal_amount"`

	AvailabilityInStock string `json:"availability_in_stock"`
}

// StorefrontModel — JSONB-представление кураторских полей витрины.
type StorefrontModel struct {
	Visible             bool   `json:"visible"`
	AvailabilityInStock string `json:"availability_in_stock"`
}

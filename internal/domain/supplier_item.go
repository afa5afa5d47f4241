package domain

// SupplierItem описывает сырую позицию из фида поставщика (ED).
// Все значения хранятся в том виде, в котором пришли из фида.
type SupplierItem struct {
	Code             string
	Name             string
	Description      string
	ProducerName     string
	Warranty         string
	ImageURL         string
	Status           string
	EndUserPrice     string // конечная цена без DPH
	YourPriceWithFees string // закупочная цена (с поплатками) без DPH
	Vat              string // процент DPH, может содержать дробную часть
	OnStockText      string // точное количество ("12,00") или диапазон ("10-49", "100+")
	OnStock          bool
	EANCode          string
	CommodityName    string
	CommodityCode    string
}

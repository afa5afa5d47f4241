package domain

// CanonicalItem — позиция, приведённая к целевой схеме (Shoptet).
// Значения хранятся как строки вывода: после конвертации позиция неизменна.
type CanonicalItem struct {
	Name         string
	Description  string
	Manufacturer string
	Warranty     string
	ItemType     string
	Unit         string
	Image        string

	// Флаги акций, "1"/"0"
	FlagAction string
	FlagNew    string
	FlagTip    string

	Code          string
	Price         string // конечная цена без DPH, как в фиде
	StandardPrice string // конечная цена с DPH, 2 знака
	PurchasePrice string // закупочная цена с DPH, 2 знака
	PriceVat      string // конечная цена с DPH, 2 знака
	Vat           string // целый процент DPH
	EAN           string // EAN-13 либо настроенное значение для невалидных кодов
	Currency      string

	StockAmount        string // целое количество на складе
	StockMinimalAmount string

	AvailabilityInStock string // текстовая доступность ("Externí sklad" / "Není skladem")
}

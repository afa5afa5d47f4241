package export

import "encoding/xml"

// Разметка SHOPITEM для новой позиции (полная выгрузка).
type fullItemXML struct {
	XMLName xml.Name `xml:"SHOPITEM"`

	Name         string    `xml:"NAME"`
	Description  string    `xml:"DESCRIPTION"`
	Manufacturer string    `xml:"MANUFACTURER"`
	Warranty     string    `xml:"WARRANTY"`
	ItemType     string    `xml:"ITEM_TYPE"`
	Unit         string    `xml:"UNIT"`
	Images       imagesXML `xml:"IMAGES"`
	Flags        flagsXML  `xml:"FLAGS"`

	Code          string `xml:"CODE"`
	Price         string `xml:"PRICE"`
	StandardPrice string `xml:"STANDARD_PRICE"`
	PurchasePrice string `xml:"PURCHASE_PRICE"`
	PriceVat      string `xml:"PRICE_VAT"`
	Vat           string `xml:"VAT"`
	EAN           string `xml:"EAN"`
	Currency      string `xml:"CURRENCY"`

	Stock stockXML `xml:"STOCK"`

	AvailabilityInStock  string `xml:"AVAILABILITY_IN_STOCK"`
	AvailabilityOutStock string `xml:"AVAILABILITY_OUT_OF_STOCK"`
	Visibility           string `xml:"VISIBILITY"`
}

// Разметка SHOPITEM для позиции, уже существующей на витрине:
// только поля, которые не затирают ручное кураторство.
type overrideItemXML struct {
	XMLName xml.Name `xml:"SHOPITEM"`

	Code          string   `xml:"CODE"`
	PurchasePrice string   `xml:"PURCHASE_PRICE"`
	Vat           string   `xml:"VAT"`
	Stock         stockXML `xml:"STOCK"`

	AvailabilityInStock string `xml:"AVAILABILITY_IN_STOCK"`
	Visibility          string `xml:"VISIBILITY"`
}

type imagesXML struct {
	Image string `xml:"IMAGE"`
}

type flagsXML struct {
	Action string `xml:"ACTION"`
	New    string `xml:"NEW"`
	Tip    string `xml:"TIP"`
}

type stockXML struct {
	Amount        string `xml:"AMOUNT"`
	MinimalAmount string `xml:"MINIMAL_AMOUNT"`
}

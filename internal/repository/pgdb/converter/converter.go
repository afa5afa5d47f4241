package converter

import "github.com/s3dt-tech/catalog-backend/internal/domain"

// CatalogConverter преобразует записи каталога между domain и моделью PostgreSQL.
type CatalogConverter struct{}

func NewCatalogConverter() *CatalogConverter {
	return &CatalogConverter{}
}

func (c *CatalogConverter) SupplierToModel(entity *domain.SupplierItem) *SupplierModel {
	if entity == nil {
		return nil
	}

	return &SupplierModel{
		Code:              entity.Code,
		Name:              entity.Name,
		Description:       entity.Description,
		ProducerName:      entity.ProducerName,
		Warranty:          entity.Warranty,
		ImageURL:          entity.ImageURL,
		Status:            entity.Status,
		EndUserPrice:      entity.EndUserPrice,
		YourPriceWithFees: entity.YourPriceWithFees,
		Vat:               entity.Vat,
		OnStockText:       entity.OnStockText,
		OnStock:           entity.OnStock,
		EANCode:           entity.EANCode,
		CommodityName:     entity.CommodityName,
		CommodityCode:     entity.CommodityCode,
	}
}

func (c *CatalogConverter) SupplierToEntity(model *SupplierModel) *domain.SupplierItem {
	if model == nil {
		return nil
	}

	return &domain.SupplierItem{
		Code:              model.Code,
		Name:              model.Name,
		Description:       model.Description,
		ProducerName:      model.ProducerName,
		Warranty:          model.Warranty,
		ImageURL:          model.ImageURL,
		Status:            model.Status,
		EndUserPrice:      model.EndUserPrice,
		YourPriceWithFees: model.YourPriceWithFees,
		Vat:               model.Vat,
		OnStockText:       model.OnStockText,
		OnStock:           model.OnStock,
		EANCode:           model.EANCode,
		CommodityName:     model.CommodityName,
		CommodityCode:     model.CommodityCode,
	}
}

func (c *CatalogConverter) CanonicalToModel(entity *domain.CanonicalItem) *CanonicalModel {
	if entity == nil {
		return nil
	}

	return &CanonicalModel{
		Name:                entity.Name,
		Description:         entity.Description,
		Manufacturer:        entity.Manufacturer,
		Warranty:            entity.Warranty,
		ItemType:            entity.ItemType,
		Unit:                entity.Unit,
		Image:               entity.Image,
		FlagAction:          entity.FlagAction,
		FlagNew:             entity.FlagNew,
		FlagTip:             entity.FlagTip,
		Code:                entity.Code,
		Price:               entity.Price,
		StandardPrice:       entity.StandardPrice,
		PurchasePrice:       entity.PurchasePrice,
		PriceVat:            entity.PriceVat,
		Vat:                 entity.Vat,
		EAN:                 entity.EAN,
		Currency:            entity.Currency,
		StockAmount:         entity.StockAmount,
		StockMinimalAmount:  entity.StockMinimalAmount,
		AvailabilityInStock: entity.AvailabilityInStock,
	}
}

func (c *CatalogConverter) CanonicalToEntity(model *CanonicalModel) *domain.CanonicalItem {
	if model == nil {
		return nil
	}

	return &domain.CanonicalItem{
		Name:                model.Name,
		Description:         model.Description,
		Manufacturer:        model.Manufacturer,
		Warranty:            model.Warranty,
		ItemType:            model.ItemType,
		Unit:                model.Unit,
		Image:               model.Image,
		FlagAction:          model.FlagAction,
		FlagNew:             model.FlagNew,
		FlagTip:             model.FlagTip,
		Code:                model.Code,
		Price:               model.Price,
		StandardPrice:       model.StandardPrice,
		PurchasePrice:       model.PurchasePrice,
		PriceVat:            model.PriceVat,
		Vat:                 model.Vat,
		EAN:                 model.EAN,
		Currency:            model.Currency,
		StockAmount:         model.StockAmount,
		StockMinimalAmount:  model.StockMinimalAmount,
		AvailabilityInStock: model.AvailabilityInStock,
	}
}

func (c *CatalogConverter) StorefrontToModel(entity *domain.StorefrontOverride) *StorefrontModel {
	if entity == nil {
		return nil
	}

	return &StorefrontModel{
		Visible:             entity.Visible,
		AvailabilityInStock: entity.AvailabilityInStock,
	}
}

func (c *CatalogConverter) StorefrontToEntity(model *StorefrontModel) *domain.StorefrontOverride {
	if model == nil {
		return nil
	}

	return &domain.StorefrontOverride{
		Visible:             model.Visible,
		AvailabilityInStock: model.AvailabilityInStock,
	}
}

func (c *CatalogConverter) RecordToEntity(model *RecordModel) *domain.CatalogRecord {
	if model == nil {
		return nil
	}

	return &domain.CatalogRecord{
		Code:       model.Code,
		Supplier:   c.SupplierToEntity(model.Supplier),
		Canonical:  c.CanonicalToEntity(model.Canonical),
		Storefront: c.StorefrontToEntity(model.Storefront),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

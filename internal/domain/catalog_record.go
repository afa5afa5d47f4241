package domain

import "time"

// CatalogRecord — запись каталога, ключ — код товара.
// Поля поставщика и витрины обновляются независимо друг от друга:
// каждый путь синхронизации пишет только свою группу полей.
type CatalogRecord struct {
	Code       string
	Supplier   *SupplierItem
	Canonical  *CanonicalItem
	Storefront *StorefrontOverride
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// HasCanonical сообщает, была ли запись сконвертирована в целевую схему.
func (r *CatalogRecord) HasCanonical() bool {
	return r.Canonical != nil
}

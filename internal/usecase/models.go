package usecase

import "github.com/s3dt-tech/catalog-backend/internal/domain"

// StorefrontRow — строка экспорта витрины: код товара и его кураторские поля.
type StorefrontRow struct {
	Code     string
	Override domain.StorefrontOverride
}

type PublishExportRes struct {
	ObjectKey string
}

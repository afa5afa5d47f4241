package domain

// StorefrontOverride — поля позиции, курируемые вручную на витрине.
// Присутствует только для кодов, которые уже существуют на витрине.
type StorefrontOverride struct {
	Visible             bool
	AvailabilityInStock string
}

func NewStorefrontOverride(visible bool, availability string) *StorefrontOverride {
	return &StorefrontOverride{
		Visible:             visible,
		AvailabilityInStock: availability,
	}
}

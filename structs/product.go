package structs

import "time"

// ProductListOptions filters the storefront and vendor catalog queries.
type ProductListOptions struct {
	Page          int
	PageSize      int
	SearchTerm    string
	IsPublished   *bool
	IsRentable    *bool
	MinPrice      *int64
	MaxPrice      *int64
	SKUs          []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortBy        string
	SortDirection string
}

// PricingRow is the request shape for one rental_pricing tier. The full
// set is replaced wholesale on every product write.
type PricingRow struct {
	DurationUnit      string `json:"duration_unit" validate:"required,oneof=hourly daily weekly custom"`
	PricePerUnitCents int64  `json:"price_per_unit_cents" validate:"required,gte=0"`
	LateFeeCentsPerHr int64  `json:"late_fee_cents_per_hour" validate:"omitempty,gte=0"`
	CustomUnitHours   int    `json:"custom_unit_hours" validate:"omitempty,gte=1"`
}

type UpsertProductRequest struct {
	Name           string       `json:"name" validate:"required,min=2,max=200"`
	Description    string       `json:"description" validate:"omitempty,max=2000"`
	SKU            string       `json:"sku" validate:"omitempty,min=3,max=50"`
	CostPriceCents int64        `json:"cost_price_cents" validate:"omitempty,gte=0"`
	QuantityOnHand int          `json:"quantity_on_hand" validate:"gte=0"`
	IsPublished    bool         `json:"is_published"`
	IsRentable     bool         `json:"is_rentable"`
	Pricing        []PricingRow `json:"pricing" validate:"required,min=1,dive"`
}

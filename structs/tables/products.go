package tables

import (
	"time"

	"github.com/google/uuid"
)

type DurationUnit string

const (
	UnitHourly DurationUnit = "hourly"
	UnitDaily  DurationUnit = "daily"
	UnitWeekly DurationUnit = "weekly"
	UnitCustom DurationUnit = "custom"
)

// ProductTemplate is a rentable item owned by one vendor. The storefront
// only ever sees rows with both flags set.
type ProductTemplate struct {
	tableName      struct{}  `bun:"table:product_templates,alias:pt"`
	ID             uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	VendorID       uuid.UUID `bun:"vendor_id,notnull,type:uuid" json:"vendor_id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Description    string    `bun:"description" json:"description,omitempty"`
	SKU            string    `bun:"sku,notnull" json:"sku"`
	CostPriceCents int64     `bun:"cost_price_cents,notnull,default:0" json:"cost_price_cents"`
	QuantityOnHand int       `bun:"quantity_on_hand,notnull,default:0" json:"quantity_on_hand"`
	IsPublished    bool      `bun:"is_published,notnull,default:false" json:"is_published"`
	IsRentable     bool      `bun:"is_rentable,notnull,default:false" json:"is_rentable"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`

	Pricing []RentalPricing `bun:"rel:has-many,join:id=template_id" json:"pricing,omitempty"`
}

// RentalPricing is one duration-unit tier for a template. The full set is
// deleted and reinserted on every product edit.
type RentalPricing struct {
	tableName         struct{}     `bun:"table:rental_pricing,alias:rp"`
	ID                uuid.UUID    `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TemplateID        uuid.UUID    `bun:"template_id,notnull,type:uuid" json:"template_id"`
	DurationUnit      DurationUnit `bun:"duration_unit,notnull" json:"duration_unit"`
	PricePerUnitCents int64        `bun:"price_per_unit_cents,notnull" json:"price_per_unit_cents"`
	LateFeeCentsHour  int64        `bun:"late_fee_per_hour_cents,notnull,default:0" json:"late_fee_per_hour_cents"`
	CustomUnitHours   int          `bun:"custom_unit_hours" json:"custom_unit_hours,omitempty"`
}

package tables

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the payment axis of the rental lifecycle. Transitions go
// through RentalOrder status checks in the order service only; nothing
// else writes the column.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusQuotation OrderStatus = "quotation"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PickupStatus tracks physical possession of the rented goods,
// independent of payment status.
type PickupStatus string

const (
	PickupStatusPending  PickupStatus = "pending"
	PickupStatusPickedUp PickupStatus = "picked_up"
	PickupStatusReturned PickupStatus = "returned"
	PickupStatusLate     PickupStatus = "late"
)

type RentalOrder struct {
	tableName struct{}  `bun:"table:rental_orders,alias:ro"`
	Id        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`

	CustomerId  uuid.UUID `bun:"customer_id,notnull,type:uuid" json:"customer_id"`
	OrderNumber string    `bun:"order_number,notnull,unique" json:"order_number"`

	// One draft per customer, enforced by a partial unique index:
	// CREATE UNIQUE INDEX ON rental_orders (customer_id) WHERE status = 'draft'
	Status       OrderStatus  `bun:"status,notnull,default:'draft'" json:"status"`
	PickupStatus PickupStatus `bun:"pickup_status,notnull,default:'pending'" json:"pickup_status"`

	PickupDate time.Time  `bun:"pickup_date,notnull" json:"pickup_date"`
	ReturnDate time.Time  `bun:"return_date,notnull" json:"return_date"`
	ReturnedAt *time.Time `bun:"returned_at,nullzero" json:"returned_at,omitempty"`

	SubtotalCents        int64 `bun:"subtotal_cents,notnull,default:0" json:"subtotal_cents"`
	GSTCents             int64 `bun:"gst_cents,notnull,default:0" json:"gst_cents"`
	InsuranceCents       int64 `bun:"insurance_cents,notnull,default:0" json:"insurance_cents"`
	TotalCents           int64 `bun:"total_cents,notnull,default:0" json:"total_cents"`
	SecurityDepositCents int64 `bun:"security_deposit_cents,notnull,default:0" json:"security_deposit_cents"`
	LateFeeCents         int64 `bun:"late_fee_cents,notnull,default:0" json:"late_fee_cents"`

	CreatedAt time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`

	Items []RentalOrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
}

// RentalOrderItem snapshots name and price at add time; later product
// edits do not reprice an existing cart.
type RentalOrderItem struct {
	tableName struct{}  `bun:"table:rental_order_items,alias:roi"`
	Id        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	OrderId   uuid.UUID `bun:"order_id,notnull,type:uuid" json:"order_id"`
	ProductId uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id"`

	ProductName    string `bun:"product_name,notnull" json:"product_name"`
	UnitPriceCents int64  `bun:"unit_price_cents,notnull" json:"unit_price_cents"`
	Quantity       int    `bun:"quantity,notnull" json:"quantity"`
}

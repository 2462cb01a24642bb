package structs

import "time"

// DraftRequest opens (or returns) the customer's single draft order.
type DraftRequest struct {
	PickupDate time.Time `json:"pickup_date" validate:"required"`
	ReturnDate time.Time `json:"return_date" validate:"required"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type GenerateDocumentRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
	Type    string `json:"type" validate:"required,oneof=invoice quotation"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=CUSTOMER VENDOR ADMIN"`
}

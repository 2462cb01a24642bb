package orders

import (
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// AddItem puts a product line on a draft order, snapshotting its name and
// price. Adding the same product again bumps the quantity instead.
func (orm *OrderRoutesManager) AddItem(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.AddItemRequest](r)
	if err != nil {
		orm.logger.Warn("Failed to extract add-item body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("A product and a quantity of at least 1 are required"), gecho.Send())
		return
	}

	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid product ID"), gecho.Send())
		return
	}

	order, err := orm.orderService.AddItem(r.Context(), claims.Sub, orderID, productID, body.Quantity)
	if err != nil {
		orm.respondOrderError(w, err, "add_item")
		return
	}

	gecho.Success(w,
		gecho.WithData(order),
		gecho.Send(),
	)
}

// RemoveItem deletes a line from a draft order.
func (orm *OrderRoutesManager) RemoveItem(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(w, r, "itemID")
	if !ok {
		return
	}

	if err := orm.orderService.RemoveItem(r.Context(), claims.Sub, orderID, itemID); err != nil {
		orm.respondOrderError(w, err, "remove_item")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Item removed"),
		gecho.Send(),
	)
}

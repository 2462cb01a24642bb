package orders

import (
	"net/http"
	"strconv"

	"github.com/MonkyMars/gecho"
)

// GetOrder returns one of the caller's orders with its items.
func (orm *OrderRoutesManager) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	order, err := orm.orderService.GetOrderForCustomer(r.Context(), claims.Sub, orderID)
	if err != nil {
		orm.respondOrderError(w, err, "get_order")
		return
	}

	gecho.Success(w,
		gecho.WithData(order),
		gecho.Send(),
	)
}

// ListMyOrders returns the caller's order history, newest first.
func (orm *OrderRoutesManager) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	page, pageSize := parsePagination(r)

	result, err := orm.orderService.ListOrdersForCustomer(r.Context(), claims.Sub, page, pageSize)
	if err != nil {
		orm.respondOrderError(w, err, "list_orders")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"orders":     result.Data,
			"pagination": result.Pagination,
		}),
		gecho.Send(),
	)
}

func parsePagination(r *http.Request) (int, int) {
	page := 1
	pageSize := 20

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if val, err := strconv.Atoi(pageStr); err == nil && val > 0 {
			page = val
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if val, err := strconv.Atoi(sizeStr); err == nil && val > 0 {
			pageSize = val
		}
	}

	return page, pageSize
}

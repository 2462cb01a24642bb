package admin

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

// ListOrders is the platform-wide order feed for the admin dashboard.
func (adm *AdminRoutesManager) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := adm.orderService.ListAllOrders(r.Context(), page, pageSize)
	if err != nil {
		adm.logger.Error("Failed to list orders", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to load orders right now"),
			gecho.Send(),
		)
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

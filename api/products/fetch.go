package products

import (
	"errors"
	"net/http"
	"rentkart_server/handling"
	"rentkart_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FetchCatalog handles GET /products: the published, rentable storefront
// catalog with filtering, pagination and sorting.
func (prm *ProductRoutesManager) FetchCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := handling.ParseProductListOptions(r)
	if err != nil {
		prm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid query parameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	result, err := prm.productService.ListStorefront(ctx, opts)
	if err != nil {
		prm.logger.Error("Failed to fetch catalog", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to load the catalog right now"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"products":   result.Products,
			"pagination": result.Pagination,
			"filters":    result.Filters,
			"meta": map[string]any{
				"query_time_ms": result.QueryTime.Milliseconds(),
				"count":         len(result.Products),
			},
		}),
		gecho.Send(),
	)
}

// FetchProductByID handles GET /products/{id} for a single published
// template with its pricing tiers.
func (prm *ProductRoutesManager) FetchProductByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		prm.logger.Warn("Invalid product ID", gecho.Field("id", idStr), gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid product ID"),
			gecho.Send(),
		)
		return
	}

	product, err := prm.productService.GetPublishedTemplate(ctx, id)
	if err != nil {
		if lib.IsNotFound(err) || errors.Is(err, lib.ErrProductNotRentable) {
			gecho.NotFound(w,
				gecho.WithMessage("Product not found"),
				gecho.Send(),
			)
			return
		}

		prm.logger.Error("Failed to fetch product", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to load this product right now"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"product": product,
		}),
		gecho.Send(),
	)
}

package orders

import (
	"errors"
	"net/http"
	"rentkart_server/api/middleware"
	"rentkart_server/lib"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// requireClaims returns the session claims or writes a 401 and returns nil.
func (orm *OrderRoutesManager) requireClaims(w http.ResponseWriter, r *http.Request) *structs.AuthClaims {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		gecho.Unauthorized(w,
			gecho.WithMessage("Authentication required"),
			gecho.Send(),
		)
		return nil
	}
	return claims
}

// parseIDParam reads a UUID chi route parameter, writing a 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, name)
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid "+name),
			gecho.Send(),
		)
		return uuid.Nil, false
	}
	return id, true
}

// respondOrderError maps order service sentinels onto HTTP statuses. The
// generic branch logs the internal error and surfaces nothing.
func (orm *OrderRoutesManager) respondOrderError(w http.ResponseWriter, err error, action string) {
	switch {
	case lib.IsNotFound(err):
		gecho.NotFound(w,
			gecho.WithMessage("Order not found"),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrInvalidTransition):
		gecho.Conflict(w,
			gecho.WithMessage("This order is not in a state that allows that"),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrEmptyOrder):
		gecho.BadRequest(w,
			gecho.WithMessage("Add at least one item before requesting a quotation"),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrInsufficientStock):
		gecho.Conflict(w,
			gecho.WithMessage("Not enough stock to fulfil this order"),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrProductNotRentable):
		gecho.BadRequest(w,
			gecho.WithMessage("This product is not available for rent"),
			gecho.Send(),
		)
	default:
		orm.logger.Error("Order operation failed", gecho.Field("action", action), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Something went wrong. Please try again"),
			gecho.Send(),
		)
	}
}

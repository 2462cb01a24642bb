package orders

import (
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
)

// OpenDraft returns the customer's open draft order, creating one when
// none exists. Calling it twice never yields two drafts.
func (orm *OrderRoutesManager) OpenDraft(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.DraftRequest](r)
	if err != nil {
		orm.logger.Warn("Failed to extract draft body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Pickup and return dates are required"), gecho.Send())
		return
	}

	if !body.ReturnDate.After(body.PickupDate) {
		gecho.BadRequest(w,
			gecho.WithMessage("The return date must be after the pickup date"),
			gecho.Send(),
		)
		return
	}

	order, err := orm.orderService.GetOrCreateDraft(r.Context(), claims.Sub, body.PickupDate, body.ReturnDate)
	if err != nil {
		orm.respondOrderError(w, err, "open_draft")
		return
	}

	gecho.Success(w,
		gecho.WithData(order),
		gecho.Send(),
	)
}

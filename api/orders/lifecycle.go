package orders

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

// SubmitForQuote prices the draft and moves it to quotation. Submitting an
// order that is already a quotation is a no-op success.
func (orm *OrderRoutesManager) SubmitForQuote(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	order, err := orm.orderService.SubmitForQuote(r.Context(), claims.Sub, orderID)
	if err != nil {
		orm.respondOrderError(w, err, "submit_for_quote")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Quotation ready"),
		gecho.WithData(order),
		gecho.Send(),
	)
}

// ConfirmPayment runs the simulated payment and confirms the quotation.
func (orm *OrderRoutesManager) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	order, err := orm.orderService.ConfirmPayment(r.Context(), claims.Sub, orderID)
	if err != nil {
		orm.respondOrderError(w, err, "confirm_payment")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Order confirmed"),
		gecho.WithData(order),
		gecho.Send(),
	)
}

// CancelOrder cancels a draft or quotation. Confirmed orders stay put.
func (orm *OrderRoutesManager) CancelOrder(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := orm.orderService.CancelOrder(r.Context(), claims.Sub, orderID); err != nil {
		orm.respondOrderError(w, err, "cancel_order")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Order cancelled"),
		gecho.Send(),
	)
}

package services

import (
	"math"
	"rentkart_server/structs/tables"
	"time"
)

// RentalDays returns the number of billable days for a rental window.
// Zero or negative windows floor to one day; partial days round up.
func RentalDays(pickup, returnDate time.Time) int {
	hours := returnDate.Sub(pickup).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// ComputeTotalCents sums price x quantity x days over the given items
func ComputeTotalCents(items []tables.RentalOrderItem, days int) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPriceCents * int64(item.Quantity) * int64(days)
	}
	return total
}

// LateFeeCents bills every started hour past the due date at the given
// hourly rate. Returning exactly at the due date costs nothing; one
// second past it bills a full hour.
func LateFeeCents(due, returned time.Time, ratePerHourCents int64) int64 {
	if !returned.After(due) {
		return 0
	}
	hoursLate := int64(math.Ceil(returned.Sub(due).Hours()))
	if hoursLate < 1 {
		hoursLate = 1
	}
	return hoursLate * ratePerHourCents
}

// InvoiceTotals is the GST + insurance breakdown for a subtotal.
// The surcharges compose additively; rates are basis points.
type InvoiceTotals struct {
	SubtotalCents  int64 `json:"subtotal_cents"`
	GSTCents       int64 `json:"gst_cents"`
	InsuranceCents int64 `json:"insurance_cents"`
	TotalCents     int64 `json:"total_cents"`
}

// ComputeInvoiceTotals applies GST and insurance to a subtotal
func ComputeInvoiceTotals(subtotalCents int64, gstRateBP, insuranceRateBP int) InvoiceTotals {
	gst := subtotalCents * int64(gstRateBP) / 10000
	insurance := subtotalCents * int64(insuranceRateBP) / 10000
	return InvoiceTotals{
		SubtotalCents:  subtotalCents,
		GSTCents:       gst,
		InsuranceCents: insurance,
		TotalCents:     subtotalCents + gst + insurance,
	}
}

// statusTransitions is the closed order-status machine. Anything not
// listed here is rejected.
var statusTransitions = map[tables.OrderStatus][]tables.OrderStatus{
	tables.OrderStatusDraft:     {tables.OrderStatusQuotation, tables.OrderStatusCancelled},
	tables.OrderStatusQuotation: {tables.OrderStatusConfirmed, tables.OrderStatusCancelled},
	tables.OrderStatusConfirmed: {},
	tables.OrderStatusCancelled: {},
}

// pickupTransitions is the possession axis, only meaningful once confirmed
var pickupTransitions = map[tables.PickupStatus][]tables.PickupStatus{
	tables.PickupStatusPending:  {tables.PickupStatusPickedUp},
	tables.PickupStatusPickedUp: {tables.PickupStatusReturned, tables.PickupStatusLate},
	// An overdue order stays late when it finally comes back; returned_at
	// records the handover either way.
	tables.PickupStatusLate:     {tables.PickupStatusReturned, tables.PickupStatusLate},
	tables.PickupStatusReturned: {},
}

// CanTransitionStatus reports whether the payment axis allows from -> to
func CanTransitionStatus(from, to tables.OrderStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionPickup reports whether the possession axis allows from -> to
func CanTransitionPickup(from, to tables.PickupStatus) bool {
	for _, allowed := range pickupTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

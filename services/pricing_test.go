package services

import (
	"rentkart_server/structs/tables"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRentalDays(t *testing.T) {
	pickup := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("WholeDays", func(t *testing.T) {
		assert.Equal(t, 3, RentalDays(pickup, pickup.Add(72*time.Hour)))
	})

	t.Run("PartialDayRoundsUp", func(t *testing.T) {
		assert.Equal(t, 4, RentalDays(pickup, pickup.Add(73*time.Hour)))
	})

	t.Run("ZeroWindowFloorsToOne", func(t *testing.T) {
		assert.Equal(t, 1, RentalDays(pickup, pickup))
	})

	t.Run("NegativeWindowFloorsToOne", func(t *testing.T) {
		assert.Equal(t, 1, RentalDays(pickup, pickup.Add(-24*time.Hour)))
	})
}

func TestComputeTotalCents(t *testing.T) {
	items := []tables.RentalOrderItem{
		{UnitPriceCents: 100, Quantity: 2},
	}

	assert.Equal(t, int64(600), ComputeTotalCents(items, 3))

	t.Run("MultipleLines", func(t *testing.T) {
		items := []tables.RentalOrderItem{
			{UnitPriceCents: 100, Quantity: 2},
			{UnitPriceCents: 250, Quantity: 1},
		}
		assert.Equal(t, int64(900), ComputeTotalCents(items, 2))
	})

	t.Run("NoItems", func(t *testing.T) {
		assert.Equal(t, int64(0), ComputeTotalCents(nil, 5))
	})
}

func TestLateFeeCents(t *testing.T) {
	due := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	rate := int64(500)

	t.Run("OnTimeIsFree", func(t *testing.T) {
		assert.Equal(t, int64(0), LateFeeCents(due, due, rate))
		assert.Equal(t, int64(0), LateFeeCents(due, due.Add(-time.Minute), rate))
	})

	t.Run("OneSecondLateBillsAFullHour", func(t *testing.T) {
		assert.Equal(t, rate, LateFeeCents(due, due.Add(time.Second), rate))
	})

	t.Run("StartedHoursRoundUp", func(t *testing.T) {
		assert.Equal(t, 2*rate, LateFeeCents(due, due.Add(61*time.Minute), rate))
		assert.Equal(t, 2*rate, LateFeeCents(due, due.Add(2*time.Hour), rate))
	})
}

func TestComputeInvoiceTotals(t *testing.T) {
	totals := ComputeInvoiceTotals(1000, 1800, 500)

	assert.Equal(t, int64(1000), totals.SubtotalCents)
	assert.Equal(t, int64(180), totals.GSTCents)
	assert.Equal(t, int64(50), totals.InsuranceCents)
	assert.Equal(t, int64(1230), totals.TotalCents)
}

// A flat 1.23 multiplier happens to agree with 18% GST + 5% insurance on
// round subtotals, but the surcharges are independent line items. If the
// rates ever diverge, the additive breakdown is the one that holds.
func TestInvoiceTotalsAreAdditiveNotMultiplicative(t *testing.T) {
	totals := ComputeInvoiceTotals(1000, 1800, 500)
	assert.Equal(t, int64(float64(1000)*1.23), totals.TotalCents)

	// Bump GST to 20%: the additive total moves, the lazy multiplier lies
	bumped := ComputeInvoiceTotals(1000, 2000, 500)
	assert.Equal(t, int64(1250), bumped.TotalCents)
	assert.NotEqual(t, int64(float64(1000)*1.23), bumped.TotalCents)
}

func TestStatusTransitionMatrix(t *testing.T) {
	cases := []struct {
		from    tables.OrderStatus
		to      tables.OrderStatus
		allowed bool
	}{
		{tables.OrderStatusDraft, tables.OrderStatusQuotation, true},
		{tables.OrderStatusDraft, tables.OrderStatusCancelled, true},
		{tables.OrderStatusDraft, tables.OrderStatusConfirmed, false},
		{tables.OrderStatusQuotation, tables.OrderStatusConfirmed, true},
		{tables.OrderStatusQuotation, tables.OrderStatusCancelled, true},
		{tables.OrderStatusQuotation, tables.OrderStatusDraft, false},
		{tables.OrderStatusConfirmed, tables.OrderStatusCancelled, false},
		{tables.OrderStatusConfirmed, tables.OrderStatusDraft, false},
		{tables.OrderStatusCancelled, tables.OrderStatusDraft, false},
		{tables.OrderStatusCancelled, tables.OrderStatusQuotation, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, CanTransitionStatus(c.from, c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestPickupTransitionMatrix(t *testing.T) {
	cases := []struct {
		from    tables.PickupStatus
		to      tables.PickupStatus
		allowed bool
	}{
		{tables.PickupStatusPending, tables.PickupStatusPickedUp, true},
		{tables.PickupStatusPending, tables.PickupStatusReturned, false},
		{tables.PickupStatusPending, tables.PickupStatusLate, false},
		{tables.PickupStatusPickedUp, tables.PickupStatusReturned, true},
		{tables.PickupStatusPickedUp, tables.PickupStatusLate, true},
		{tables.PickupStatusPickedUp, tables.PickupStatusPending, false},
		{tables.PickupStatusLate, tables.PickupStatusReturned, true},
		{tables.PickupStatusLate, tables.PickupStatusLate, true},
		{tables.PickupStatusReturned, tables.PickupStatusPickedUp, false},
		{tables.PickupStatusReturned, tables.PickupStatusPending, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, CanTransitionPickup(c.from, c.to),
			"%s -> %s", c.from, c.to)
	}
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"rentkart_server/database"
	"rentkart_server/lib"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OrderService owns the rental order lifecycle. All status columns are
// written here and nowhere else; multi-row writes run inside bun
// transactions.
type OrderService struct {
	logger         *gecho.Logger
	cfg            *structs.Config
	db             *database.DB
	productService *ProductService
	emailService   *EmailService
	cacheService   *CacheService
}

func NewOrderService(
	logger *gecho.Logger,
	cfg *structs.Config,
	db *database.DB,
	productService *ProductService,
	emailService *EmailService,
	cacheService *CacheService,
) *OrderService {
	return &OrderService{
		logger:         logger,
		cfg:            cfg,
		db:             db,
		productService: productService,
		emailService:   emailService,
		cacheService:   cacheService,
	}
}

// GetOrCreateDraft returns the customer's open draft, creating one when
// absent. The partial unique index on (customer_id) WHERE status='draft'
// makes the insert race-safe: a losing concurrent insert hits the
// conflict, inserts nothing, and the re-select finds the winner's row.
func (os *OrderService) GetOrCreateDraft(ctx context.Context, customerID uuid.UUID, pickupDate, returnDate time.Time) (*tables.RentalOrder, error) {
	draft, err := os.findDraft(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}

	orderNumber, err := lib.GenerateOrderNumber(time.Now())
	if err != nil {
		return nil, err
	}

	order := &tables.RentalOrder{
		CustomerId:   customerID,
		OrderNumber:  orderNumber,
		Status:       tables.OrderStatusDraft,
		PickupStatus: tables.PickupStatusPending,
		PickupDate:   pickupDate,
		ReturnDate:   returnDate,
	}

	insertErr := database.WithRetry(ctx, func() error {
		_, err := os.db.NewInsert().
			Model(order).
			On("CONFLICT (customer_id) WHERE status = 'draft' DO NOTHING").
			Returning("*").
			Exec(ctx)
		return err
	})
	if insertErr != nil && insertErr != sql.ErrNoRows {
		os.logger.Error("Failed to insert draft order", gecho.Field("error", insertErr), gecho.Field("customer_id", customerID))
		return nil, lib.MapPgError(insertErr)
	}

	// ErrNoRows means we lost the race; re-select the winner either way
	draft, err = os.findDraft(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("draft order vanished after upsert for customer %s", customerID)
	}

	return draft, nil
}

func (os *OrderService) findDraft(ctx context.Context, customerID uuid.UUID) (*tables.RentalOrder, error) {
	draft, err := database.Query[tables.RentalOrder](os.db).
		Where("customer_id", customerID).
		Where("status", tables.OrderStatusDraft).
		With("Items").
		First(ctx)
	if err != nil {
		os.logger.Error("Failed to look up draft order", gecho.Field("error", err), gecho.Field("customer_id", customerID))
		return nil, lib.MapPgError(err)
	}
	return draft, nil
}

// GetOrderForCustomer loads an order with its items, scoped to the owner
func (os *OrderService) GetOrderForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*tables.RentalOrder, error) {
	order, err := database.Query[tables.RentalOrder](os.db).
		Where("id", orderID).
		Where("customer_id", customerID).
		With("Items").
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if order == nil {
		return nil, lib.ErrNotFound
	}
	return order, nil
}

// GetOrder loads an order with its items without an ownership scope.
// Vendor and admin surfaces use this after their own role checks.
func (os *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*tables.RentalOrder, error) {
	order, err := database.Query[tables.RentalOrder](os.db).
		Where("id", orderID).
		With("Items").
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if order == nil {
		return nil, lib.ErrNotFound
	}
	return order, nil
}

// ListOrdersForCustomer returns all of a customer's orders, newest first
func (os *OrderService) ListOrdersForCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) (*database.PaginationResult[tables.RentalOrder], error) {
	q := database.Query[tables.RentalOrder](os.db).
		Where("customer_id", customerID).
		With("Items").
		OrderBy("created_at", database.DESC)
	return database.Paginate(q, ctx, page, pageSize)
}

// ListOrdersForVendor returns orders containing at least one of the
// vendor's products
func (os *OrderService) ListOrdersForVendor(ctx context.Context, vendorID uuid.UUID, page, pageSize int) (*database.PaginationResult[tables.RentalOrder], error) {
	q := database.Query[tables.RentalOrder](os.db).
		WhereRaw(
			"EXISTS (SELECT 1 FROM rental_order_items roi JOIN product_templates pt ON pt.id = roi.product_id WHERE roi.order_id = ro.id AND pt.vendor_id = ?)",
			vendorID,
		).
		WhereOp("status", "!=", tables.OrderStatusDraft).
		With("Items").
		OrderBy("created_at", database.DESC)
	return database.Paginate(q, ctx, page, pageSize)
}

// ListAllOrders is the admin view over every non-draft order
func (os *OrderService) ListAllOrders(ctx context.Context, page, pageSize int) (*database.PaginationResult[tables.RentalOrder], error) {
	q := database.Query[tables.RentalOrder](os.db).
		WhereOp("status", "!=", tables.OrderStatusDraft).
		With("Items").
		OrderBy("created_at", database.DESC)
	return database.Paginate(q, ctx, page, pageSize)
}

// AddItem snapshots a product's name and daily price into the customer's
// draft. Adding the same product again raises the line quantity.
func (os *OrderService) AddItem(ctx context.Context, customerID, orderID, productID uuid.UUID, quantity int) (*tables.RentalOrder, error) {
	order, err := os.GetOrderForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != tables.OrderStatusDraft {
		return nil, lib.ErrInvalidTransition
	}

	template, err := os.productService.GetPublishedTemplate(ctx, productID)
	if err != nil {
		return nil, err
	}

	unitPrice, _, err := dailyRate(template, os.cfg.Billing.DefaultLateFeeCentsHour)
	if err != nil {
		return nil, err
	}

	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		existing := new(tables.RentalOrderItem)
		err := tx.NewSelect().
			Model(existing).
			Where("order_id = ?", order.Id).
			Where("product_id = ?", productID).
			For("UPDATE").
			Scan(ctx)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		if err == nil {
			_, err = tx.NewUpdate().
				Model((*tables.RentalOrderItem)(nil)).
				Set("quantity = quantity + ?", quantity).
				Where("id = ?", existing.Id).
				Exec(ctx)
			return err
		}

		item := &tables.RentalOrderItem{
			OrderId:        order.Id,
			ProductId:      productID,
			ProductName:    template.Name,
			UnitPriceCents: unitPrice,
			Quantity:       quantity,
		}
		_, err = tx.NewInsert().Model(item).Exec(ctx)
		return err
	})
	if txErr != nil {
		os.logger.Error("Failed to add item to draft", gecho.Field("error", txErr), gecho.Field("order_id", order.Id), gecho.Field("product_id", productID))
		return nil, lib.MapPgError(txErr)
	}

	os.publishEvent(&OrderItemEvent{
		OrderId:   order.Id,
		Action:    "added",
		ProductId: productID,
		Quantity:  quantity,
		At:        time.Now(),
	})

	return os.GetOrderForCustomer(ctx, customerID, orderID)
}

// RemoveItem deletes a line from the customer's draft
func (os *OrderService) RemoveItem(ctx context.Context, customerID, orderID, itemID uuid.UUID) error {
	order, err := os.GetOrderForCustomer(ctx, customerID, orderID)
	if err != nil {
		return err
	}
	if order.Status != tables.OrderStatusDraft {
		return lib.ErrInvalidTransition
	}

	deleted, err := database.Query[tables.RentalOrderItem](os.db).
		Where("id", itemID).
		Where("order_id", order.Id).
		Delete(ctx)
	if err != nil {
		return lib.MapPgError(err)
	}
	if deleted == 0 {
		return lib.ErrNotFound
	}

	os.publishEvent(&OrderItemEvent{
		OrderId: order.Id,
		Action:  "removed",
		At:      time.Now(),
	})

	return nil
}

// SubmitForQuote recomputes totals server-side and moves the draft to
// quotation. Submitting an order that is already a quotation is a no-op
// success, so a double-clicked checkout does not error.
func (os *OrderService) SubmitForQuote(ctx context.Context, customerID, orderID uuid.UUID) (*tables.RentalOrder, error) {
	order, err := os.GetOrderForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == tables.OrderStatusQuotation {
		return order, nil
	}
	if !CanTransitionStatus(order.Status, tables.OrderStatusQuotation) {
		return nil, lib.ErrInvalidTransition
	}
	if len(order.Items) == 0 {
		return nil, lib.ErrEmptyOrder
	}

	days := RentalDays(order.PickupDate, order.ReturnDate)
	subtotal := ComputeTotalCents(order.Items, days)
	totals := ComputeInvoiceTotals(subtotal, os.cfg.Billing.GSTRateBP, os.cfg.Billing.InsuranceRateBP)
	deposit := subtotal * int64(os.cfg.Billing.DepositRateBP) / 10000

	updates := map[string]any{
		"status":                 tables.OrderStatusQuotation,
		"subtotal_cents":         totals.SubtotalCents,
		"gst_cents":              totals.GSTCents,
		"insurance_cents":        totals.InsuranceCents,
		"total_cents":            totals.TotalCents,
		"security_deposit_cents": deposit,
		"updated_at":             time.Now(),
	}
	if _, err := database.Query[tables.RentalOrder](os.db).Where("id", order.Id).Update(ctx, updates); err != nil {
		os.logger.Error("Failed to submit order for quote", gecho.Field("error", err), gecho.Field("order_id", order.Id))
		return nil, lib.MapPgError(err)
	}

	os.logger.Info("Order submitted for quote",
		gecho.Field("order_id", order.Id),
		gecho.Field("days", days),
		gecho.Field("total_cents", totals.TotalCents),
	)

	os.publishEvent(&OrderItemEvent{
		OrderId: order.Id,
		Action:  "status",
		Status:  string(tables.OrderStatusQuotation),
		At:      time.Now(),
	})

	return os.GetOrderForCustomer(ctx, customerID, orderID)
}

// ConfirmPayment runs the simulated payment and moves quotation to
// confirmed. The delay honors context cancellation.
func (os *OrderService) ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID) (*tables.RentalOrder, error) {
	order, err := os.GetOrderForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionStatus(order.Status, tables.OrderStatusConfirmed) {
		return nil, lib.ErrInvalidTransition
	}

	// Simulated payment processor round trip
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(os.cfg.Billing.PaymentSimulationDelay):
	}

	updates := map[string]any{
		"status":     tables.OrderStatusConfirmed,
		"updated_at": time.Now(),
	}
	if _, err := database.Query[tables.RentalOrder](os.db).Where("id", order.Id).Update(ctx, updates); err != nil {
		os.logger.Error("Failed to confirm order", gecho.Field("error", err), gecho.Field("order_id", order.Id))
		return nil, lib.MapPgError(err)
	}

	os.logger.Info("Order confirmed", gecho.Field("order_id", order.Id), gecho.Field("order_number", order.OrderNumber))

	confirmed, err := os.GetOrderForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	// Confirmation email is fire-and-forget
	go func(o tables.RentalOrder) {
		user, err := database.Query[tables.User](os.db).Where("id", o.CustomerId).First(context.Background())
		if err != nil || user == nil {
			os.logger.Warn("Could not load customer for confirmation email", gecho.Field("error", err), gecho.Field("order_id", o.Id))
			return
		}
		if err := os.emailService.SendOrderConfirmationEmail(user, &o); err != nil {
			os.logger.Warn("Failed to send order confirmation email", gecho.Field("error", err), gecho.Field("order_id", o.Id))
		}
	}(*confirmed)

	os.publishEvent(&OrderItemEvent{
		OrderId: order.Id,
		Action:  "status",
		Status:  string(tables.OrderStatusConfirmed),
		At:      time.Now(),
	})

	return confirmed, nil
}

// CancelOrder abandons a draft or quotation
func (os *OrderService) CancelOrder(ctx context.Context, customerID, orderID uuid.UUID) error {
	order, err := os.GetOrderForCustomer(ctx, customerID, orderID)
	if err != nil {
		return err
	}
	if !CanTransitionStatus(order.Status, tables.OrderStatusCancelled) {
		return lib.ErrInvalidTransition
	}

	updates := map[string]any{
		"status":     tables.OrderStatusCancelled,
		"updated_at": time.Now(),
	}
	if _, err := database.Query[tables.RentalOrder](os.db).Where("id", order.Id).Update(ctx, updates); err != nil {
		return lib.MapPgError(err)
	}

	os.publishEvent(&OrderItemEvent{
		OrderId: order.Id,
		Action:  "status",
		Status:  string(tables.OrderStatusCancelled),
		At:      time.Now(),
	})

	return nil
}

// RecordPickup hands the goods over: pickup_status pending -> picked_up
// and every item's on-hand quantity decremented, all in one transaction.
// Any template that would go negative aborts with ErrInsufficientStock.
func (os *OrderService) RecordPickup(ctx context.Context, orderID uuid.UUID) (*tables.RentalOrder, error) {
	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		order := new(tables.RentalOrder)
		err := tx.NewSelect().
			Model(order).
			Relation("Items").
			Where("ro.id = ?", orderID).
			For("UPDATE OF ro").
			Scan(ctx)
		if err == sql.ErrNoRows {
			return lib.ErrNotFound
		}
		if err != nil {
			return err
		}

		if order.Status != tables.OrderStatusConfirmed {
			return lib.ErrInvalidTransition
		}
		if !CanTransitionPickup(order.PickupStatus, tables.PickupStatusPickedUp) {
			return lib.ErrInvalidTransition
		}

		for _, item := range order.Items {
			template := new(tables.ProductTemplate)
			err := tx.NewSelect().
				Model(template).
				Where("pt.id = ?", item.ProductId).
				For("UPDATE").
				Scan(ctx)
			if err == sql.ErrNoRows {
				return lib.ErrNotFound
			}
			if err != nil {
				return err
			}

			if template.QuantityOnHand < item.Quantity {
				return lib.ErrInsufficientStock
			}

			_, err = tx.NewUpdate().
				Model((*tables.ProductTemplate)(nil)).
				Set("quantity_on_hand = quantity_on_hand - ?", item.Quantity).
				Set("updated_at = ?", time.Now()).
				Where("id = ?", template.ID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		_, err = tx.NewUpdate().
			Model((*tables.RentalOrder)(nil)).
			Set("pickup_status = ?", tables.PickupStatusPickedUp).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", orderID).
			Exec(ctx)
		return err
	})
	if txErr != nil {
		if txErr == lib.ErrNotFound || txErr == lib.ErrInvalidTransition || txErr == lib.ErrInsufficientStock {
			return nil, txErr
		}
		os.logger.Error("Pickup transaction failed", gecho.Field("error", txErr), gecho.Field("order_id", orderID))
		return nil, lib.MapPgError(txErr)
	}

	os.publishEvent(&OrderItemEvent{
		OrderId: orderID,
		Action:  "status",
		Status:  string(tables.PickupStatusPickedUp),
		At:      time.Now(),
	})

	return os.GetOrder(ctx, orderID)
}

// RecordReturn takes the goods back: stock is restored, and a return past
// the due date bills every started hour at the items' combined hourly
// late rate. On-time returns close as returned, late ones as late.
func (os *OrderService) RecordReturn(ctx context.Context, orderID uuid.UUID, now time.Time) (*tables.RentalOrder, error) {
	finalStatus := tables.PickupStatusReturned
	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		order := new(tables.RentalOrder)
		err := tx.NewSelect().
			Model(order).
			Relation("Items").
			Where("ro.id = ?", orderID).
			For("UPDATE OF ro").
			Scan(ctx)
		if err == sql.ErrNoRows {
			return lib.ErrNotFound
		}
		if err != nil {
			return err
		}

		if order.ReturnedAt != nil {
			return lib.ErrInvalidTransition
		}

		var lateFee int64
		if now.After(order.ReturnDate) {
			finalStatus = tables.PickupStatusLate
			rate, err := os.hourlyLateRate(ctx, tx, order.Items)
			if err != nil {
				return err
			}
			lateFee = LateFeeCents(order.ReturnDate, now, rate)
		}

		if !CanTransitionPickup(order.PickupStatus, finalStatus) {
			return lib.ErrInvalidTransition
		}

		for _, item := range order.Items {
			_, err = tx.NewUpdate().
				Model((*tables.ProductTemplate)(nil)).
				Set("quantity_on_hand = quantity_on_hand + ?", item.Quantity).
				Set("updated_at = ?", time.Now()).
				Where("id = ?", item.ProductId).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		_, err = tx.NewUpdate().
			Model((*tables.RentalOrder)(nil)).
			Set("pickup_status = ?", finalStatus).
			Set("returned_at = ?", now).
			Set("late_fee_cents = ?", lateFee).
			Set("total_cents = total_cents + ?", lateFee).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", orderID).
			Exec(ctx)
		return err
	})
	if txErr != nil {
		if txErr == lib.ErrNotFound || txErr == lib.ErrInvalidTransition {
			return nil, txErr
		}
		os.logger.Error("Return transaction failed", gecho.Field("error", txErr), gecho.Field("order_id", orderID))
		return nil, lib.MapPgError(txErr)
	}

	os.publishEvent(&OrderItemEvent{
		OrderId: orderID,
		Action:  "status",
		Status:  string(finalStatus),
		At:      time.Now(),
	})

	return os.GetOrder(ctx, orderID)
}

// hourlyLateRate sums each item's per-unit hourly late fee from its
// pricing rows. Items whose template carries no late fee fall back to
// the configured default.
func (os *OrderService) hourlyLateRate(ctx context.Context, tx bun.Tx, items []tables.RentalOrderItem) (int64, error) {
	var rate int64
	for _, item := range items {
		template := new(tables.ProductTemplate)
		err := tx.NewSelect().
			Model(template).
			Relation("Pricing").
			Where("pt.id = ?", item.ProductId).
			Scan(ctx)
		if err == sql.ErrNoRows {
			rate += os.cfg.Billing.DefaultLateFeeCentsHour * int64(item.Quantity)
			continue
		}
		if err != nil {
			return 0, err
		}

		_, perHour, rateErr := dailyRate(template, os.cfg.Billing.DefaultLateFeeCentsHour)
		if rateErr != nil {
			perHour = os.cfg.Billing.DefaultLateFeeCentsHour
		}
		rate += perHour * int64(item.Quantity)
	}
	return rate, nil
}

// MarkLateRentals flips overdue picked-up orders to late. Returns the
// number of orders updated; called from the hourly sweep job.
func (os *OrderService) MarkLateRentals(ctx context.Context, now time.Time) (int, error) {
	updates := map[string]any{
		"pickup_status": tables.PickupStatusLate,
		"updated_at":    now,
	}
	count, err := database.Query[tables.RentalOrder](os.db).
		Where("status", tables.OrderStatusConfirmed).
		Where("pickup_status", tables.PickupStatusPickedUp).
		WhereOp("return_date", "<", now).
		Update(ctx, updates)
	if err != nil {
		return 0, lib.MapPgError(err)
	}
	return count, nil
}

// RentalDocument is the JSON quotation/invoice the vendor surface emits
type RentalDocument struct {
	Type         string                   `json:"type"` // "invoice" or "quotation"
	OrderNumber  string                   `json:"order_number"`
	IssuedAt     time.Time                `json:"issued_at"`
	PickupDate   time.Time                `json:"pickup_date"`
	ReturnDate   time.Time                `json:"return_date"`
	RentalDays   int                      `json:"rental_days"`
	Items        []tables.RentalOrderItem `json:"items"`
	Totals       InvoiceTotals            `json:"totals"`
	DepositCents int64                    `json:"security_deposit_cents"`
	LateFeeCents int64                    `json:"late_fee_cents"`
}

// GenerateDocument builds the invoice or quotation JSON for an order the
// vendor has items in
func (os *OrderService) GenerateDocument(ctx context.Context, vendorID, orderID uuid.UUID, docType string) (*RentalDocument, error) {
	order, err := os.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owns, err := os.vendorOwnsItems(ctx, vendorID, order)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, lib.ErrNotFound
	}

	days := RentalDays(order.PickupDate, order.ReturnDate)
	subtotal := ComputeTotalCents(order.Items, days)
	totals := ComputeInvoiceTotals(subtotal, os.cfg.Billing.GSTRateBP, os.cfg.Billing.InsuranceRateBP)

	return &RentalDocument{
		Type:         docType,
		OrderNumber:  order.OrderNumber,
		IssuedAt:     time.Now(),
		PickupDate:   order.PickupDate,
		ReturnDate:   order.ReturnDate,
		RentalDays:   days,
		Items:        order.Items,
		Totals:       totals,
		DepositCents: order.SecurityDepositCents,
		LateFeeCents: order.LateFeeCents,
	}, nil
}

func (os *OrderService) vendorOwnsItems(ctx context.Context, vendorID uuid.UUID, order *tables.RentalOrder) (bool, error) {
	if len(order.Items) == 0 {
		return false, nil
	}

	ids := make([]any, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductId)
	}

	count, err := database.Query[tables.ProductTemplate](os.db).
		WhereIn("id", ids).
		Where("vendor_id", vendorID).
		Count(ctx)
	if err != nil {
		return false, lib.MapPgError(err)
	}
	return count > 0, nil
}

// dailyRate picks the daily pricing tier of a template, falling back to
// the first tier present. Returns unit price and per-hour late fee.
func dailyRate(template *tables.ProductTemplate, defaultLateFee int64) (int64, int64, error) {
	if len(template.Pricing) == 0 {
		return 0, 0, lib.ErrProductNotRentable
	}

	for _, tier := range template.Pricing {
		if tier.DurationUnit == tables.UnitDaily {
			return tier.PricePerUnitCents, lateFeeOrDefault(tier.LateFeeCentsHour, defaultLateFee), nil
		}
	}

	tier := template.Pricing[0]
	return tier.PricePerUnitCents, lateFeeOrDefault(tier.LateFeeCentsHour, defaultLateFee), nil
}

func lateFeeOrDefault(fee, fallback int64) int64 {
	if fee > 0 {
		return fee
	}
	return fallback
}

func (os *OrderService) publishEvent(event *OrderItemEvent) {
	go func() {
		if err := os.cacheService.PublishOrderEvent(event); err != nil {
			os.logger.Warn("Failed to publish order event", gecho.Field("error", err), gecho.Field("order_id", event.OrderId))
		}
	}()
}

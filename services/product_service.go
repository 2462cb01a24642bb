package services

import (
	"context"
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

type ProductService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewProductService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *ProductService {
	return &ProductService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// ProductListResult wraps the catalog list response with metadata
type ProductListResult struct {
	Products   []tables.ProductTemplate   `json:"products"`
	Pagination database.Pagination        `json:"pagination"`
	Filters    structs.ProductListOptions `json:"filters"`
	QueryTime  time.Duration              `json:"query_time"`
}

// ListTemplates retrieves product templates with filtering and pagination.
// Both the storefront and the vendor back-office funnel through here;
// the storefront pins IsPublished and IsRentable to true.
func (ps *ProductService) ListTemplates(ctx context.Context, opts *structs.ProductListOptions) (*ProductListResult, error) {
	startTime := time.Now()

	if opts == nil {
		opts = &structs.ProductListOptions{}
	}
	ps.applyDefaultOptions(opts)

	if err := ps.validateOptions(opts); err != nil {
		ps.logger.Error("Invalid product list options", gecho.Field("error", err))
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	query := database.Query[tables.ProductTemplate](ps.db).With("Pricing")
	query = ps.applyFilters(query, opts)
	query = query.OrderBy(opts.SortBy, database.OrderDirection(opts.SortDirection))

	result, err := database.Paginate(query, ctx, opts.Page, opts.PageSize)
	if err != nil {
		ps.logger.Error("Failed to fetch product templates",
			gecho.Field("error", err),
			gecho.Field("page", opts.Page),
			gecho.Field("pageSize", opts.PageSize),
			gecho.Field("duration", time.Since(startTime)))
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	ps.logger.Debug("Product templates fetched",
		gecho.Field("count", len(result.Data)),
		gecho.Field("total", result.Pagination.Total),
		gecho.Field("duration", time.Since(startTime)),
	)

	return &ProductListResult{
		Products:   result.Data,
		Pagination: result.Pagination,
		Filters:    *opts,
		QueryTime:  time.Since(startTime),
	}, nil
}

// ListStorefront returns the published, rentable catalog with redis caching
func (ps *ProductService) ListStorefront(ctx context.Context, opts *structs.ProductListOptions) (*ProductListResult, error) {
	startTime := time.Now()

	published := true
	rentable := true
	opts.IsPublished = &published
	opts.IsRentable = &rentable
	ps.applyDefaultOptions(opts)

	// Only unfiltered pages are worth caching; searches go to the database
	cacheable := opts.SearchTerm == "" && opts.MinPrice == nil && opts.MaxPrice == nil && len(opts.SKUs) == 0
	filterKey := fmt.Sprintf("%d:%d:%s:%s", opts.Page, opts.PageSize, opts.SortBy, opts.SortDirection)

	if cacheable {
		cached, err := ps.cacheService.GetCatalogPage(filterKey)
		if err == nil && cached != nil {
			ps.logger.Debug("Catalog page retrieved from cache",
				gecho.Field("count", len(cached.Products)),
				gecho.Field("total", cached.Pagination.Total),
				gecho.Field("duration", time.Since(startTime)),
			)
			return &ProductListResult{
				Products:   cached.Products,
				Pagination: cached.Pagination,
				Filters:    *opts,
				QueryTime:  time.Since(startTime),
			}, nil
		}
	}

	result, err := ps.ListTemplates(ctx, opts)
	if err != nil {
		return nil, err
	}

	if cacheable {
		page := &CatalogPage{Products: result.Products, Pagination: result.Pagination}
		go func() {
			if err := ps.cacheService.SetCatalogPage(filterKey, page); err != nil {
				ps.logger.Warn("Failed to cache catalog page", gecho.Field("error", err))
			}
		}()
	}

	return result, nil
}

// GetPublishedTemplate returns a storefront-visible template with pricing,
// cache first. Unpublished or non-rentable templates come back as
// ErrProductNotRentable so the storefront cannot rent shelved stock.
func (ps *ProductService) GetPublishedTemplate(ctx context.Context, id uuid.UUID) (*tables.ProductTemplate, error) {
	cached, err := ps.cacheService.GetTemplateByID(id)
	if err != nil {
		ps.logger.Warn("Failed to get template from cache", gecho.Field("error", err), gecho.Field("id", id))
	} else if cached != nil {
		if !cached.IsPublished || !cached.IsRentable {
			return nil, lib.ErrProductNotRentable
		}
		return cached, nil
	}

	template, err := ps.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !template.IsPublished || !template.IsRentable {
		return nil, lib.ErrProductNotRentable
	}

	go func() {
		if err := ps.cacheService.SetTemplateByID(template); err != nil {
			ps.logger.Warn("Failed to cache template", gecho.Field("error", err), gecho.Field("id", id))
		}
	}()

	return template, nil
}

// GetTemplateByID fetches a template with its pricing tiers, no publish filter
func (ps *ProductService) GetTemplateByID(ctx context.Context, id uuid.UUID) (*tables.ProductTemplate, error) {
	template, err := database.Query[tables.ProductTemplate](ps.db).
		Where("id", id).
		With("Pricing").
		Timeout(5 * time.Second).
		First(ctx)
	if err != nil {
		ps.logger.Error("Failed to fetch template by ID", gecho.Field("id", id), gecho.Field("error", err))
		return nil, lib.MapPgError(err)
	}
	if template == nil {
		return nil, lib.ErrNotFound
	}
	return template, nil
}

// CreateTemplate inserts a vendor's product and its pricing tiers in one
// transaction. A missing SKU gets generated from the name.
func (ps *ProductService) CreateTemplate(ctx context.Context, vendorID uuid.UUID, req *structs.UpsertProductRequest) (*tables.ProductTemplate, error) {
	sku := req.SKU
	if sku == "" {
		generated, err := lib.GenerateSKU(req.Name, 6)
		if err != nil {
			return nil, err
		}
		sku = generated
	}

	template := &tables.ProductTemplate{
		VendorID:       vendorID,
		Name:           req.Name,
		Description:    req.Description,
		SKU:            sku,
		CostPriceCents: req.CostPriceCents,
		QuantityOnHand: req.QuantityOnHand,
		IsPublished:    req.IsPublished,
		IsRentable:     req.IsRentable,
	}

	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(template).Returning("*").Exec(ctx); err != nil {
			return err
		}
		return insertPricingRows(ctx, tx, template.ID, req.Pricing)
	})
	if txErr != nil {
		mappedErr := lib.MapPgError(txErr)
		if lib.IsUniqueViolation(mappedErr) {
			ps.logger.Warn("Product create failed - duplicate SKU", gecho.Field("sku", sku), gecho.Field("vendor_id", vendorID))
		} else {
			ps.logger.Error("Failed to create product template", gecho.Field("error", mappedErr), gecho.Field("vendor_id", vendorID))
		}
		return nil, mappedErr
	}

	ps.invalidateCatalog(template.ID)

	return ps.GetTemplateByID(ctx, template.ID)
}

// UpdateTemplate rewrites a vendor's product. Pricing tiers are replaced
// wholesale: delete all, insert the submitted set, same transaction.
func (ps *ProductService) UpdateTemplate(ctx context.Context, vendorID, templateID uuid.UUID, req *structs.UpsertProductRequest) (*tables.ProductTemplate, error) {
	existing, err := ps.getOwnedTemplate(ctx, vendorID, templateID)
	if err != nil {
		return nil, err
	}

	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*tables.ProductTemplate)(nil)).
			Set("name = ?", req.Name).
			Set("description = ?", req.Description).
			Set("cost_price_cents = ?", req.CostPriceCents).
			Set("quantity_on_hand = ?", req.QuantityOnHand).
			Set("is_published = ?", req.IsPublished).
			Set("is_rentable = ?", req.IsRentable).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", existing.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*tables.RentalPricing)(nil)).
			Where("template_id = ?", existing.ID).
			Exec(ctx); err != nil {
			return err
		}

		return insertPricingRows(ctx, tx, existing.ID, req.Pricing)
	})
	if txErr != nil {
		ps.logger.Error("Failed to update product template", gecho.Field("error", txErr), gecho.Field("template_id", templateID))
		return nil, lib.MapPgError(txErr)
	}

	ps.invalidateCatalog(templateID)

	return ps.GetTemplateByID(ctx, templateID)
}

// DeleteTemplate removes a vendor's product and its pricing tiers
func (ps *ProductService) DeleteTemplate(ctx context.Context, vendorID, templateID uuid.UUID) error {
	existing, err := ps.getOwnedTemplate(ctx, vendorID, templateID)
	if err != nil {
		return err
	}

	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*tables.RentalPricing)(nil)).
			Where("template_id = ?", existing.ID).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*tables.ProductTemplate)(nil)).
			Where("id = ?", existing.ID).
			Exec(ctx)
		return err
	})
	if txErr != nil {
		ps.logger.Error("Failed to delete product template", gecho.Field("error", txErr), gecho.Field("template_id", templateID))
		return lib.MapPgError(txErr)
	}

	ps.invalidateCatalog(templateID)

	return nil
}

// ListVendorTemplates returns a vendor's own inventory, published or not
func (ps *ProductService) ListVendorTemplates(ctx context.Context, vendorID uuid.UUID, page, pageSize int) (*database.PaginationResult[tables.ProductTemplate], error) {
	q := database.Query[tables.ProductTemplate](ps.db).
		Where("vendor_id", vendorID).
		With("Pricing").
		OrderBy("created_at", database.DESC)
	return database.Paginate(q, ctx, page, pageSize)
}

func (ps *ProductService) getOwnedTemplate(ctx context.Context, vendorID, templateID uuid.UUID) (*tables.ProductTemplate, error) {
	template, err := database.Query[tables.ProductTemplate](ps.db).
		Where("id", templateID).
		Where("vendor_id", vendorID).
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if template == nil {
		return nil, lib.ErrNotFound
	}
	return template, nil
}

func (ps *ProductService) invalidateCatalog(templateID uuid.UUID) {
	go func() {
		if err := ps.cacheService.InvalidateCatalogCaches(templateID); err != nil {
			ps.logger.Warn("Failed to invalidate catalog caches", gecho.Field("error", err), gecho.Field("template_id", templateID))
		}
	}()
}

func insertPricingRows(ctx context.Context, tx bun.Tx, templateID uuid.UUID, rows []structs.PricingRow) error {
	pricing := make([]tables.RentalPricing, 0, len(rows))
	for _, row := range rows {
		pricing = append(pricing, tables.RentalPricing{
			TemplateID:        templateID,
			DurationUnit:      tables.DurationUnit(row.DurationUnit),
			PricePerUnitCents: row.PricePerUnitCents,
			LateFeeCentsHour:  row.LateFeeCentsPerHr,
			CustomUnitHours:   row.CustomUnitHours,
		})
	}

	_, err := tx.NewInsert().Model(&pricing).Exec(ctx)
	return err
}

// applyDefaultOptions sets default values for unspecified options
func (ps *ProductService) applyDefaultOptions(opts *structs.ProductListOptions) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100 // Max page size for performance
	}
	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}
	if opts.SortDirection == "" {
		opts.SortDirection = "DESC"
	}
}

// validateOptions validates the provided options
func (ps *ProductService) validateOptions(opts *structs.ProductListOptions) error {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"sku":        true,
	}
	if !validSortFields[opts.SortBy] {
		return fmt.Errorf("invalid sort field: %s", opts.SortBy)
	}

	if opts.SortDirection != "ASC" && opts.SortDirection != "DESC" {
		return fmt.Errorf("invalid sort direction: %s (must be ASC or DESC)", opts.SortDirection)
	}

	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return fmt.Errorf("min_price cannot be greater than max_price")
	}

	return nil
}

// applyFilters applies all filter conditions to the query
func (ps *ProductService) applyFilters(query *database.QueryBuilder[tables.ProductTemplate], opts *structs.ProductListOptions) *database.QueryBuilder[tables.ProductTemplate] {
	if opts.IsPublished != nil {
		query = query.Where("is_published", *opts.IsPublished)
	}
	if opts.IsRentable != nil {
		query = query.Where("is_rentable", *opts.IsRentable)
	}

	// Price filters look at the daily pricing tier
	if opts.MinPrice != nil {
		query = query.WhereRaw(
			"EXISTS (SELECT 1 FROM rental_pricing rp WHERE rp.template_id = pt.id AND rp.price_per_unit_cents >= ?)",
			*opts.MinPrice,
		)
	}
	if opts.MaxPrice != nil {
		query = query.WhereRaw(
			"EXISTS (SELECT 1 FROM rental_pricing rp WHERE rp.template_id = pt.id AND rp.price_per_unit_cents <= ?)",
			*opts.MaxPrice,
		)
	}

	if opts.SearchTerm != "" {
		searchPattern := "%" + opts.SearchTerm + "%"
		query = query.WhereRaw(
			"(name ILIKE ? OR description ILIKE ? OR sku ILIKE ?)",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if len(opts.SKUs) > 0 {
		skuInterfaces := make([]any, len(opts.SKUs))
		for i, sku := range opts.SKUs {
			skuInterfaces[i] = sku
		}
		query = query.WhereIn("sku", skuInterfaces)
	}

	if opts.CreatedAfter != nil {
		query = query.WhereOp("created_at", ">=", *opts.CreatedAfter)
	}
	if opts.CreatedBefore != nil {
		query = query.WhereOp("created_at", "<=", *opts.CreatedBefore)
	}

	return query
}

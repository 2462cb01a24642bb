package api

import (
	"rentkart_server/api/admin"
	"rentkart_server/api/auth"
	"rentkart_server/api/health"
	"rentkart_server/api/middleware"
	"rentkart_server/api/orders"
	"rentkart_server/api/products"
	"rentkart_server/api/vendor"
	"rentkart_server/services"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	authRoutes    *auth.AuthRoutesManager
	productRoutes *products.ProductRoutesManager
	orderRoutes   *orders.OrderRoutesManager
	vendorRoutes  *vendor.VendorRoutesManager
	adminRoutes   *admin.AdminRoutesManager
	healthRoutes  *health.HealthRoutesManager
}

func NewRouterManager(
	logger *gecho.Logger,
	cfg *structs.Config,
	sm *services.ServiceManager,
	mw *middleware.Middleware,
) *routerManager {
	return &routerManager{
		authRoutes:    auth.NewAuthRoutesManager(logger, sm.AuthService, sm.OTPService, sm.EmailService, sm.CacheService, cfg, mw),
		productRoutes: products.NewProductRoutesManager(logger, sm.ProductService),
		orderRoutes:   orders.NewOrderRoutesManager(logger, cfg, sm.OrderService, sm.CacheService),
		vendorRoutes:  vendor.NewVendorRoutesManager(logger, sm.ProductService, sm.OrderService, mw),
		adminRoutes:   admin.NewAdminRoutesManager(logger, sm.UserService, sm.OrderService, mw),
		healthRoutes:  health.NewHealthRoutesManager(sm.HealthService),
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.authRoutes.RegisterRoutes(r)
	rm.productRoutes.RegisterRoutes(r)
	rm.orderRoutes.RegisterRoutes(r)
	rm.vendorRoutes.RegisterRoutes(r)
	rm.adminRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
}

package admin

import (
	"rentkart_server/api/middleware"
	"rentkart_server/services"
	"rentkart_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AdminRoutesManager struct {
	logger       *gecho.Logger
	userService  *services.UserService
	orderService *services.OrderService
	mw           *middleware.Middleware
}

func NewAdminRoutesManager(
	logger *gecho.Logger,
	userService *services.UserService,
	orderService *services.OrderService,
	mw *middleware.Middleware,
) *AdminRoutesManager {
	return &AdminRoutesManager{
		logger:       logger,
		userService:  userService,
		orderService: orderService,
		mw:           mw,
	}
}

func (adm *AdminRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adm.mw.RequireRole(tables.RoleAdmin))

		r.Get("/users", adm.ListUsers)
		r.Put("/users/{id}/role", adm.UpdateUserRole)
		r.Delete("/users/{id}", adm.DeleteUser)

		r.Get("/orders", adm.ListOrders)
	})
}

package orders

import (
	"rentkart_server/services"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type OrderRoutesManager struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	orderService *services.OrderService
	cacheService *services.CacheService
}

func NewOrderRoutesManager(
	logger *gecho.Logger,
	cfg *structs.Config,
	orderService *services.OrderService,
	cacheService *services.CacheService,
) *OrderRoutesManager {
	return &OrderRoutesManager{
		logger:       logger,
		cfg:          cfg,
		orderService: orderService,
		cacheService: cacheService,
	}
}

func (orm *OrderRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orm.ListMyOrders)
		r.Post("/draft", orm.OpenDraft)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", orm.GetOrder)
			r.Get("/events", orm.StreamOrderEvents)
			r.Post("/items", orm.AddItem)
			r.Delete("/items/{itemID}", orm.RemoveItem)
			r.Post("/quote", orm.SubmitForQuote)
			r.Post("/confirm", orm.ConfirmPayment)
			r.Post("/cancel", orm.CancelOrder)
		})
	})
}

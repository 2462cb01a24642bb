package middleware

import (
	"rentkart_server/services"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
)

type Middleware struct {
	cfg          *structs.Config
	logger       *gecho.Logger
	authService  *services.AuthService
	cacheService *services.CacheService
}

func NewMiddleware(
	cfg *structs.Config,
	logger *gecho.Logger,
	authService *services.AuthService,
	cacheService *services.CacheService,
) *Middleware {
	return &Middleware{
		cfg:          cfg,
		logger:       logger,
		authService:  authService,
		cacheService: cacheService,
	}
}

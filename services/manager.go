package services

import (
	"rentkart_server/database"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	AuthService    *AuthService
	OTPService     *OTPService
	EmailService   *EmailService
	CacheService   *CacheService
	HealthService  *HealthService
	ProductService *ProductService
	OrderService   *OrderService
	UserService    *UserService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB) *ServiceManager {
	authService := NewAuthService(cfg, logger, db)
	cacheService := NewCacheService(logger, cfg)
	emailService := NewEmailService(logger, cfg, db)
	otpService := NewOTPService(logger, cfg, db, cacheService, emailService)
	healthService := NewHealthService(logger, db, cacheService)
	productService := NewProductService(logger, db, cacheService)
	orderService := NewOrderService(logger, cfg, db, productService, emailService, cacheService)
	userService := NewUserService(logger, db, cacheService)

	return &ServiceManager{
		AuthService:    authService,
		OTPService:     otpService,
		EmailService:   emailService,
		CacheService:   cacheService,
		HealthService:  healthService,
		ProductService: productService,
		OrderService:   orderService,
		UserService:    userService,
	}
}

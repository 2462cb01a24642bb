package auth

import (
	"rentkart_server/api/middleware"
	"rentkart_server/services"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AuthRoutesManager struct {
	logger       *gecho.Logger
	authService  *services.AuthService
	otpService   *services.OTPService
	emailService *services.EmailService
	cacheService *services.CacheService
	cfg          *structs.Config
	mw           *middleware.Middleware
}

func NewAuthRoutesManager(
	logger *gecho.Logger,
	authService *services.AuthService,
	otpService *services.OTPService,
	emailService *services.EmailService,
	cacheService *services.CacheService,
	cfg *structs.Config,
	mw *middleware.Middleware,
) *AuthRoutesManager {
	return &AuthRoutesManager{
		logger:       logger,
		authService:  authService,
		otpService:   otpService,
		emailService: emailService,
		cacheService: cacheService,
		cfg:          cfg,
		mw:           mw,
	}
}

func (arm *AuthRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		// CSRF token endpoint (must be called before protected routes)
		r.Get("/csrf", arm.HandleCSRF)

		// Signup flow: code first, then the full registration payload
		r.Post("/send-otp", arm.HandleSendOTP)
		r.Post("/verify-signup", arm.HandleVerifySignup)

		r.Post("/forgot-password", arm.HandleForgotPassword)
		r.Post("/reset-password", arm.HandleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(arm.mw.CSRFMiddleware())
			r.Post("/login", arm.HandleLogin)
			r.Post("/logout", arm.HandleLogout)
		})

		r.Post("/refresh", arm.HandleRefresh)
		r.Get("/me", arm.HandleMe)
	})
}

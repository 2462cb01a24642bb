package auth

import (
	"net/http"
	"rentkart_server/api/middleware"

	"github.com/MonkyMars/gecho"
)

// HandleMe returns the profile behind the current session.
func (arm *AuthRoutesManager) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		gecho.Unauthorized(w,
			gecho.WithMessage("Authentication required"),
			gecho.Send(),
		)
		return
	}

	// The guard usually resolved the profile already
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		gecho.Success(w, gecho.WithData(user), gecho.Send())
		return
	}

	user, err := arm.authService.GetUserByID(claims.Sub)
	if err != nil || user == nil {
		arm.logger.Warn("Failed to load profile for /auth/me", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
		gecho.NotFound(w,
			gecho.WithMessage("Profile not found"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w, gecho.WithData(user), gecho.Send())
}

package auth

import (
	"net/http"
	"rentkart_server/lib"

	"github.com/MonkyMars/gecho"
)

func (arm *AuthRoutesManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	accessToken, err := lib.GetCookieValue(lib.AccessCookieName, r)
	if err != nil {
		gecho.Success(w,
			gecho.WithMessage("No active session"),
			gecho.Send(),
		)
		return
	}

	claims, err := lib.ParseToken(accessToken, arm.cfg.Auth.AccessTokenSecret)
	if err != nil {
		arm.logger.Warn("Failed to parse access token during logout", gecho.Field("error", err))
		lib.ClearCookie(lib.AccessCookieName, w)
		lib.ClearCookie(lib.RefreshCookieName, w)
		gecho.Success(w,
			gecho.WithMessage("Logged out"),
			gecho.Send(),
		)
		return
	}

	if err := arm.cacheService.BlacklistToken(claims.Jti, claims.Exp); err != nil {
		arm.logger.Error("Failed to blacklist access token during logout", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Failed to logout"),
			gecho.Send(),
		)
		return
	}

	if err := arm.cacheService.InvalidateUserCache(claims.Sub); err != nil {
		arm.logger.Error("Failed to clear user cache during logout", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
	}

	lib.ClearCookie(lib.AccessCookieName, w)
	lib.ClearCookie(lib.RefreshCookieName, w)

	gecho.Success(w,
		gecho.WithMessage("Logged out successfully"),
		gecho.Send(),
	)
}

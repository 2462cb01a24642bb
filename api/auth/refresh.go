package auth

import (
	"net/http"
	"rentkart_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleRefresh mints a new access token from the refresh cookie.
func (arm *AuthRoutesManager) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := lib.GetCookieValue(lib.RefreshCookieName, r)
	if err != nil {
		gecho.Unauthorized(w,
			gecho.WithMessage("No refresh token"),
			gecho.Send(),
		)
		return
	}

	resp, err := arm.authService.RefreshAccessToken(refreshToken)
	if err != nil {
		arm.logger.Warn("Refresh token rejected", gecho.Field("error", err))
		lib.ClearCookie(lib.AccessCookieName, w)
		lib.ClearCookie(lib.RefreshCookieName, w)
		gecho.Unauthorized(w,
			gecho.WithMessage("Session expired. Please log in again"),
			gecho.Send(),
		)
		return
	}

	lib.SetCookie(lib.AccessCookieName, resp.AccessToken, arm.authService.GetAccessTokenExpiration(), w)
	if resp.RefreshToken != "" {
		lib.SetCookie(lib.RefreshCookieName, resp.RefreshToken, arm.authService.GetRefreshTokenExpiration(), w)
	}

	gecho.Success(w,
		gecho.WithMessage("Session refreshed"),
		gecho.WithData(resp.User),
		gecho.Send(),
	)
}

package auth

import (
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleResetPassword exchanges a recovery token for a new password. The
// token is blacklisted after use so a leaked reset link only works once.
func (arm *AuthRoutesManager) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.ResetPasswordRequest](r)
	if err != nil {
		arm.logger.Warn("Failed to extract reset-password body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("A reset token and a new password are required"), gecho.Send())
		return
	}

	claims, err := arm.authService.ParseRecoveryToken(body.Token)
	if err != nil {
		arm.logger.Warn("Invalid recovery token", gecho.Field("error", err))
		gecho.Unauthorized(w,
			gecho.WithMessage("This reset link is invalid or has expired"),
			gecho.Send(),
		)
		return
	}

	blacklisted, err := arm.cacheService.IsTokenBlacklisted(claims.Jti)
	if err != nil {
		arm.logger.Warn("Blacklist lookup failed during password reset", gecho.Field("error", err))
	}
	if blacklisted {
		gecho.Unauthorized(w,
			gecho.WithMessage("This reset link has already been used"),
			gecho.Send(),
		)
		return
	}

	if err := arm.authService.ResetPassword(claims.Sub, body.Password); err != nil {
		arm.logger.Error("Failed to reset password", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to reset password. Please try again"),
			gecho.Send(),
		)
		return
	}

	if err := arm.cacheService.BlacklistToken(claims.Jti, claims.Exp); err != nil {
		arm.logger.Warn("Failed to blacklist used recovery token", gecho.Field("error", err))
	}

	gecho.Success(w,
		gecho.WithMessage("Password updated. You can now log in"),
		gecho.Send(),
	)
}

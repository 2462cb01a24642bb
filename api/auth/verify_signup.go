package auth

import (
	"errors"
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleVerifySignup completes registration: the submitted code proves the
// email, then credential and profile rows are created and the new session
// cookies are set in one round trip.
func (arm *AuthRoutesManager) HandleVerifySignup(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.VerifySignupRequest](r)
	if err != nil {
		arm.logger.Warn("Failed to extract verify-signup body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check your signup information and try again"), gecho.Send())
		return
	}

	if err := arm.otpService.Consume(body.Email, body.OTP); err != nil {
		switch {
		case errors.Is(err, lib.ErrOTPExpired), errors.Is(err, lib.ErrOTPMismatch), errors.Is(err, lib.ErrNotFound):
			arm.logger.Warn("Verification code rejected", gecho.Field("email", body.Email), gecho.Field("error", err))
			gecho.BadRequest(w,
				gecho.WithMessage("Invalid or expired verification code"),
				gecho.Send(),
			)
		default:
			arm.logger.Error("Failed to consume verification code", gecho.Field("error", err))
			gecho.InternalServerError(w,
				gecho.WithMessage("Unable to complete signup. Please try again"),
				gecho.Send(),
			)
		}
		return
	}

	user, err := arm.authService.CompleteSignup(body)
	if err != nil {
		if lib.IsUniqueViolation(err) {
			gecho.Conflict(w,
				gecho.WithMessage("An account with this email already exists"),
				gecho.Send(),
			)
			return
		}

		arm.logger.Error("Signup failed", gecho.Field("error", err), gecho.Field("email", body.Email))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to complete signup. Please try again"),
			gecho.Send(),
		)
		return
	}

	accessToken, err := arm.authService.GenerateAccessToken(user)
	if err != nil {
		arm.logger.Error("Failed to generate access token after signup", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Account created, please log in"), gecho.Send())
		return
	}

	refreshToken, err := arm.authService.GenerateRefreshToken(user)
	if err != nil {
		arm.logger.Error("Failed to generate refresh token after signup", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Account created, please log in"), gecho.Send())
		return
	}

	lib.SetCookie(lib.RefreshCookieName, refreshToken, arm.authService.GetRefreshTokenExpiration(), w)
	lib.SetCookie(lib.AccessCookieName, accessToken, arm.authService.GetAccessTokenExpiration(), w)

	gecho.Success(w,
		gecho.WithMessage("Signup complete"),
		gecho.WithData(user),
		gecho.Send(),
	)
}

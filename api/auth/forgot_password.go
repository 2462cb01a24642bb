package auth

import (
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"
	"time"

	"github.com/MonkyMars/gecho"
)

// HandleForgotPassword mails a recovery link. The response is identical
// whether or not the address has an account.
func (arm *AuthRoutesManager) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.ForgotPasswordRequest](r)
	if err != nil {
		arm.logger.Warn("Failed to extract forgot-password body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("A valid email address is required"), gecho.Send())
		return
	}

	neutral := func() {
		gecho.Success(w,
			gecho.WithMessage("If that address has an account, a reset link is on its way"),
			gecho.Send(),
		)
	}

	user, err := arm.authService.GetUserByEmail(body.Email)
	if err != nil || user == nil {
		if err != nil && !lib.IsNotFound(err) {
			arm.logger.Error("Failed to look up user for password reset", gecho.Field("error", err))
		}
		neutral()
		return
	}

	token, err := arm.authService.GenerateRecoveryToken(user)
	if err != nil {
		arm.logger.Error("Failed to generate recovery token", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		neutral()
		return
	}

	expiresAt := time.Now().Add(arm.cfg.Auth.RecoveryTokenExpiry)
	go func() {
		if err := arm.emailService.SendPasswordResetEmail(user, token, expiresAt); err != nil {
			arm.logger.Error("Failed to send password reset email", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		}
	}()

	neutral()
}

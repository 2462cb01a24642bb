package auth

import (
	"errors"
	"net/http"
	"rentkart_server/lib"
	"rentkart_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleSendOTP mails a six digit verification code to the address that
// wants to sign up. Resends inside the cooldown window are refused.
func (arm *AuthRoutesManager) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.SendOTPRequest](r)
	if err != nil {
		arm.logger.Warn("Failed to extract send-otp body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("A valid email address is required"), gecho.Send())
		return
	}

	if err := arm.otpService.SendCode(body.Email); err != nil {
		if errors.Is(err, lib.ErrOTPCooldown) {
			gecho.TooManyRequests(w,
				gecho.WithMessage("A code was sent recently. Please wait before requesting another"),
				gecho.Send(),
			)
			return
		}

		arm.logger.Error("Failed to send verification code", gecho.Field("error", err), gecho.Field("email", body.Email))
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to send verification code. Please try again"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Verification code sent"),
		gecho.Send(),
	)
}

package structs

import (
	"time"

	"github.com/google/uuid"
)

type ArgonParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

type AuthClaims struct {
	Sub   uuid.UUID `json:"sub"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Iat   time.Time `json:"iat"`
	Exp   time.Time `json:"exp"`
	Jti   uuid.UUID `json:"jti"`
}

type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifySignupRequest completes signup: the one-time code proves email
// ownership, the rest becomes the credential and profile rows.
type VerifySignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	Password    string `json:"password" validate:"required,min=8,max=100"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Role        string `json:"role" validate:"required,oneof=CUSTOMER VENDOR"`
	CompanyName string `json:"company_name" validate:"omitempty,min=2,max=150"`
	GSTIN       string `json:"gstin" validate:"omitempty,len=15,alphanum"`
	Mobile      string `json:"mobile" validate:"omitempty,min=10,max=15"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

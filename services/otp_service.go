package services

import (
	"context"
	"crypto/subtle"
	"rentkart_server/database"
	"rentkart_server/lib"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
)

// OTPService issues and verifies one-time signup codes. Codes are
// stored in Postgres; the resend cooldown is a Redis key with a TTL.
type OTPService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	db           *database.DB
	cacheService *CacheService
	emailService *EmailService
}

func NewOTPService(logger *gecho.Logger, cfg *structs.Config, db *database.DB, cacheService *CacheService, emailService *EmailService) *OTPService {
	return &OTPService{
		logger:       logger,
		cfg:          cfg,
		db:           db,
		cacheService: cacheService,
		emailService: emailService,
	}
}

// SendCode generates a fresh verification code for the address and mails it.
// A second request inside the cooldown window returns ErrOTPCooldown.
func (os *OTPService) SendCode(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := os.cacheService.MarkOTPSent(email, os.cfg.Email.ResendCooldown)
	if err != nil {
		// Redis being down should not block signups
		os.logger.Warn("Cooldown check failed, allowing send", gecho.Field("error", err), gecho.Field("email", email))
	} else if !allowed {
		os.logger.Debug("Verification code requested during cooldown", gecho.Field("email", email))
		return lib.ErrOTPCooldown
	}

	code, err := lib.GenerateOTP()
	if err != nil {
		os.logger.Error("Failed to generate verification code", gecho.Field("error", err))
		return err
	}

	// A new code always replaces earlier ones for the same address
	if _, err := database.Query[tables.VerificationCode](os.db).Where("email", email).Delete(context.Background()); err != nil {
		os.logger.Warn("Failed to delete previous verification codes", gecho.Field("error", err), gecho.Field("email", email))
	}

	record := &tables.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(os.cfg.Email.OTPExpiry),
	}
	record, err = database.Query[tables.VerificationCode](os.db).Insert(context.Background(), record)
	if err != nil {
		os.logger.Error("Failed to store verification code", gecho.Field("error", err), gecho.Field("email", email))
		return lib.MapPgError(err)
	}

	if err := os.emailService.SendVerificationCodeEmail(email, code, record.ExpiresAt); err != nil {
		return err
	}

	os.logger.Info("Verification code sent", gecho.Field("email", email))
	return nil
}

// ValidateCode checks a submitted code against a stored record.
// Pure so the expiry and mismatch rules are testable without a database.
func ValidateCode(record *tables.VerificationCode, submitted string, now time.Time) error {
	if record == nil {
		return lib.ErrOTPMismatch
	}
	if now.After(record.ExpiresAt) {
		return lib.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(submitted)) != 1 {
		return lib.ErrOTPMismatch
	}
	return nil
}

// Consume verifies the code for an address and deletes it on success,
// so each code proves ownership exactly once.
func (os *OTPService) Consume(email, submitted string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	record, err := database.Query[tables.VerificationCode](os.db).
		Where("email", email).
		OrderBy("created_at", database.DESC).
		First(context.Background())
	if err != nil {
		os.logger.Error("Failed to look up verification code", gecho.Field("error", err), gecho.Field("email", email))
		return lib.MapPgError(err)
	}

	if err := ValidateCode(record, submitted, time.Now()); err != nil {
		os.logger.Debug("Verification code rejected", gecho.Field("email", email), gecho.Field("reason", err))
		return err
	}

	if _, err := database.Query[tables.VerificationCode](os.db).Where("id", record.Id).Delete(context.Background()); err != nil {
		os.logger.Error("Failed to delete consumed verification code", gecho.Field("error", err), gecho.Field("email", email))
		return lib.MapPgError(err)
	}

	return nil
}

// PurgeExpired deletes all expired verification codes and returns the count removed
func (os *OTPService) PurgeExpired(ctx context.Context) (int, error) {
	deleted, err := database.Query[tables.VerificationCode](os.db).
		WhereOp("expires_at", "<", time.Now()).
		Delete(ctx)
	if err != nil {
		return 0, lib.MapPgError(err)
	}
	return deleted, nil
}

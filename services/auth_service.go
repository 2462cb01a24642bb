package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"rentkart_server/database"
	"rentkart_server/lib"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

var DefaultParams = &structs.ArgonParams{
	Memory:  64 * 1024, // 64 MB
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

type AuthService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	db           *database.DB
	cacheService *CacheService
}

func NewAuthService(cfg *structs.Config, logger *gecho.Logger, db *database.DB) *AuthService {
	return &AuthService{
		logger:       logger,
		cfg:          cfg,
		db:           db,
		cacheService: NewCacheService(logger, cfg),
	}
}

// Login verifies the email/password pair against the credentials table and
// returns the matching profile. Always answers invalid credentials on any
// lookup failure so account existence does not leak.
func (as *AuthService) Login(authRequest *structs.AuthRequest) (*tables.User, error) {
	startTime := time.Now()

	credential, err := database.Query[tables.Credential](as.db).Where("email", authRequest.Email).First(context.Background())
	if err != nil {
		mappedErr := lib.MapPgError(err)

		if !lib.IsNotFound(mappedErr) {
			as.logger.Error("Unexpected database error during login",
				gecho.Field("error", mappedErr),
				gecho.Field("original_error", err),
			)
		}

		return nil, lib.ErrInvalidCredentials
	}

	if credential == nil {
		as.logger.Debug("Credential not found during login attempt", gecho.Field("identifier", authRequest.Email))
		return nil, lib.ErrInvalidCredentials
	}

	valid, err := as.VerifyPassword(authRequest.Password, credential.PasswordHash)
	if err != nil {
		as.logger.Error("Failed to verify password hash",
			gecho.Field("error", err),
			gecho.Field("credential_id", credential.Id),
		)
		return nil, err
	}
	if !valid {
		as.logger.Debug("Invalid password attempt",
			gecho.Field("identifier", authRequest.Email),
			gecho.Field("credential_id", credential.Id),
		)
		return nil, lib.ErrInvalidCredentials
	}

	user, err := database.Query[tables.User](as.db).Where("credential_id", credential.Id).First(context.Background())
	if err != nil {
		as.logger.Error("Failed to load profile during login", gecho.Field("error", err), gecho.Field("credential_id", credential.Id))
		return nil, lib.MapPgError(err)
	}
	if user == nil {
		// Credential exists but signup never finished; the guard sends
		// this state to onboarding.
		as.logger.Warn("Credential without profile logged in", gecho.Field("credential_id", credential.Id))
		return nil, lib.ErrNotFound
	}

	elapsedTime := time.Since(startTime)
	as.logger.Debug("User logged in successfully", gecho.Field("user_id", user.Id), gecho.Field("elapsed_time_ms", elapsedTime.Milliseconds()))

	cacheErr := as.cacheService.SetUserInCache(user)
	if cacheErr != nil {
		as.logger.Warn("Failed to set user in cache after login", gecho.Field("error", cacheErr), gecho.Field("user_id", user.Id))
	}

	return user, nil
}

// CompleteSignup creates the credential and profile rows for a verified
// email address. If the profile insert fails, the freshly created
// credential is deleted again so the email can retry signup cleanly.
func (as *AuthService) CompleteSignup(req *structs.VerifySignupRequest) (*tables.User, error) {
	startTime := time.Now()

	passwordHash, err := as.HashPassword(req.Password, DefaultParams)
	if err != nil {
		as.logger.Error("Failed to hash password", gecho.Field("error", err))
		return nil, err
	}

	credential := &tables.Credential{
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	credential, err = database.Query[tables.Credential](as.db).Insert(context.Background(), credential)
	if err != nil {
		mappedErr := lib.MapPgError(err)

		if lib.IsUniqueViolation(mappedErr) {
			as.logger.Warn("Signup failed - duplicate email", gecho.Field("email", req.Email))
		} else {
			as.logger.Error("Database error during signup", gecho.Field("error", mappedErr), gecho.Field("email", req.Email))
		}

		return nil, mappedErr
	}

	user := &tables.User{
		CredentialId: credential.Id,
		Email:        req.Email,
		Name:         req.Name,
		Role:         tables.UserRole(req.Role),
		CompanyName:  req.CompanyName,
		GSTIN:        req.GSTIN,
		Mobile:       req.Mobile,
	}
	user, err = database.Query[tables.User](as.db).Insert(context.Background(), user)
	if err != nil {
		mappedErr := lib.MapPgError(err)
		as.logger.Error("Profile insert failed during signup, rolling back credential",
			gecho.Field("error", mappedErr),
			gecho.Field("credential_id", credential.Id),
		)

		// Best effort compensation; an orphaned credential still lands on
		// the onboarding page rather than a broken account.
		if _, delErr := database.Query[tables.Credential](as.db).Where("id", credential.Id).Delete(context.Background()); delErr != nil {
			as.logger.Error("Failed to delete orphaned credential", gecho.Field("error", delErr), gecho.Field("credential_id", credential.Id))
		}

		return nil, mappedErr
	}

	elapsedTime := time.Since(startTime)
	as.logger.Debug("User signed up successfully", gecho.Field("user_id", user.Id), gecho.Field("elapsed_time_ms", elapsedTime.Milliseconds()))

	return user, nil
}

// HashPassword hashes a plain-text password and returns a string and possible error
func (as *AuthService) HashPassword(password string, p *structs.ArgonParams) (string, error) {
	salt, err := generateSalt(p.SaltLen)
	if err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)
	// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	params := fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Time, p.Threads)
	encoded := fmt.Sprintf("$argon2id$v=19$%s$%s$%s", params, b64Salt, b64Hash)
	return encoded, nil
}

func generateSalt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// VerifyPassword verifies a plain-text password against a hashed password
func (as *AuthService) VerifyPassword(password, hashedPassword string) (bool, error) {
	parts, err := lib.DecodeArgon2Hash(hashedPassword)
	if err != nil {
		return false, err
	}

	hash := argon2.IDKey([]byte(password), parts.Salt, parts.Time, parts.Memory, parts.Threads, parts.KeyLen)

	return lib.SecureCompare(hash, parts.Hash), nil
}

func (as *AuthService) signToken(user *tables.User, secret string, exp time.Time) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.Id.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
		"jti":   uuid.New().String(),
	})
	return token.SignedString([]byte(secret))
}

// GenerateAccessToken generates a JWT access token for the given user
func (as *AuthService) GenerateAccessToken(user *tables.User) (string, error) {
	return as.signToken(user, as.cfg.Auth.AccessTokenSecret, as.GetAccessTokenExpiration())
}

// GetAccessTokenExpiration returns the expiration time for access tokens
func (as *AuthService) GetAccessTokenExpiration() time.Time {
	return time.Now().Add(as.cfg.Auth.AccessTokenExpiry)
}

// GenerateRefreshToken generates a JWT refresh token for the given user
func (as *AuthService) GenerateRefreshToken(user *tables.User) (string, error) {
	return as.signToken(user, as.cfg.Auth.RefreshTokenSecret, as.GetRefreshTokenExpiration())
}

// GetRefreshTokenExpiration returns the expiration time for refresh tokens
func (as *AuthService) GetRefreshTokenExpiration() time.Time {
	return time.Now().Add(as.cfg.Auth.RefreshTokenExpiry)
}

// GenerateRecoveryToken mints a short-lived token for password reset links
func (as *AuthService) GenerateRecoveryToken(user *tables.User) (string, error) {
	exp := time.Now().Add(as.cfg.Auth.RecoveryTokenExpiry)
	return as.signToken(user, as.cfg.Auth.RecoveryTokenSecret, exp)
}

// ParseRecoveryToken validates a password reset token and returns its claims
func (as *AuthService) ParseRecoveryToken(tokenStr string) (*structs.AuthClaims, error) {
	claims, err := lib.ParseToken(tokenStr, as.cfg.Auth.RecoveryTokenSecret)
	if err != nil {
		return nil, lib.ErrInvalidToken
	}
	if time.Now().After(claims.Exp) {
		return nil, lib.ErrExpiredToken
	}
	return claims, nil
}

func (as *AuthService) RefreshAccessToken(refreshToken string) (*tables.AuthResponse, error) {
	claims, err := lib.ParseToken(refreshToken, as.cfg.Auth.RefreshTokenSecret)
	if err != nil {
		as.logger.Error("Failed to parse refresh token", gecho.Field("error", err))
		return nil, lib.ErrInvalidToken
	}

	if time.Now().After(claims.Exp) {
		as.logger.Warn("Refresh token has expired", gecho.Field("exp", claims.Exp))
		return nil, lib.ErrExpiredToken
	}

	isBlacklisted, err := as.cacheService.IsTokenBlacklisted(claims.Jti)
	if err != nil {
		as.logger.Error("Failed to check if token is blacklisted", gecho.Field("error", err), gecho.Field("jti", claims.Jti))
		return nil, err
	}

	if isBlacklisted {
		as.logger.Warn("Refresh token is blacklisted", gecho.Field("jti", claims.Jti))
		return nil, lib.ErrInvalidToken
	}

	user, err := as.GetUserByID(claims.Sub)
	if err != nil {
		as.logger.Error("Failed to get user by ID during token refresh", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
		return nil, err
	}

	newAccessToken, err := as.GenerateAccessToken(user)
	if err != nil {
		as.logger.Error("Failed to generate new access token during refresh", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		return nil, err
	}

	newRefreshToken, err := as.GenerateRefreshToken(user)
	if err != nil {
		as.logger.Error("Failed to generate new refresh token during refresh", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		return nil, err
	}

	return &tables.AuthResponse{
		User:         user,
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (as *AuthService) GetUserByID(userId uuid.UUID) (*tables.User, error) {
	// Try to get user from cache first
	cachedUser, err := as.cacheService.GetUserFromCache(userId)
	if err != nil {
		as.logger.Warn("Failed to get user from cache", gecho.Field("error", err), gecho.Field("user_id", userId))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Cache miss - fetch user from database
	user, err := database.Query[tables.User](as.db).Where("id", userId).First(context.Background())
	if err != nil {
		as.logger.Error("Failed to find user by ID", gecho.Field("error", err), gecho.Field("user_id", userId))
		return nil, lib.MapPgError(err)
	}
	if user == nil {
		return nil, lib.ErrNotFound
	}

	// Cache the user asynchronously
	go func() {
		if err := as.cacheService.SetUserInCache(user); err != nil {
			as.logger.Warn("Failed to cache user after DB fetch", gecho.Field("error", err), gecho.Field("user_id", userId))
		}
	}()

	return user, nil
}

// GetUserByEmail fetches a profile by email, nil when absent
func (as *AuthService) GetUserByEmail(email string) (*tables.User, error) {
	user, err := database.Query[tables.User](as.db).Where("email", email).First(context.Background())
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	return user, nil
}

// ResetPassword replaces the stored hash for the credential behind a profile
func (as *AuthService) ResetPassword(userId uuid.UUID, newPassword string) error {
	user, err := as.GetUserByID(userId)
	if err != nil {
		return err
	}

	passwordHash, err := as.HashPassword(newPassword, DefaultParams)
	if err != nil {
		as.logger.Error("Failed to hash new password", gecho.Field("error", err), gecho.Field("user_id", userId))
		return err
	}

	_, err = database.Query[tables.Credential](as.db).
		Where("id", user.CredentialId).
		Update(context.Background(), map[string]any{"password_hash": passwordHash})
	if err != nil {
		as.logger.Error("Failed to update password hash", gecho.Field("error", err), gecho.Field("user_id", userId))
		return lib.MapPgError(err)
	}

	as.logger.Info("Password reset completed", gecho.Field("user_id", userId))
	return nil
}

func (as *AuthService) GetAccessTokenSecret() string {
	return as.cfg.Auth.AccessTokenSecret
}

func (as *AuthService) GetRefreshTokenSecret() string {
	return as.cfg.Auth.RefreshTokenSecret
}

func (as *AuthService) UpdateLastLogin(userId uuid.UUID) error {
	updates := map[string]any{
		"last_login": time.Now(),
	}
	_, err := database.Query[tables.User](as.db).Where("id", userId).Update(context.Background(), updates)
	if err != nil {
		return lib.MapPgError(err)
	}
	return nil
}

// GetDB returns the database instance (helper method for accessing db)
func (as *AuthService) GetDB() *database.DB {
	return as.db
}

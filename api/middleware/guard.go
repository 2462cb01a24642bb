package middleware

import (
	"context"
	"net/http"
	"net/url"
	"rentkart_server/lib"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"strings"

	"github.com/MonkyMars/gecho"
)

// The access guard is a single policy table evaluated once per request.
// Every route prefix maps to the one role allowed to enter it; everything
// not listed here and not on the public allowlist just needs a session.
// There is deliberately no admin bypass: an ADMIN visiting /vendor/* is
// bounced to /admin like any other wrong-role caller.

type guardVerdict int

const (
	verdictAllow guardVerdict = iota
	verdictLogin
	verdictOnboarding
	verdictDashboard
)

var rolePrefixes = []struct {
	prefix string
	role   tables.UserRole
}{
	{"/vendor", tables.RoleVendor},
	{"/admin", tables.RoleAdmin},
	{"/dashboard", tables.RoleCustomer},
}

var publicExact = map[string]bool{
	"/":                     true,
	"/login":                true,
	"/forgot-password":      true,
	"/metrics":              true,
	"/auth/send-otp":        true,
	"/auth/verify-signup":   true,
	"/auth/login":           true,
	"/auth/csrf":            true,
	"/auth/forgot-password": true,
	"/auth/reset-password":  true,
}

var publicPrefixes = []string{"/signup", "/products", "/health"}

func isPublicPath(path string) bool {
	if publicExact[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// resolveGuard decides what to do with a request given only its path and
// session state. Pure so the policy table is testable without HTTP.
func resolveGuard(path string, claims *structs.AuthClaims, hasProfile bool) guardVerdict {
	authed := claims != nil

	// Authenticated users have no business on the login/signup pages.
	if authed && (path == "/login" || path == "/signup" || strings.HasPrefix(path, "/signup/")) {
		return verdictDashboard
	}

	if isPublicPath(path) {
		return verdictAllow
	}

	if !authed {
		return verdictLogin
	}

	if !hasProfile {
		return verdictOnboarding
	}

	for _, rp := range rolePrefixes {
		if path == rp.prefix || strings.HasPrefix(path, rp.prefix+"/") {
			if claims.Role != string(rp.role) {
				return verdictDashboard
			}
			return verdictAllow
		}
	}

	return verdictAllow
}

// roleDashboard is where a wrong-role caller gets sent instead of a 403 page.
func roleDashboard(role string) string {
	switch tables.UserRole(role) {
	case tables.RoleAdmin:
		return "/admin"
	case tables.RoleVendor:
		return "/vendor"
	default:
		return "/dashboard"
	}
}

// wantsJSON distinguishes API callers (who get status codes) from browser
// navigations (who get redirects).
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// AccessGuard enforces the route policy table on every request. Claims and
// profile are resolved once here and stashed in the context for handlers.
func (mw *Middleware) AccessGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			claims := mw.sessionClaims(r)

			var user *tables.User
			hasProfile := false
			if claims != nil {
				var err error
				user, err = mw.authService.GetUserByID(claims.Sub)
				if err != nil {
					// Lookup failure is not "no profile"; fall back to
					// the role baked into the token.
					mw.logger.Warn("Guard profile lookup failed", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
					hasProfile = true
				} else {
					hasProfile = user != nil
				}
			}

			switch resolveGuard(path, claims, hasProfile) {
			case verdictLogin:
				if wantsJSON(r) {
					gecho.Unauthorized(w,
						gecho.WithMessage("Authentication required"),
						gecho.Send(),
					)
					return
				}
				http.Redirect(w, r, "/login?redirect="+url.QueryEscape(path), http.StatusSeeOther)
				return

			case verdictOnboarding:
				if wantsJSON(r) || strings.HasPrefix(path, "/auth/") {
					break
				}
				http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
				return

			case verdictDashboard:
				if wantsJSON(r) {
					gecho.Forbidden(w,
						gecho.WithMessage("You do not have access to this resource"),
						gecho.Send(),
					)
					return
				}
				http.Redirect(w, r, roleDashboard(claims.Role), http.StatusSeeOther)
				return
			}

			ctx := r.Context()
			if claims != nil {
				ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			}
			if user != nil {
				ctx = context.WithValue(ctx, UserContextKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionClaims parses the access cookie and drops revoked tokens. A missing
// or invalid cookie is simply an anonymous request.
func (mw *Middleware) sessionClaims(r *http.Request) *structs.AuthClaims {
	claims, err := lib.ExtractClaims(r, mw.cfg.Auth.AccessTokenSecret)
	if err != nil {
		return nil
	}

	blacklisted, err := mw.cacheService.IsTokenBlacklisted(claims.Jti)
	if err != nil {
		mw.logger.Warn("Blacklist lookup failed in guard, allowing session", gecho.Field("error", err))
		return claims
	}
	if blacklisted {
		return nil
	}
	return claims
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"rentkart_server/structs"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func customerClaims() *structs.AuthClaims {
	return &structs.AuthClaims{
		Sub:   uuid.New(),
		Email: "renter@example.com",
		Role:  "CUSTOMER",
		Jti:   uuid.New(),
	}
}

func TestResolveGuardAnonymous(t *testing.T) {
	t.Run("PublicPathsPass", func(t *testing.T) {
		for _, path := range []string{
			"/", "/login", "/signup", "/signup/vendor", "/forgot-password",
			"/products", "/products/abc", "/auth/send-otp", "/auth/verify-signup",
			"/auth/login", "/auth/csrf", "/auth/forgot-password",
			"/health/server", "/metrics",
		} {
			assert.Equal(t, verdictAllow, resolveGuard(path, nil, false), path)
		}
	})

	t.Run("ProtectedPathsRequireLogin", func(t *testing.T) {
		for _, path := range []string{
			"/dashboard", "/dashboard/cart", "/vendor/inventory",
			"/admin/users", "/orders", "/auth/me",
		} {
			assert.Equal(t, verdictLogin, resolveGuard(path, nil, false), path)
		}
	})
}

func TestResolveGuardRolePrefixes(t *testing.T) {
	claims := customerClaims()

	t.Run("CustomerOnCustomerPages", func(t *testing.T) {
		assert.Equal(t, verdictAllow, resolveGuard("/dashboard/cart", claims, true))
	})

	t.Run("CustomerOnVendorPages", func(t *testing.T) {
		assert.Equal(t, verdictDashboard, resolveGuard("/vendor/inventory", claims, true))
	})

	t.Run("CustomerOnAdminPages", func(t *testing.T) {
		assert.Equal(t, verdictDashboard, resolveGuard("/admin/users", claims, true))
	})

	t.Run("NoAdminBypass", func(t *testing.T) {
		admin := customerClaims()
		admin.Role = "ADMIN"
		assert.Equal(t, verdictDashboard, resolveGuard("/vendor/inventory", admin, true))
		assert.Equal(t, verdictDashboard, resolveGuard("/dashboard", admin, true))
		assert.Equal(t, verdictAllow, resolveGuard("/admin/users", admin, true))
	})

	t.Run("VendorOnVendorPages", func(t *testing.T) {
		vendor := customerClaims()
		vendor.Role = "VENDOR"
		assert.Equal(t, verdictAllow, resolveGuard("/vendor/inventory", vendor, true))
	})
}

func TestResolveGuardSessionStates(t *testing.T) {
	claims := customerClaims()

	t.Run("AuthedOnLoginPageBounces", func(t *testing.T) {
		assert.Equal(t, verdictDashboard, resolveGuard("/login", claims, true))
		assert.Equal(t, verdictDashboard, resolveGuard("/signup", claims, true))
		assert.Equal(t, verdictDashboard, resolveGuard("/signup/vendor", claims, true))
	})

	t.Run("SessionWithoutProfileGoesToOnboarding", func(t *testing.T) {
		assert.Equal(t, verdictOnboarding, resolveGuard("/dashboard", claims, false))
	})

	t.Run("PlainAuthedPathsPass", func(t *testing.T) {
		assert.Equal(t, verdictAllow, resolveGuard("/orders", claims, true))
		assert.Equal(t, verdictAllow, resolveGuard("/auth/me", claims, true))
	})
}

func TestRoleDashboard(t *testing.T) {
	assert.Equal(t, "/dashboard", roleDashboard("CUSTOMER"))
	assert.Equal(t, "/vendor", roleDashboard("VENDOR"))
	assert.Equal(t, "/admin", roleDashboard("ADMIN"))
	assert.Equal(t, "/dashboard", roleDashboard("something-else"))
}

func TestWantsJSON(t *testing.T) {
	t.Run("AcceptHeader", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/orders", nil)
		r.Header.Set("Accept", "application/json")
		assert.True(t, wantsJSON(r))
	})

	t.Run("ApiPrefix", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/orders", nil)
		assert.True(t, wantsJSON(r))
	})

	t.Run("BrowserNavigation", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/dashboard/cart", nil)
		r.Header.Set("Accept", "text/html,application/xhtml+xml")
		assert.False(t, wantsJSON(r))
	})
}

func TestAccessGuardAnonymousRequests(t *testing.T) {
	cfg := &structs.Config{Auth: &structs.AuthConfig{AccessTokenSecret: "test-secret"}}
	logger := gecho.NewLogger(gecho.NewConfig())
	mw := NewMiddleware(cfg, logger, nil, nil)

	handler := mw.AccessGuard()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("BrowserGetsRedirect", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/dashboard/cart", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?redirect=%2Fdashboard%2Fcart", rec.Header().Get("Location"))
	})

	t.Run("APICallerGets401", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("PublicPathPassesThrough", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/products", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/products/:id", normalizeEndpoint("/products/3f1c"))
	assert.Equal(t, "/orders/:id", normalizeEndpoint("/orders/3f1c/items"))
	assert.Equal(t, "/vendor/products/:id", normalizeEndpoint("/vendor/products/3f1c"))
	assert.Equal(t, "/products", normalizeEndpoint("/products/"))
	assert.Equal(t, "/auth/login", normalizeEndpoint("/auth/login"))
}

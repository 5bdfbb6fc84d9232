package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/infrastructure/auth"
	"github.com/lastmile/backend/internal/infrastructure/config"
)

func testJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "lastmile-test",
		MaxRefreshCount:        10,
	})
}

func issueShipperTokens(svc *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	officeID := uuid.New()
	input := auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "shipper.hn01",
		Role:     "SHIPPER",
		OfficeID: &officeID,
	}
	pair, _ := svc.GenerateTokenPair(input)
	return pair, input
}

func jwtRouter(mw gin.HandlerFunc, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	if handler == nil {
		handler = func(c *gin.Context) { c.Status(http.StatusOK) }
	}
	r.GET("/orders", handler)
	return r
}

func getOrders(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := testJWTService(15 * time.Minute)
	pair, input := issueShipperTokens(svc)

	var claims *auth.Claims
	r := jwtRouter(JWTAuthMiddleware(svc), func(c *gin.Context) {
		claims = GetJWTClaims(c)
		c.Status(http.StatusOK)
	})

	w := getOrders(r, "Bearer "+pair.AccessToken)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, claims)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "SHIPPER", claims.Role)
}

func TestJWTAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	svc := testJWTService(15 * time.Minute)
	pair, _ := issueShipperTokens(svc)

	expiredSvc := testJWTService(-time.Hour)
	expiredPair, _ := issueShipperTokens(expiredSvc)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expiredPair.AccessToken},
		{"refresh token as access", "Bearer " + pair.RefreshToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := jwtRouter(JWTAuthMiddleware(svc), nil)
			w := getOrders(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := testJWTService(15 * time.Minute)

	cfg := DefaultJWTConfig(svc)
	cfg.SkipPaths = append(cfg.SkipPaths, "/track")
	cfg.SkipPathPrefixes = append(cfg.SkipPathPrefixes, "/static")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddlewareWithConfig(cfg))
	for _, path := range []string{"/track", "/static/logo.png", "/health", "/api/v1/auth/login"} {
		r.GET(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, path := range []string{"/track", "/static/logo.png", "/health", "/api/v1/auth/login"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestJWTAuthMiddleware_ClaimsOnContext(t *testing.T) {
	svc := testJWTService(15 * time.Minute)
	pair, input := issueShipperTokens(svc)

	var userID, username, role, officeID string
	r := jwtRouter(JWTAuthMiddleware(svc), func(c *gin.Context) {
		userID = GetJWTUserID(c)
		username = GetJWTUsername(c)
		role = GetJWTRole(c)
		officeID = GetJWTOfficeID(c)
		c.Status(http.StatusOK)
	})

	w := getOrders(r, "Bearer "+pair.AccessToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, input.UserID.String(), userID)
	assert.Equal(t, "shipper.hn01", username)
	assert.Equal(t, "SHIPPER", role)
	require.NotNil(t, input.OfficeID)
	assert.Equal(t, input.OfficeID.String(), officeID)
}

func TestJWTGetters_EmptyContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTUsername(c))
	assert.Empty(t, GetJWTRole(c))
	assert.Empty(t, GetJWTOfficeID(c))
}

func TestMustGetJWTClaims_PanicsWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Panics(t, func() { MustGetJWTClaims(c) })
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := testJWTService(15 * time.Minute)
	pair, input := issueShipperTokens(svc)

	tests := []struct {
		name       string
		header     string
		wantClaims bool
	}{
		{"no token", "", false},
		{"valid token", "Bearer " + pair.AccessToken, true},
		{"invalid token", "Bearer not-a-jwt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *auth.Claims
			r := jwtRouter(OptionalJWTAuthMiddleware(svc), func(c *gin.Context) {
				claims = GetJWTClaims(c)
				c.Status(http.StatusOK)
			})

			w := getOrders(r, tt.header)

			// Anonymous and broken tokens both pass through, just without claims.
			assert.Equal(t, http.StatusOK, w.Code)
			if tt.wantClaims {
				require.NotNil(t, claims)
				assert.Equal(t, input.UserID.String(), claims.UserID)
			} else {
				assert.Nil(t, claims)
			}
		})
	}
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	svc := testJWTService(15 * time.Minute)

	called := false
	cfg := DefaultJWTConfig(svc)
	cfg.OnError = func(c *gin.Context, err error) {
		called = true
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"custom": "error"})
	}

	r := jwtRouter(JWTAuthMiddlewareWithConfig(cfg), nil)
	w := getOrders(r, "")

	assert.True(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

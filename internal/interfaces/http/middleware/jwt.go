package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/infrastructure/auth"
	"github.com/lastmile/backend/internal/infrastructure/logger"
)

// Context keys under which the middleware stashes the validated claims.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	JWTOfficeIDKey = "jwt_office_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures the authentication middleware.
type JWTMiddlewareConfig struct {
	// JWTService validates access tokens. Required.
	JWTService *auth.JWTService
	// TokenBlacklist rejects revoked tokens when set.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are exact paths served without authentication.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes served without authentication,
	// e.g. gateway callback endpoints authenticated by signature instead.
	SkipPathPrefixes []string
	// OnError replaces the default 401 response when set.
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig returns a config that skips the health and auth
// bootstrap endpoints.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// JWTAuthMiddleware authenticates requests with the default config.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates every request outside the
// skip lists, validating the bearer token and checking the blacklist.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, err, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if revoked := checkRevocation(c, cfg, claims); revoked {
			return
		}

		stashClaims(c, claims)

		// Propagate identity into the request context so log lines
		// written deeper in the stack carry it.
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithActorRole(ctx, log, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role),
				zap.String("username", claims.Username),
			)
		}

		c.Next()
	}
}

func skipAuth(cfg JWTMiddlewareConfig, path string) bool {
	for _, skipPath := range cfg.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
	if tokenString == "" {
		return "", auth.ErrInvalidToken
	}
	return tokenString, nil
}

// checkRevocation rejects tokens revoked individually (logout) or via a
// per-user cutoff (logout everywhere, password change). Blacklist
// lookup failures are logged and the request proceeds, availability
// wins over immediate revocation.
func checkRevocation(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	if cfg.TokenBlacklist == nil {
		return false
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		} else if blacklisted {
			handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
			return true
		}
	}

	if claims.UserID != "" {
		invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check user token invalidation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		} else if invalidated {
			handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "User session has been invalidated")
			return true
		}
	}

	return false
}

func stashClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleKey, claims.Role)
	c.Set(JWTOfficeIDKey, claims.OfficeID)
}

type authErrorBody struct {
	code    string
	message string
}

var authErrorBodies = map[error]authErrorBody{
	auth.ErrExpiredToken:     {"TOKEN_EXPIRED", "Token has expired"},
	auth.ErrInvalidToken:     {"INVALID_TOKEN", "Invalid token"},
	auth.ErrInvalidTokenType: {"INVALID_TOKEN_TYPE", "Invalid token type"},
	auth.ErrTokenNotYetValid: {"TOKEN_NOT_VALID", "Token is not yet valid"},
	auth.ErrTokenBlacklisted: {"TOKEN_REVOKED", "Token has been revoked"},
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	body, ok := authErrorBodies[err]
	if !ok {
		body = authErrorBody{"UNAUTHORIZED", "Authentication required"}
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    body.code,
			"message": body.message,
		},
	})
}

// GetJWTClaims returns the validated claims, or nil outside an
// authenticated request.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// MustGetJWTClaims returns the validated claims, panicking when the
// route was mounted without the authentication middleware.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("jwt claims not found in context")
	}
	return claims
}

// GetJWTUserID returns the authenticated user's ID, or "".
func GetJWTUserID(c *gin.Context) string {
	return stringFromContext(c, JWTUserIDKey)
}

// GetJWTRole returns the authenticated actor's role, or "".
func GetJWTRole(c *gin.Context) string {
	return stringFromContext(c, JWTRoleKey)
}

// GetJWTOfficeID returns the actor's office ID. Empty for actors
// without an office binding.
func GetJWTOfficeID(c *gin.Context) string {
	return stringFromContext(c, JWTOfficeIDKey)
}

// GetJWTUsername returns the authenticated user's username, or "".
func GetJWTUsername(c *gin.Context) string {
	return stringFromContext(c, JWTUsernameKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if value, exists := c.Get(key); exists {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is
// present but never rejects the request. Meant for endpoints that show
// more detail to signed-in actors.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		stashClaims(c, claims)
		c.Next()
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, requiredRoles []string)
}

// RequireRole creates middleware that requires one of the specified roles.
// The caller must be authenticated and hold at least one of the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleConfig{}, roles...)
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(cfg RoleConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, roles, "No authentication claims found")
			return
		}

		if !claims.HasRole(roles...) {
			handleRoleDenied(c, cfg, roles, "Caller lacks required role")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Role check passed",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role),
				zap.Strings("required_any", roles),
			)
		}

		c.Next()
	}
}

// RequireOffice creates middleware that requires the caller to carry an
// office binding in their claims. Office staff endpoints use this on top
// of RequireRole.
func RequireOffice() gin.HandlerFunc {
	return RequireOfficeWithConfig(RoleConfig{})
}

// RequireOfficeWithConfig creates office-binding middleware with custom config
func RequireOfficeWithConfig(cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, nil, "No authentication claims found")
			return
		}

		if claims.OfficeID == "" {
			handleRoleDenied(c, cfg, nil, "Caller has no office binding")
			return
		}

		c.Next()
	}
}

// handleRoleDenied handles access denied scenarios
func handleRoleDenied(c *gin.Context, cfg RoleConfig, requiredRoles []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredRoles)
		return
	}

	if cfg.Logger != nil {
		claims := GetJWTClaims(c)
		userID := ""
		role := ""
		if claims != nil {
			userID = claims.UserID
			role = claims.Role
		}

		cfg.Logger.Warn("Access denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.String("role", role),
			zap.Strings("required_roles", requiredRoles),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "You do not have permission to perform this action",
		},
	})
}

// HasRoleInContext checks whether the authenticated caller holds one of the
// given roles. Useful inside handlers for conditional behavior.
func HasRoleInContext(c *gin.Context, roles ...string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasRole(roles...)
}

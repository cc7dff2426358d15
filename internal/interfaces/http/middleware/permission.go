package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequirePermission creates middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permission)
}

// RequireAnyPermission creates middleware that requires any of the specified permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig checks the caller's role grants at least one
// of the permissions. Roles are read from the actor, not from the permission
// list baked into the token.
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			handlePermissionDenied(c, cfg, permissions, "No authenticated actor")
			return
		}

		for _, p := range permissions {
			if actor.HasPermission(p) {
				c.Next()
				return
			}
		}
		handlePermissionDenied(c, cfg, permissions, "Role lacks required permission")
	}
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, required []string, reason string) {
	if cfg.Logger != nil {
		actor, _ := GetActor(c)
		cfg.Logger.Warn("Permission denied",
			zap.String("reason", reason),
			zap.String("user_id", actor.UserID.String()),
			zap.String("role", actor.Role.String()),
			zap.Strings("required_permissions", required),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}
	abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied: insufficient permissions")
}

// HasPermission reports whether the caller holds the permission
func HasPermission(c *gin.Context, permission string) bool {
	actor, ok := GetActor(c)
	return ok && actor.HasPermission(permission)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withActor(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ActorKey, identity.Actor{UserID: uuid.New(), Role: role})
		c.Next()
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		role       identity.Role
		permission string
		expected   int
	}{
		{"leader approves", identity.RoleDivisionLeader, identity.PermPOApprove, http.StatusOK},
		{"accounting cannot approve", identity.RoleAccounting, identity.PermPOApprove, http.StatusForbidden},
		{"accounting pays", identity.RoleAccounting, identity.PermPOPay, http.StatusOK},
		{"viewer reads", identity.RoleViewer, identity.PermPORead, http.StatusOK},
		{"viewer cannot create", identity.RoleViewer, identity.PermPOCreate, http.StatusForbidden},
		{"admin manages users", identity.RoleAdmin, identity.PermUserWrite, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(withActor(tt.role))
			router.GET("/test", RequirePermission(tt.permission), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRequirePermission_NoActor(t *testing.T) {
	router := gin.New()
	router.GET("/test", RequirePermission(identity.PermPORead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, rec).Code)
}

func TestRequireAnyPermissionWithConfig_LogsDenial(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	router := gin.New()
	router.Use(withActor(identity.RoleViewer))
	router.POST("/test",
		RequireAnyPermissionWithConfig(PermissionConfig{Logger: zap.New(core)}, identity.PermInvoiceCreate, identity.PermPOPay),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	entries := logs.FilterMessage("Permission denied").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "VIEWER", entries[0].ContextMap()["role"])
	}
}

func TestHasPermission(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, HasPermission(c, identity.PermPORead))

	c.Set(ActorKey, identity.Actor{UserID: uuid.New(), Role: identity.RoleExecutive})
	assert.True(t, HasPermission(c, identity.PermPOApprove))
	assert.False(t, HasPermission(c, identity.PermPOPay))
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/infrastructure/auth"
	"github.com/roofpo/backend/internal/infrastructure/config"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func newTestToken(t *testing.T, jwtService *auth.JWTService, role identity.Role, divisionIDs ...uuid.UUID) (string, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:      uuid.New(),
		Email:       "leader@example.com",
		Role:        role.String(),
		LeaderID:    "07",
		DivisionIDs: divisionIDs,
		Permissions: role.Permissions(),
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair.AccessToken, input
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

type stubRevocation struct {
	revoked bool
	err     error
}

func (s stubRevocation) IsRevoked(context.Context, *auth.Claims) (bool, error) {
	return s.revoked, s.err
}

func TestJWTAuthMiddleware_ValidTokenSetsActor(t *testing.T) {
	jwtService := newTestJWTService()
	divisionID := uuid.New()
	token, input := newTestToken(t, jwtService, identity.RoleDivisionLeader, divisionID)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, input.UserID, actor.UserID)
		assert.Equal(t, identity.RoleDivisionLeader, actor.Role)
		assert.Equal(t, "07", actor.LeaderID)
		assert.Equal(t, []uuid.UUID{divisionID}, actor.DivisionIDs)
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	token, _ := newTestToken(t, jwtService, identity.RoleViewer)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage token", "Bearer not-a-jwt", dto.ErrCodeTokenInvalid},
		{"tampered token", "Bearer " + token + "x", dto.ErrCodeTokenInvalid},
	}

	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			errInfo := decodeError(t, rec)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}
}

func TestJWTAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	jwtService := newTestJWTService()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Role: "ADMIN"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_UnknownRoleRejected(t *testing.T) {
	jwtService := newTestJWTService()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Role: "FOREMAN"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, rec).Code)
}

func TestJWTAuthMiddleware_Revocation(t *testing.T) {
	jwtService := newTestJWTService()
	token, _ := newTestToken(t, jwtService, identity.RolePurchaser)

	serve := func(rc RevocationChecker) *httptest.ResponseRecorder {
		cfg := DefaultJWTConfig(jwtService)
		cfg.Revocation = rc
		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("revoked token", func(t *testing.T) {
		rec := serve(stubRevocation{revoked: true})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, rec).Code)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		rec := serve(stubRevocation{err: errors.New("redis down")})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("logged out through blacklist", func(t *testing.T) {
		claims, err := jwtService.ValidateAccessToken(token)
		require.NoError(t, err)
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

		rec := serve(blacklistChecker{blacklist})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type blacklistChecker struct {
	blacklist auth.TokenBlacklist
}

func (b blacklistChecker) IsRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	return b.blacklist.IsBlacklisted(ctx, claims.ID)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	jwtService := newTestJWTService()

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodGet, "/swagger/index.html"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, r.path)
	}
}

func TestGetActor_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetActor(c)
	assert.False(t, ok)
	assert.Nil(t, GetJWTClaims(c))
}

package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/logger"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"github.com/roofpo/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func testActor(role identity.Role, divisionIDs ...uuid.UUID) identity.Actor {
	return identity.Actor{UserID: uuid.New(), Role: role, LeaderID: "07", DivisionIDs: divisionIDs}
}

// newTestEngine returns an engine that authenticates every request as actor;
// a nil actor leaves the request anonymous
func newTestEngine(actor *identity.Actor) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	if actor != nil {
		a := *actor
		engine.Use(func(c *gin.Context) {
			c.Set(middleware.ActorKey, a)
			c.Next()
		})
	}
	return engine
}

func doJSON(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var resp struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp.Response
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, rec, nil)
	require.NotNil(t, resp.Error, rec.Body.String())
	return resp.Error.Code
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid state", shared.NewDomainError("INVALID_STATE", "Cannot approve a DRAFT purchase order"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"self approval", shared.NewDomainError("SELF_APPROVAL", "no"), http.StatusForbidden, dto.ErrCodeForbidden},
		{"unmapped invalid code", shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive"), http.StatusBadRequest, "INVALID_AMOUNT"},
		{"unmapped rule", shared.NewDomainError("VARIANCE_EXCEEDED", "Invoices differ from receipts"), http.StatusUnprocessableEntity, "VARIANCE_EXCEEDED"},
		{"wrapped domain error", errors.Join(errors.New("context"), shared.ErrConcurrencyConflict), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			engine := newTestEngine(nil)
			engine.GET("/test", func(c *gin.Context) { h.HandleError(c, tt.err) })

			rec := doJSON(engine, http.MethodGet, "/test", nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternalDetails(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := &BaseHandler{}
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), zap.New(core)))
		c.Next()
	})
	engine.GET("/test", func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })

	rec := doJSON(engine, http.MethodGet, "/test", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")
	assert.Equal(t, 1, logs.FilterMessage("Unhandled error").Len())
}

func TestBaseHandler_ActorAndUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	handler := func(c *gin.Context) {
		if _, ok := h.actor(c); !ok {
			return
		}
		if _, ok := h.uuidParam(c, "id"); !ok {
			return
		}
		c.Status(http.StatusOK)
	}

	anonymous := newTestEngine(nil)
	anonymous.GET("/items/:id", handler)
	rec := doJSON(anonymous, http.MethodGet, "/items/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	actor := testActor(identity.RoleViewer)
	authed := newTestEngine(&actor)
	authed.GET("/items/:id", handler)

	rec = doJSON(authed, http.MethodGet, "/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec, nil)
	assert.Equal(t, "Invalid id format", resp.Error.Message)
	assert.NotEmpty(t, resp.Error.RequestID)

	rec = doJSON(authed, http.MethodGet, "/items/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseOptionalTime(t *testing.T) {
	got, err := parseOptionalTime("", "from")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalTime("2026-03-01", "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseOptionalTime("2026-03-01T10:30:00Z", "from")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = parseOptionalTime("03/01/2026", "from")
	assert.ErrorContains(t, err, "invalid from")
}

func TestEndOfDay(t *testing.T) {
	assert.Nil(t, endOfDay(nil))

	day := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	end := endOfDay(&day)
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, 23, end.Hour())

	instant := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, instant, *endOfDay(&instant))
}

func TestSplitCSVAndParseUUIDs(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"SUBMITTED", "APPROVED"}, splitCSV(" SUBMITTED, ,APPROVED "))

	id := uuid.New()
	ids, err := parseUUIDs([]string{id.String()}, "division_ids")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)

	_, err = parseUUIDs([]string{"nope"}, "division_ids")
	assert.EqualError(t, err, "invalid division_ids format")
}

func TestCSVFilename(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "spend-report-20261014-090507.csv", csvFilename("spend-report", now))
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationPayload struct {
	Description string          `json:"description" binding:"required,max=10"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	Status      string          `json:"status" binding:"omitempty,po_status"`
	Role        string          `json:"role" binding:"omitempty,role"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req validationPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	router := newValidationRouter()

	rec := postJSON(router, `{"description":"","quantity":"0","status":"LOST","role":"FOREMAN"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["description"])
	assert.Equal(t, "Must be greater than 0", messages["quantity"])
	assert.Equal(t, "Unknown purchase order status", messages["status"])
	assert.Equal(t, "Unknown role", messages["role"])
}

func TestHandleValidationError_Valid(t *testing.T) {
	router := newValidationRouter()
	rec := postJSON(router, `{"description":"shingles","quantity":"12.5","status":"DRAFT","role":"PURCHASER"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := newValidationRouter()
	rec := postJSON(router, `{"description":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, rec).Code)
}

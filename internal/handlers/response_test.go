package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-backend/internal/services"
)

func TestRespondServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound, "not_found"},
		{"not owned", services.ErrNotOwned, http.StatusNotFound, "not_found"},
		{"wrapped not owned", fmt.Errorf("load: %w", services.ErrNotOwned), http.StatusNotFound, "not_found"},
		{"bad model output", fmt.Errorf("%w: step 7", services.ErrMalformedAnswerJSON), http.StatusInternalServerError, "bad_model_output"},
		{"empty completion", fmt.Errorf("generate: %w", services.ErrEmptyCompletion), http.StatusInternalServerError, "empty_completion"},
		{"anything else", errors.New("db exploded"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondServiceError(c, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tc.wantCode, env.Error.Code)
		})
	}
}

// Ownership failures must not leak whether the resource exists.
func TestRespondServiceErrorHidesOwnershipDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, fmt.Errorf("skill path %s: %w", "abc-123", services.ErrNotOwned))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "not found", env.Error.Message)
	assert.NotContains(t, rec.Body.String(), "abc-123")
}

func TestPathIDRejectsGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := pathID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

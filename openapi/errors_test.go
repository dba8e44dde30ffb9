package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	t.Run("message without cause", func(t *testing.T) {
		err := NewValidationError("bad route", nil)
		assert.Equal(t, "VALIDATION_ERROR: bad route", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("message with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewOpenAPIError("assembly failed", nil, cause)
		assert.Equal(t, "OPENAPI_GENERATION_ERROR: assembly failed: boom", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("constructors set status codes", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, NewValidationError("x", nil).Status)
		assert.Equal(t, http.StatusInternalServerError, NewOpenAPIError("x", nil, nil).Status)
		assert.Equal(t, http.StatusNotFound, NewNotFoundError("x", nil).Status)
	})
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", NewValidationError("x", nil))))
	assert.False(t, IsValidationError(NewNotFoundError("x", nil)))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestWriteError(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, NewValidationError("invalid route path: /x y",
			map[string]any{"route": "/x y"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, string(CodeValidation), rec.Header().Get("X-Error-Code"))

		requestID := rec.Header().Get("X-Request-ID")
		_, err := uuid.Parse(requestID)
		assert.NoError(t, err)

		var body struct {
			Error struct {
				Code    string         `json:"code"`
				Message string         `json:"message"`
				Status  int            `json:"status_code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
			Timestamp string `json:"timestamp"`
			RequestID string `json:"request_id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, "invalid route path: /x y", body.Error.Message)
		assert.Equal(t, http.StatusBadRequest, body.Error.Status)
		assert.Equal(t, "/x y", body.Error.Details["route"])
		assert.NotEmpty(t, body.Timestamp)
		assert.Equal(t, requestID, body.RequestID)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("unexpected state"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, string(CodeInternal), rec.Header().Get("X-Error-Code"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "an unexpected error occurred", errObj["message"])
	})

	t.Run("wrapped api error keeps its code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, fmt.Errorf("context: %w", NewNotFoundError("no such spec", nil)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, string(CodeNotFound), rec.Header().Get("X-Error-Code"))
	})
}

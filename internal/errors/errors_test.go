package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConstructorsSetCategoryAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		category   ErrorCategory
		httpStatus int
	}{
		{"validation", NewValidationError("bad input"), CategoryValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("acme/rocket"), CategoryNotFound, http.StatusNotFound},
		{"external API", NewExternalAPIError("releases", errors.New("boom")), CategoryExternalAPI, http.StatusBadGateway},
		{"timeout", NewTimeoutError("deadline exceeded", nil), CategoryTimeout, http.StatusGatewayTimeout},
		{"internal", NewInternalError("unexpected", errors.New("boom")), CategoryInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestNotFoundMessageNamesRepository(t *testing.T) {
	err := NewNotFoundError("acme/rocket")
	assert.Contains(t, err.Error(), "acme/rocket")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("acme/rocket")))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", NewNotFoundError("acme/rocket"))))
	assert.False(t, IsNotFound(NewValidationError("nope")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestExternalAPIErrorTruncatesDiagnostic(t *testing.T) {
	cause := errors.New(strings.Repeat("x", 500))
	err := NewExternalAPIError("readme", cause)

	assert.Less(t, len(err.ErrBuilder.Msg), 200)
	assert.Contains(t, err.ErrBuilder.Msg, "...")
	// The full cause stays reachable for unwrapping.
	assert.ErrorIs(t, err, cause)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "unknown", Truncate(nil))
	assert.Equal(t, "short", Truncate(errors.New("short")))

	long := Truncate(errors.New(strings.Repeat("a", 300)))
	assert.Len(t, long, maxDiagnosticLen+3)
}

func TestToAppError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToAppError(nil))
	})

	t.Run("passes through AppError", func(t *testing.T) {
		orig := NewNotFoundError("acme/rocket")
		assert.Same(t, orig, ToAppError(orig))
	})

	t.Run("context cancellation becomes timeout", func(t *testing.T) {
		assert.Equal(t, CategoryTimeout, ToAppError(context.Canceled).Category)
		assert.Equal(t, CategoryTimeout, ToAppError(context.DeadlineExceeded).Category)
	})

	t.Run("network failures become external", func(t *testing.T) {
		err := ToAppError(errors.New("dial tcp: connection refused"))
		assert.Equal(t, CategoryExternalAPI, err.Category)
	})

	t.Run("anything else becomes internal", func(t *testing.T) {
		err := ToAppError(errors.New("mystery"))
		assert.Equal(t, CategoryInternal, err.Category)
		assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	})
}

func TestErrorHandlerWritesStructuredResponse(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		c.Error(NewNotFoundError("acme/rocket"))
		c.Abort()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"not_found"`)
	assert.Contains(t, w.Body.String(), "acme/rocket")
}

func TestRecoveryHandlerConvertsPanic(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"internal"`)
}

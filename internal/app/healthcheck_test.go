package app

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	// --- Arrange ---
	a := NewApp(io.Discard, io.Discard, &Config{LogLevel: "debug"})
	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec
	}

	// --- Act & Assert ---
	rec := get()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	a.setLastError(errors.New("sweep.yaml: circular reference"))
	rec = get()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "circular reference")

	a.setLastError(nil)
	assert.Equal(t, http.StatusOK, get().Code)
}

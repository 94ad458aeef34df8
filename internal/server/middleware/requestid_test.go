package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureID(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return seen, rec
}

func TestRequestID_Generated(t *testing.T) {
	id, rec := captureID(t, "")

	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_ReusesIncoming(t *testing.T) {
	id, rec := captureID(t, "trace-abc-123")

	assert.Equal(t, "trace-abc-123", id)
	assert.Equal(t, "trace-abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestID_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"contains space", "bad id"},
		{"too long", strings.Repeat("a", maxRequestIDLen+1)},
		{"control char", "id\x01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, _ := captureID(t, tt.header)
			assert.NotEqual(t, tt.header, id)
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
		})
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, "x", RequestIDFromContext(WithRequestID(context.Background(), "x")))
}

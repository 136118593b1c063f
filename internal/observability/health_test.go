package observability_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
)

var errCatalogMissing = errors.New("catalog missing")

func TestReadyHandler(t *testing.T) {
	t.Parallel()

	pass := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errCatalogMissing }

	tests := []struct {
		name       string
		handler    http.Handler
		wantCode   int
		wantStatus string
	}{
		{name: "health", handler: observability.HealthHandler(), wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "no checks", handler: observability.ReadyHandler(), wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "all pass", handler: observability.ReadyHandler(pass, pass), wantCode: http.StatusOK, wantStatus: "ok"},
		{
			name: "one fails", handler: observability.ReadyHandler(pass, fail),
			wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string

			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdstash/cmdstash/internal/api/handler"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func TestHealth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		pinger     handler.DBPinger
		wantStatus string
	}{
		{"healthy", &mockPinger{}, "ok"},
		{"database down", &mockPinger{err: errors.New("connection refused")}, "degraded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tc.pinger, "1.2.3")

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Status  string `json:"status"`
				Version string `json:"version"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantStatus, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
		})
	}
}

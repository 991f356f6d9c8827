package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubSource struct{ enabled bool }

func (s stubSource) Name() string    { return "prediction_source" }
func (s stubSource) IsEnabled() bool { return s.enabled }

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, ReadyResponse) {
	t.Helper()
	r := chi.NewRouter()
	h.Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthAndLive(t *testing.T) {
	h := NewHandler(Config{ServiceName: "keiba-advisor", Version: "test"})

	for _, path := range []string{"/health", "/live"} {
		rec, body := serve(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "keiba-advisor", body.Service)
	}
}

func TestReady(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tests := []struct {
		name       string
		ready      bool
		db         DatabasePinger
		source     SourceStatus
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "not marked ready",
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "not_ready"},
		},
		{
			name:       "ready without dependencies",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok"},
		},
		{
			name:       "database down",
			ready:      true,
			db:         stubPinger{err: errors.New("refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "database": "error: refused"},
		},
		{
			name:       "disabled source stays ready",
			ready:      true,
			db:         stubPinger{},
			source:     stubSource{enabled: false},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok", "database": "ok", "prediction_source": "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(Config{ServiceName: "keiba-advisor", Logger: logger, DB: tt.db, Source: tt.source})
			h.SetReady(tt.ready)

			rec, body := serve(t, h, "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

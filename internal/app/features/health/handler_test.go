package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/yatube/internal/app/features/health"
	"github.com/dalemusser/yatube/internal/testutil"
	"go.uber.org/zap"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Message  string `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec.Code, resp
}

func TestServe(t *testing.T) {
	tests := []struct {
		name       string
		db, cache  health.Pinger
		wantCode   int
		wantStatus string
		wantDB     string
		wantCache  string
	}{
		{"memory backends", nil, nil, http.StatusOK, "ok", "memory", "memory"},
		{"all up", up, up, http.StatusOK, "ok", "connected", "connected"},
		{"database down", down, up, http.StatusServiceUnavailable, "error", "disconnected", "connected"},
		{"cache down", up, down, http.StatusOK, "degraded", "connected", "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serve(t, health.NewHandler(tt.db, tt.cache, zap.NewNop()))
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if resp.Status != tt.wantStatus || resp.Database != tt.wantDB || resp.Cache != tt.wantCache {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestServe_MongoConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	code, resp := serve(t, health.NewHandler(health.MongoPinger{Client: db.Client()}, nil, zap.NewNop()))
	if code != http.StatusOK || resp.Database != "connected" {
		t.Errorf("got %d %+v", code, resp)
	}
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-easyapply-automation/internal/ledger"
	"go-easyapply-automation/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 11, 0, 0, 0, time.Local)

func seededRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	open := func() *ledger.Ledger {
		return ledger.Open(dir, zap.NewNop(), ledger.WithClock(func() time.Time { return fixedNow }))
	}

	l := open()
	ctx := context.Background()
	for i, rec := range []models.ApplicationRecord{
		{JobID: "100", Company: "Acme", Outcome: models.OutcomeApplied},
		{JobID: "101", Company: "Initech", Outcome: models.OutcomeDiscarded},
		{JobID: "102", Company: "Globex", Outcome: models.OutcomeApplied},
		{JobID: "099", Company: "Umbrella", Outcome: models.OutcomeApplied, Timestamp: fixedNow.Add(-48 * time.Hour)},
	} {
		if rec.Timestamp.IsZero() {
			rec.Timestamp = fixedNow.Add(time.Duration(i) * time.Minute)
		}
		require.NoError(t, l.Record(ctx, rec))
	}
	return newRouter(open, 3)
}

func get(t *testing.T, r *gin.Engine, path string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRouter_Health(t *testing.T) {
	code, body := get(t, seededRouter(t), "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRouter_Applications(t *testing.T) {
	r := seededRouter(t)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantCount float64
		wantFirst string
	}{
		{name: "all records oldest first", path: "/applications", wantCode: http.StatusOK, wantCount: 4, wantFirst: "099"},
		{name: "limit keeps newest", path: "/applications?limit=2", wantCode: http.StatusOK, wantCount: 2, wantFirst: "101"},
		{name: "filter by outcome", path: "/applications?outcome=DISCARDED", wantCode: http.StatusOK, wantCount: 1, wantFirst: "101"},
		{name: "bad limit", path: "/applications?limit=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, r, tt.path)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantCode != http.StatusOK {
				assert.Contains(t, body, "error")
				return
			}
			assert.Equal(t, tt.wantCount, body["count"])
			apps := body["applications"].([]any)
			require.NotEmpty(t, apps)
			assert.Equal(t, tt.wantFirst, apps[0].(map[string]any)["job_id"])
		})
	}
}

func TestRouter_Stats(t *testing.T) {
	code, body := get(t, seededRouter(t), "/stats")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, float64(4), body["total"])
	assert.Equal(t, float64(2), body["applied_today"])
	assert.Equal(t, float64(3), body["daily_quota"])
	assert.Equal(t, float64(1), body["quota_remaining"])

	byOutcome := body["by_outcome"].(map[string]any)
	assert.Equal(t, float64(3), byOutcome["APPLIED"])
	assert.Equal(t, float64(1), byOutcome["DISCARDED"])
}

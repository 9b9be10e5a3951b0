package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/export"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submission(device, model string, at time.Time) v1.Submission {
	return v1.Submission{
		DeviceHash:      device,
		DeviceName:      model,
		DeviceVersion:   "14.1",
		DeviceCountry:   "us",
		DeviceCarrier:   "T-Mobile",
		DeviceCarrierID: "310260",
		SubmittedAt:     at,
	}
}

func TestServe_IngestWarmQuery(t *testing.T) {
	cfg := testConfig(t)
	cfg.Denylist.Models = []string{"banned-phone"}
	h := startHarness(t, cfg)
	defer h.close(t)

	now := time.Now().UTC().Truncate(time.Second)
	subs := []v1.Submission{
		submission("dev-1", "bacon", now.Add(-2*time.Hour)),
		submission("dev-2", "bacon", now.Add(-2*time.Hour)),
		submission("dev-3", "mako", now.Add(-2*time.Hour)),
		// Later report moves dev-3 to bacon; the stale one arrives after it.
		submission("dev-3", "bacon", now.Add(-time.Hour)),
		submission("dev-3", "mako", now.Add(-90*time.Minute)),
		submission("dev-4", "banned-phone", now.Add(-time.Hour)),
	}
	for _, sub := range subs {
		status, body := h.do(t, http.MethodPost, "/api/v1/stats", sub, nil)
		require.Equal(t, http.StatusOK, status, string(body))
		assert.JSONEq(t, `{"status":"accepted"}`, string(body))
	}

	status, body := h.do(t, http.MethodPost, "/api/v1/stats", map[string]string{"device_hash": "x"}, nil)
	require.Equal(t, http.StatusBadRequest, status, string(body))

	// Nothing served from a cold cache yet for the detail page.
	status, body = h.do(t, http.MethodGet, "/view/model/bacon", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), "<table")

	h.warm(t)

	status, body = h.do(t, http.MethodGet, "/api/v1/popular/model/90", nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var popular struct {
		Result v1.AggregateResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &popular))
	require.Len(t, popular.Result.Rows, 1)
	assert.Equal(t, "bacon", popular.Result.Rows[0].Value)
	assert.Equal(t, int64(3), popular.Result.Rows[0].Count)

	status, body = h.do(t, http.MethodGet, "/api/v1/count/90", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total":3}`, string(body))

	status, body = h.do(t, http.MethodGet, "/api/v1/popular/country/90", nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &popular))
	assert.Equal(t, "US", popular.Result.Rows[0].Value)

	status, body = h.do(t, http.MethodGet, "/api/v1/popular/model/7", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{}`, string(body))

	status, body = h.do(t, http.MethodGet, "/view/model/bacon", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "<table")

	status, body = h.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "bacon")

	status, _ = h.do(t, http.MethodPost, "/admin/v1/cache/warm", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = h.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `devstats_ingest_events_total{outcome="denied"}`)
}

func TestRun_RebuildSweepExport(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApp(cfg)
	require.NoError(t, err)
	defer a.close()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, model := range []string{"bacon", "mako", "hammerhead"} {
		require.NoError(t, a.events.SaveEvent(ctx, &v1.Event{
			ID:          model,
			DeviceID:    "dev-1",
			Model:       model,
			OSVersion:   "14.1",
			Country:     "US",
			Carrier:     "T-Mobile",
			CarrierID:   "310260",
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	require.NoError(t, run(ctx, a, "rebuild-state", nil))
	n, err := a.devices.CountStates(ctx, time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	path := filepath.Join(t.TempDir(), "march.json")
	require.NoError(t, run(ctx, a, "export", []string{"2024-03-01", "2024-03-02", path, "-echo", "0"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []export.Row
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, rows[0].Device, rows[2].Device)
	assert.NotEqual(t, "dev-1", rows[0].Device)

	// Everything seeded is far older than the horizon.
	require.NoError(t, run(ctx, a, "sweep", nil))
	n, err = a.devices.CountStates(ctx, time.Time{}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Error(t, run(ctx, a, "export", []string{"2024-03-01"}))
	assert.Error(t, run(ctx, a, "export", []string{"2024-03-01", "2024-03-02", path, "-format", "csv"}))
	assert.Error(t, run(ctx, a, "frobnicate", nil))
}

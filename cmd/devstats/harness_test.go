package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	corecfg "github.com/devstats-lab/devstats/internal/core/config"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

type harness struct {
	baseURL    string
	client     *http.Client
	app        *app
	cancel     context.CancelFunc
	serverDone chan error
}

func (h *harness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case err := <-h.serverDone:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Log("server shutdown timed out")
	}
	require.NoError(t, h.app.close())
}

// testConfig returns validated defaults with background jobs off and the
// server bound to a free loopback port.
func testConfig(t *testing.T) *corecfg.Config {
	t.Helper()

	cfg, err := corecfg.Load("")
	require.NoError(t, err)

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Server.AdminToken = testAdminToken
	cfg.Database.Type = "memory"
	cfg.Aggregation.WarmEnabled = false
	cfg.Aggregation.DetailThreshold = 1
	cfg.Retention.Enabled = false
	cfg.Logging.Level = "warn"
	return cfg
}

func startHarness(t *testing.T, cfg *corecfg.Config) *harness {
	t.Helper()

	a, err := newApp(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- serve(ctx, a) }()

	baseURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	waitForHealthy(t, baseURL)

	return &harness{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		app:        a,
		cancel:     cancel,
		serverDone: serverDone,
	}
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func (h *harness) do(t *testing.T, method, path string, payload interface{}, header http.Header) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, h.baseURL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func (h *harness) warm(t *testing.T) {
	t.Helper()
	status, body := h.do(t, http.MethodPost, "/admin/v1/cache/warm", nil, http.Header{
		"Authorization": {"Bearer " + testAdminToken},
	})
	require.Equal(t, http.StatusOK, status, string(body))
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

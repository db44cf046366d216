package app_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/app"
)

const storageDir = "../../testdata/xray_storage"

func storageConfig(t *testing.T) app.Config {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.StorageDir = storageDir
	cfg.Port = freePort(t)
	cfg.LogLevel = "error"
	return cfg
}

func TestNew_Success(t *testing.T) {
	a, err := app.New(storageConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.APIBaseURL = ""

	_, err := app.New(cfg)
	assert.Error(t, err)
}

func TestNew_InvalidTimeZone(t *testing.T) {
	cfg := storageConfig(t)
	cfg.TimeZone = "Mars/Olympus_Mons"

	_, err := app.New(cfg)
	assert.Error(t, err)
}

func TestNew_WithAllLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		t.Run(level, func(t *testing.T) {
			cfg := storageConfig(t)
			cfg.LogLevel = level

			a, err := app.New(cfg)
			require.NoError(t, err)
			assert.NotNil(t, a)
		})
	}
}

func TestRun_StartsAndShutdownsGracefully(t *testing.T) {
	cfg := storageConfig(t)
	cfg.TemplatesDir = t.TempDir()

	a, err := app.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
	}()

	waitForServer(t, fmt.Sprintf("http://localhost:%d/healthz", cfg.Port), 3*time.Second)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "Run did not return after context cancellation")
	}
}

func TestRun_ServesDashboard(t *testing.T) {
	cfg := storageConfig(t)

	a, err := app.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
	}()

	base := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(t, base+"/healthz", 3*time.Second)

	resp, err := http.Get(base + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "Run did not return after context cancellation")
	}
}

func TestRun_FailsWhenPortTaken(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()

	cfg := storageConfig(t)
	cfg.Port = l.Addr().(*net.TCPAddr).Port

	a, err := app.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Error(t, a.Run(ctx))
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "failed to get free port")
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.FailNowf(t, "server not ready", "%s after %v", url, timeout)
}

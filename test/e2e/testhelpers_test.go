//go:build e2e

package e2e_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/infrastructure/wiring"
	"github.com/sophialabs/xraydash/internal/testutil"
)

func projectRoot() string {
	_, file, _, _ := runtime.Caller(0)
	// file = <root>/test/e2e/testhelpers_test.go, go up 2 levels
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// setupE2EServer serves the dashboard over the SDK file store fixture.
func setupE2EServer(t *testing.T) *httptest.Server {
	t.Helper()

	c, err := wiring.New(wiring.Params{
		StorageDir:     filepath.Join(projectRoot(), "testdata", "xray_storage"),
		Locale:         "en-US",
		Location:       time.UTC,
		GatewayLogSize: 20,
		SessionTTL:     10 * time.Minute,
		DemoRate:       1,
		DemoBurst:      1,
		Logger:         &testutil.NoopLogger{},
	})
	require.NoError(t, err, "failed to wire dashboard")
	t.Cleanup(c.Close)

	ts := httptest.NewServer(c.Server())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response, err error) string {
	t.Helper()
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

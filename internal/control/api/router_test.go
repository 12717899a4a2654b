package api_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/control/api"
	"github.com/lmapcloud/lmapd/internal/logger"
)

type fakeDaemon struct {
	reloadErr   error
	cleanErr    error
	statusOut   string
	statusErr   error
	reportOut   string
	reportErr   error
	shutdownHit bool
}

func (f *fakeDaemon) Reload() error { return f.reloadErr }
func (f *fakeDaemon) Clean() error  { return f.cleanErr }
func (f *fakeDaemon) Status() (string, error) {
	return f.statusOut, f.statusErr
}
func (f *fakeDaemon) CollectReport() (string, error) {
	return f.reportOut, f.reportErr
}
func (f *fakeDaemon) Shutdown() { f.shutdownHit = true }

func testLogger() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterReload(t *testing.T) {
	d := &fakeDaemon{}
	srv := httptest.NewServer(api.NewRouter(d, testLogger()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/reload", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterReloadError(t *testing.T) {
	d := &fakeDaemon{reloadErr: errors.New("boom")}
	srv := httptest.NewServer(api.NewRouter(d, testLogger()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/reload", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRouterStatus(t *testing.T) {
	d := &fakeDaemon{statusOut: "<lmap/>"}
	srv := httptest.NewServer(api.NewRouter(d, testLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterShutdown(t *testing.T) {
	d := &fakeDaemon{}
	srv := httptest.NewServer(api.NewRouter(d, testLogger()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/shutdown", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, d.shutdownHit)
}

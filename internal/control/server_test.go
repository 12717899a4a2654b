package control

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/model"
)

func testLogger() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

type noopEngine struct{}

func (noopEngine) Kind() string                                    { return "test" }
func (noopEngine) ParseConfig(io.Reader, *model.Model) error       { return nil }
func (noopEngine) ParseState(io.Reader, *model.Model) error        { return nil }
func (noopEngine) ParseReport(io.Reader, *model.Model) error       { return nil }
func (noopEngine) RenderConfig(*model.Model) (string, error)       { return "config", nil }
func (noopEngine) RenderState(*model.Model) (string, error)        { return "state", nil }
func (noopEngine) RenderReport(*model.Model) (string, error)       { return "report", nil }
func (noopEngine) ParseTaskResults(io.Reader, *model.Result) error { return nil }

func TestServeAPIOverUnixSocket(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "lmapd.sock")

	d := New(Config{
		Model:  model.New(),
		Engine: noopEngine{},
		Log:    testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.ServeAPI(ctx, sockPath) }()

	require.Eventually(t, func() bool {
		_, err := NewClient(sockPath).Status()
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	out, err := NewClient(sockPath).Status()
	require.NoError(t, err)
	require.Equal(t, "state", out)

	cancel()
	select {
	case err := <-errCh:
		require.True(t, err == nil || errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("ServeAPI did not shut down after context cancellation")
	}
}

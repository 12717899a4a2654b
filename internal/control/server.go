package control

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/lmapcloud/lmapd/internal/control/api"
)

// ServeAPI binds the control API to a unix-socket listener at sockPath
// and serves until ctx is cancelled. The socket file is removed first
// (stale sockets from a previous, uncleanly-terminated run are common on
// unix control sockets) and on shutdown.
func (d *Daemon) ServeAPI(ctx context.Context, sockPath string) error {
	_ = os.Remove(sockPath)
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return err
	}
	defer os.Remove(sockPath)

	srv := &http.Server{Handler: api.NewRouter(d, d.log)}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

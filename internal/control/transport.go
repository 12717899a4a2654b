package control

import (
	"context"
	"net"
	"net/http"
	"time"
)

// unixTransport returns an http.RoundTripper that dials sockPath for
// every request regardless of the request's host, the standard trick
// for putting an HTTP client on top of a unix domain socket.
func unixTransport(sockPath string) http.RoundTripper {
	return &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: 5 * time.Second}
			return d.DialContext(ctx, "unix", sockPath)
		},
	}
}

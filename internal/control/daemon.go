// Package control wires the signal trampoline, PID file, unix-socket
// control API, and state snapshot together into the daemon's control
// plane, spec.md §5/§6/§7.
package control

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lmapcloud/lmapd/internal/evaluator"
	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/report"
	"github.com/lmapcloud/lmapd/internal/runner"
	"github.com/lmapcloud/lmapd/internal/serialize"
	"github.com/lmapcloud/lmapd/internal/workspace"
)

// Daemon owns the in-memory model and the subsystems that read or mutate
// it while the process runs: the event evaluator, the action runner, and
// the reload/status/clean/shutdown control surface reachable over the
// unix-socket API and OS signals.
type Daemon struct {
	mu       sync.RWMutex
	m        *model.Model
	queueDir string
	configFn func() (*model.Model, error) // reload source, e.g. config.Load
	engine   serialize.Engine
	statePath string
	pidPath   string

	log logger.Logger
	ev  *evaluator.Evaluator
	run *runner.Runner

	shutdown context.CancelFunc
}

// Config bundles Daemon's construction parameters.
type Config struct {
	Model     *model.Model
	QueueDir  string
	ConfigFn  func() (*model.Model, error)
	Engine    serialize.Engine
	StatePath string
	PIDPath   string
	Log       logger.Logger
	Evaluator *evaluator.Evaluator
	Runner    *runner.Runner
}

// New constructs a Daemon ready to Run.
func New(cfg Config) *Daemon {
	return &Daemon{
		m:         cfg.Model,
		queueDir:  cfg.QueueDir,
		configFn:  cfg.ConfigFn,
		engine:    cfg.Engine,
		statePath: cfg.StatePath,
		pidPath:   cfg.PIDPath,
		log:       cfg.Log,
		ev:        cfg.Evaluator,
		run:       cfg.Runner,
	}
}

// Run arms the evaluator, starts the signal trampoline, and blocks
// dispatching fire events to the runner until ctx is cancelled or a
// shutdown is requested (SIGTERM, or the control API's /shutdown).
//
// Signal handlers only set flags; all state mutation happens here in the
// single goroutine that owns m, matching spec.md §5's "signal handlers
// set flags only, the main loop does the work" requirement.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.shutdown = cancel
	d.mu.Unlock()
	defer cancel()

	if err := d.writePIDFile(); err != nil {
		return err
	}
	defer removePIDFile(d.pidPath)

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := d.ev.Arm(d.m.Events, time.Now()); err != nil {
		return err
	}

	evErrCh := make(chan error, 1)
	go func() { evErrCh <- d.ev.Run(runCtx) }()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case err := <-evErrCh:
			return err
		case sig := <-sigCh:
			d.handleSignal(runCtx, sig)
		case fe := <-d.ev.Fire():
			d.run.OnFire(runCtx, fe)
		}
	}
}

func (d *Daemon) handleSignal(ctx context.Context, sig os.Signal) {
	switch sig {
	case syscall.SIGHUP:
		if err := d.Reload(); err != nil {
			d.log.Errorf("reload on SIGHUP failed: %v", err)
		}
	case syscall.SIGUSR1:
		if err := d.WriteState(); err != nil {
			d.log.Errorf("state snapshot on SIGUSR1 failed: %v", err)
		}
	case syscall.SIGUSR2:
		if err := d.Clean(); err != nil {
			d.log.Errorf("clean on SIGUSR2 failed: %v", err)
		}
	case syscall.SIGTERM:
		d.log.Infof("SIGTERM received, shutting down")
		d.mu.RLock()
		shutdown := d.shutdown
		d.mu.RUnlock()
		if shutdown != nil {
			shutdown()
		}
	}
}

// Model returns the live model under the daemon's read lock's protection
// for the duration of fn.
func (d *Daemon) Model(fn func(*model.Model)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.m)
}

// Reload replaces the in-memory model wholesale from configFn, spec.md
// §5's reload semantics: the running schedule set is swapped, not merged
// in place, so workspace directories for removed schedules are orphaned
// rather than retroactively destroyed.
func (d *Daemon) Reload() error {
	next, err := d.configFn()
	if err != nil {
		return err
	}
	if err := workspace.Init(next, d.queueDir); err != nil {
		return err
	}
	d.mu.Lock()
	d.m = next
	d.mu.Unlock()
	return d.ev.Arm(next.Events, time.Now())
}

// Clean removes completed result pairs from every schedule/action
// workspace directory, spec.md §7's "clean" control operation. Cleaning
// each action's workspace also reclaims the source side of the
// link-only, multi-destination delivery in internal/runner's
// moveOutputs, which never unlinks the source itself.
func (d *Daemon) Clean() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.m.Schedules {
		if s.Workspace != "" {
			if err := workspace.CleanSchedule(s.Workspace); err != nil {
				return err
			}
		}
		for _, a := range s.Actions {
			if a.Workspace == "" {
				continue
			}
			if err := workspace.CleanAction(a.Workspace); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollectReport gathers and returns the report document rendered by the
// active serialize.Engine, spec.md §6's "report" control operation.
func (d *Daemon) CollectReport() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := report.CollectResults(d.m, d.log); err != nil {
		return "", err
	}
	return d.engine.RenderReport(d.m)
}

// Status renders the state-scoped configuration document, spec.md §6's
// "status" control operation.
func (d *Daemon) Status() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.engine.RenderState(d.m)
}

// WriteState renders and persists the state document to statePath. It
// runs on SIGUSR1; the status control operation (Status) returns the
// rendered document without writing the file.
func (d *Daemon) WriteState() error {
	out, err := d.Status()
	if err != nil {
		return err
	}
	return os.WriteFile(d.statePath, []byte(out), 0o644)
}

// Shutdown cancels the running daemon loop, spec.md §7's "shutdown"
// control operation.
func (d *Daemon) Shutdown() {
	d.mu.RLock()
	shutdown := d.shutdown
	d.mu.RUnlock()
	if shutdown != nil {
		shutdown()
	}
}

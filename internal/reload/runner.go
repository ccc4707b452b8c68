// Package reload composes the glob watcher and the process supervisor into
// the restart loop: change detection restarts the child, an exit ticker
// reports child exits, and a double-interrupt protocol quits.
package reload

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"molt/internal/logging"
	"molt/internal/proc"
	"molt/internal/watch"
)

// Orchestration defaults.
const (
	DefaultExitPollInterval = 100 * time.Millisecond
	DefaultInterruptWindow  = time.Second
)

// State names the phases of the interrupt protocol.
type State string

const (
	// StateRunning is the normal supervising phase.
	StateRunning State = "running"
	// StateAwaitingInterrupt is the window after a first interrupt in
	// which a second one means quit instead of restart.
	StateAwaitingInterrupt State = "awaiting_second_interrupt"
	// StateTerminated is terminal; the child is confirmed gone.
	StateTerminated State = "terminated"
)

// Config carries the orchestration inputs. Command and Globs come from
// the CLI/config layer and must be non-empty.
type Config struct {
	Command          []string
	Globs            []string
	WatchInterval    time.Duration
	ExitPollInterval time.Duration
	GracefulTimeout  time.Duration
	InterruptWindow  time.Duration
}

// Runner owns the supervised child. Every terminate and spawn happens on
// the Run goroutine; the watcher callback and the exit ticker communicate
// through channels, so the restart paths cannot race over the handle.
type Runner struct {
	cfg     Config
	watcher *watch.Watcher
	sup     *proc.Supervisor
	logger  logging.Logger

	child   *proc.Child
	restart chan struct{}
	signals chan os.Signal

	watchCancel context.CancelFunc
	watchDone   chan struct{}

	stateMu sync.Mutex
	state   State
}

// New builds a runner: the watcher records its baseline here, so changes
// made after New count from the start. A nil logger selects the reload
// module logger.
func New(cfg Config, logger logging.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.GetLogger("reload")
	}
	if cfg.ExitPollInterval <= 0 {
		cfg.ExitPollInterval = DefaultExitPollInterval
	}
	if cfg.InterruptWindow <= 0 {
		cfg.InterruptWindow = DefaultInterruptWindow
	}

	r := &Runner{
		cfg:     cfg,
		sup:     proc.New(cfg.GracefulTimeout, logger),
		logger:  logger,
		restart: make(chan struct{}, 1),
		signals: make(chan os.Signal, 2),
		state:   StateRunning,
	}

	w, err := watch.New(cfg.Globs, cfg.WatchInterval, r.RequestRestart)
	if err != nil {
		return nil, err
	}
	r.watcher = w
	return r, nil
}

// RequestRestart schedules a restart of the child. Non-blocking; a
// pending request absorbs further triggers until it is served.
func (r *Runner) RequestRestart() {
	select {
	case r.restart <- struct{}{}:
	default:
	}
}

// State returns the current phase of the interrupt protocol.
func (r *Runner) State() State {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.stateMu.Lock()
	r.state = s
	r.stateMu.Unlock()
}

// Run supervises until a double interrupt, a termination signal, a fatal
// spawn failure, or context cancellation. The tool otherwise runs
// indefinitely.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(r.signals)

	if err := r.spawn(); err != nil {
		r.setState(StateTerminated)
		return err
	}
	r.startWatcher(ctx)

	ticker := time.NewTicker(r.cfg.ExitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.stopWatcher()
			r.sup.Terminate(r.child)
			r.setState(StateTerminated)
			return ctx.Err()

		case <-ticker.C:
			r.notifyIfExited()

		case <-r.restart:
			r.logger.Info("Change detected.")
			if err := r.restartChild(); err != nil {
				r.stopWatcher()
				r.setState(StateTerminated)
				return err
			}

		case sig := <-r.signals:
			if sig != os.Interrupt {
				r.logger.Info("Received shutdown signal", "signal", sig.String())
				r.stopWatcher()
				r.sup.Terminate(r.child)
				r.setState(StateTerminated)
				r.logger.Info("Done.")
				return nil
			}
			quit, err := r.handleInterrupt(ctx)
			if err != nil {
				return err
			}
			if quit {
				r.logger.Info("Done.")
				return nil
			}
		}
	}
}

// spawn starts a fresh child. Spawn failures are fatal: retrying the same
// broken command would busy-loop.
func (r *Runner) spawn() error {
	r.logger.Info("Starting process", "command", strings.Join(r.cfg.Command, " "))
	child, err := r.sup.Spawn(r.cfg.Command)
	if err != nil {
		r.logger.Error("Failed to start process", "error", err)
		return err
	}
	r.child = child
	return nil
}

// restartChild replaces the child: confirmed termination of the old
// instance, then a fresh spawn. The old instance exits unreported; the
// ticker only reports organic exits of the current child.
func (r *Runner) restartChild() error {
	r.sup.Terminate(r.child)
	return r.spawn()
}

// notifyIfExited reports the current child's exit exactly once per
// instance. The report is informational; an exit alone never restarts.
func (r *Runner) notifyIfExited() {
	if r.child == nil {
		return
	}
	code, exited := r.child.Poll()
	if !exited || !r.child.MarkNotified() {
		return
	}
	if code == 0 {
		r.logger.Info("Process exited", "exit_code", code)
	} else {
		r.logger.Error("Process exited", "exit_code", code)
	}
}

// handleInterrupt runs the restart-or-quit protocol after a first
// interrupt: everything stops, then a second interrupt inside the window
// quits while silence restarts the child and resumes watching.
func (r *Runner) handleInterrupt(ctx context.Context) (quit bool, err error) {
	r.stopWatcher()
	r.sup.Terminate(r.child)
	r.setState(StateAwaitingInterrupt)
	r.logger.Warn("Force restarting, press interrupt again to quit", "window", r.cfg.InterruptWindow)

	select {
	case <-r.signals:
		r.setState(StateTerminated)
		return true, nil
	case <-ctx.Done():
		r.setState(StateTerminated)
		return true, ctx.Err()
	case <-time.After(r.cfg.InterruptWindow):
	}

	if err := r.spawn(); err != nil {
		r.setState(StateTerminated)
		return false, err
	}
	r.startWatcher(ctx)
	r.setState(StateRunning)
	return false, nil
}

func (r *Runner) startWatcher(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.watchCancel = cancel
	r.watchDone = done
	go func() {
		r.watcher.Run(watchCtx)
		close(done)
	}()
}

// stopWatcher cancels the poll loop and waits for it to finish, so no
// change callback fires while the child is being replaced. A restart
// request that raced in during shutdown is dropped; the paths that call
// this either quit or respawn anyway.
func (r *Runner) stopWatcher() {
	if r.watchCancel == nil {
		return
	}
	r.watchCancel()
	<-r.watchDone
	r.watchCancel = nil

	select {
	case <-r.restart:
	default:
	}
}

// Package proc owns the lifecycle of the supervised child process: spawn,
// non-blocking exit polling, and graceful-then-forceful termination.
package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"molt/internal/logging"
)

// DefaultGracefulTimeout bounds how long Terminate waits after the graceful
// signal before escalating to a kill.
const DefaultGracefulTimeout = 5 * time.Second

// killExitCode is recorded for children that had to be force-killed,
// following the 128+SIGKILL shell convention.
const killExitCode = 137

// ErrSpawn marks failures to launch the child. Spawn errors are fatal to
// the reload loop; retrying the same broken command would spin.
var ErrSpawn = errors.New("spawn failed")

// Supervisor launches children and applies the termination policy.
// Exactly one child is supervised at a time; callers hold the *Child.
type Supervisor struct {
	gracefulTimeout time.Duration
	logger          logging.Logger
}

// New creates a supervisor. A non-positive timeout selects the default; a
// nil logger selects the proc module logger.
func New(gracefulTimeout time.Duration, logger logging.Logger) *Supervisor {
	if gracefulTimeout <= 0 {
		gracefulTimeout = DefaultGracefulTimeout
	}
	if logger == nil {
		logger = logging.GetLogger("proc")
	}
	return &Supervisor{
		gracefulTimeout: gracefulTimeout,
		logger:          logger,
	}
}

// Child is a handle to one spawned process. The exit record is written
// once, either by Poll harvesting the wait result or by Terminate.
type Child struct {
	cmd  *exec.Cmd
	done chan error

	mu       sync.Mutex
	exited   bool
	exitCode int
	notified bool
}

// Spawn launches command as a child process. The command is a program plus
// arguments, executed without a shell; stdio is inherited so child output
// reaches the terminal unmodified. On unix the child gets its own process
// group so termination signals reach shell wrappers too.
func (s *Supervisor) Spawn(command []string) (*Child, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSpawn)
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %q: %v", ErrSpawn, command[0], err)
	}

	s.logger.Debug("Process started", "pid", cmd.Process.Pid, "command", strings.Join(command, " "))

	child := &Child{cmd: cmd, done: make(chan error, 1)}
	go func() {
		child.done <- cmd.Wait()
	}()
	return child, nil
}

// Pid returns the child's OS process id.
func (c *Child) Pid() int {
	return c.cmd.Process.Pid
}

// Poll reports whether the child has exited and with what code. It never
// blocks: the first call after exit harvests the wait result and caches
// it, later calls return the cached record.
func (c *Child) Poll() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exited {
		return c.exitCode, true
	}

	select {
	case err := <-c.done:
		c.exited = true
		c.exitCode = exitCodeFromError(err)
		return c.exitCode, true
	default:
		return 0, false
	}
}

// MarkNotified latches the exit report: it returns true exactly once per
// child instance, so "process exited" is never logged twice.
func (c *Child) MarkNotified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notified {
		return false
	}
	c.notified = true
	return true
}

// setExit records the exit code unless one was already recorded.
func (c *Child) setExit(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.exited {
		c.exited = true
		c.exitCode = code
	}
}

// Terminate ends the child: graceful signal, bounded wait, then an
// unconditional kill-and-wait. It is a no-op when the child has already
// exited, and the child is confirmed gone when it returns.
func (s *Supervisor) Terminate(c *Child) {
	if c == nil {
		return
	}
	if _, exited := c.Poll(); exited {
		return
	}

	s.logger.Info("Process still running, stopping", "pid", c.Pid())
	if err := signalGraceful(c.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Warn("Failed to signal process", "error", err)
	}

	select {
	case err := <-c.done:
		c.setExit(exitCodeFromError(err))
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Graceful stop timed out, killing", "timeout", s.gracefulTimeout, "pid", c.Pid())
		if err := signalKill(c.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.logger.Error("Failed to kill process", "error", err)
		}
		// SIGKILL cannot be ignored, so this wait is unconditional
		<-c.done
		c.setExit(killExitCode)
	}
}

// exitCodeFromError maps a wait result to an exit code: 0 for success, the
// child's code for an ExitError (-1 when signaled), 1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

//go:build unix

package proc

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// sysProcAttr places the child in its own process group so signals reach
// shell wrappers and their descendants.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// signalGraceful asks the child to shut down in an orderly way.
func signalGraceful(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGTERM)
}

// signalKill ends the child unconditionally.
func signalKill(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGKILL)
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	pid := cmd.Process.Pid
	if pgid, err := syscall.Getpgid(pid); err == nil && pgid == pid {
		err := syscall.Kill(-pgid, sig)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return cmd.Process.Signal(sig)
}

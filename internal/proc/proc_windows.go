//go:build windows

package proc

import (
	"os/exec"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Windows has no graceful termination signal; both requests degrade to
// the same forced termination.
func signalGraceful(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

func signalKill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

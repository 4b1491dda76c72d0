//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// isolateGroup starts cmd as the leader of a new process group so that a
// cancel reaches every process the program forks.
func isolateGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		return killGroup(cmd)
	}
}

// killGroup sends SIGKILL to the whole group led by cmd.
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err == syscall.ESRCH {
		return nil
	}
	return err
}

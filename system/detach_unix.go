//go:build unix

package system

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in a new session so signals aimed at the launcher's
// process group, such as Ctrl-C, do not reach it.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
}

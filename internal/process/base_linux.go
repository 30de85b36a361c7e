//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureDetached puts cmd in its own process group. Pdeathsig makes the
// kernel deliver SIGTERM to the child if the supervisor dies abruptly, which
// keeps a crashed supervisor from orphaning the dependency.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}

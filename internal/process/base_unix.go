//go:build unix && !linux

package process

import (
	"os/exec"
	"syscall"
)

// configureDetached puts cmd in its own process group. Parent-death signals
// are Linux-only, so on other Unix systems teardown relies on the supervisor.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

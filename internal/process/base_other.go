//go:build !unix

package process

import "os/exec"

// configureDetached is a no-op where process groups are not available.
func configureDetached(_ *exec.Cmd) {}

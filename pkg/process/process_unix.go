//go:build !windows
// +build !windows

package process

import "os/exec"

func configure(cmd *exec.Cmd) {}

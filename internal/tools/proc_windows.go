//go:build windows

package tools

import (
	"os/exec"
	"time"
)

func setProcGroup(cmd *exec.Cmd) {}

func killProcGroup(cmd *exec.Cmd, grace time.Duration) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
}

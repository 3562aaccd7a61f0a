//go:build !windows

package tools

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcGroup puts the command in its own process group so the whole tree
// can be signalled at once.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup sends SIGTERM to the command's process group and escalates
// to SIGKILL after the grace period.
func killProcGroup(cmd *exec.Cmd, grace time.Duration) {
	if cmd.Process == nil {
		return
	}
	pgid := -cmd.Process.Pid
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil {
		cmd.Process.Kill()
		return
	}

	deadline := time.After(grace)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			syscall.Kill(pgid, syscall.SIGKILL)
			return
		case <-tick.C:
			// Signal 0 probes for liveness.
			if err := syscall.Kill(pgid, 0); err != nil {
				return
			}
		}
	}
}

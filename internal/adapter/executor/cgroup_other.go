//go:build !linux

package executor

import (
	"errors"
	"os/exec"
)

type runCgroup struct{}

func newRunCgroup(root, _ string, _, _ int) (*runCgroup, error) {
	if root == "" {
		return nil, nil
	}
	return nil, errors.New("cgroup limits are only supported on linux")
}

func (*runCgroup) attach(*exec.Cmd) {}
func (*runCgroup) kill()            {}
func (*runCgroup) peakMB() float64  { return 0 }
func (*runCgroup) oomKilled() bool  { return false }
func (*runCgroup) remove()          {}

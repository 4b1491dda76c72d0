//go:build linux

package executor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// runCgroup is a cgroup v2 leaf created for a single program run.
// A nil *runCgroup is valid and does nothing.
type runCgroup struct {
	path string
	dir  *os.File
}

func newRunCgroup(root, name string, memoryMB, pids int) (*runCgroup, error) {
	if root == "" {
		return nil, nil
	}
	path := filepath.Join(root, fmt.Sprintf("%s-%d", name, time.Now().UnixNano()))
	if err := os.Mkdir(path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cgroup: %w", err)
	}
	cg := &runCgroup{path: path}

	pidsValue := "max"
	if pids > 0 {
		pidsValue = strconv.Itoa(pids)
	}
	if err := cg.write("pids.max", pidsValue); err != nil {
		cg.remove()
		return nil, err
	}
	if memoryMB > 0 {
		limit := strconv.FormatInt(int64(memoryMB)*1024*1024, 10)
		if err := cg.write("memory.max", limit); err != nil {
			cg.remove()
			return nil, err
		}
		// no swap, otherwise memory.max only slows the program down
		_ = cg.write("memory.swap.max", "0")
	}

	dir, err := os.Open(path)
	if err != nil {
		cg.remove()
		return nil, fmt.Errorf("failed to open cgroup: %w", err)
	}
	cg.dir = dir
	return cg, nil
}

// attach makes cmd start directly inside the cgroup.
func (c *runCgroup) attach(cmd *exec.Cmd) {
	if c == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.UseCgroupFD = true
	cmd.SysProcAttr.CgroupFD = int(c.dir.Fd())
}

func (c *runCgroup) kill() {
	if c == nil {
		return
	}
	_ = c.write("cgroup.kill", "1")
}

// peakMB reads memory.peak; zero when the kernel does not expose it.
func (c *runCgroup) peakMB() float64 {
	if c == nil {
		return 0
	}
	data, err := os.ReadFile(filepath.Join(c.path, "memory.peak"))
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return float64(v) / (1024 * 1024)
}

func (c *runCgroup) oomKilled() bool {
	if c == nil {
		return false
	}
	data, err := os.ReadFile(filepath.Join(c.path, "memory.events"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "oom_kill" {
			n, _ := strconv.ParseInt(fields[1], 10, 64)
			return n > 0
		}
	}
	return false
}

func (c *runCgroup) remove() {
	if c == nil {
		return
	}
	if c.dir != nil {
		c.dir.Close()
	}
	// rmdir fails while the kernel still counts members, retry briefly
	for i := 0; i < 10; i++ {
		if err := os.Remove(c.path); err == nil || os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (c *runCgroup) write(name, value string) error {
	if err := os.WriteFile(filepath.Join(c.path, name), []byte(value), 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

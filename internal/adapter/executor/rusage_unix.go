//go:build unix

package executor

import (
	"os"
	"runtime"
	"syscall"
)

// maxRSSMegabytes reads the child's peak resident set size.
func maxRSSMegabytes(state *os.ProcessState) float64 {
	if state == nil {
		return 0
	}
	ru, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	// darwin reports bytes, linux kilobytes
	if runtime.GOOS == "darwin" {
		return float64(ru.Maxrss) / (1024 * 1024)
	}
	return float64(ru.Maxrss) / 1024
}

//go:build !unix

package executor

import "os"

func maxRSSMegabytes(*os.ProcessState) float64 {
	return 0
}

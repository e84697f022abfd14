//go:build !linux && !darwin && !freebsd

package platform

import "time"

// CPUTime returns zero on unsupported platforms.
func CPUTime() time.Duration {
	return 0
}
